package server

import (
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/grapplegraph/pkg/errors"
	"github.com/matzehuels/grapplegraph/pkg/pose"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// classify assigns a code to errors that do not carry one.
func classify(err error) errs.Code {
	if code := errs.GetCode(err); code != "" {
		return code
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, pose.ErrRange):
		return errs.ErrCodeOutOfRange
	case errors.Is(err, pose.ErrFormat), errors.Is(err, pose.ErrMissingJoint):
		return errs.ErrCodeInvalidPosition
	case errors.As(err, &tooLarge):
		return errs.ErrCodeInvalidInput
	}
	return errs.ErrCodeInternal
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := classify(err)
	status := errs.HTTPStatus(code)
	msg := errs.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.opts.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		if code == errs.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "request body too large")
		}
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}
