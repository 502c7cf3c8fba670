package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/grapplegraph/pkg/buildinfo"
	errs "github.com/matzehuels/grapplegraph/pkg/errors"
	graphio "github.com/matzehuels/grapplegraph/pkg/io"
	"github.com/matzehuels/grapplegraph/pkg/match"
	"github.com/matzehuels/grapplegraph/pkg/movegraph"
	"github.com/matzehuels/grapplegraph/pkg/pipeline"
	"github.com/matzehuels/grapplegraph/pkg/pose"
	"github.com/matzehuels/grapplegraph/pkg/relax"
	"github.com/matzehuels/grapplegraph/pkg/store"
)

// Coordinates is the wire form of a position, keyed by "p<player>.<Joint>".
type Coordinates map[string][3]float64

func coordinatesOf(p pose.Position) Coordinates {
	out := make(Coordinates, pose.PlayerJointCount)
	for k, v := range p.All() {
		out[k.String()] = [3]float64{v.X, v.Y, v.Z}
	}
	return out
}

func (c Coordinates) position() (pose.Position, error) {
	coords := make(map[pose.PlayerJoint]r3.Vec, len(c))
	for name, v := range c {
		k, err := pose.ParsePlayerJoint(name)
		if err != nil {
			return pose.Position{}, errs.Wrap(errs.ErrCodeInvalidPosition, err, "coordinates")
		}
		coords[k] = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}
	p, err := pose.FromCoordinates(coords)
	if err != nil {
		return pose.Position{}, errs.Wrap(errs.ErrCodeInvalidPosition, err, "coordinates")
	}
	return p, nil
}

func (s *Server) codec(convention string) (pose.Codec, error) {
	if convention == "" {
		return s.opts.Codec, nil
	}
	c, err := pose.ParseConvention(convention)
	if err != nil {
		return pose.Codec{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "convention")
	}
	return pose.Codec{Convention: c}, nil
}

func decodeCode(c pose.Codec, field, code string) (pose.Position, error) {
	p, err := c.DecodeFormatted(code)
	if err != nil {
		return pose.Position{}, errs.Wrap(errs.ErrCodeInvalidPosition, err, "%s", field)
	}
	return p, nil
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

// =============================================================================
// Codec
// =============================================================================

type decodeRequest struct {
	Code       string `json:"code"`
	Convention string `json:"convention,omitempty"`
}

type positionResponse struct {
	Code        string      `json:"code,omitempty"`
	Formatted   string      `json:"formatted,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

func positionBody(c pose.Codec, p pose.Position) positionResponse {
	resp := positionResponse{Coordinates: coordinatesOf(p)}
	if code, err := c.Encode(p); err == nil {
		resp.Code = code
		resp.Formatted = pose.FormatCode(code)
	}
	return resp
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.codec(req.Convention)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := decodeCode(c, "code", req.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, positionBody(c, p))
}

type encodeRequest struct {
	Coordinates Coordinates `json:"coordinates"`
	Convention  string      `json:"convention,omitempty"`
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.codec(req.Convention)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := req.Coordinates.position()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	code, err := c.Encode(p)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeOutOfRange, err, "encode"))
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{
		Code:        code,
		Formatted:   pose.FormatCode(code),
		Coordinates: coordinatesOf(p),
	})
}

// =============================================================================
// Matching
// =============================================================================

type matchRequest struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Tolerance  float64 `json:"tolerance,omitempty"`
	Metric     string  `json:"metric,omitempty"`
	Convention string  `json:"convention,omitempty"`
}

type matchResponse struct {
	Equivalent bool                      `json:"equivalent"`
	Transform  *match.CompositeTransform `json:"transform,omitempty"`
}

func (s *Server) matcher(tol float64, metric string) (match.Matcher, error) {
	m := s.opts.Matcher
	if tol != 0 {
		if err := errs.ValidateTolerance(tol); err != nil {
			return m, err
		}
		m.Tolerance = tol
	}
	if metric != "" {
		mt, err := match.ParseMetric(metric)
		if err != nil {
			return m, errs.Wrap(errs.ErrCodeInvalidInput, err, "metric")
		}
		m.Metric = mt
	}
	return m, nil
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.matcher(req.Tolerance, req.Metric)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.codec(req.Convention)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := decodeCode(c, "a", req.A)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	b, err := decodeCode(c, "b", req.B)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := matchResponse{}
	if t, ok := m.Match(a, b); ok {
		resp.Equivalent = true
		resp.Transform = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

type canonicalizeRequest struct {
	Code       string  `json:"code"`
	Grid       float64 `json:"grid,omitempty"`
	Convention string  `json:"convention,omitempty"`
}

type canonicalizeResponse struct {
	positionResponse
	Reorientation pose.Reorientation `json:"reorientation"`
	Mirrored      bool               `json:"mirrored"`
	Key           string             `json:"key"`
}

func (s *Server) handleCanonicalize(w http.ResponseWriter, r *http.Request) {
	var req canonicalizeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Grid != 0 {
		if err := errs.ValidateGrid(req.Grid); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	c, err := s.codec(req.Convention)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := decodeCode(c, "code", req.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	canon := match.Canonicalize(p)
	writeJSON(w, http.StatusOK, canonicalizeResponse{
		positionResponse: positionBody(c, canon.Position),
		Reorientation:    canon.Reorientation,
		Mirrored:         canon.Mirrored,
		Key:              fmt.Sprintf("%016x", match.Key(p, req.Grid)),
	})
}

// =============================================================================
// Relaxation
// =============================================================================

type relaxRequest struct {
	Code       string `json:"code"`
	Iterations int    `json:"iterations,omitempty"`
	Fixed      string `json:"fixed,omitempty"`
	Convention string `json:"convention,omitempty"`
}

type relaxResponse struct {
	positionResponse
	Segments [pose.PlayerCount][]float64 `json:"segments"`
}

func (s *Server) handleRelax(w http.ResponseWriter, r *http.Request) {
	var req relaxRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := relax.Options{Iterations: s.opts.RelaxIterations}
	if req.Iterations != 0 {
		if err := errs.ValidateCount("iterations", req.Iterations, pipeline.MaxRelaxIterations); err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Iterations = req.Iterations
	}
	if req.Fixed != "" {
		k, err := pose.ParsePlayerJoint(req.Fixed)
		if err != nil {
			s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "fixed"))
			return
		}
		opts.Fixed = &k
	}
	c, err := s.codec(req.Convention)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := decodeCode(c, "code", req.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := relax.Relax(p, opts)
	resp := relaxResponse{positionResponse: positionBody(c, q)}
	for player := range pose.PlayerCount {
		resp.Segments[player] = relax.SegmentLengths(q, player, nil)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Graphs
// =============================================================================

type buildResponse struct {
	BuildKey    string             `json:"buildKey"`
	CatalogHash string             `json:"catalogHash"`
	Report      *movegraph.Report  `json:"report"`
	Cache       pipeline.CacheInfo `json:"cache"`
	Graph       graphio.Document   `json:"graph"`
	Artifacts   map[string]string  `json:"artifacts,omitempty"`
}

// buildOptions overlays a request on the server's build defaults.
func (s *Server) buildOptions(req pipeline.Options) (pipeline.Options, error) {
	if req.CatalogPath != "" {
		return req, errs.New(errs.ErrCodeInvalidInput, "catalog_path is not accepted; send the catalog inline")
	}
	opts := s.opts.Build
	opts.CatalogPath = ""
	opts.Catalog = req.Catalog
	opts.CatalogFormat = req.CatalogFormat
	if req.Tolerance != 0 {
		opts.Tolerance = req.Tolerance
	}
	if req.Metric != "" {
		opts.Metric = req.Metric
	}
	if req.Convention != "" {
		opts.Convention = req.Convention
	}
	if req.Index != "" {
		opts.Index = req.Index
	}
	if req.Grid != 0 {
		opts.Grid = req.Grid
	}
	if req.Workers != 0 {
		opts.Workers = req.Workers
	}
	if req.RelaxIterations != 0 {
		opts.RelaxIterations = req.RelaxIterations
	}
	opts.Canonicalize = opts.Canonicalize || req.Canonicalize
	opts.Refresh = req.Refresh
	opts.Formats = req.Formats
	opts.Detailed = req.Detailed
	opts.HideEdgeLabels = req.HideEdgeLabels
	opts.Logger = s.opts.Logger
	return opts, nil
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Options
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.buildOptions(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.opts.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := buildResponse{
		BuildKey:    result.BuildKey,
		CatalogHash: result.CatalogHash,
		Report:      result.Report,
		Cache:       result.CacheInfo,
		Graph:       graphio.FromGraph(result.Graph),
	}
	for format, data := range result.Artifacts {
		if format == pipeline.FormatJSON {
			continue
		}
		if resp.Artifacts == nil {
			resp.Artifacts = make(map[string]string)
		}
		resp.Artifacts[format] = string(data)
	}
	writeJSON(w, http.StatusOK, resp)
}

// DefaultListLimit and MaxListLimit bound GET /v1/graphs.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

func (s *Server) requireStore() error {
	if s.opts.Store == nil {
		return errs.New(errs.ErrCodeUnsupported, "no graph store configured")
	}
	return nil
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	if err := s.requireStore(); err != nil {
		s.writeError(w, r, err)
		return
	}
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "limit"))
			return
		}
		if err := errs.ValidateCount("limit", n, MaxListLimit); err != nil {
			s.writeError(w, r, err)
			return
		}
		limit = n
	}

	records, err := s.opts.Store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, http.StatusOK, struct {
		Graphs []store.Record `json:"graphs"`
	}{records})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.requireStore(); err != nil {
		s.writeError(w, r, err)
		return
	}
	key := chi.URLParam(r, "key")
	if err := errs.ValidateKey(key); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.opts.Store.Load(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
