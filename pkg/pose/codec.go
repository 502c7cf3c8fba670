package pose

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

const (
	// EncodedSize is the length of an encoded position:
	// 2 digits per coordinate, 3 axes, 23 joints, 2 players.
	EncodedSize = 2 * 3 * PlayerJointCount

	// FormattedLines is the number of lines Format splits a code into.
	FormattedLines = 4

	// FormattedIndent prefixes every line written by Format.
	FormattedIndent = "    "

	base62Digits = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// scaledLimit bounds the scaled integer a coordinate may encode to.
	// Authored data stays below 4000; two base-62 digits stop at 62*62.
	scaledLimit = min(4000, 62*62)
)

// Convention selects how scaled integers map to coordinates.
type Convention int

const (
	// ShiftXZ divides by 1000 and shifts x and z by -2. y is unshifted.
	ShiftXZ Convention = iota

	// ScaleAll divides by 1000, multiplies by 4 and shifts every axis by -2.
	ScaleAll
)

var conventionNames = map[Convention]string{
	ShiftXZ:  "shift-xz",
	ScaleAll: "scale-all",
}

func (c Convention) String() string {
	if s, ok := conventionNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Convention(%d)", int(c))
}

// ParseConvention parses "shift-xz" or "scale-all".
func ParseConvention(s string) (Convention, error) {
	for c, name := range conventionNames {
		if strings.EqualFold(s, name) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown codec convention %q (want shift-xz or scale-all)", s)
}

// Codec converts positions to and from their base-62 text form.
// The zero value uses the ShiftXZ convention.
type Codec struct {
	Convention Convention
}

// DefaultCodec is the codec used by the package-level helpers.
var DefaultCodec = Codec{Convention: ShiftXZ}

// Decode parses an encoded position with DefaultCodec.
func Decode(s string) (Position, error) { return DefaultCodec.Decode(s) }

// DecodeFormatted parses an encoded position that may be split across
// lines, with DefaultCodec.
func DecodeFormatted(s string) (Position, error) { return DefaultCodec.DecodeFormatted(s) }

// Encode encodes p with DefaultCodec.
func Encode(p Position) (string, error) { return DefaultCodec.Encode(p) }

// Format encodes p with DefaultCodec and splits it into indented lines.
func Format(p Position) (string, error) { return DefaultCodec.Format(p) }

// Decode parses s, which must be exactly EncodedSize bytes long.
// Whitespace is skipped while scanning but counts toward the length, so
// a string containing whitespace runs out of digits and fails.
func (c Codec) Decode(s string) (Position, error) {
	if len(s) != EncodedSize {
		return Position{}, &FormatError{
			Offset: min(len(s), EncodedSize),
			Reason: fmt.Sprintf("expected %d characters, got %d", EncodedSize, len(s)),
		}
	}
	return c.scan(s)
}

// DecodeFormatted removes all whitespace from s before decoding, so the
// multi-line form written by Format round-trips.
func (c Codec) DecodeFormatted(s string) (Position, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return c.Decode(compact)
}

func (c Codec) scan(s string) (Position, error) {
	offset := 0
	nextDigit := func() (int, error) {
		for offset < len(s) && isSpace(s[offset]) {
			offset++
		}
		if offset >= len(s) {
			return 0, &FormatError{Offset: offset, Reason: "unexpected end of input"}
		}
		d := digitValue(s[offset])
		if d < 0 {
			return 0, &FormatError{Offset: offset, Reason: fmt.Sprintf("not a base-62 digit: %q", s[offset])}
		}
		offset++
		return d, nil
	}
	next := func() (int, error) {
		hi, err := nextDigit()
		if err != nil {
			return 0, err
		}
		lo, err := nextDigit()
		if err != nil {
			return 0, err
		}
		return hi*62 + lo, nil
	}

	var p Position
	for i := range p.coords {
		var axes [3]float64
		for a := range axes {
			n, err := next()
			if err != nil {
				return Position{}, err
			}
			axes[a] = c.fromScaled(a, n)
		}
		p.coords[i].X, p.coords[i].Y, p.coords[i].Z = axes[0], axes[1], axes[2]
	}
	return p, nil
}

// Encode produces the EncodedSize-character form of p. A coordinate that
// scales outside the encodable range yields a *RangeError.
func (c Codec) Encode(p Position) (string, error) {
	var b strings.Builder
	b.Grow(EncodedSize)
	for k, v := range p.All() {
		for a, d := range [3]float64{v.X, v.Y, v.Z} {
			n, ok := c.toScaled(a, d)
			if !ok {
				return "", &RangeError{Key: k, Axis: axisNames[a], Value: d, Scaled: n}
			}
			b.WriteByte(base62Digits[n/62])
			b.WriteByte(base62Digits[n%62])
		}
	}
	return b.String(), nil
}

// Format encodes p and splits the code into FormattedLines lines, each
// indented with FormattedIndent and terminated by a newline.
func (c Codec) Format(p Position) (string, error) {
	s, err := c.Encode(p)
	if err != nil {
		return "", err
	}
	return FormatCode(s), nil
}

// FormatCode splits an already encoded position into the multi-line form.
func FormatCode(code string) string {
	n := len(code) / FormattedLines
	var b strings.Builder
	for i := range FormattedLines {
		end := (i + 1) * n
		if i == FormattedLines-1 {
			end = len(code)
		}
		b.WriteString(FormattedIndent)
		b.WriteString(code[i*n : end])
		b.WriteByte('\n')
	}
	return b.String()
}

var axisNames = [3]string{"x", "y", "z"}

func (c Codec) fromScaled(axis, n int) float64 {
	d := float64(n) / 1000
	if c.Convention == ScaleAll {
		return d*4 - 2
	}
	if axis == 1 {
		return d
	}
	return d - 2
}

func (c Codec) toScaled(axis int, d float64) (int, bool) {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return -1, false
	}
	switch {
	case c.Convention == ScaleAll:
		d = (d + 2) / 4
	case axis != 1:
		d += 2
	}
	r := math.Round(d * 1000)
	if r < 0 || r >= scaledLimit {
		if math.Abs(r) > 1e9 {
			return -1, false
		}
		return int(r), false
	}
	return int(r), true
}

func digitValue(c byte) int {
	switch {
	case c >= 'a' && c <= 'z':
		return int(c - 'a')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 26
	case c >= '0' && c <= '9':
		return int(c-'0') + 52
	}
	return -1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
