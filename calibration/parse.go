package calibration

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FormatError reports a calibration blob that does not match the flat layout.
// Line is the 0-indexed offending line, or -1 when no single line applies.
type FormatError struct {
	Reason string
	Line   int
}

func (e *FormatError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("calibration: line %d: %s", e.Line, e.Reason)
	}
	return "calibration: " + e.Reason
}

// Parse decodes a calibration blob into typed coefficient arrays.
//
// The blob must be valid UTF-8 text with at least MinLines newline-delimited
// lines. The scalar bck_aT is taken from BckATLine; the three coefficient
// spans are sliced at their fixed line ranges and every line parsed as a
// float64. Any violation yields a *FormatError.
func Parse(blob []byte) (*Data, error) {
	if !utf8.Valid(blob) {
		return nil, &FormatError{Reason: "blob is not valid UTF-8 text", Line: -1}
	}
	lines := strings.Split(string(blob), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	if len(lines) < MinLines {
		return nil, &FormatError{
			Reason: fmt.Sprintf("blob has %d lines, need at least %d", len(lines), MinLines),
			Line:   -1,
		}
	}

	bckAT, err := strconv.ParseFloat(strings.TrimSpace(lines[BckATLine]), 64)
	if err != nil {
		return nil, &FormatError{Reason: "cannot parse bck_aT: " + err.Error(), Line: BckATLine}
	}

	wavelength, err := parseSpan(lines, WavelengthStart, WavelengthEnd)
	if err != nil {
		return nil, err
	}
	normCoef, err := parseSpan(lines, NormStart, NormEnd)
	if err != nil {
		return nil, err
	}
	powerCoef, err := parseSpan(lines, PowerStart, PowerEnd)
	if err != nil {
		return nil, err
	}

	return &Data{
		BckAT:      bckAT,
		Wavelength: wavelength,
		NormCoef:   normCoef,
		PowerCoef:  powerCoef,
	}, nil
}

// parseSpan parses lines[start:end] as float64 values.
func parseSpan(lines []string, start, end int) ([]float64, error) {
	out := make([]float64, 0, end-start)
	for i := start; i < end; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(lines[i]), 64)
		if err != nil {
			return nil, &FormatError{Reason: "non-numeric entry: " + err.Error(), Line: i}
		}
		out = append(out, v)
	}
	return out, nil
}
