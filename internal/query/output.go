package query

import (
	"encoding/json"
	"fmt"
	"io"
)

// Format selects how matches are written.
type Format string

const (
	// FormatText writes one identifier per line.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
)

// ParseFormat maps text|json to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid output format %q; use text|json", s)
	}
}

// Emitter returns an emit function for Scan that writes matches to w.
func Emitter(w io.Writer, f Format) func(Match) error {
	if f == FormatJSON {
		enc := json.NewEncoder(w)
		return func(m Match) error { return enc.Encode(m) }
	}
	return func(m Match) error {
		_, err := fmt.Fprintln(w, m.ID)
		return err
	}
}
