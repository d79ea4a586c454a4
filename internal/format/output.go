// Package format renders CLI envelopes as JSON or EDN.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	JSON = "json"
	EDN  = "edn"
)

// Formats lists the accepted --format values.
func Formats() []string { return []string{JSON, EDN} }

// Normalize maps user input to a known format name. Empty means JSON.
func Normalize(name string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(name)); f {
	case "", JSON:
		return JSON, nil
	case EDN:
		return EDN, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected one of %s)", name, strings.Join(Formats(), ", "))
	}
}

// Write writes v followed by a newline in the named format.
func Write(w io.Writer, v any, format string, pretty bool) error {
	f, err := Normalize(format)
	if err != nil {
		return err
	}
	if f == EDN {
		return WriteEDN(w, v, pretty)
	}
	return WriteJSON(w, v, pretty)
}

// WriteJSON writes strict JSON. HTML characters are left unescaped so URLs
// in card payloads stay readable.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
