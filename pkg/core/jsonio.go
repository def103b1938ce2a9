package core

import (
	"encoding/json"
	"io"
)

// MarshalResults pretty-prints windows as JSON for humans or pipelines.
func MarshalResults(w io.Writer, windows []WindowResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(windows)
}

// UnmarshalResults decodes windows JSON, useful for ingestion tests.
func UnmarshalResults(r io.Reader) ([]WindowResult, error) {
	var ws []WindowResult
	if err := json.NewDecoder(r).Decode(&ws); err != nil {
		return nil, err
	}
	return ws, nil
}
