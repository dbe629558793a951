package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/spacekeeper-backend/internal/client/view"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func validOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (valid: text, json, yaml)", format)
}

// render writes data as JSON or YAML, or calls text for the terminal view.
func render(w io.Writer, format string, data any, text func(st view.Styles) string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case outputYAML:
		doc, err := jsonShape(data)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		out := text(view.DefaultStyles())
		if out == "" {
			return nil
		}
		_, err := fmt.Fprintln(w, out)
		return err
	}
}

// jsonShape round-trips data through JSON so YAML output uses the same keys
// and value encodings as the API.
func jsonShape(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc, nil
}
