package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	formatYAML = "yaml"
	formatJSON = "json"
)

func validateFormat(format string) error {
	switch format {
	case formatYAML, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, formatYAML, formatJSON)
	}
}

// render writes v to w in the configured format.
func (a *app) render(w io.Writer, v any) error {
	switch format := a.v.GetString(flagOutput); format {
	case formatJSON:
		return writeJSON(w, v)
	case formatYAML:
		return writeYAML(w, v)
	default:
		return validateFormat(format)
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// writeJSON goes through the YAML representation so both formats use the
// same field names.
func writeJSON(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}

	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("decoding yaml: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
