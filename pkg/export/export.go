// Package export renders store entries as yaml, json or dotenv text.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/envfile/pkg/envfile"
)

// Format is an output format
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatEnv  Format = "env"
)

// ParseFormat parses a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatYAML, FormatJSON, FormatEnv:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "dotenv":
		return FormatEnv, nil
	default:
		return "", fmt.Errorf("unknown format %q (must be yaml, json or env)", name)
	}
}

// Write renders entries to w. YAML and env output keep the order of entries;
// JSON output is an object with sorted keys. When entries hold duplicate keys
// only the first occurrence is written.
func Write(w io.Writer, entries []envfile.Entry, format Format) error {
	entries = envfile.FirstOccurrences(entries)

	switch format {
	case FormatYAML:
		return writeYAML(w, entries)
	case FormatJSON:
		return writeJSON(w, entries)
	case FormatEnv:
		return writeEnv(w, entries)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// WriteFile renders entries to the file at path
func WriteFile(path string, entries []envfile.Entry, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Write(f, entries, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeYAML(w io.Writer, entries []envfile.Entry) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value},
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func writeJSON(w io.Writer, entries []envfile.Entry) error {
	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.Key] = e.Value
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(values); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func writeEnv(w io.Writer, entries []envfile.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s=%s\n", e.Key, quoteValue(e.Value)); err != nil {
			return err
		}
	}
	return nil
}

// quoteValue wraps value in double quotes when a loader would otherwise trim
// or truncate it. The format has no escapes, so a value holding both '"' and
// '#' may still not load back unchanged, and a value holding a literal
// ${NAME} is expanded again when the output is loaded.
func quoteValue(value string) string {
	if value == "" {
		return value
	}
	if strings.ContainsAny(value, "#\"") ||
		strings.TrimSpace(value) != value {
		return `"` + value + `"`
	}
	return value
}
