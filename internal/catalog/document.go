package catalog

import (
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/usestring/inputspec-mcp/internal/schema"
	"github.com/usestring/inputspec-mcp/pkg/inputspec"
	"github.com/usestring/inputspec-mcp/pkg/legacy"
)

// parseDocument decodes, upgrades, schema-validates and checks one document.
// A document holding a single field (no "fields" key) is accepted too.
func parseDocument(v *schema.Validator, source string, data []byte) ([]*Entry, error) {
	raw, err := decodeGeneric(source, data)
	if err != nil {
		return nil, err
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object at the document root, got %T", raw)
	}
	if _, hasFields := doc["fields"]; !hasFields {
		if _, isField := doc["displayName"]; isField {
			doc = map[string]any{
				"protocolVersion": inputspec.CurrentProtocolVersion,
				"fields":          []any{doc},
			}
		}
	}

	report, err := legacy.UpgradeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("upgrading: %w", err)
	}

	if result := v.ValidateValue(doc); !result.Valid {
		return nil, result.Err()
	}

	var spec inputspec.InputSpec
	if err := legacy.Convert(doc, &spec); err != nil {
		return nil, err
	}
	if err := spec.Check(); err != nil {
		return nil, err
	}
	return entriesFor(source, &spec, report.Notes), nil
}

// decodeGeneric decodes JSON or YAML into generic values with JSON number
// semantics (float64).
func decodeGeneric(source string, data []byte) (any, error) {
	var raw any
	switch strings.ToLower(path.Ext(source)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
		// Round-trip through JSON so numbers and maps match the JSON path.
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("normalizing yaml: %w", err)
		}
		raw = nil
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("normalizing yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	}
	return raw, nil
}

// entriesFor keys each field as "<stem>.<slug>", falling back to the field
// index when the display name is empty or repeated.
func entriesFor(source string, spec *inputspec.InputSpec, notes []string) []*Entry {
	stem := strings.TrimSuffix(source, path.Ext(source))

	used := make(map[string]bool, len(spec.Fields))
	out := make([]*Entry, 0, len(spec.Fields))
	for i := range spec.Fields {
		field := spec.Fields[i]
		name := slug(field.DisplayName)
		if name == "" || used[name] {
			name = strconv.Itoa(i)
		}
		used[name] = true
		out = append(out, &Entry{
			Key:          stem + "." + name,
			Source:       source,
			Field:        &field,
			UpgradeNotes: notes,
		})
	}
	return out
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
