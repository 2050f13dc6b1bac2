// Package legacy upgrades older field documents to the current protocol
// shape before they are decoded into inputspec types.
//
// It works on generic decoded documents (map[string]any from JSON or YAML)
// and rewrites:
//
//   - mode aliases STRICT and LENIENT to CLOSED and SUGGESTIONS
//   - valuesEndpoint.items to valuesEndpoint.values
//   - a valuesEndpoint declared on a constraint, hoisted to the field
//   - typed atomic constraints ({name, type, params}) folded into composite
//     constraints keyed by name
package legacy

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
)

// ErrUnsupported is returned for legacy constructs with no current
// equivalent.
var ErrUnsupported = errors.New("unsupported legacy construct")

// Report lists the rewrites applied to a document.
type Report struct {
	Notes []string `json:"notes,omitempty"`
}

// Changed reports whether anything was rewritten.
func (r *Report) Changed() bool {
	return r != nil && len(r.Notes) > 0
}

func (r *Report) notef(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

var modeAliases = map[string]inputspec.Mode{
	"STRICT":  inputspec.ModeClosed,
	"LENIENT": inputspec.ModeSuggestions,
}

// UpgradeDocument rewrites an InputSpec document in place. Documents without
// a protocolVersion are stamped with the current one.
func UpgradeDocument(doc map[string]any) (*Report, error) {
	report := &Report{}

	if v, _ := doc["protocolVersion"].(string); v != inputspec.CurrentProtocolVersion {
		if v == "" {
			report.notef("protocolVersion set to %s", inputspec.CurrentProtocolVersion)
		} else {
			report.notef("protocolVersion %s upgraded to %s", v, inputspec.CurrentProtocolVersion)
		}
		doc["protocolVersion"] = inputspec.CurrentProtocolVersion
	}

	fields, _ := doc["fields"].([]any)
	for i, raw := range fields {
		field, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("fields[%d]: expected an object, got %T", i, raw)
		}
		if err := upgradeField(field, fmt.Sprintf("fields[%d]", i), report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// UpgradeField rewrites a single field document in place.
func UpgradeField(field map[string]any) (*Report, error) {
	report := &Report{}
	if err := upgradeField(field, "field", report); err != nil {
		return nil, err
	}
	return report, nil
}

// DecodeField decodes a JSON field document, upgrading legacy shapes first.
func DecodeField(data []byte) (*inputspec.FieldSpec, *Report, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decoding field: %w", err)
	}
	report, err := UpgradeField(raw)
	if err != nil {
		return nil, nil, err
	}
	var field inputspec.FieldSpec
	if err := Convert(raw, &field); err != nil {
		return nil, nil, err
	}
	return &field, report, nil
}

// Convert re-encodes an upgraded generic document into a typed value.
func Convert(doc any, out any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding upgraded document: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding upgraded document: %w", err)
	}
	return nil
}

func upgradeField(field map[string]any, path string, report *Report) error {
	if ep, ok := field["valuesEndpoint"].(map[string]any); ok {
		if err := upgradeEndpoint(ep, path+".valuesEndpoint", report); err != nil {
			return err
		}
	}

	rawConstraints, _ := field["constraints"].([]any)
	if rawConstraints == nil {
		return nil
	}

	folded := make([]any, 0, len(rawConstraints))
	byName := make(map[string]map[string]any)

	for i, raw := range rawConstraints {
		c, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%s.constraints[%d]: expected an object, got %T", path, i, raw)
		}
		cpath := fmt.Sprintf("%s.constraints[%d]", path, i)

		if ep, ok := c["valuesEndpoint"].(map[string]any); ok {
			delete(c, "valuesEndpoint")
			if _, exists := field["valuesEndpoint"]; exists {
				report.notef("%s: valuesEndpoint dropped, field already declares one", cpath)
			} else {
				if err := upgradeEndpoint(ep, path+".valuesEndpoint", report); err != nil {
					return err
				}
				field["valuesEndpoint"] = ep
				report.notef("%s: valuesEndpoint hoisted to the field", cpath)
			}
		}

		typ, typed := c["type"].(string)
		if !typed {
			folded = append(folded, c)
			continue
		}

		name, _ := c["name"].(string)
		target, seen := byName[name]
		if !seen || name == "" {
			target = map[string]any{"name": name}
			folded = append(folded, target)
			if name != "" {
				byName[name] = target
			}
		}
		if err := foldTyped(target, typ, c["params"], cpath, report); err != nil {
			return err
		}
		for _, k := range []string{"errorMessage", "description"} {
			if v, ok := c[k].(string); ok && v != "" {
				if _, set := target[k]; !set {
					target[k] = v
				}
			}
		}
	}

	field["constraints"] = folded
	return nil
}

// foldTyped merges one typed atomic constraint into its composite target.
func foldTyped(target map[string]any, typ string, params any, path string, report *Report) error {
	set := func(key string, v any) {
		if v == nil {
			return
		}
		if _, exists := target[key]; exists {
			report.notef("%s: %s already set on %q, keeping the first", path, key, target["name"])
			return
		}
		target[key] = v
	}

	switch strings.ToLower(typ) {
	case "pattern":
		set("pattern", param(params, "regex"))
	case "minlength", "minvalue", "mindate":
		set("min", param(params, "value"))
	case "maxlength", "maxvalue", "maxdate":
		set("max", param(params, "value"))
	case "range":
		m, ok := params.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s: range params must be an object", ErrUnsupported, path)
		}
		set("min", m["min"])
		set("max", m["max"])
		if _, ok := m["step"]; ok {
			report.notef("%s: range step ignored", path)
		}
	case "format":
		set("format", param(params, "value"))
	default:
		report.notef("%s: %s constraint %q kept without rules", path, typ, target["name"])
		return nil
	}
	report.notef("%s: %s constraint folded into %q", path, typ, target["name"])
	return nil
}

// param reads key from an object params value, or returns a scalar params
// value as is.
func param(params any, key string) any {
	if m, ok := params.(map[string]any); ok {
		return m[key]
	}
	return params
}

func upgradeEndpoint(ep map[string]any, path string, report *Report) error {
	if p, ok := ep["protocol"].(string); ok {
		upper := strings.ToUpper(p)
		if upper == "GRPC" {
			return fmt.Errorf("%w: %s: protocol GRPC", ErrUnsupported, path)
		}
		if upper != p {
			ep["protocol"] = upper
		}
	}

	if m, ok := ep["mode"].(string); ok {
		upper := strings.ToUpper(m)
		if alias, ok := modeAliases[upper]; ok {
			ep["mode"] = string(alias)
			report.notef("%s: mode %s renamed to %s", path, m, alias)
		} else if upper != m {
			ep["mode"] = upper
		}
	}

	if method, ok := ep["method"].(string); ok {
		ep["method"] = strings.ToUpper(method)
	}

	if items, ok := ep["items"]; ok {
		delete(ep, "items")
		if _, exists := ep["values"]; exists {
			report.notef("%s: items dropped, values already present", path)
		} else {
			ep["values"] = items
			report.notef("%s: items renamed to values", path)
		}
	}

	if rm, ok := ep["responseMapping"].(map[string]any); ok {
		if _, ok := rm["pageSizeField"]; ok {
			delete(rm, "pageSizeField")
			report.notef("%s: responseMapping.pageSizeField ignored", path)
		}
	}
	return nil
}
