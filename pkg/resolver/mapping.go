package resolver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/usestring/inputspec-mcp/internal/query"
	"github.com/usestring/inputspec-mcp/pkg/inputspec"
)

const (
	defaultValueField = "value"
	defaultLabelField = "label"
)

// mapper normalizes raw response documents into a Result.
type mapper struct {
	engine   *query.Engine
	sanitize func(string) string
}

// normalize extracts values, total, hasNext and page from doc. Missing or
// mistyped mapped fields fall back to empty/nil/false.
func (m *mapper) normalize(doc any, rm *inputspec.ResponseMapping) *Result {
	if rm == nil {
		rm = &inputspec.ResponseMapping{}
	}

	res := &Result{Values: []inputspec.ValueAlias{}}

	if data, ok := m.lookup(doc, rm.DataField); ok {
		items, isList := data.([]any)
		if !isList {
			slog.Debug("values response data is not an array",
				slog.String("data_field", rm.DataField),
				slog.String("type", fmt.Sprintf("%T", data)),
			)
		}
		for _, item := range items {
			if alias, ok := m.toAlias(item, rm); ok {
				res.Values = append(res.Values, alias)
			}
		}
	}

	if rm.TotalField != "" {
		if v, ok := m.lookup(doc, rm.TotalField); ok {
			if n, ok := toInt(v); ok {
				res.Total = &n
			}
		}
	}
	if rm.HasNextField != "" {
		if v, ok := m.lookup(doc, rm.HasNextField); ok {
			res.HasNext = toBool(v)
		}
	}
	if rm.PageField != "" {
		if v, ok := m.lookup(doc, rm.PageField); ok {
			if n, ok := toInt(v); ok {
				res.Page = &n
			}
		}
	}
	return res
}

func (m *mapper) lookup(doc any, location string) (any, bool) {
	v, found, err := m.engine.Lookup(doc, location)
	if err != nil {
		slog.Debug("response mapping lookup failed",
			slog.String("location", location),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	return v, found
}

func (m *mapper) toAlias(item any, rm *inputspec.ResponseMapping) (inputspec.ValueAlias, bool) {
	switch v := item.(type) {
	case nil, []any:
		return inputspec.ValueAlias{}, false
	case map[string]any:
		valueField := rm.ValueField
		if valueField == "" {
			valueField = defaultValueField
		}
		labelField := rm.LabelField
		if labelField == "" {
			labelField = defaultLabelField
		}

		value, ok := m.lookup(v, valueField)
		if !ok {
			return inputspec.ValueAlias{}, false
		}
		label := ""
		if l, ok := m.lookup(v, labelField); ok {
			label = printValue(l)
		}
		return m.alias(value, label), true
	default:
		return m.alias(v, ""), true
	}
}

func (m *mapper) alias(value any, label string) inputspec.ValueAlias {
	if label != "" && m.sanitize != nil {
		label = strings.TrimSpace(m.sanitize(label))
	}
	if label == "" {
		label = printValue(value)
	}
	return inputspec.ValueAlias{Value: value, Label: label}
}

func printValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return 0, false
		}
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	case float64:
		return t != 0
	}
	return false
}
