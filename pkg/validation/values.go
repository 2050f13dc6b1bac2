package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
)

// dateLayouts are tried in order when parsing DATE values and bounds.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// absent reports whether v carries no value at all.
func absent(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok && s == "" {
		return true
	}
	rv := reflect.ValueOf(v)
	return (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil()
}

// empty reports whether v is absent or an empty collection.
func empty(v any) bool {
	if absent(v) {
		return true
	}
	if list, ok := asList(v); ok {
		return len(list) == 0
	}
	return false
}

// asList converts slices and arrays (except byte slices) to []any.
func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []byte, json.RawMessage:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func matchesType(v any, dt inputspec.DataType) bool {
	switch dt {
	case inputspec.DataTypeString:
		_, ok := v.(string)
		return ok
	case inputspec.DataTypeNumber:
		_, ok := toFloat(v)
		return ok
	case inputspec.DataTypeBoolean:
		_, ok := v.(bool)
		return ok
	case inputspec.DataTypeDate:
		_, err := parseDate(v)
		return err == nil
	}
	return false
}

// toFloat converts any Go numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), !math.IsNaN(float64(n))
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func parseDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t != nil {
			return *t, nil
		}
	case string:
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, t); err == nil {
				return d, nil
			}
		}
		return time.Time{}, fmt.Errorf("unsupported date %q", t)
	}
	return time.Time{}, fmt.Errorf("unsupported date type %T", v)
}

// sameValue compares two scalars the way JSON sees them: numbers by value,
// dates by instant, everything else by equality of the printed form.
func sameValue(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if ta, ok := a.(time.Time); ok {
		tb, err := parseDate(b)
		return err == nil && ta.Equal(tb)
	}
	switch a.(type) {
	case string, bool:
		return a == b
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// formatNumber prints a bound without a trailing ".0".
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
