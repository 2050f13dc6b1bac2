package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddTool registers a tool after checking that the zero value of its output
// type passes the schema the SDK infers for it.
//
// Panics if the check fails.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckOutputSchema validates that the zero value of T passes the JSON schema
// the MCP SDK infers from it. Nil slices marshal as null while the inferred
// schema says "array", so slice fields need omitzero or omitempty.
// json.RawMessage fields are rejected too: they are inferred as arrays of
// integers. Field specs and schemas travel as any for the same reason.
//
// Panics on failure. Does nothing for the untyped "any" output or when schema
// inference itself fails; the SDK reports those.
func CheckOutputSchema[T any](toolName string) {
	elem, ok := outputType[T]()
	if !ok {
		return
	}
	if paths := findRawMessageFields(elem, nil, make(map[reflect.Type]bool)); len(paths) > 0 {
		panic(fmt.Sprintf(
			"AddTool %q: output type %s contains json.RawMessage at %s\n"+
				"  json.RawMessage serializes as transparent JSON but schema generator infers []byte (array of ints)\n"+
				"  Fix: change the field type to any and convert with ToAny:\n"+
				"    output.Field, err = ToAny(field)",
			toolName, elem, strings.Join(paths, ", "),
		))
	}

	data, err := conformsToSchema(elem, reflect.Zero(elem).Interface())
	if err != nil {
		panic(fmt.Sprintf(
			"AddTool %q: zero value of output type %s fails schema validation: %v\n"+
				"  JSON: %s\n"+
				"  Fix: add `omitzero` to nil-defaulting slice fields, or initialize them to empty slices",
			toolName, elem, err, data,
		))
	}
}

// checkOutput reports whether out, as a handler would return it, passes the
// schema inferred for its type.
func checkOutput[T any](out T) error {
	elem, ok := outputType[T]()
	if !ok {
		return nil
	}
	v := reflect.ValueOf(out)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return fmt.Errorf("nil %s output", elem)
		}
		v = v.Elem()
	}
	data, err := conformsToSchema(elem, v.Interface())
	if err != nil {
		return fmt.Errorf("%s output %s: %w", elem, data, err)
	}
	return nil
}

// outputType follows a pointer output type like the SDK does. ok is false
// for the untyped any output.
func outputType[T any]() (reflect.Type, bool) {
	rt := reflect.TypeFor[T]()
	if rt == reflect.TypeFor[any]() {
		return nil, false
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt, true
}

// conformsToSchema marshals value and validates it against the schema
// inferred for elem. Inference and resolution failures are not reported.
func conformsToSchema(elem reflect.Type, value any) ([]byte, error) {
	schema, err := jsonschema.ForType(elem, &jsonschema.ForOptions{})
	if err != nil {
		return nil, nil
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, nil
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return data, nil
	}
	return data, resolved.Validate(&v)
}

// rawMessageType is the reflect.Type for json.RawMessage.
var rawMessageType = reflect.TypeFor[json.RawMessage]()

// findRawMessageFields recursively walks a struct type and returns field paths
// that use json.RawMessage. This catches schema/runtime mismatches where the
// schema generator infers []byte but json.Marshal produces arbitrary JSON.
func findRawMessageFields(t reflect.Type, path []string, visited map[reflect.Type]bool) []string {
	// Unwrap pointer.
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	// Direct match: json.RawMessage itself (e.g. element of []json.RawMessage).
	if t == rawMessageType {
		return []string{strings.Join(path, ".")}
	}

	// Prevent infinite recursion on recursive types.
	if visited[t] {
		return nil
	}
	visited[t] = true
	defer delete(visited, t)

	var found []string

	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}

			ft := f.Type
			// Unwrap pointer for the type check.
			for ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}

			fieldPath := append(path, f.Name)

			if ft == rawMessageType {
				found = append(found, strings.Join(fieldPath, "."))
				continue
			}

			found = append(found, findRawMessageFields(ft, fieldPath, visited)...)
		}

	case reflect.Slice, reflect.Array:
		found = append(found, findRawMessageFields(t.Elem(), append(path, "[]"), visited)...)

	case reflect.Map:
		found = append(found, findRawMessageFields(t.Elem(), append(path, "[value]"), visited)...)
	}

	return found
}
