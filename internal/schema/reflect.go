// Package schema reflects JSON Schemas from the field data model and
// validates documents against them.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
)

var (
	documentOnce sync.Once
	documentJSON []byte
	documentErr  error

	fieldOnce sync.Once
	fieldJSON []byte
	fieldErr  error
)

func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
}

// DocumentSchema returns the JSON Schema of an InputSpec document.
func DocumentSchema() *jsonschema.Schema {
	return reflector().Reflect(new(inputspec.InputSpec))
}

// FieldSpecSchema returns the JSON Schema of a single FieldSpec document.
func FieldSpecSchema() *jsonschema.Schema {
	return reflector().Reflect(new(inputspec.FieldSpec))
}

func documentSchemaJSON() ([]byte, error) {
	documentOnce.Do(func() {
		documentJSON, documentErr = json.Marshal(DocumentSchema())
	})
	return documentJSON, documentErr
}

func fieldSchemaJSON() ([]byte, error) {
	fieldOnce.Do(func() {
		fieldJSON, fieldErr = json.Marshal(FieldSpecSchema())
	})
	return fieldJSON, fieldErr
}

// ValueSchema describes the values a field accepts as a JSON Schema, so
// clients can validate input before submitting it. Rules with no JSON Schema
// equivalent (DATE bounds, for example) are left to the validator.
func ValueSchema(field *inputspec.FieldSpec) *jsonschema.Schema {
	item := &jsonschema.Schema{
		Title:       field.DisplayName,
		Description: field.Description,
	}
	switch field.DataType {
	case inputspec.DataTypeString:
		item.Type = "string"
	case inputspec.DataTypeNumber:
		item.Type = "number"
	case inputspec.DataTypeBoolean:
		item.Type = "boolean"
	case inputspec.DataTypeDate:
		item.Type = "string"
		item.Format = "date"
	}

	root := item
	if field.ExpectMultipleValues {
		root = &jsonschema.Schema{
			Type:        "array",
			Title:       field.DisplayName,
			Description: field.Description,
			Items:       item,
		}
		item.Title, item.Description = "", ""
	}
	root.Version = jsonschema.Version

	for i := range field.Constraints {
		applyConstraint(root, item, field, &field.Constraints[i])
	}

	if ep := field.ValuesEndpoint; ep != nil && ep.Protocol == inputspec.ProtocolInline && ep.EffectiveMode() == inputspec.ModeClosed {
		item.Enum = aliasValues(ep.Values)
	}
	return root
}

func applyConstraint(root, item *jsonschema.Schema, field *inputspec.FieldSpec, c *inputspec.Constraint) {
	if c.Pattern != "" && field.DataType == inputspec.DataTypeString {
		item.Pattern = fmt.Sprintf("^(?:%s)$", c.Pattern)
	}
	if c.Format != "" && item.Format == "" {
		item.Format = c.Format
	}
	if len(c.EnumValues) > 0 {
		item.Enum = aliasValues(c.EnumValues)
	}

	lo, loOK := wholeNumber(c.Min)
	hi, hiOK := wholeNumber(c.Max)
	switch {
	case field.ExpectMultipleValues:
		if loOK {
			root.MinItems = &lo
		}
		if hiOK {
			root.MaxItems = &hi
		}
	case field.DataType == inputspec.DataTypeString:
		if loOK {
			item.MinLength = &lo
		}
		if hiOK {
			item.MaxLength = &hi
		}
	case field.DataType == inputspec.DataTypeNumber:
		if n, ok := number(c.Min); ok {
			item.Minimum = n
		}
		if n, ok := number(c.Max); ok {
			item.Maximum = n
		}
	}
}

func aliasValues(values []inputspec.ValueAlias) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v.Value)
	}
	return out
}

func wholeNumber(v any) (uint64, bool) {
	switch n := v.(type) {
	case int:
		if n >= 0 {
			return uint64(n), true
		}
	case int64:
		if n >= 0 {
			return uint64(n), true
		}
	case float64:
		if n >= 0 && n == float64(uint64(n)) {
			return uint64(n), true
		}
	}
	return 0, false
}

func number(v any) (json.Number, bool) {
	switch n := v.(type) {
	case int, int64, float64:
		return json.Number(fmt.Sprint(n)), true
	case json.Number:
		return n, true
	}
	return "", false
}
