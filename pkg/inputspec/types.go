package inputspec

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CurrentProtocolVersion is the protocol version written by this package.
const CurrentProtocolVersion = "2.0"

// DataType is the scalar type of a field value.
type DataType string

const (
	DataTypeString  DataType = "STRING"
	DataTypeNumber  DataType = "NUMBER"
	DataTypeBoolean DataType = "BOOLEAN"
	DataTypeDate    DataType = "DATE"
)

// Protocol identifies where a value domain comes from.
type Protocol string

const (
	ProtocolHTTP   Protocol = "HTTP"
	ProtocolHTTPS  Protocol = "HTTPS"
	ProtocolInline Protocol = "INLINE"
)

// Remote reports whether the protocol requires a network fetch.
func (p Protocol) Remote() bool {
	return p == ProtocolHTTP || p == ProtocolHTTPS
}

// Mode controls whether a value domain is enforced.
type Mode string

const (
	ModeClosed      Mode = "CLOSED"
	ModeSuggestions Mode = "SUGGESTIONS"
)

// PaginationStrategy describes how a remote endpoint pages its results.
type PaginationStrategy string

const (
	PaginationNone       PaginationStrategy = "NONE"
	PaginationPageNumber PaginationStrategy = "PAGE_NUMBER"
)

// CacheStrategy maps to a cache TTL in the resolver.
type CacheStrategy string

const (
	CacheNone      CacheStrategy = "NONE"
	CacheSession   CacheStrategy = "SESSION"
	CacheShortTerm CacheStrategy = "SHORT_TERM"
	CacheLongTerm  CacheStrategy = "LONG_TERM"
)

// HTTP methods accepted by a values endpoint.
const (
	MethodGet  = "GET"
	MethodPost = "POST"
)

// InputSpec is a versioned document holding several field specs.
type InputSpec struct {
	ProtocolVersion string      `json:"protocolVersion" yaml:"protocolVersion" jsonschema:"description=Protocol version of the document"`
	Fields          []FieldSpec `json:"fields" yaml:"fields" validate:"dive"`
}

// FieldSpec describes one input field.
type FieldSpec struct {
	DisplayName          string          `json:"displayName" yaml:"displayName" validate:"required"`
	Description          string          `json:"description,omitempty" yaml:"description,omitempty"`
	DataType             DataType        `json:"dataType" yaml:"dataType" validate:"required,oneof=STRING NUMBER BOOLEAN DATE" jsonschema:"enum=STRING,enum=NUMBER,enum=BOOLEAN,enum=DATE"`
	ExpectMultipleValues bool            `json:"expectMultipleValues" yaml:"expectMultipleValues"`
	Required             bool            `json:"required" yaml:"required"`
	Constraints          []Constraint    `json:"constraints" yaml:"constraints" validate:"dive"`
	ValuesEndpoint       *ValuesEndpoint `json:"valuesEndpoint,omitempty" yaml:"valuesEndpoint,omitempty"`
	FormatHint           string          `json:"formatHint,omitempty" yaml:"formatHint,omitempty"`
}

// Constraint is one named validation rule. Its name is the error key.
type Constraint struct {
	Name         string       `json:"name" yaml:"name" validate:"required"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	Pattern      string       `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min          any          `json:"min,omitempty" yaml:"min,omitempty" jsonschema:"oneof_type=number;string"`
	Max          any          `json:"max,omitempty" yaml:"max,omitempty" jsonschema:"oneof_type=number;string"`
	Format       string       `json:"format,omitempty" yaml:"format,omitempty"`
	EnumValues   []ValueAlias `json:"enumValues,omitempty" yaml:"enumValues,omitempty"`
}

// ValuesEndpoint describes how to obtain the value domain of a field.
type ValuesEndpoint struct {
	Protocol           Protocol           `json:"protocol" yaml:"protocol" validate:"required,oneof=HTTP HTTPS INLINE" jsonschema:"enum=HTTP,enum=HTTPS,enum=INLINE"`
	URI                string             `json:"uri,omitempty" yaml:"uri,omitempty"`
	Method             string             `json:"method,omitempty" yaml:"method,omitempty" validate:"omitempty,oneof=GET POST"`
	Mode               Mode               `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,oneof=CLOSED SUGGESTIONS"`
	SearchField        string             `json:"searchField,omitempty" yaml:"searchField,omitempty"`
	PaginationStrategy PaginationStrategy `json:"paginationStrategy,omitempty" yaml:"paginationStrategy,omitempty" validate:"omitempty,oneof=NONE PAGE_NUMBER"`
	RequestParams      *RequestParams     `json:"requestParams,omitempty" yaml:"requestParams,omitempty"`
	ResponseMapping    *ResponseMapping   `json:"responseMapping,omitempty" yaml:"responseMapping,omitempty"`
	DebounceMs         int                `json:"debounceMs,omitempty" yaml:"debounceMs,omitempty" validate:"gte=0"`
	MinSearchLength    int                `json:"minSearchLength,omitempty" yaml:"minSearchLength,omitempty" validate:"gte=0"`
	CacheStrategy      CacheStrategy      `json:"cacheStrategy,omitempty" yaml:"cacheStrategy,omitempty" validate:"omitempty,oneof=NONE SESSION SHORT_TERM LONG_TERM"`
	Values             []ValueAlias       `json:"values,omitempty" yaml:"values,omitempty"`
}

// RequestParams names the query parameters a remote endpoint understands.
type RequestParams struct {
	PageParam    string            `json:"pageParam,omitempty" yaml:"pageParam,omitempty"`
	LimitParam   string            `json:"limitParam,omitempty" yaml:"limitParam,omitempty"`
	SearchParam  string            `json:"searchParam,omitempty" yaml:"searchParam,omitempty"`
	DefaultLimit int               `json:"defaultLimit,omitempty" yaml:"defaultLimit,omitempty" validate:"gte=0"`
	SearchParams map[string]string `json:"searchParams,omitempty" yaml:"searchParams,omitempty"`
}

// ResponseMapping locates results inside a raw response body.
// Field names may be dotted paths ("meta.total").
type ResponseMapping struct {
	DataField    string `json:"dataField,omitempty" yaml:"dataField,omitempty"`
	TotalField   string `json:"totalField,omitempty" yaml:"totalField,omitempty"`
	HasNextField string `json:"hasNextField,omitempty" yaml:"hasNextField,omitempty"`
	PageField    string `json:"pageField,omitempty" yaml:"pageField,omitempty"`
	ValueField   string `json:"valueField,omitempty" yaml:"valueField,omitempty"`
	LabelField   string `json:"labelField,omitempty" yaml:"labelField,omitempty"`
}

// ValueAlias pairs a submitted value with its display label.
type ValueAlias struct {
	Value any    `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// UnmarshalJSON decodes a value alias, falling back to the printed value
// when the label is missing.
func (v *ValueAlias) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value any    `json:"value"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.Value = raw.Value
	v.Label = raw.Label
	if v.Label == "" && v.Value != nil {
		v.Label = fmt.Sprint(v.Value)
	}
	return nil
}

// EffectiveMethod returns the HTTP method, defaulting to GET.
func (e *ValuesEndpoint) EffectiveMethod() string {
	if e.Method == "" {
		return MethodGet
	}
	return strings.ToUpper(e.Method)
}

// EffectiveMode returns the domain mode, defaulting to CLOSED.
func (e *ValuesEndpoint) EffectiveMode() Mode {
	if e.Mode == "" {
		return ModeClosed
	}
	return e.Mode
}

// EffectivePagination returns the pagination strategy, defaulting to NONE.
func (e *ValuesEndpoint) EffectivePagination() PaginationStrategy {
	if e.PaginationStrategy == "" {
		return PaginationNone
	}
	return e.PaginationStrategy
}

// EffectiveCacheStrategy returns the cache strategy, defaulting to NONE.
func (e *ValuesEndpoint) EffectiveCacheStrategy() CacheStrategy {
	if e.CacheStrategy == "" {
		return CacheNone
	}
	return e.CacheStrategy
}

// ConstraintByName returns the constraint with the given name.
func (f *FieldSpec) ConstraintByName(name string) (*Constraint, bool) {
	for i := range f.Constraints {
		if f.Constraints[i].Name == name {
			return &f.Constraints[i], true
		}
	}
	return nil, false
}

// ClosedDomain reports whether the field restricts values to its endpoint domain.
func (f *FieldSpec) ClosedDomain() bool {
	return f.ValuesEndpoint != nil && f.ValuesEndpoint.EffectiveMode() == ModeClosed
}
