package inputspec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validField() *FieldSpec {
	return &FieldSpec{
		DisplayName: "Email",
		DataType:    DataTypeString,
		Required:    true,
		Constraints: []Constraint{
			{Name: "format", Format: "email"},
			{Name: "length", Max: 120},
		},
	}
}

func TestFieldSpecCheck(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *FieldSpec)
		wantErr string
	}{
		{name: "valid", mutate: func(f *FieldSpec) {}},
		{name: "missing display name", mutate: func(f *FieldSpec) { f.DisplayName = "" }, wantErr: "DisplayName"},
		{name: "unknown data type", mutate: func(f *FieldSpec) { f.DataType = "TEXT" }, wantErr: "DataType"},
		{name: "empty constraint name", mutate: func(f *FieldSpec) { f.Constraints[1].Name = " " }, wantErr: "empty name"},
		{name: "duplicate constraint name", mutate: func(f *FieldSpec) { f.Constraints[1].Name = "format" }, wantErr: "duplicate"},
		{
			name: "inline with uri",
			mutate: func(f *FieldSpec) {
				f.ValuesEndpoint = &ValuesEndpoint{Protocol: ProtocolInline, URI: "https://x", Values: []ValueAlias{}}
			},
			wantErr: "must not declare a uri",
		},
		{
			name:    "inline without values",
			mutate:  func(f *FieldSpec) { f.ValuesEndpoint = &ValuesEndpoint{Protocol: ProtocolInline} },
			wantErr: "requires values",
		},
		{
			name:    "remote without uri",
			mutate:  func(f *FieldSpec) { f.ValuesEndpoint = &ValuesEndpoint{Protocol: ProtocolHTTPS} },
			wantErr: "requires a uri",
		},
		{
			name: "remote with values",
			mutate: func(f *FieldSpec) {
				f.ValuesEndpoint = &ValuesEndpoint{Protocol: ProtocolHTTP, URI: "http://x", Values: []ValueAlias{{Value: "a", Label: "A"}}}
			},
			wantErr: "must not embed values",
		},
		{
			name: "bad method",
			mutate: func(f *FieldSpec) {
				f.ValuesEndpoint = &ValuesEndpoint{Protocol: ProtocolHTTP, URI: "http://x", Method: "PUT"}
			},
			wantErr: "Method",
		},
		{
			name: "negative min search length",
			mutate: func(f *FieldSpec) {
				f.ValuesEndpoint = &ValuesEndpoint{Protocol: ProtocolHTTP, URI: "http://x", MinSearchLength: -1}
			},
			wantErr: "MinSearchLength",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validField()
			tt.mutate(f)
			err := f.Check()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidFieldSpec)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInputSpecCheck_NamesField(t *testing.T) {
	spec := &InputSpec{Fields: []FieldSpec{*validField(), {DisplayName: "Age", DataType: "AGE"}}}
	err := spec.Check()
	require.ErrorIs(t, err, ErrInvalidFieldSpec)
	assert.Contains(t, err.Error(), "field 1 (Age)")
}

func TestNilChecks(t *testing.T) {
	var f *FieldSpec
	require.ErrorIs(t, f.Check(), ErrInvalidFieldSpec)
	var e *ValuesEndpoint
	require.ErrorIs(t, e.Check(), ErrInvalidFieldSpec)
}

func TestEffectiveDefaults(t *testing.T) {
	ep := &ValuesEndpoint{Protocol: ProtocolHTTPS, URI: "https://x", Method: "post"}
	assert.Equal(t, MethodPost, ep.EffectiveMethod())
	assert.Equal(t, ModeClosed, ep.EffectiveMode())
	assert.Equal(t, PaginationNone, ep.EffectivePagination())
	assert.Equal(t, CacheNone, ep.EffectiveCacheStrategy())

	assert.Equal(t, MethodGet, (&ValuesEndpoint{}).EffectiveMethod())
}

func TestConstraintByNameAndClosedDomain(t *testing.T) {
	f := validField()
	c, ok := f.ConstraintByName("length")
	require.True(t, ok)
	assert.Equal(t, 120, c.Max)
	_, ok = f.ConstraintByName("missing")
	assert.False(t, ok)

	assert.False(t, f.ClosedDomain())
	f.ValuesEndpoint = &ValuesEndpoint{Protocol: ProtocolInline, Values: []ValueAlias{}}
	assert.True(t, f.ClosedDomain())
	f.ValuesEndpoint.Mode = ModeSuggestions
	assert.False(t, f.ClosedDomain())
}

func TestValueAliasUnmarshal_LabelFallback(t *testing.T) {
	var values []ValueAlias
	require.NoError(t, json.Unmarshal([]byte(`[{"value":1,"label":"One"},{"value":2},{"value":true,"label":""}]`), &values))
	require.Len(t, values, 3)
	assert.Equal(t, "One", values[0].Label)
	assert.Equal(t, "2", values[1].Label)
	assert.Equal(t, "true", values[2].Label)
}
