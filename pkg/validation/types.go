package validation

import (
	"errors"
	"fmt"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
)

// Reserved constraint names used for errors that do not come from a
// declared constraint.
const (
	NameType           = "type"
	NameRequired       = "required"
	NameValuesEndpoint = "valuesEndpoint"
)

// ErrConstraintNotFound is returned when a named constraint does not exist
// on the field being validated.
var ErrConstraintNotFound = errors.New("constraint not found")

// Kind classifies a validation error.
type Kind string

const (
	KindType       Kind = "type"
	KindRequired   Kind = "required"
	KindConstraint Kind = "constraint"
)

// Error is a single validation failure.
type Error struct {
	ConstraintName string `json:"constraintName"`
	Message        string `json:"message"`
	Value          any    `json:"value,omitempty"`
	Index          *int   `json:"index,omitempty"` // element index for multi-valued fields
	Kind           Kind   `json:"kind"`
}

func (e Error) Error() string {
	if e.Index != nil {
		return fmt.Sprintf("%s[%d]: %s", e.ConstraintName, *e.Index, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.ConstraintName, e.Message)
}

// Result is the outcome of one validation call.
type Result struct {
	IsValid bool    `json:"isValid"`
	Errors  []Error `json:"errors"`
}

// ByConstraint groups errors by constraint name, keeping their order.
func (r *Result) ByConstraint() map[string][]Error {
	out := make(map[string][]Error)
	for _, e := range r.Errors {
		out[e.ConstraintName] = append(out[e.ConstraintName], e)
	}
	return out
}

// Err returns the result as an error, or nil when valid.
func (r *Result) Err() error {
	if r.IsValid {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

func valid() *Result {
	return &Result{IsValid: true, Errors: []Error{}}
}

func invalid(errs ...Error) *Result {
	return &Result{IsValid: len(errs) == 0, Errors: errs}
}

// DomainLookup reports the resolved value domain of a remote endpoint.
// ok is false when the domain has not been fully resolved yet, in which case
// the membership check is skipped.
type DomainLookup interface {
	Domain(endpoint *inputspec.ValuesEndpoint) (values []inputspec.ValueAlias, ok bool)
}
