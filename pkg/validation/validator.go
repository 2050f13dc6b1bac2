// Package validation evaluates field values against the constraints declared
// in a field spec.
//
// Evaluation is deterministic and free of hidden state: the type and
// cardinality check runs first, then the required check, then each
// constraint in declaration order. Inside a constraint the sub-rules run as
// pattern, min/max bound, format, then enum membership.
//
//	v := validation.New(validation.WithFailFast())
//	res, err := v.Validate(field, "ab")
//	if err != nil {
//	    // the field spec itself is malformed
//	}
//	for _, e := range res.Errors {
//	    fmt.Println(e.ConstraintName, e.Message)
//	}
package validation

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
)

// Validator evaluates values against field specs. A Validator is immutable
// once built and safe for concurrent use.
type Validator struct {
	failFast bool
	language language.Tag
	domains  DomainLookup
}

// Option configures a Validator.
type Option func(*Validator)

// WithFailFast stops evaluation after the first constraint that fails.
// By default errors from every constraint are aggregated.
func WithFailFast() Option {
	return func(v *Validator) {
		v.failFast = true
	}
}

// WithLanguage selects the language of default error messages.
func WithLanguage(tag language.Tag) Option {
	return func(v *Validator) {
		v.language = tag
	}
}

// WithDomains supplies resolved remote domains for CLOSED membership checks.
func WithDomains(d DomainLookup) Option {
	return func(v *Validator) {
		v.domains = d
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{language: language.English}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = New()

// Validate checks value against field with the default Validator.
func Validate(field *inputspec.FieldSpec, value any) (*Result, error) {
	return defaultValidator.Validate(field, value)
}

// Validate checks value against every constraint of field.
// The returned error is non-nil only when field itself is malformed.
func (v *Validator) Validate(field *inputspec.FieldSpec, value any) (*Result, error) {
	if err := field.Check(); err != nil {
		return nil, err
	}
	return v.run(field, field.Constraints, value, true), nil
}

// ValidateConstraint checks value against the single named constraint.
// The type and required checks still apply.
func (v *Validator) ValidateConstraint(field *inputspec.FieldSpec, value any, constraintName string) (*Result, error) {
	if err := field.Check(); err != nil {
		return nil, err
	}
	c, ok := field.ConstraintByName(constraintName)
	if !ok {
		return nil, fmt.Errorf("%w: %q on field %q", ErrConstraintNotFound, constraintName, field.DisplayName)
	}
	return v.run(field, []inputspec.Constraint{*c}, value, false), nil
}

func (v *Validator) run(field *inputspec.FieldSpec, constraints []inputspec.Constraint, value any, withDomain bool) *Result {
	ec := &evalContext{
		printer:  newPrinter(v.language),
		dataType: field.DataType,
	}

	// Empty values, including empty collections, are never a type error.
	if !empty(value) {
		if err, ok := v.checkType(ec, field, value); !ok {
			return invalid(err)
		}
	}

	if field.Required && empty(value) {
		return invalid(Error{
			ConstraintName: NameRequired,
			Message:        ec.printer.Sprintf(msgRequired),
			Value:          value,
			Kind:           KindRequired,
		})
	}

	// An explicit empty collection on a multi-valued field is still subject
	// to its size bounds; only an absent value skips the constraints.
	if absent(value) || (!field.ExpectMultipleValues && empty(value)) {
		return valid()
	}

	var elements []any
	if field.ExpectMultipleValues {
		elements, _ = asList(value)
		ec.collection = true
	}

	errs := make([]Error, 0)
	for i := range constraints {
		c := &constraints[i]
		found := v.evaluate(ec, c, value, elements)
		errs = append(errs, found...)
		if v.failFast && len(found) > 0 {
			return invalid(errs...)
		}
	}

	if withDomain {
		errs = append(errs, v.checkDomain(ec, field, value, elements)...)
	}
	return invalid(errs...)
}

func (v *Validator) checkType(ec *evalContext, field *inputspec.FieldSpec, value any) (Error, bool) {
	typeName := strings.ToLower(string(field.DataType))
	typeErr := func(key string) Error {
		return Error{
			ConstraintName: NameType,
			Message:        ec.printer.Sprintf(key, typeName),
			Value:          value,
			Kind:           KindType,
		}
	}

	if !field.ExpectMultipleValues {
		if !matchesType(value, field.DataType) {
			return typeErr(msgType), false
		}
		return Error{}, true
	}

	list, ok := asList(value)
	if !ok {
		return typeErr(msgTypeList), false
	}
	for _, el := range list {
		if !matchesType(el, field.DataType) {
			return typeErr(msgTypeList), false
		}
	}
	return Error{}, true
}

// evaluate runs every sub-rule of one constraint. For multi-valued fields
// bounds apply to the collection and the other rules to each element.
func (v *Validator) evaluate(ec *evalContext, c *inputspec.Constraint, value any, elements []any) []Error {
	var errs []Error
	record := func(f *failure, subject any, index *int) {
		msg := f.message
		if !f.malformed && c.ErrorMessage != "" {
			msg = c.ErrorMessage
		}
		errs = append(errs, Error{
			ConstraintName: c.Name,
			Message:        msg,
			Value:          subject,
			Index:          index,
			Kind:           KindConstraint,
		})
	}

	for _, kind := range compileRules(c) {
		check := ruleTable[kind]
		if !ec.collection || !kind.perElement() {
			if f := check(ec, c, value); f != nil {
				record(f, value, nil)
			}
			continue
		}

		elementCtx := *ec
		elementCtx.collection = false
		for i, el := range elements {
			if f := check(&elementCtx, c, el); f != nil {
				record(f, el, indexPtr(i))
				if f.malformed {
					break
				}
			}
		}
	}
	return errs
}

// checkDomain enforces CLOSED value domains that are already known.
// Remote domains that have not been resolved are skipped.
func (v *Validator) checkDomain(ec *evalContext, field *inputspec.FieldSpec, value any, elements []any) []Error {
	if !field.ClosedDomain() {
		return nil
	}

	endpoint := field.ValuesEndpoint
	domain := endpoint.Values
	if endpoint.Protocol.Remote() {
		if v.domains == nil {
			return nil
		}
		var ok bool
		if domain, ok = v.domains.Domain(endpoint); !ok {
			return nil
		}
	}

	var errs []Error
	fail := func(subject any, index *int) {
		errs = append(errs, Error{
			ConstraintName: NameValuesEndpoint,
			Message:        ec.printer.Sprintf(msgDomain),
			Value:          subject,
			Index:          index,
			Kind:           KindConstraint,
		})
	}

	if !field.ExpectMultipleValues {
		if !memberOf(value, domain) {
			fail(value, nil)
		}
		return errs
	}
	for i, el := range elements {
		if !memberOf(el, domain) {
			fail(el, indexPtr(i))
		}
	}
	return errs
}

func indexPtr(i int) *int {
	return &i
}
