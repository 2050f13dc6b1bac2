package inputspec

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidFieldSpec is returned when a field spec is structurally invalid.
var ErrInvalidFieldSpec = errors.New("invalid field spec")

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func getStructValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValidator
}

// Check verifies the structural invariants of a field spec: mandatory fields,
// known enum values, unique constraint names and the endpoint source rule.
// A failure is a programmer error, not a validation outcome.
func (f *FieldSpec) Check() error {
	if f == nil {
		return fmt.Errorf("%w: nil field spec", ErrInvalidFieldSpec)
	}
	if err := getStructValidator().Struct(f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFieldSpec, describeStructErrors(err))
	}

	seen := make(map[string]bool, len(f.Constraints))
	for i, c := range f.Constraints {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("%w: constraint %d has an empty name", ErrInvalidFieldSpec, i)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate constraint name %q", ErrInvalidFieldSpec, name)
		}
		seen[name] = true
	}

	if f.ValuesEndpoint != nil {
		if err := f.ValuesEndpoint.Check(); err != nil {
			return err
		}
	}
	return nil
}

// Check verifies that exactly one value source is declared: a uri for remote
// protocols or embedded values for INLINE.
func (e *ValuesEndpoint) Check() error {
	if e == nil {
		return fmt.Errorf("%w: nil values endpoint", ErrInvalidFieldSpec)
	}
	if err := getStructValidator().Struct(e); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFieldSpec, describeStructErrors(err))
	}

	switch {
	case e.Protocol == ProtocolInline:
		if e.URI != "" {
			return fmt.Errorf("%w: INLINE endpoint must not declare a uri", ErrInvalidFieldSpec)
		}
		if e.Values == nil {
			return fmt.Errorf("%w: INLINE endpoint requires values", ErrInvalidFieldSpec)
		}
	case e.Protocol.Remote():
		if e.URI == "" {
			return fmt.Errorf("%w: %s endpoint requires a uri", ErrInvalidFieldSpec, e.Protocol)
		}
		if len(e.Values) > 0 {
			return fmt.Errorf("%w: %s endpoint must not embed values", ErrInvalidFieldSpec, e.Protocol)
		}
	}
	return nil
}

// Check verifies every field of the document.
func (s *InputSpec) Check() error {
	for i := range s.Fields {
		if err := s.Fields[i].Check(); err != nil {
			return fmt.Errorf("field %d (%s): %w", i, s.Fields[i].DisplayName, err)
		}
	}
	return nil
}

// describeStructErrors flattens validator errors into one readable line.
func describeStructErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
