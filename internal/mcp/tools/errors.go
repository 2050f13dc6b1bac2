package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
	"github.com/usestring/inputspec-mcp/pkg/resolver"
	"github.com/usestring/inputspec-mcp/pkg/validation"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeResolverError = "RESOLVER_ERROR"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeTimeout       = "TIMEOUT"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapResolverError converts a resolver failure to a coded error. Timeouts
// and cancellations map to TIMEOUT, everything else to RESOLVER_ERROR.
func WrapResolverError(err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	var netErr net.Error
	var resErr *resolver.ResolverError

	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		coded = &CodedError{Code: ErrCodeTimeout, Message: "request timed out", Cause: err}
	case errors.Is(err, resolver.ErrSuperseded):
		coded = &CodedError{Code: ErrCodeResolverError, Message: "search superseded by a newer one", Cause: err}
	case errors.As(err, &resErr):
		coded = &CodedError{Code: ErrCodeResolverError, Message: "values endpoint " + resErr.URI + " failed", Cause: err}
	case errors.Is(err, inputspec.ErrInvalidFieldSpec):
		coded = &CodedError{Code: ErrCodeInvalidInput, Message: "invalid values endpoint", Cause: err}
	default:
		coded = &CodedError{Code: ErrCodeResolverError, Message: err.Error(), Cause: err}
	}

	slog.Warn("values resolution failed",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)

	return coded
}

// WrapValidationError converts an error returned by the validator (not a
// validation outcome) to a coded error.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, validation.ErrConstraintNotFound) {
		return &CodedError{Code: ErrCodeNotFound, Message: "constraint not found", Cause: err}
	}
	return &CodedError{Code: ErrCodeInvalidInput, Message: "invalid field spec", Cause: err}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
