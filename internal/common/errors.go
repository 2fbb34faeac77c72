package common

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict") // e.g., username already exists
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation failed")
)

// NonFieldErrors is the key for violations that do not belong to a single input field.
const NonFieldErrors = "non_field_errors"

// ValidationError collects field-scoped violations. Nested fields use dotted keys ("address.pincode").
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// FieldError is shorthand for a single-violation ValidationError.
func FieldError(field, message string) *ValidationError {
	e := NewValidationError()
	e.Add(field, message)
	return e
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Check runs the ozzo-validation rules against value and records the first failure under field.
func (e *ValidationError) Check(field string, value interface{}, rules ...validation.Rule) bool {
	if err := validation.Validate(value, rules...); err != nil {
		e.Add(field, err.Error())
		return false
	}
	return true
}

func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil avoids handing a typed nil pointer back as a non-nil error.
func (e *ValidationError) OrNil() error {
	if e == nil || e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AuthenticationError reports rejected credentials. The message never reveals which part was wrong.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }
func (e *AuthenticationError) Unwrap() error { return ErrUnauthorized }

// NotAuthenticatedError reports a missing or unusable bearer token.
type NotAuthenticatedError struct {
	Detail string
}

func (e *NotAuthenticatedError) Error() string { return e.Detail }
func (e *NotAuthenticatedError) Unwrap() error { return ErrUnauthorized }

// AuthorizationError reports a role mismatch and carries the caller's role and username back to the client.
type AuthorizationError struct {
	Message     string
	CurrentRole string
	Username    string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s (user %q has role %q)", e.Message, e.Username, e.CurrentRole)
}

func (e *AuthorizationError) Unwrap() error { return ErrForbidden }

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}
