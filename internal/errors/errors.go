package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Error codes
const (
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeNotFriends = "NOT_FRIENDS"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// MsgAlreadyExists is shown next to a field whose value is already taken.
const MsgAlreadyExists = "Already exists"

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string      // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string      // Human-readable error message
	Status  int         // HTTP status code
	Fields  FieldErrors // Per-field messages for validation failures (optional)
	Err     error       // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// FieldErrors maps a form field name to the messages produced for it.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Has reports whether field has at least one message.
func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

// Error renders the messages in field order.
func (f FieldErrors) Error() string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(f[name], ", ")))
	}
	return strings.Join(parts, "; ")
}

// As returns the AppError wrapped in err, if any.
func As(err error) (*AppError, bool) {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	fields := FieldErrors{}
	fields.Add(field, reason)
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
		Fields:  fields,
	}
}

// NewFieldsError creates a VALIDATION_ERROR carrying every failed field.
func NewFieldsError(fields FieldErrors) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: "validation failed: " + fields.Error(),
		Status:  422,
		Fields:  fields,
	}
}

// NewConflictError creates a CONFLICT error flagging every taken field.
// values maps each field to the value that clashed.
func NewConflictError(values map[string]string) *AppError {
	fields := FieldErrors{}
	names := make([]string, 0, len(values))
	for field := range values {
		fields.Add(field, MsgAlreadyExists)
		names = append(names, field)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", name, values[name]))
	}
	return &AppError{
		Code:    ErrCodeConflict,
		Message: "already exists: " + strings.Join(parts, ", "),
		Status:  409,
		Fields:  fields,
	}
}

// NewNotFriendsError creates a NOT_FRIENDS error for an operation that needs an existing friendship.
func NewNotFriendsError(a, b int64) *AppError {
	return &AppError{
		Code:    ErrCodeNotFriends,
		Message: fmt.Sprintf("profiles %d and %d are not friends", a, b),
		Status:  409,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}
