package httperr

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// DuplicateKeyCode is the storage error code for a unique index violation.
const DuplicateKeyCode = 11000

// ErrSessionExpired reports an expired server-side session.
var ErrSessionExpired = errors.New("httperr: session expired")

// DuplicateKeyError reports a unique constraint violation.
type DuplicateKeyError struct {
	// Field is the conflicting field, when known.
	Field string
	Value any
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("E%d duplicate key error", DuplicateKeyCode)
	}
	return fmt.Sprintf("E%d duplicate key error: %s=%v", DuplicateKeyCode, e.Field, e.Value)
}

// Code returns DuplicateKeyCode.
func (e *DuplicateKeyError) Code() int { return DuplicateKeyCode }

// FieldError is one failed field of a ValidationError.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports invalid input on one or more fields.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Messages()
}

// Messages joins the field messages with ", ".
func (e *ValidationError) Messages() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Message != "" {
			msgs = append(msgs, f.Message)
		}
	}
	return strings.Join(msgs, ", ")
}

// Add appends a field failure.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// InvalidIDError reports an identifier that is not well formed.
type InvalidIDError struct {
	Field string
	Value string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// Upload failure codes.
const (
	UploadTooLarge        = "LIMIT_FILE_SIZE"
	UploadTooManyFiles    = "LIMIT_FILE_COUNT"
	UploadUnexpectedField = "LIMIT_UNEXPECTED_FILE"
	UploadBadType         = "INVALID_FILE_TYPE"
)

// UploadError reports a rejected file upload.
type UploadError struct {
	Code  string
	Field string
	Err   error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upload %s: %s: %v", e.Field, e.Code, e.Err)
	}
	return fmt.Sprintf("upload %s: %s", e.Field, e.Code)
}

func (e *UploadError) Unwrap() error { return e.Err }

// StatusError attaches an HTTP status to an error.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string   { return e.Err.Error() }
func (e *StatusError) Unwrap() error   { return e.Err }
func (e *StatusError) StatusCode() int { return e.Status }

// WithStatus wraps err with an HTTP status.
func WithStatus(status int, err error) error {
	if err == nil {
		return nil
	}
	return &StatusError{Status: status, Err: err}
}

type stackError struct {
	err   error
	stack []byte
}

func (e *stackError) Error() string { return e.err.Error() }
func (e *stackError) Unwrap() error { return e.err }

// WithStack records the current goroutine's stack on err. The stack is only
// shown outside production.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	var existing *stackError
	if errors.As(err, &existing) {
		return err
	}
	return &stackError{err: err, stack: debug.Stack()}
}

// Stack returns the stack recorded by WithStack, or "".
func Stack(err error) string {
	var se *stackError
	if errors.As(err, &se) {
		return string(se.stack)
	}
	return ""
}
