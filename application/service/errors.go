package service

import (
	"errors"
	"strings"

	"github.com/helixml/bookshelf/internal/database"
)

var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("bookshelf: client is closed")

	// ErrValidation indicates a request failed input validation.
	ErrValidation = errors.New("validation failed")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every invalid field of a request.
type ValidationError struct {
	fields []FieldError
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{fields: []FieldError{{Field: field, Message: message}}}
}

// NewFieldsValidationError creates a ValidationError listing fields in order.
func NewFieldsValidationError(fields ...FieldError) *ValidationError {
	f := make([]FieldError, len(fields))
	copy(f, fields)
	return &ValidationError{fields: f}
}

// Error joins the field messages.
func (e *ValidationError) Error() string {
	msgs := e.Messages()
	return strings.Join(msgs, "; ")
}

// Messages returns the field messages in order.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.fields))
	for i, f := range e.fields {
		msgs[i] = f.Message
	}
	return msgs
}

// Fields returns a copy of the field errors.
func (e *ValidationError) Fields() []FieldError {
	fields := make([]FieldError, len(e.fields))
	copy(fields, e.fields)
	return fields
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports a missing resource by its display name.
type NotFoundError struct {
	resource string
	id       string
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{resource: resource, id: id}
}

// Error returns e.g. "Book not found".
func (e *NotFoundError) Error() string {
	return e.resource + " not found"
}

// ID returns the identifier that was looked up.
func (e *NotFoundError) ID() string { return e.id }

// Is matches database.ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == database.ErrNotFound
}
