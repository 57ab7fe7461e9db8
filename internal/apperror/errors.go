// Package apperror holds the error taxonomy shared by usecases and the HTTP and
// gRPC boundaries. Use errors.Is against the sentinels and errors.As for the
// typed errors.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failure")
	ErrOutOfStock  = errors.New("out of stock")
	ErrForbidden   = errors.New("forbidden")
	ErrBusy        = errors.New("system busy, please try again later")
)

// FieldError is one problem with one submitted field. MessageID is an i18n
// message id; Data feeds its template.
type FieldError struct {
	Field     string         `json:"field"`
	MessageID string         `json:"message_id"`
	Data      map[string]any `json:"-"`
}

// ValidationError collects every field problem of one submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.MessageID
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add appends a field error.
func (e *ValidationError) Add(field, messageID string, data map[string]any) {
	e.Fields = append(e.Fields, FieldError{Field: field, MessageID: messageID, Data: data})
}

// OrNil returns e when it holds at least one field error.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func NewValidationError(field, messageID string, data map[string]any) *ValidationError {
	v := &ValidationError{}
	v.Add(field, messageID, data)
	return v
}

// PersistenceError is a failed transactional write. Prior state is intact.
type PersistenceError struct {
	ProductID int64
	Op        string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s for product %d: %v", e.Op, e.ProductID, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFound(resource string, id any) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}
