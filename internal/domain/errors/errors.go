package errors

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrQuoteNotFound     = errors.New("quote not found")
	ErrQuoteExpired      = errors.New("quote expired")
	ErrOrderNotPending   = errors.New("order is not awaiting acceptance")
	ErrNoRejectedReceipt = errors.New("order has no rejected receipt")
	ErrSnapshotNotFound  = errors.New("snapshot not found")
)

// FieldError is a recoverable, user-facing validation failure tied to a single
// input field. It covers both client-side validation and the first structured
// field error reported by the server.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewFieldError builds a FieldError for the given field.
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

// AsFieldError unwraps err into a FieldError when possible.
func AsFieldError(err error) (*FieldError, bool) {
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr, true
	}
	return nil, false
}
