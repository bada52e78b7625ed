package order

import (
	"errors"
	"fmt"
)

// Client-visible messages for rejected creation payloads.
const (
	MsgInvalidInput   = "Invalid input data"
	MsgInvalidProduct = "Invalid product data"
)

// ErrNotFound is returned when a single-order lookup matches no rows.
var ErrNotFound = errors.New("order not found")

// ValidationError rejects a creation payload before any store access.
// Message is safe to show to the client, Reason is for logs.
type ValidationError struct {
	Message string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order: %s", e.Reason)
}

func invalidInput(reason string) *ValidationError {
	return &ValidationError{Message: MsgInvalidInput, Reason: reason}
}

func invalidProduct(reason string) *ValidationError {
	return &ValidationError{Message: MsgInvalidProduct, Reason: reason}
}

// TransactionError is a failure after the order transaction began.
// The transaction has been rolled back by the time it reaches the caller.
type TransactionError struct {
	Step string
	Err  error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }
