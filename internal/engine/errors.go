package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeStock is returned when a mutation would drive a
	// quantity below zero. The ledger is left unchanged.
	ErrNegativeStock = errors.New("stock cannot go negative")

	// ErrNotFound is returned when an operation references an absent
	// equipment, request, or technician id.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when a cart operation asks for
	// more units than the ledger currently holds.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrEmptyCart is returned when placing an order on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// ValidationError reports malformed input to a create/update operation.
// It is surfaced to the caller and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UpstreamError wraps a persistence or network collaborator failure.
// Callers convert it into an error notification; local state is never
// left partially mutated behind one.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
