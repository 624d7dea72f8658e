package service

import (
	"errors"
	"fmt"

	"github.com/trunghai04/webmoi-sub001/internal/models"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNotFound           = errors.New("not found")
	ErrProductNotFound    = fmt.Errorf("product %w", ErrNotFound)
	ErrProductUnavailable = errors.New("product unavailable")
	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrCartItemNotFound   = fmt.Errorf("cart item %w", ErrNotFound)
	ErrInvalidTransition  = errors.New("invalid status transition")
)

// ValidationError is returned before any transaction is opened.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StockError reports a product whose stock cannot cover the requested quantity.
type StockError struct {
	ProductID uuid.UUID
	Requested int32
	Available int32
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

// ProductError binds a product-level sentinel (not found, unavailable) to the product id.
type ProductError struct {
	ProductID uuid.UUID
	Err       error
}

func (e *ProductError) Error() string { return fmt.Sprintf("%v: %s", e.Err, e.ProductID) }
func (e *ProductError) Unwrap() error { return e.Err }

// TransitionError is returned when the order state machine forbids a move.
type TransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// TransactionError wraps a backing-store failure; the transaction has been rolled back.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string { return fmt.Sprintf("%s: transaction failed: %v", e.Op, e.Err) }
func (e *TransactionError) Unwrap() error { return e.Err }

// isDomainError reports errors that already carry a business meaning and must reach the caller as is.
func isDomainError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrProductUnavailable) ||
		errors.Is(err, ErrInvalidTransition)
}

func wrapTx(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	var te *TransactionError
	if errors.As(err, &te) {
		return err
	}
	return &TransactionError{Op: op, Err: err}
}
