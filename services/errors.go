package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidInput       = errors.New("invalid input")
	ErrProductUnavailable = errors.New("product is no longer available")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductNotFound    = errors.New("product not found")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrConflict           = errors.New("conflicting update")
	ErrTransactionFailed  = errors.New("transaction failed")
	ErrPaymentGateway     = errors.New("payment gateway failure")
)

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func transactionFailed(cause error) error {
	return fmt.Errorf("%w: %w", ErrTransactionFailed, cause)
}

// precondition errors are returned as-is from a unit of work; anything else is
// reported as a transaction failure.
func isPrecondition(err error) bool {
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrProductUnavailable) ||
		errors.Is(err, ErrInvalidInput)
}

// Outcome names the error class for metrics labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrProductUnavailable):
		return "product_unavailable"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrTransactionFailed):
		return "transaction_failed"
	default:
		return "error"
	}
}
