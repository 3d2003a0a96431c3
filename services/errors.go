package services

import "fmt"

// Business-rule rejections carry enough detail to show the customer which
// product or amount was the problem. All of them are detected before any
// write, so a rejected order never needs a rollback.

// ValidationError reports missing or malformed request fields.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProductNotFoundError names the requested product id.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError names the product and both quantities so the reply
// can tell the customer exactly how short the stock is.
type InsufficientStockError struct {
	ProductName string
	Requested   float64
	Available   float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %g, only %g available",
		e.ProductName, e.Requested, e.Available)
}

// CreditLimitExceededError carries the exact amount the customer would need
// to pay down before the order can proceed.
type CreditLimitExceededError struct {
	Shortfall float64
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded: pay down %.2f before ordering", e.Shortfall)
}

// PersistenceError wraps a datastore failure. Fatal to the request, never
// retried here.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
