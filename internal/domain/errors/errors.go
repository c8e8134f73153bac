package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrLimitExceeded      = errors.New("daily limit exceeded")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrAuth               = errors.New("gateway authentication failed")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayRejected    = errors.New("payment gateway rejected request")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrContactNotApproved = errors.New("contact is not approved")
)

// ValidationError lists every request field that failed presence checks.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "Missing fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// LimitExceededError reports how much weight the recipient may still order today.
type LimitExceededError struct {
	Remaining decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	remaining := e.Remaining
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return fmt.Sprintf("order exceeds the daily weight limit: up to %s can be ordered today for this recipient", remaining.String())
}

func (e *LimitExceededError) Unwrap() error { return ErrLimitExceeded }

// InsufficientStockError names the product that could not be reserved.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = fmt.Sprintf("product %d", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for %s: %d available", name, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// GatewayRejectedError carries a non-success gateway answer as-is.
type GatewayRejectedError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *GatewayRejectedError) Error() string {
	return fmt.Sprintf("gateway responded %d: %s", e.StatusCode, e.Message)
}

func (e *GatewayRejectedError) Unwrap() error { return ErrGatewayRejected }
