package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the local view of a gateway payment state.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusReversed  TransactionStatus = "reversed"
)

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusPending:   {TransactionStatusCompleted, TransactionStatusFailed},
	TransactionStatusCompleted: {TransactionStatusReversed},
	TransactionStatusFailed:    nil,
	TransactionStatusReversed:  nil,
}

// ParseTransactionStatus maps a gateway reported status onto a known value.
func ParseTransactionStatus(raw string) (TransactionStatus, error) {
	status := TransactionStatus(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := transactionTransitions[status]; !ok {
		return "", fmt.Errorf("unknown transaction status %q", raw)
	}
	return status, nil
}

// CanTransitionTo reports whether the local record may move from s to next.
// Staying in the same status is allowed so repeated status checks are no-ops.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if _, ok := transactionTransitions[next]; !ok {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range transactionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AcceptsConfirmation reports whether a successful confirm answer may complete
// a transaction in status s. A confirmed payment overrides an earlier failed report;
// a reversed one stays reversed.
func (s TransactionStatus) AcceptsConfirmation() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusFailed, TransactionStatusCompleted:
		return true
	default:
		return false
	}
}

// Transaction records one exchange with the payment gateway.
type Transaction struct {
	ID            int64
	TransactionID string
	// ContactID is the contact who started the hold, nil for legacy rows.
	ContactID *int64
	Phone     string
	Amount    decimal.Decimal
	Status    TransactionStatus
	CreatedAt time.Time
}

// HoldRequest asks the gateway to reserve Amount on a card. Amount is kept as
// the exact decimal text the payer submitted because it is part of the signed hash.
// NumericAmount records that the payer sent it as a JSON number rather than a string.
type HoldRequest struct {
	PAN           string
	Expire        string
	Amount        string
	NumericAmount bool
}

// HoldResult is the parsed answer of a successful hold request.
type HoldResult struct {
	TransactionID string
	Phone         string
}

// ConfirmResult is the parsed answer of a successful confirm request.
type ConfirmResult struct {
	TransactionID string
	Status        TransactionStatus
	Phone         string
	QRCodeURL     string
}

// StatusResult keeps the raw gateway payload for passthrough to callers.
type StatusResult struct {
	StatusCode int
	Status     string
	Raw        json.RawMessage
}
