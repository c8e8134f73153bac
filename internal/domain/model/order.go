package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes fulfilment lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusProcessed OrderStatus = "processed"
	OrderStatusDelivered OrderStatus = "delivered"
)

// PaymentStatus mirrors the payment state of the linked transaction.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusProcessed},
	OrderStatusProcessed: {OrderStatusDelivered},
	OrderStatusDelivered: nil,
}

// Valid reports whether status is one of the known values.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether staff may move an order from s to next.
// Staying in the same status is always allowed and is treated as a no-op.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is one purchase for a recipient placed by an approved contact.
type Order struct {
	ID                 int64
	RecipientID        int64
	PlacerID           int64
	RecipientName      string
	PlacerName         string
	Status             OrderStatus
	Total              decimal.Decimal
	PaymentStatus      PaymentStatus
	DeliveryProofImage *string
	TransactionID      *int64
	Items              []OrderItem
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// OrderItem is a single product line of an order.
type OrderItem struct {
	ID           int64
	OrderID      int64
	ProductID    int64
	ProductName  string
	Quantity     int
	PriceAtOrder decimal.Decimal
}

// LineTotal returns quantity multiplied by the snapshotted price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtOrder.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal sums line totals of items rounded to cents.
func ComputeTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}

// Reusable reports whether new items may still be appended to the order on day.
func (o *Order) Reusable(dayStart, dayEnd time.Time) bool {
	if o == nil {
		return false
	}
	if o.Status != OrderStatusPending || o.PaymentStatus != PaymentStatusPending || o.TransactionID != nil {
		return false
	}
	return !o.CreatedAt.Before(dayStart) && o.CreatedAt.Before(dayEnd)
}
