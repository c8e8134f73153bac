package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/prisonmarket/internal/domain/model"
)

// OrderRepository describes persistence operations with orders and their items.
type OrderRepository interface {
	// LatestPending returns the most recent pending order of the pair or ErrNotFound.
	LatestPending(ctx context.Context, recipientID, placerID int64) (*model.Order, error)
	Create(ctx context.Context, recipientID, placerID int64) (*model.Order, error)
	AddItem(ctx context.Context, item model.OrderItem) (*model.OrderItem, error)
	ListItems(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	UpdateTotal(ctx context.Context, orderID int64, total decimal.Decimal) error
	GetByID(ctx context.Context, orderID int64) (*model.Order, error)
	ListByPlacer(ctx context.Context, placerID int64) ([]model.Order, error)
	// DailyWeight sums product weight times quantity over the recipient's orders created in [from, to).
	DailyWeight(ctx context.Context, recipientID int64, from, to time.Time) (decimal.Decimal, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	LinkTransaction(ctx context.Context, orderID, transactionRowID int64) error
	// SetPaymentStatusByTransaction updates orders linked to the transaction row and returns how many changed.
	SetPaymentStatusByTransaction(ctx context.Context, transactionRowID int64, status model.PaymentStatus) (int64, error)
}
