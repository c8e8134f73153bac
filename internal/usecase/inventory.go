package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/domain/repository"
)

// DailyWeightCap is the total product weight a recipient may receive per calendar day.
var DailyWeightCap = decimal.NewFromInt(12)

// Allowance tracks the weight still available to a recipient while one request is applied.
type Allowance struct {
	RecipientID int64
	// Initial is the allowance before the current request.
	Initial   decimal.Decimal
	Remaining decimal.Decimal
}

// InventoryLedger enforces the daily weight cap and live stock.
type InventoryLedger struct {
	cap decimal.Decimal
	now func() time.Time
}

// NewInventoryLedger uses DailyWeightCap and the server's local clock.
func NewInventoryLedger() *InventoryLedger {
	return &InventoryLedger{cap: DailyWeightCap, now: time.Now}
}

// Today returns the bounds of the current local calendar day.
func (l *InventoryLedger) Today() (time.Time, time.Time) {
	now := l.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// OpenAllowance locks the recipient for the rest of the transaction and computes what is left today.
func (l *InventoryLedger) OpenAllowance(ctx context.Context, repos repository.Factory, recipientID int64) (*Allowance, error) {
	if _, err := repos.Recipients().Lock(ctx, recipientID); err != nil {
		return nil, fmt.Errorf("recipient %d: %w", recipientID, err)
	}

	from, to := l.Today()
	used, err := repos.Orders().DailyWeight(ctx, recipientID, from, to)
	if err != nil {
		return nil, err
	}

	remaining := l.cap.Sub(used)
	return &Allowance{RecipientID: recipientID, Initial: remaining, Remaining: remaining}, nil
}

// CheckAndReserve validates the item against the allowance and stock, then debits stock.
// The locked product is returned so callers can snapshot its price.
func (l *InventoryLedger) CheckAndReserve(ctx context.Context, repos repository.Factory, allowance *Allowance, productID int64, quantity int) (*model.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domainErrors.ErrInvalidInput)
	}

	product, err := repos.Products().GetForUpdate(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", productID, err)
	}

	weight := product.Weight.Mul(decimal.NewFromInt(int64(quantity)))
	if weight.GreaterThan(allowance.Remaining) {
		return nil, &domainErrors.LimitExceededError{Remaining: allowance.Initial}
	}

	if product.Stock < quantity {
		return nil, &domainErrors.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Stock,
		}
	}

	if err := repos.Products().DecrementStock(ctx, product.ID, quantity); err != nil {
		return nil, err
	}

	allowance.Remaining = allowance.Remaining.Sub(weight)
	product.Stock -= quantity
	return product, nil
}
