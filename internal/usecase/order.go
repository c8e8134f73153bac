package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/domain/repository"
	"github.com/polkiloo/prisonmarket/internal/metrics"
)

// OrderNotifier is told about orders that were just committed. It must not block.
type OrderNotifier interface {
	NotifyOrderCreated(orderID int64)
}

// ItemInput is one requested product line.
type ItemInput struct {
	ProductID int64
	Quantity  int
}

// PlaceOrderInput is a placement request of a contact for a recipient.
type PlaceOrderInput struct {
	RecipientID int64
	PlacerID    int64
	Items       []ItemInput
}

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	tx       repository.Transactor
	orders   repository.OrderRepository
	ledger   *InventoryLedger
	notifier OrderNotifier
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(tx repository.Transactor, orders repository.OrderRepository, ledger *InventoryLedger, notifier OrderNotifier, logger *slog.Logger, rec *metrics.Recorder) *OrderUseCase {
	return &OrderUseCase{
		tx:       tx,
		orders:   orders,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
		metrics:  rec,
	}
}

// PlaceOrder appends items to today's open order of the pair or starts a new one.
// Stock debits, items and the total commit together or not at all.
func (u *OrderUseCase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, error) {
	order, err := u.placeOrder(ctx, in)
	u.metrics.OrderPlaced(placementOutcome(err))
	if err != nil {
		return nil, err
	}
	return order, nil
}

// PlaceSingle places an order with exactly one product line.
func (u *OrderUseCase) PlaceSingle(ctx context.Context, recipientID, placerID, productID int64, quantity int) (*model.Order, error) {
	return u.PlaceOrder(ctx, PlaceOrderInput{
		RecipientID: recipientID,
		PlacerID:    placerID,
		Items:       []ItemInput{{ProductID: productID, Quantity: quantity}},
	})
}

func (u *OrderUseCase) placeOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, error) {
	if in.RecipientID <= 0 {
		return nil, &domainErrors.ValidationError{Fields: []string{"prisoner_id"}}
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	var orderID int64
	err := u.tx.Atomic(ctx, func(repos repository.Factory) error {
		placer, err := repos.Contacts().GetByID(ctx, in.PlacerID)
		if err != nil {
			return fmt.Errorf("contact %d: %w", in.PlacerID, err)
		}
		if !placer.Approved {
			return domainErrors.ErrContactNotApproved
		}

		allowance, err := u.ledger.OpenAllowance(ctx, repos, in.RecipientID)
		if err != nil {
			return err
		}

		order, err := u.selectReusableOrder(ctx, repos.Orders(), in.RecipientID, in.PlacerID)
		if err != nil {
			return err
		}
		if order == nil {
			if order, err = repos.Orders().Create(ctx, in.RecipientID, in.PlacerID); err != nil {
				return err
			}
		}

		for _, item := range in.Items {
			product, err := u.ledger.CheckAndReserve(ctx, repos, allowance, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			_, err = repos.Orders().AddItem(ctx, model.OrderItem{
				OrderID:      order.ID,
				ProductID:    product.ID,
				Quantity:     item.Quantity,
				PriceAtOrder: product.Price,
			})
			if err != nil {
				return err
			}
		}

		items, err := repos.Orders().ListItems(ctx, order.ID)
		if err != nil {
			return err
		}
		if err := repos.Orders().UpdateTotal(ctx, order.ID, model.ComputeTotal(items)); err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		u.logger.Warn("order placement rejected",
			slog.Int64("recipient_id", in.RecipientID),
			slog.Int64("placer_id", in.PlacerID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	order, err := u.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	u.logger.Info("order placed",
		slog.Int64("order_id", order.ID),
		slog.Int64("recipient_id", order.RecipientID),
		slog.String("total", order.Total.StringFixed(2)),
	)
	if u.notifier != nil {
		u.notifier.NotifyOrderCreated(order.ID)
	}
	return order, nil
}

// selectReusableOrder returns the pair's latest pending order if it can still take items today, or nil.
func (u *OrderUseCase) selectReusableOrder(ctx context.Context, orders repository.OrderRepository, recipientID, placerID int64) (*model.Order, error) {
	order, err := orders.LatestPending(ctx, recipientID, placerID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	from, to := u.ledger.Today()
	if !order.Reusable(from, to) {
		return nil, nil
	}
	return order, nil
}

// ListByPlacer returns the contact's orders, newest first.
func (u *OrderUseCase) ListByPlacer(ctx context.Context, placerID int64) ([]model.Order, error) {
	return u.orders.ListByPlacer(ctx, placerID)
}

// Get returns an order with items if it belongs to the placer.
func (u *OrderUseCase) Get(ctx context.Context, placerID, orderID int64) (*model.Order, error) {
	order, err := u.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PlacerID != placerID {
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

// AdvanceStatus moves an order forward in its fulfilment lifecycle.
func (u *OrderUseCase) AdvanceStatus(ctx context.Context, orderID int64, next model.OrderStatus) (*model.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domainErrors.ErrInvalidInput, next)
	}

	err := u.tx.Atomic(ctx, func(repos repository.Factory) error {
		order, err := repos.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", domainErrors.ErrInvalidTransition, order.Status, next)
		}
		if order.Status == next {
			return nil
		}
		return repos.Orders().UpdateStatus(ctx, orderID, next)
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("order status changed", slog.Int64("order_id", orderID), slog.String("status", string(next)))
	return u.load(ctx, orderID)
}

func (u *OrderUseCase) load(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := u.orders.ListItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func placementOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domainErrors.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domainErrors.ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, domainErrors.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domainErrors.ErrContactNotApproved):
		return "forbidden"
	case errors.Is(err, domainErrors.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
