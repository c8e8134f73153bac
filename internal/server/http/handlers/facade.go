package handlers

import (
	"context"

	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/usecase"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, in usecase.PlaceOrderInput) (*model.Order, error)
	PlaceSingle(ctx context.Context, recipientID, placerID, productID int64, quantity int) (*model.Order, error)
	Orders(ctx context.Context, placerID int64) ([]model.Order, error)
	Order(ctx context.Context, placerID, orderID int64) (*model.Order, error)
}

// StaffFacade covers fulfilment actions.
type StaffFacade interface {
	AdvanceOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error)
}

// PaymentFacade provides the card payment flow.
type PaymentFacade interface {
	Hold(ctx context.Context, in usecase.HoldInput) (*model.HoldResult, error)
	Confirm(ctx context.Context, in usecase.ConfirmInput) (*model.ConfirmResult, error)
	CheckStatus(ctx context.Context, transactionID string) (*model.StatusResult, error)
	Transactions(ctx context.Context, contactID int64) ([]model.Transaction, error)
	Transaction(ctx context.Context, contactID, id int64) (*model.Transaction, error)
}

type HealthFacade interface {
	Healthy(ctx context.Context) error
}

// MarketFacade aggregates the full set of operations used across handlers.
type MarketFacade interface {
	Authenticate(ctx context.Context, token string) (int64, error)
	OrderFacade
	StaffFacade
	PaymentFacade
	HealthFacade
}
