package app

import (
	"context"

	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/usecase"
)

// ContactAuthenticator resolves a bearer token to an approved contact.
type ContactAuthenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// MarketFacade is the single entry point the HTTP layer talks to.
type MarketFacade struct {
	contacts ContactAuthenticator
	orders   *usecase.OrderUseCase
	payments *usecase.PaymentUseCase
	health   HealthChecker
}

func NewMarketFacade(contacts ContactAuthenticator, orders *usecase.OrderUseCase, payments *usecase.PaymentUseCase, health HealthChecker) *MarketFacade {
	return &MarketFacade{contacts: contacts, orders: orders, payments: payments, health: health}
}

func (f *MarketFacade) Authenticate(ctx context.Context, token string) (int64, error) {
	return f.contacts.Authenticate(ctx, token)
}

func (f *MarketFacade) PlaceOrder(ctx context.Context, in usecase.PlaceOrderInput) (*model.Order, error) {
	return f.orders.PlaceOrder(ctx, in)
}

func (f *MarketFacade) PlaceSingle(ctx context.Context, recipientID, placerID, productID int64, quantity int) (*model.Order, error) {
	return f.orders.PlaceSingle(ctx, recipientID, placerID, productID, quantity)
}

func (f *MarketFacade) Orders(ctx context.Context, placerID int64) ([]model.Order, error) {
	return f.orders.ListByPlacer(ctx, placerID)
}

func (f *MarketFacade) Order(ctx context.Context, placerID, orderID int64) (*model.Order, error) {
	return f.orders.Get(ctx, placerID, orderID)
}

func (f *MarketFacade) AdvanceOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error) {
	return f.orders.AdvanceStatus(ctx, orderID, status)
}

func (f *MarketFacade) Hold(ctx context.Context, in usecase.HoldInput) (*model.HoldResult, error) {
	return f.payments.Hold(ctx, in)
}

func (f *MarketFacade) Confirm(ctx context.Context, in usecase.ConfirmInput) (*model.ConfirmResult, error) {
	return f.payments.Confirm(ctx, in)
}

func (f *MarketFacade) CheckStatus(ctx context.Context, transactionID string) (*model.StatusResult, error) {
	return f.payments.CheckStatus(ctx, transactionID)
}

func (f *MarketFacade) Transactions(ctx context.Context, contactID int64) ([]model.Transaction, error) {
	return f.payments.Transactions(ctx, contactID)
}

func (f *MarketFacade) Transaction(ctx context.Context, contactID, id int64) (*model.Transaction, error) {
	return f.payments.Transaction(ctx, contactID, id)
}

// Healthy reports whether the database answers.
func (f *MarketFacade) Healthy(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
