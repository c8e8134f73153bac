// Package facadestub provides controllable facades for HTTP layer tests.
package facadestub

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/test"
	"github.com/polkiloo/prisonmarket/internal/usecase"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	PlaceFn   func(context.Context, usecase.PlaceOrderInput) (*model.Order, error)
	SingleFn  func(context.Context, int64, int64, int64, int) (*model.Order, error)
	OrdersFn  func(context.Context, int64) ([]model.Order, error)
	OrderFn   func(context.Context, int64, int64) (*model.Order, error)
	AdvanceFn func(context.Context, int64, model.OrderStatus) (*model.Order, error)
}

// SampleOrder is the default order returned by the stubs.
func SampleOrder(id, recipientID, placerID int64) *model.Order {
	return &model.Order{
		ID:            id,
		RecipientID:   recipientID,
		PlacerID:      placerID,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		Total:         decimal.RequireFromString("7.50"),
		Items: []model.OrderItem{
			{ID: 1, OrderID: id, ProductID: 100, ProductName: "Rice", Quantity: 3, PriceAtOrder: decimal.RequireFromString("2.50")},
		},
	}
}

func (s OrderFacadeStub) PlaceOrder(ctx context.Context, in usecase.PlaceOrderInput) (*model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, in)
	}
	return SampleOrder(1, in.RecipientID, in.PlacerID), nil
}

func (s OrderFacadeStub) PlaceSingle(ctx context.Context, recipientID, placerID, productID int64, quantity int) (*model.Order, error) {
	if s.SingleFn != nil {
		return s.SingleFn(ctx, recipientID, placerID, productID, quantity)
	}
	return SampleOrder(1, recipientID, placerID), nil
}

func (s OrderFacadeStub) Orders(ctx context.Context, placerID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, placerID)
	}
	return []model.Order{*SampleOrder(1, 1, placerID)}, nil
}

func (s OrderFacadeStub) Order(ctx context.Context, placerID, orderID int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, placerID, orderID)
	}
	return SampleOrder(orderID, 1, placerID), nil
}

func (s OrderFacadeStub) AdvanceOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error) {
	if s.AdvanceFn != nil {
		return s.AdvanceFn(ctx, orderID, status)
	}
	order := SampleOrder(orderID, 1, 1)
	order.Status = status
	return order, nil
}

// PaymentFacadeStub simulates the payment flow.
type PaymentFacadeStub struct {
	HoldFn    func(context.Context, usecase.HoldInput) (*model.HoldResult, error)
	ConfirmFn func(context.Context, usecase.ConfirmInput) (*model.ConfirmResult, error)
	StatusFn  func(context.Context, string) (*model.StatusResult, error)
	ListFn    func(context.Context, int64) ([]model.Transaction, error)
	GetFn     func(context.Context, int64, int64) (*model.Transaction, error)
}

// SampleTransaction is the default transaction returned by the stubs.
func SampleTransaction(id, contactID int64) *model.Transaction {
	return &model.Transaction{
		ID:            id,
		TransactionID: "T1",
		ContactID:     &contactID,
		Phone:         "+998901234567",
		Amount:        decimal.RequireFromString("7.5"),
		Status:        model.TransactionStatusCompleted,
	}
}

func (s PaymentFacadeStub) Hold(ctx context.Context, in usecase.HoldInput) (*model.HoldResult, error) {
	if s.HoldFn != nil {
		return s.HoldFn(ctx, in)
	}
	return &model.HoldResult{TransactionID: "T1", Phone: "+998901234567"}, nil
}

func (s PaymentFacadeStub) Confirm(ctx context.Context, in usecase.ConfirmInput) (*model.ConfirmResult, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, in)
	}
	return &model.ConfirmResult{
		TransactionID: in.TransactionID,
		Status:        model.TransactionStatusCompleted,
		Phone:         "+998901234567",
		QRCodeURL:     "https://qr.example/" + in.TransactionID,
	}, nil
}

func (s PaymentFacadeStub) CheckStatus(ctx context.Context, transactionID string) (*model.StatusResult, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, transactionID)
	}
	return &model.StatusResult{StatusCode: 200, Status: "completed", Raw: json.RawMessage(`{"status":"completed"}`)}, nil
}

func (s PaymentFacadeStub) Transactions(ctx context.Context, contactID int64) ([]model.Transaction, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, contactID)
	}
	return []model.Transaction{*SampleTransaction(1, contactID)}, nil
}

func (s PaymentFacadeStub) Transaction(ctx context.Context, contactID, id int64) (*model.Transaction, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, contactID, id)
	}
	return SampleTransaction(id, contactID), nil
}

// HealthFacadeStub reports configured health.
type HealthFacadeStub struct {
	Err error
}

func (s HealthFacadeStub) Healthy(context.Context) error { return s.Err }

// MarketFacadeStub aggregates facade dependencies for HTTP layer tests.
type MarketFacadeStub struct {
	test.AuthenticatorStub
	OrderFacadeStub
	PaymentFacadeStub
	HealthFacadeStub
}
