package test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/polkiloo/prisonmarket/internal/domain/model"
)

// DiscardLogger returns a JSON logger that writes nowhere.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// PaymentGatewayStub records remote calls and answers through overrides.
type PaymentGatewayStub struct {
	HoldFn    func(context.Context, model.HoldRequest) (*model.HoldResult, error)
	ConfirmFn func(context.Context, string, string) (*model.ConfirmResult, error)
	StatusFn  func(context.Context, string) (*model.StatusResult, error)

	mu    sync.Mutex
	Calls []string
}

func (s *PaymentGatewayStub) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, op)
}

// CallCount returns how many remote calls were made.
func (s *PaymentGatewayStub) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// Hold delegates to HoldFn or returns transaction T1.
func (s *PaymentGatewayStub) Hold(ctx context.Context, req model.HoldRequest) (*model.HoldResult, error) {
	s.record("hold")
	if s.HoldFn != nil {
		return s.HoldFn(ctx, req)
	}
	return &model.HoldResult{TransactionID: "T1", Phone: "+998901234567"}, nil
}

// Confirm delegates to ConfirmFn or reports a completed payment.
func (s *PaymentGatewayStub) Confirm(ctx context.Context, transactionID, smsCode string) (*model.ConfirmResult, error) {
	s.record("confirm")
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, transactionID, smsCode)
	}
	return &model.ConfirmResult{
		TransactionID: transactionID,
		Status:        model.TransactionStatusCompleted,
		Phone:         "+998901234567",
		QRCodeURL:     "https://qr.example/" + transactionID,
	}, nil
}

// CheckStatus delegates to StatusFn or reports a completed transaction.
func (s *PaymentGatewayStub) CheckStatus(ctx context.Context, transactionID string) (*model.StatusResult, error) {
	s.record("status")
	if s.StatusFn != nil {
		return s.StatusFn(ctx, transactionID)
	}
	return &model.StatusResult{
		StatusCode: 200,
		Status:     "completed",
		Raw:        json.RawMessage(`{"status":"completed"}`),
	}, nil
}

// NotifierStub collects order notifications.
type NotifierStub struct {
	mu  sync.Mutex
	IDs []int64
}

// NotifyOrderCreated records the order id.
func (n *NotifierStub) NotifyOrderCreated(orderID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.IDs = append(n.IDs, orderID)
}

// Notified returns a copy of recorded ids.
func (n *NotifierStub) Notified() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int64(nil), n.IDs...)
}
