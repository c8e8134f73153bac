package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/domain/repository"
)

// PaymentGateway performs the remote half of the payment protocol.
type PaymentGateway interface {
	Hold(ctx context.Context, req model.HoldRequest) (*model.HoldResult, error)
	Confirm(ctx context.Context, transactionID, smsCode string) (*model.ConfirmResult, error)
	CheckStatus(ctx context.Context, transactionID string) (*model.StatusResult, error)
}

// HoldInput mirrors the pay-hold request body.
type HoldInput struct {
	PAN     string
	Expire  string
	Amount  string
	OrderID string
	// NumericAmount is set when the client sent amount as a JSON number.
	NumericAmount bool
	// ContactID is the authenticated contact, zero when unknown.
	ContactID int64
}

// ConfirmInput mirrors the pay-transaction request body.
type ConfirmInput struct {
	TransactionID string
	SMSCode       string
}

// PaymentUseCase keeps local transactions consistent with the gateway.
type PaymentUseCase struct {
	gateway PaymentGateway
	tx      repository.Transactor
	logger  *slog.Logger
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(gateway PaymentGateway, tx repository.Transactor, logger *slog.Logger) *PaymentUseCase {
	return &PaymentUseCase{gateway: gateway, tx: tx, logger: logger}
}

// Hold reserves the amount on the card, records a pending transaction and links it to the order.
func (u *PaymentUseCase) Hold(ctx context.Context, in HoldInput) (*model.HoldResult, error) {
	if err := requireFields(
		field{"pan", in.PAN},
		field{"expire", in.Expire},
		field{"amount", in.Amount},
		field{"orderId", in.OrderID},
	); err != nil {
		return nil, err
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	orderID, err := strconv.ParseInt(strings.TrimSpace(in.OrderID), 10, 64)
	if err != nil || orderID <= 0 {
		return nil, fmt.Errorf("%w: orderId must be a positive integer", domainErrors.ErrInvalidInput)
	}

	err = u.tx.Atomic(ctx, func(repos repository.Factory) error {
		return checkPayable(ctx, repos, orderID)
	})
	if err != nil {
		return nil, err
	}

	res, err := u.gateway.Hold(ctx, model.HoldRequest{
		PAN:           in.PAN,
		Expire:        in.Expire,
		Amount:        strings.TrimSpace(in.Amount),
		NumericAmount: in.NumericAmount,
	})
	if err != nil {
		return nil, err
	}

	var contactID *int64
	if in.ContactID > 0 {
		contactID = &in.ContactID
	}

	err = u.tx.Atomic(ctx, func(repos repository.Factory) error {
		tx, err := repos.Transactions().Upsert(ctx, model.Transaction{
			TransactionID: res.TransactionID,
			ContactID:     contactID,
			Phone:         res.Phone,
			Amount:        amount,
			Status:        model.TransactionStatusPending,
		})
		if err != nil {
			return err
		}

		// The order may have been paid while the gateway call was in flight.
		if err := checkPayable(ctx, repos, orderID); err != nil {
			if !errors.Is(err, domainErrors.ErrConflict) {
				return err
			}
			u.logger.Warn("held payment not linked to already paid order",
				slog.Int64("order_id", orderID),
				slog.String("transaction_id", res.TransactionID),
			)
			return nil
		}

		err = repos.Orders().LinkTransaction(ctx, orderID, tx.ID)
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("held payment references unknown order",
				slog.Int64("order_id", orderID),
				slog.String("transaction_id", res.TransactionID),
			)
			return nil
		}
		return err
	})
	if err != nil {
		u.logger.Error("failed to record held payment",
			slog.String("transaction_id", res.TransactionID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	u.logger.Info("payment held", slog.String("transaction_id", res.TransactionID), slog.Int64("order_id", orderID))
	return res, nil
}

// Confirm finalizes the held payment and marks the linked order paid.
func (u *PaymentUseCase) Confirm(ctx context.Context, in ConfirmInput) (*model.ConfirmResult, error) {
	if err := requireFields(
		field{"transactionId", in.TransactionID},
		field{"smsCode", in.SMSCode},
	); err != nil {
		return nil, err
	}

	res, err := u.gateway.Confirm(ctx, in.TransactionID, in.SMSCode)
	if err != nil {
		return nil, err
	}

	err = u.apply(ctx, in.TransactionID, model.TransactionStatusCompleted, res.Phone, model.TransactionStatus.AcceptsConfirmation)
	if err != nil {
		u.logger.Error("failed to record confirmed payment",
			slog.String("transaction_id", in.TransactionID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	u.logger.Info("payment confirmed", slog.String("transaction_id", in.TransactionID))
	return res, nil
}

// CheckStatus asks the gateway for the transaction state and applies legal transitions locally.
// The gateway answer is returned unchanged.
func (u *PaymentUseCase) CheckStatus(ctx context.Context, transactionID string) (*model.StatusResult, error) {
	if err := requireFields(field{"transactionId", transactionID}); err != nil {
		return nil, err
	}

	res, err := u.gateway.CheckStatus(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	status, err := model.ParseTransactionStatus(res.Status)
	if err != nil {
		u.logger.Warn("gateway reported unknown transaction status",
			slog.String("transaction_id", transactionID),
			slog.String("status", res.Status),
		)
		return res, nil
	}

	allowed := func(from model.TransactionStatus) bool { return from.CanTransitionTo(status) }
	if err := u.apply(ctx, transactionID, status, "", allowed); err != nil {
		u.logger.Error("failed to reconcile transaction status",
			slog.String("transaction_id", transactionID),
			slog.String("error", err.Error()),
		)
	}
	return res, nil
}

// apply moves the local transaction to status when allowed accepts its current status.
// Unknown transactions and refused transitions are logged and skipped.
func (u *PaymentUseCase) apply(ctx context.Context, transactionID string, status model.TransactionStatus, phone string,
	allowed func(from model.TransactionStatus) bool) error {
	return u.tx.Atomic(ctx, func(repos repository.Factory) error {
		tx, err := repos.Transactions().GetForUpdate(ctx, transactionID)
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("no local record for gateway transaction", slog.String("transaction_id", transactionID))
			return nil
		}
		if err != nil {
			return err
		}

		if !allowed(tx.Status) {
			u.logger.Warn("ignoring illegal transaction transition",
				slog.String("transaction_id", transactionID),
				slog.String("from", string(tx.Status)),
				slog.String("to", string(status)),
			)
			return nil
		}

		var newPhone *string
		if phone != "" {
			newPhone = &phone
		}
		if tx.Status != status || newPhone != nil {
			if err := repos.Transactions().UpdateStatus(ctx, tx.ID, status, newPhone); err != nil {
				return err
			}
		}

		if status == model.TransactionStatusCompleted {
			if _, err := repos.Orders().SetPaymentStatusByTransaction(ctx, tx.ID, model.PaymentStatusCompleted); err != nil {
				return err
			}
		}
		return nil
	})
}

// Transactions lists the contact's payments, newest first.
func (u *PaymentUseCase) Transactions(ctx context.Context, contactID int64) ([]model.Transaction, error) {
	var result []model.Transaction
	err := u.tx.Atomic(ctx, func(repos repository.Factory) error {
		list, err := repos.Transactions().ListByContact(ctx, contactID)
		result = list
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Transaction returns one of the contact's payments. Payments of other contacts are not found.
func (u *PaymentUseCase) Transaction(ctx context.Context, contactID, id int64) (*model.Transaction, error) {
	var result *model.Transaction
	err := u.tx.Atomic(ctx, func(repos repository.Factory) error {
		tx, err := repos.Transactions().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if tx.ContactID == nil || *tx.ContactID != contactID {
			return domainErrors.ErrNotFound
		}
		result = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkPayable rejects orders that are already paid. Unknown orders pass so the
// hold is still recorded.
func checkPayable(ctx context.Context, repos repository.Factory, orderID int64) error {
	order, err := repos.Orders().GetByID(ctx, orderID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if order.PaymentStatus == model.PaymentStatusCompleted {
		return fmt.Errorf("%w: order %d is already paid", domainErrors.ErrConflict, orderID)
	}
	if order.TransactionID == nil {
		return nil
	}
	linked, err := repos.Transactions().GetByID(ctx, *order.TransactionID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if linked.Status == model.TransactionStatusCompleted {
		return fmt.Errorf("%w: order %d is already paid", domainErrors.ErrConflict, orderID)
	}
	return nil
}
