package repository

import (
	"context"

	"github.com/polkiloo/prisonmarket/internal/domain/model"
)

// TransactionRepository persists local records of gateway payments.
type TransactionRepository interface {
	// Upsert inserts the transaction keyed by gateway id or returns the existing row untouched.
	Upsert(ctx context.Context, tx model.Transaction) (*model.Transaction, error)
	GetByID(ctx context.Context, id int64) (*model.Transaction, error)
	GetForUpdate(ctx context.Context, transactionID string) (*model.Transaction, error)
	// ListByContact returns the contact's transactions, newest first.
	ListByContact(ctx context.Context, contactID int64) ([]model.Transaction, error)
	UpdateStatus(ctx context.Context, id int64, status model.TransactionStatus, phone *string) error
}
