package repository

import (
	"context"

	"github.com/polkiloo/prisonmarket/internal/domain/model"
)

// ProductRepository exposes catalog rows needed for stock accounting.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	// GetForUpdate loads the product and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*model.Product, error)
	// DecrementStock fails with ErrInsufficientStock when fewer than quantity units remain.
	DecrementStock(ctx context.Context, id int64, quantity int) error
}

// RecipientRepository exposes recipients of orders.
type RecipientRepository interface {
	// Lock loads the recipient and locks its row so daily limit checks serialize.
	Lock(ctx context.Context, id int64) (*model.Recipient, error)
}

// ContactRepository exposes order placers.
type ContactRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Contact, error)
}
