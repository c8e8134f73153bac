package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	"github.com/polkiloo/prisonmarket/internal/domain/model"
)

type productRepository struct {
	db querier
}

type recipientRepository struct {
	db querier
}

type contactRepository struct {
	db querier
}

const selectProduct = `SELECT id, name, description, price, weight, stock, category_id, trending FROM products WHERE id=$1`

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return r.get(ctx, selectProduct, id)
}

func (r *productRepository) GetForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	return r.get(ctx, selectProduct+` FOR UPDATE`, id)
}

func (r *productRepository) get(ctx context.Context, query string, id int64) (*model.Product, error) {
	var p model.Product
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Weight, &p.Stock, &p.CategoryID, &p.Trending)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	const query = `UPDATE products SET stock = stock - $1 WHERE id=$2 AND stock >= $1`
	tag, err := r.db.Exec(ctx, query, quantity, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			return &domainErrors.InsufficientStockError{ProductID: id}
		}
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return &domainErrors.InsufficientStockError{ProductID: id}
	}
	return nil
}

func (r *recipientRepository) Lock(ctx context.Context, id int64) (*model.Recipient, error) {
	const query = `SELECT id, full_name, identification_number FROM prisoners WHERE id=$1 FOR UPDATE`
	var rec model.Recipient
	if err := r.db.QueryRow(ctx, query, id).Scan(&rec.ID, &rec.FullName, &rec.IdentificationNumber); err != nil {
		return nil, mapError(err)
	}
	return &rec, nil
}

func (r *contactRepository) GetByID(ctx context.Context, id int64) (*model.Contact, error) {
	const query = `SELECT id, full_name, phone, approved FROM prisoner_contacts WHERE id=$1`
	var c model.Contact
	if err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.FullName, &c.Phone, &c.Approved); err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}
