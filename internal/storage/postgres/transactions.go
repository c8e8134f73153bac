package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	"github.com/polkiloo/prisonmarket/internal/domain/model"
)

const selectTransaction = `SELECT id, transaction_id, contact_id, phone, amount, status, created_at FROM transactions`

type transactionRepository struct {
	db querier
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(&t.ID, &t.TransactionID, &t.ContactID, &t.Phone, &t.Amount, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) Upsert(ctx context.Context, tx model.Transaction) (*model.Transaction, error) {
	const query = `INSERT INTO transactions (transaction_id, contact_id, phone, amount, status)
                   VALUES ($1, $2, $3, $4, $5)
                   ON CONFLICT (transaction_id) DO NOTHING
                   RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, tx.TransactionID, tx.ContactID, tx.Phone, tx.Amount, tx.Status).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.GetForUpdate(ctx, tx.TransactionID)
		}
		return nil, mapError(err)
	}
	return &tx, nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*model.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRow(ctx, selectTransaction+` WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (r *transactionRepository) GetForUpdate(ctx context.Context, transactionID string) (*model.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRow(ctx, selectTransaction+` WHERE transaction_id=$1 FOR UPDATE`, transactionID))
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (r *transactionRepository) ListByContact(ctx context.Context, contactID int64) ([]model.Transaction, error) {
	rows, err := r.db.Query(ctx, selectTransaction+` WHERE contact_id=$1 ORDER BY id DESC`, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id int64, status model.TransactionStatus, phone *string) error {
	const query = `UPDATE transactions SET status=$1, phone=COALESCE($2, phone) WHERE id=$3`
	tag, err := r.db.Exec(ctx, query, status, phone, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
