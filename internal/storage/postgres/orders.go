package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	"github.com/polkiloo/prisonmarket/internal/domain/model"
)

type orderRepository struct {
	db querier
}

const selectOrder = `SELECT o.id, o.prisoner_id, o.contact_id, p.full_name, c.full_name, o.status, o.total,
                            o.payment_status, o.delivery_proof_image, o.transaction_id, o.created_at, o.updated_at
                     FROM orders o
                     JOIN prisoners p ON p.id = o.prisoner_id
                     JOIN prisoner_contacts c ON c.id = o.contact_id`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.RecipientID, &o.PlacerID, &o.RecipientName, &o.PlacerName, &o.Status, &o.Total,
		&o.PaymentStatus, &o.DeliveryProofImage, &o.TransactionID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) LatestPending(ctx context.Context, recipientID, placerID int64) (*model.Order, error) {
	const query = selectOrder + `
                   WHERE o.prisoner_id=$1 AND o.contact_id=$2 AND o.status=$3
                   ORDER BY o.created_at DESC, o.id DESC
                   LIMIT 1
                   FOR UPDATE OF o`
	order, err := scanOrder(r.db.QueryRow(ctx, query, recipientID, placerID, model.OrderStatusPending))
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (r *orderRepository) Create(ctx context.Context, recipientID, placerID int64) (*model.Order, error) {
	const query = `INSERT INTO orders (prisoner_id, contact_id, status, payment_status, total)
                   VALUES ($1, $2, $3, $4, 0)
                   RETURNING id, created_at, updated_at`
	order := model.Order{
		RecipientID:   recipientID,
		PlacerID:      placerID,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		Total:         decimal.Zero,
	}
	err := r.db.QueryRow(ctx, query, recipientID, placerID, order.Status, order.PaymentStatus).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &order, nil
}

func (r *orderRepository) AddItem(ctx context.Context, item model.OrderItem) (*model.OrderItem, error) {
	const query = `INSERT INTO order_items (order_id, product_id, quantity, price_at_time_of_order)
                   VALUES ($1, $2, $3, $4)
                   RETURNING id`
	err := r.db.QueryRow(ctx, query, item.OrderID, item.ProductID, item.Quantity, item.PriceAtOrder).Scan(&item.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return &item, nil
}

func (r *orderRepository) ListItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	const query = `SELECT i.id, i.order_id, i.product_id, pr.name, i.quantity, i.price_at_time_of_order
                   FROM order_items i
                   JOIN products pr ON pr.id = i.product_id
                   WHERE i.order_id=$1
                   ORDER BY i.id`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceAtOrder); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) UpdateTotal(ctx context.Context, orderID int64, total decimal.Decimal) error {
	const query = `UPDATE orders SET total=$1, updated_at=NOW() WHERE id=$2`
	return r.execOne(ctx, query, total, orderID)
}

func (r *orderRepository) GetByID(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, selectOrder+` WHERE o.id=$1`, orderID))
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (r *orderRepository) ListByPlacer(ctx context.Context, placerID int64) ([]model.Order, error) {
	const query = selectOrder + ` WHERE o.contact_id=$1 ORDER BY o.created_at DESC, o.id DESC`
	rows, err := r.db.Query(ctx, query, placerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) DailyWeight(ctx context.Context, recipientID int64, from, to time.Time) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(pr.weight * i.quantity), 0)
                   FROM order_items i
                   JOIN orders o ON o.id = i.order_id
                   JOIN products pr ON pr.id = i.product_id
                   WHERE o.prisoner_id=$1 AND o.created_at >= $2 AND o.created_at < $3`
	var used decimal.Decimal
	if err := r.db.QueryRow(ctx, query, recipientID, from, to).Scan(&used); err != nil {
		return decimal.Zero, err
	}
	return used, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`
	return r.execOne(ctx, query, status, orderID)
}

func (r *orderRepository) LinkTransaction(ctx context.Context, orderID, transactionRowID int64) error {
	const query = `UPDATE orders SET transaction_id=$1, updated_at=NOW() WHERE id=$2`
	return r.execOne(ctx, query, transactionRowID, orderID)
}

func (r *orderRepository) SetPaymentStatusByTransaction(ctx context.Context, transactionRowID int64, status model.PaymentStatus) (int64, error) {
	const query = `UPDATE orders SET payment_status=$1, updated_at=NOW() WHERE transaction_id=$2`
	tag, err := r.db.Exec(ctx, query, status, transactionRowID)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *orderRepository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
