package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swoopdelivery/swoopsim/internal/models"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderInsert = `
	INSERT INTO orders (
		id, hole_number, status, assigned_to, items, time_of_day,
		placed_at, assigned_at, delivered_at, delivery_hole
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func orderInsertArgs(order *models.Order) ([]interface{}, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		order.ID,
		order.HoleNumber,
		string(order.Status),
		order.AssignedTo,
		items,
		string(order.TimeOfDay),
		order.PlacedAt,
		order.AssignedAt,
		order.DeliveredAt,
		order.DeliveryHole,
	}, nil
}

func (r *OrderRepository) BulkCreate(ctx context.Context, orders []*models.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, order := range orders {
		args, err := orderInsertArgs(order)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, orderInsert, args...); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	args, err := orderInsertArgs(order)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, orderInsert, args...)
	return err
}

const orderSelect = `
	SELECT id, hole_number, status, assigned_to, items, time_of_day,
	       placed_at, assigned_at, delivered_at, delivery_hole
	FROM orders`

func (r *OrderRepository) GetAll(ctx context.Context) ([]*models.Order, error) {
	rows, err := r.pool.Query(ctx, orderSelect+` ORDER BY placed_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *OrderRepository) GetByAsset(ctx context.Context, assetID string) ([]*models.Order, error) {
	rows, err := r.pool.Query(ctx, orderSelect+` WHERE assigned_to = $1 ORDER BY placed_at`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanOrders(rows rowScanner) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		var (
			order  models.Order
			status string
			items  []byte
			tod    string
		)
		if err := rows.Scan(&order.ID, &order.HoleNumber, &status, &order.AssignedTo,
			&items, &tod, &order.PlacedAt, &order.AssignedAt, &order.DeliveredAt,
			&order.DeliveryHole); err != nil {
			return nil, err
		}
		if len(items) > 0 {
			if err := json.Unmarshal(items, &order.Items); err != nil {
				return nil, err
			}
		}
		order.Status = models.OrderStatus(status)
		order.TimeOfDay = models.TimeOfDay(tod)
		orders = append(orders, &order)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count)
	return count, err
}

func (r *OrderRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM orders`)
	return err
}
