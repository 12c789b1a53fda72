package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/print24/pricing_api/internal/models"
)

// OrderRepository persists orders with their embedded price snapshots.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists an order together with its snapshot in one statement.
// The snapshot is written exactly once; no code path updates it afterwards.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	const q = `
        INSERT INTO orders
            (order_number, user_id, product_id, quantity, currency,
             subtotal, gst_amount, total_payable, snapshot, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at`

	return r.db.QueryRowxContext(ctx, q,
		order.OrderNumber, order.UserID, order.ProductID, order.Quantity,
		order.Currency, order.Subtotal, order.GSTAmount, order.TotalPayable,
		order.Snapshot, order.Status,
	).Scan(&order.ID, &order.CreatedAt)
}

// GetByID returns an order by id.
func (r *OrderRepository) GetByID(ctx context.Context, id int) (*models.Order, error) {
	const q = `SELECT * FROM orders WHERE id = $1 LIMIT 1`

	var o models.Order
	if err := r.db.GetContext(ctx, &o, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}
