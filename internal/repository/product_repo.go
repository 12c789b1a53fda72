package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/print24/pricing_api/internal/models"
)

// ProductRepository reads the pricing-relevant slice of the product catalog.
// The catalog itself is owned by the catalog service; this table is a
// replicated projection.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID returns an active product by id, or nil if it does not exist.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE id = $1 AND is_active = true LIMIT 1`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetByIDs returns the active products among the given ids, keyed by id.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int) (map[int]models.Product, error) {
	if len(ids) == 0 {
		return map[int]models.Product{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM products WHERE id IN (?) AND is_active = true`, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, err
	}

	result := make(map[int]models.Product, len(products))
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}
