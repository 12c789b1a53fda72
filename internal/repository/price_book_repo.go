package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/print24/pricing_api/internal/models"
)

// PriceBookRepository handles data access for price books and their entries.
type PriceBookRepository struct {
	db *sqlx.DB
}

// NewPriceBookRepository creates a new PriceBookRepository.
func NewPriceBookRepository(db *sqlx.DB) *PriceBookRepository {
	return &PriceBookRepository{db: db}
}

// BaseEntry is the result of the base-price lookup: the winning entry plus
// the book it came from.
type BaseEntry struct {
	EntryID     int             `db:"entry_id"`
	PriceBookID int             `db:"price_book_id"`
	BookName    string          `db:"book_name"`
	Currency    string          `db:"currency"`
	BasePrice   decimal.Decimal `db:"base_price"`
	Specificity int             `db:"specificity"`
}

// FindBaseEntry returns the most specific active entry for a product, or
// nil when the product has no price anywhere in the hierarchy (the product
// is unavailable in this context). Search order: zone+segment book, zone
// book, segment book, master book. Books and entries must be active, books
// non-virtual, and the product must still exist (orphaned entries are
// skipped here and swept separately).
func (r *PriceBookRepository) FindBaseEntry(ctx context.Context, productID int, zoneID, segmentID *int) (*BaseEntry, error) {
	const q = `
        SELECT e.id AS entry_id, e.price_book_id, b.name AS book_name, b.currency, e.base_price,
               CASE
                   WHEN b.geo_zone_id IS NOT NULL AND b.user_segment_id IS NOT NULL THEN 0
                   WHEN b.geo_zone_id IS NOT NULL THEN 1
                   WHEN b.user_segment_id IS NOT NULL THEN 2
                   ELSE 3
               END AS specificity
        FROM price_book_entries e
        JOIN price_books b ON b.id = e.price_book_id
        JOIN products p ON p.id = e.product_id AND p.is_active = true
        WHERE e.product_id = $1
          AND e.is_active = true
          AND b.is_active = true
          AND b.is_virtual = false
          AND (
               (b.geo_zone_id = $2 AND b.user_segment_id = $3)
            OR (b.geo_zone_id = $2 AND b.user_segment_id IS NULL)
            OR (b.user_segment_id = $3 AND b.geo_zone_id IS NULL)
            OR b.is_master = true
          )
        ORDER BY specificity ASC, b.override_priority DESC
        LIMIT 1`

	var entry BaseEntry
	if err := r.db.GetContext(ctx, &entry, q, productID, zoneID, segmentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// GetByID returns a price book by id.
func (r *PriceBookRepository) GetByID(ctx context.Context, id int) (*models.PriceBook, error) {
	const q = `SELECT * FROM price_books WHERE id = $1 LIMIT 1`

	var b models.PriceBook
	if err := r.db.GetContext(ctx, &b, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// GetMaster returns the master price book, or nil if none is configured.
func (r *PriceBookRepository) GetMaster(ctx context.Context) (*models.PriceBook, error) {
	const q = `SELECT * FROM price_books WHERE is_master = true AND is_active = true LIMIT 1`

	var b models.PriceBook
	if err := r.db.GetContext(ctx, &b, q); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// List returns all price books, most specific scopes first.
func (r *PriceBookRepository) List(ctx context.Context) ([]models.PriceBook, error) {
	const q = `SELECT * FROM price_books ORDER BY is_master DESC, override_priority DESC, name`

	var books []models.PriceBook
	if err := r.db.SelectContext(ctx, &books, q); err != nil {
		return nil, err
	}
	return books, nil
}

// Create inserts a price book.
func (r *PriceBookRepository) Create(ctx context.Context, book *models.PriceBook) error {
	const q = `
        INSERT INTO price_books
            (name, currency, is_master, is_default, geo_zone_id, user_segment_id,
             parent_book_id, is_override, override_priority, is_virtual, calculation_logic, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, q,
		book.Name, book.Currency, book.IsMaster, book.IsDefault,
		book.GeoZoneID, book.UserSegmentID, book.ParentBookID,
		book.IsOverride, book.OverridePriority, book.IsVirtual,
		book.CalculationLogic, book.IsActive,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
}

// Update updates a price book's mutable fields.
func (r *PriceBookRepository) Update(ctx context.Context, book *models.PriceBook) error {
	const q = `
        UPDATE price_books
        SET name = $1, currency = $2, is_default = $3, geo_zone_id = $4,
            user_segment_id = $5, parent_book_id = $6, is_override = $7,
            override_priority = $8, is_virtual = $9, calculation_logic = $10,
            is_active = $11, updated_at = NOW()
        WHERE id = $12
        RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, q,
		book.Name, book.Currency, book.IsDefault, book.GeoZoneID,
		book.UserSegmentID, book.ParentBookID, book.IsOverride,
		book.OverridePriority, book.IsVirtual, book.CalculationLogic,
		book.IsActive, book.ID,
	).Scan(&book.UpdatedAt)
}

// SetMaster promotes one book to master. The previous master is unset and
// the new one set inside a single transaction; the partial unique index on
// is_master makes a second concurrent promotion fail instead of producing
// two masters.
func (r *PriceBookRepository) SetMaster(ctx context.Context, bookID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE price_books SET is_master = false, updated_at = NOW() WHERE is_master = true`); err != nil {
		return fmt.Errorf("failed to unset previous master: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE price_books SET is_master = true, updated_at = NOW() WHERE id = $1`, bookID)
	if err != nil {
		return fmt.Errorf("failed to set master: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// Delete removes a price book and its entries.
func (r *PriceBookRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM price_books WHERE id = $1`, id)
	return err
}

// EntryWithBook joins an entry with its book's scope for hierarchy listings
// and conflict analysis.
type EntryWithBook struct {
	models.PriceBookEntry
	BookName      string `db:"book_name"`
	Currency      string `db:"currency"`
	IsMaster      bool   `db:"is_master"`
	GeoZoneID     *int   `db:"geo_zone_id"`
	UserSegmentID *int   `db:"user_segment_id"`
}

// ListEntriesForProduct returns every active entry for a product across all
// active, non-virtual books, with the owning book's scope attached.
func (r *PriceBookRepository) ListEntriesForProduct(ctx context.Context, productID int) ([]EntryWithBook, error) {
	const q = `
        SELECT e.*, b.name AS book_name, b.currency, b.is_master, b.geo_zone_id, b.user_segment_id
        FROM price_book_entries e
        JOIN price_books b ON b.id = e.price_book_id
        WHERE e.product_id = $1
          AND e.is_active = true
          AND b.is_active = true
          AND b.is_virtual = false
        ORDER BY b.is_master DESC, b.override_priority DESC`

	var entries []EntryWithBook
	if err := r.db.SelectContext(ctx, &entries, q, productID); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetEntry returns the entry for one (book, product) pair.
func (r *PriceBookRepository) GetEntry(ctx context.Context, bookID, productID int) (*models.PriceBookEntry, error) {
	const q = `SELECT * FROM price_book_entries WHERE price_book_id = $1 AND product_id = $2 LIMIT 1`

	var e models.PriceBookEntry
	if err := r.db.GetContext(ctx, &e, q, bookID, productID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// UpsertEntry inserts or updates the entry for a (book, product) pair. The
// unique constraint on the pair guarantees at most one entry ever exists.
func (r *PriceBookRepository) UpsertEntry(ctx context.Context, entry *models.PriceBookEntry) error {
	const q = `
        INSERT INTO price_book_entries (price_book_id, product_id, base_price, compare_at_price, is_active)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (price_book_id, product_id) DO UPDATE SET
            base_price = EXCLUDED.base_price,
            compare_at_price = EXCLUDED.compare_at_price,
            is_active = EXCLUDED.is_active,
            updated_at = NOW()
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, q,
		entry.PriceBookID, entry.ProductID, entry.BasePrice,
		entry.CompareAtPrice, entry.IsActive,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
}

// DeleteEntry removes one entry.
func (r *PriceBookRepository) DeleteEntry(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM price_book_entries WHERE id = $1`, id)
	return err
}

// PruneOrphanedEntries deletes entries whose product no longer exists.
// Returns the number of rows removed.
func (r *PriceBookRepository) PruneOrphanedEntries(ctx context.Context) (int64, error) {
	const q = `
        DELETE FROM price_book_entries e
        WHERE NOT EXISTS (SELECT 1 FROM products p WHERE p.id = e.product_id)`

	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
