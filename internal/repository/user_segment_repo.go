package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/print24/pricing_api/internal/models"
)

// UserSegmentRepository handles database operations for customer segments.
type UserSegmentRepository struct {
	db *sqlx.DB
}

// NewUserSegmentRepository creates a new UserSegmentRepository.
func NewUserSegmentRepository(db *sqlx.DB) *UserSegmentRepository {
	return &UserSegmentRepository{db: db}
}

// GetByID returns an active segment by id.
func (r *UserSegmentRepository) GetByID(ctx context.Context, id int) (*models.UserSegment, error) {
	const q = `SELECT * FROM user_segments WHERE id = $1 AND is_active = true LIMIT 1`
	return r.get(ctx, q, id)
}

// GetByCode returns an active segment by code.
func (r *UserSegmentRepository) GetByCode(ctx context.Context, code string) (*models.UserSegment, error) {
	const q = `SELECT * FROM user_segments WHERE code = $1 AND is_active = true LIMIT 1`
	return r.get(ctx, q, code)
}

// GetDefault returns the segment flagged as default.
func (r *UserSegmentRepository) GetDefault(ctx context.Context) (*models.UserSegment, error) {
	const q = `SELECT * FROM user_segments WHERE is_default = true AND is_active = true LIMIT 1`
	return r.get(ctx, q)
}

// GetForUser returns the segment assigned to a user, or nil when the user
// has no assignment.
func (r *UserSegmentRepository) GetForUser(ctx context.Context, userID int) (*models.UserSegment, error) {
	const q = `
        SELECT s.* FROM user_segments s
        JOIN user_segment_assignments a ON a.segment_id = s.id
        WHERE a.user_id = $1 AND s.is_active = true
        LIMIT 1`
	return r.get(ctx, q, userID)
}

// List returns all active segments.
func (r *UserSegmentRepository) List(ctx context.Context) ([]models.UserSegment, error) {
	const q = `SELECT * FROM user_segments WHERE is_active = true ORDER BY code`

	var segments []models.UserSegment
	if err := r.db.SelectContext(ctx, &segments, q); err != nil {
		return nil, err
	}
	return segments, nil
}

func (r *UserSegmentRepository) get(ctx context.Context, q string, args ...interface{}) (*models.UserSegment, error) {
	var s models.UserSegment
	if err := r.db.GetContext(ctx, &s, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
