package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ConflictRepository applies conflict-resolution plans. Both strategies
// mutate multiple rows across modifiers and entries, so every plan runs in
// a single transaction: partial application would leave the hierarchy
// inconsistent.
type ConflictRepository struct {
	db *sqlx.DB
}

// NewConflictRepository creates a new ConflictRepository.
func NewConflictRepository(db *sqlx.DB) *ConflictRepository {
	return &ConflictRepository{db: db}
}

// ResolutionPlan is the concrete set of mutations a resolution strategy
// decided on. An empty plan is valid: re-running a resolution on an
// already-clean state modifies zero rows and still succeeds.
type ResolutionPlan struct {
	DeleteModifierIDs []int
	DeleteEntryIDs    []int
	// ShiftModifiers maps flat-type modifier ids to the delta to add to
	// their value.
	ShiftModifiers map[int]decimal.Decimal
}

// Apply executes the plan transactionally and returns the number of
// modifiers/entries deleted or adjusted.
func (r *ConflictRepository) Apply(ctx context.Context, plan ResolutionPlan) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	modified := 0

	if len(plan.DeleteModifierIDs) > 0 {
		query, args, err := sqlx.In(`DELETE FROM price_modifiers WHERE id IN (?)`, plan.DeleteModifierIDs)
		if err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return 0, fmt.Errorf("failed to delete conflicting modifiers: %w", err)
		}
		n, _ := res.RowsAffected()
		modified += int(n)
	}

	if len(plan.DeleteEntryIDs) > 0 {
		query, args, err := sqlx.In(`DELETE FROM price_book_entries WHERE id IN (?)`, plan.DeleteEntryIDs)
		if err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return 0, fmt.Errorf("failed to delete conflicting entries: %w", err)
		}
		n, _ := res.RowsAffected()
		modified += int(n)
	}

	for id, delta := range plan.ShiftModifiers {
		res, err := tx.ExecContext(ctx,
			`UPDATE price_modifiers SET value = value + $1, updated_at = NOW() WHERE id = $2`,
			delta, id)
		if err != nil {
			return 0, fmt.Errorf("failed to shift modifier %d: %w", id, err)
		}
		n, _ := res.RowsAffected()
		modified += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return modified, nil
}
