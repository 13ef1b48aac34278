package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
	// ErrConcurrentModification means another writer changed the goal since it was read.
	ErrConcurrentModification = errors.New("goal was modified concurrently")
	ErrActiveGoalExists       = errors.New("an active goal of this type already exists")
)

type GoalRepository interface {
	// Create deactivates any active goal of the same owner and type, then
	// inserts goal, in one transaction.
	Create(ctx context.Context, goal *model.Goal) error
	ByID(ctx context.Context, ownerID, goalID string) (*model.Goal, error)
	Active(ctx context.Context, ownerID string) ([]*model.Goal, error)
	CountActive(ctx context.Context, ownerID string) (int, error)
	// UpdateProgress writes progress only if the stored version still equals
	// goal.Version. On success goal is updated in place.
	UpdateProgress(ctx context.Context, goal *model.Goal, currentValue float64, lastResetAt time.Time) error
	Delete(ctx context.Context, ownerID, goalID string) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	deactivate := `UPDATE goals
	               SET is_active = false, updated_at = $1
	               WHERE owner_id = $2 AND goal_type = $3 AND is_active = true`

	_, err = tx.ExecContext(ctx, deactivate, goal.CreatedAt.UTC(), goal.OwnerID, string(goal.GoalType))
	if err != nil {
		return fmt.Errorf("failed to deactivate previous goal: %w", err)
	}

	insert := `INSERT INTO goals (id, owner_id, goal_type, target_value, current_value, unit, is_active, last_reset_at, version, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.ExecContext(ctx, insert,
		goal.ID,
		goal.OwnerID,
		string(goal.GoalType),
		goal.TargetValue,
		goal.CurrentValue,
		goal.Unit,
		goal.IsActive,
		utcPtr(goal.LastResetAt),
		goal.Version,
		goal.CreatedAt.UTC(),
		goal.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrActiveGoalExists
		}
		return err
	}

	return tx.Commit()
}

func (r *goalRepository) ByID(ctx context.Context, ownerID, goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1 AND owner_id = $2`

	err := r.db.GetContext(ctx, goal, query, goalID, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

func (r *goalRepository) Active(ctx context.Context, ownerID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT * FROM goals WHERE owner_id = $1 AND is_active = true ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &goals, query, ownerID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) CountActive(ctx context.Context, ownerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM goals WHERE owner_id = $1 AND is_active = true`
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&count)
	return count, err
}

func (r *goalRepository) UpdateProgress(ctx context.Context, goal *model.Goal, currentValue float64, lastResetAt time.Time) error {
	now := time.Now().UTC()
	query := `UPDATE goals
	          SET current_value = $1, last_reset_at = $2, version = version + 1, updated_at = $3
	          WHERE id = $4 AND version = $5 AND is_active = true`

	result, err := r.db.ExecContext(ctx, query,
		currentValue,
		lastResetAt.UTC(),
		now,
		goal.ID,
		goal.Version,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrConcurrentModification
	}

	anchor := lastResetAt
	goal.CurrentValue = currentValue
	goal.LastResetAt = &anchor
	goal.Version++
	goal.UpdatedAt = now
	return nil
}

func (r *goalRepository) Delete(ctx context.Context, ownerID, goalID string) error {
	query := `DELETE FROM goals WHERE id = $1 AND owner_id = $2`
	result, err := r.db.ExecContext(ctx, query, goalID, ownerID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

// isUniqueViolation works for both SQLite and PostgreSQL error texts
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
