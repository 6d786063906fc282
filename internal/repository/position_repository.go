// internal/repository/position_repository.go
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/esc4n0rx/abastececd/internal/domain"
	"github.com/esc4n0rx/abastececd/internal/repository/postgres"
)

type PositionRepository interface {
	DeleteAll(ctx context.Context) error
	InsertBatch(ctx context.Context, positions []domain.Position) error
	List(ctx context.Context, filter domain.PositionFilter) ([]domain.Position, error)
}

type positionRepository struct {
	db *postgres.DB
}

func NewPositionRepository(db *postgres.DB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM replenishment_positions`); err != nil {
		return fmt.Errorf("error clearing replenishment positions: %w", err)
	}
	return nil
}

func (r *positionRepository) InsertBatch(ctx context.Context, positions []domain.Position) error {
	if len(positions) == 0 {
		return nil
	}

	query := `
		INSERT INTO replenishment_positions (
			aisle, slot, material, description, current_balance, demand,
			fulfillment_pct, required_qty, urgency, unit, depot
		) VALUES (
			:aisle, :slot, :material, :description, :current_balance, :demand,
			:fulfillment_pct, :required_qty, :urgency, :unit, :depot
		)
	`
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, query, positions)
		return err
	})
	if err != nil {
		return fmt.Errorf("error inserting position batch: %w", err)
	}
	return nil
}

// List returns matching positions in insertion order, which downstream
// grouping relies on for first-seen aisle ordering.
func (r *positionRepository) List(ctx context.Context, filter domain.PositionFilter) ([]domain.Position, error) {
	query := `
		SELECT id, aisle, slot, material, description, current_balance,
		       demand, fulfillment_pct, required_qty, urgency, unit, depot
		FROM replenishment_positions
		WHERE 1=1
	`

	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.Aisle != "" && filter.Aisle != "all" {
		conditions = append(conditions, fmt.Sprintf("aisle = $%d", argCounter))
		args = append(args, filter.Aisle)
		argCounter++
	}

	if filter.Urgency != "" && filter.Urgency != "all" {
		conditions = append(conditions, fmt.Sprintf("urgency = $%d", argCounter))
		args = append(args, filter.Urgency)
		argCounter++
	}

	if filter.Depot != "" && filter.Depot != "all" {
		conditions = append(conditions, fmt.Sprintf("depot = $%d", argCounter))
		args = append(args, filter.Depot)
		argCounter++
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(slot ILIKE $%d OR material ILIKE $%d OR description ILIKE $%d)",
			argCounter, argCounter, argCounter))
		args = append(args, "%"+search+"%")
		argCounter++
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id"

	var positions []domain.Position
	if err := r.db.SelectContext(ctx, &positions, query, args...); err != nil {
		return nil, fmt.Errorf("error listing positions: %w", err)
	}
	return positions, nil
}
