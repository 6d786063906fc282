// internal/repository/stock_repository.go
package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/esc4n0rx/abastececd/internal/domain"
	"github.com/esc4n0rx/abastececd/internal/repository/postgres"
)

type StockRepository interface {
	DeleteAll(ctx context.Context) error
	InsertBatch(ctx context.Context, records []domain.StockRecord) error
	ListByStorageArea(ctx context.Context, area string) ([]domain.StockRecord, error)
	Count(ctx context.Context) (int, error)
}

type stockRepository struct {
	db *postgres.DB
}

func NewStockRepository(db *postgres.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM stock`); err != nil {
		return fmt.Errorf("error clearing stock: %w", err)
	}
	return nil
}

func (r *stockRepository) InsertBatch(ctx context.Context, records []domain.StockRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO stock (
			material, center, description, deposit_type, slot, available_qty,
			base_unit, goods_receipt_date, storage_area, slot_type,
			deposit_unit, deposit
		) VALUES (
			:material, :center, :description, :deposit_type, :slot, :available_qty,
			:base_unit, :goods_receipt_date, :storage_area, :slot_type,
			:deposit_unit, :deposit
		)
	`
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, query, records)
		return err
	})
	if err != nil {
		return fmt.Errorf("error inserting stock batch: %w", err)
	}
	return nil
}

func (r *stockRepository) ListByStorageArea(ctx context.Context, area string) ([]domain.StockRecord, error) {
	query := `
		SELECT id, material, center, description, deposit_type, slot,
		       available_qty, base_unit, goods_receipt_date, storage_area,
		       slot_type, deposit_unit, deposit
		FROM stock
		WHERE storage_area = $1
		ORDER BY id
	`

	var records []domain.StockRecord
	if err := r.db.SelectContext(ctx, &records, query, area); err != nil {
		return nil, fmt.Errorf("error listing stock by storage area: %w", err)
	}
	return records, nil
}

func (r *stockRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM stock`); err != nil {
		return 0, fmt.Errorf("error counting stock: %w", err)
	}
	return count, nil
}
