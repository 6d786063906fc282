// internal/repository/demand_repository.go
package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/esc4n0rx/abastececd/internal/domain"
	"github.com/esc4n0rx/abastececd/internal/repository/postgres"
)

type DemandRepository interface {
	DeleteAll(ctx context.Context) error
	InsertBatch(ctx context.Context, records []domain.DemandRecord) error
	ListAll(ctx context.Context) ([]domain.DemandRecord, error)
	Count(ctx context.Context) (int, error)
}

type demandRepository struct {
	db *postgres.DB
}

func NewDemandRepository(db *postgres.DB) DemandRepository {
	return &demandRepository{db: db}
}

func (r *demandRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM demand`); err != nil {
		return fmt.Errorf("error clearing demand: %w", err)
	}
	return nil
}

func (r *demandRepository) InsertBatch(ctx context.Context, records []domain.DemandRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO demand (
			warehouse_no, transfer_order, status, transport_type, transport_prio,
			user_code, created_date, created_time, movement_type, deposit_type,
			slot, planned_date, transport_ref, order_item, item_done, material,
			center, requested_qty, unit, pick_order, picked_qty, deposit,
			description, sector, pallet, origin_pallet, address, ot,
			purchase_order, delivery, user_name, production_date, record_time, date
		) VALUES (
			:warehouse_no, :transfer_order, :status, :transport_type, :transport_prio,
			:user_code, :created_date, :created_time, :movement_type, :deposit_type,
			:slot, :planned_date, :transport_ref, :order_item, :item_done, :material,
			:center, :requested_qty, :unit, :pick_order, :picked_qty, :deposit,
			:description, :sector, :pallet, :origin_pallet, :address, :ot,
			:purchase_order, :delivery, :user_name, :production_date, :record_time, :date
		)
	`
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, query, records)
		return err
	})
	if err != nil {
		return fmt.Errorf("error inserting demand batch: %w", err)
	}
	return nil
}

func (r *demandRepository) ListAll(ctx context.Context) ([]domain.DemandRecord, error) {
	query := `
		SELECT id, warehouse_no, transfer_order, status, transport_type,
		       transport_prio, user_code, created_date, created_time,
		       movement_type, deposit_type, slot, planned_date, transport_ref,
		       order_item, item_done, material, center, requested_qty, unit,
		       pick_order, picked_qty, deposit, description, sector, pallet,
		       origin_pallet, address, ot, purchase_order, delivery, user_name,
		       production_date, record_time, date
		FROM demand
		ORDER BY id
	`

	var records []domain.DemandRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("error listing demand: %w", err)
	}
	return records, nil
}

func (r *demandRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM demand`); err != nil {
		return 0, fmt.Errorf("error counting demand: %w", err)
	}
	return count, nil
}
