// internal/repository/settings_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/esc4n0rx/abastececd/internal/domain"
	"github.com/esc4n0rx/abastececd/internal/repository/postgres"
)

// settingsID is fixed: the settings table holds exactly one row at all times.
const settingsID = 1

const selectSettingsQuery = `
	SELECT id, calculation_mode, critical_threshold, notifications,
	       auto_refresh, compact_mode, last_updated
	FROM settings
	WHERE id = $1
`

type SettingsRepository interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, update domain.SettingsUpdate) (*domain.Settings, error)
}

type settingsRepository struct {
	db *postgres.DB
}

func NewSettingsRepository(db *postgres.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	var settings domain.Settings
	if err := r.db.GetContext(ctx, &settings, selectSettingsQuery, settingsID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("error fetching settings: %w", err)
	}
	return &settings, nil
}

// Update merges the non-nil fields onto the singleton row and refreshes
// last_updated. The read and write share one transaction so concurrent
// partial updates cannot drop each other's fields.
func (r *settingsRepository) Update(ctx context.Context, update domain.SettingsUpdate) (*domain.Settings, error) {
	var current domain.Settings

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &current, selectSettingsQuery, settingsID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrSettingsNotFound
			}
			return fmt.Errorf("error fetching settings: %w", err)
		}

		if update.CalculationMode != nil {
			current.CalculationMode = *update.CalculationMode
		}
		if update.CriticalThreshold != nil {
			current.CriticalThreshold = *update.CriticalThreshold
		}
		if update.Notifications != nil {
			current.Notifications = *update.Notifications
		}
		if update.AutoRefresh != nil {
			current.AutoRefresh = *update.AutoRefresh
		}
		if update.CompactMode != nil {
			current.CompactMode = *update.CompactMode
		}
		current.LastUpdated = time.Now().UTC()

		query := `
			UPDATE settings
			SET calculation_mode = :calculation_mode,
			    critical_threshold = :critical_threshold,
			    notifications = :notifications,
			    auto_refresh = :auto_refresh,
			    compact_mode = :compact_mode,
			    last_updated = :last_updated
			WHERE id = :id
		`
		if _, err := tx.NamedExecContext(ctx, query, &current); err != nil {
			return fmt.Errorf("error updating settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &current, nil
}
