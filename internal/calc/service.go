// internal/calc/service.go
package calc

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/esc4n0rx/abastececd/internal/domain"
	"github.com/esc4n0rx/abastececd/internal/repository"
)

const defaultBatchSize = 100

// Service rebuilds the full replenishment position set from the current
// stock and demand datasets under the configured policy. Unlike ingestion,
// a batch insert failure here aborts the run: a half-written position set
// would silently misreport the warehouse.
type Service struct {
	settings  repository.SettingsRepository
	stock     repository.StockRepository
	demand    repository.DemandRepository
	positions repository.PositionRepository
	batchSize int
}

func NewService(
	settings repository.SettingsRepository,
	stock repository.StockRepository,
	demand repository.DemandRepository,
	positions repository.PositionRepository,
	batchSize int,
) *Service {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Service{
		settings:  settings,
		stock:     stock,
		demand:    demand,
		positions: positions,
		batchSize: batchSize,
	}
}

// Recalculate replaces the position set and returns how many positions were
// written. The previous set is deleted up front; on insert failure the set
// may be left incomplete, which the returned error states.
func (s *Service) Recalculate(ctx context.Context) (int, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return 0, fmt.Errorf("cannot calculate positions: %w", err)
		}
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := s.positions.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear previous positions: %w", err)
	}

	stock, err := s.stock.ListByStorageArea(ctx, domain.PickingAreaCode)
	if err != nil {
		return 0, fmt.Errorf("failed to load picking stock: %w", err)
	}

	demand, err := s.demand.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load demand: %w", err)
	}

	positions := BuildPositions(stock, AggregateDemand(demand), settings)

	inserted := 0
	for start := 0; start < len(positions); start += s.batchSize {
		end := start + s.batchSize
		if end > len(positions) {
			end = len(positions)
		}
		if err := s.positions.InsertBatch(ctx, positions[start:end]); err != nil {
			return inserted, fmt.Errorf("failed to insert positions, position set may be incomplete: %w", err)
		}
		inserted += end - start
	}

	log.Info().
		Int("stock_slots", len(stock)).
		Int("demand_lines", len(demand)).
		Int("positions", inserted).
		Str("mode", settings.CalculationMode).
		Int("critical_threshold", settings.CriticalThreshold).
		Msg("replenishment positions recalculated")

	return inserted, nil
}
