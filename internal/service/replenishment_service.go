package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/esc4n0rx/abastececd/internal/cache"
	"github.com/esc4n0rx/abastececd/internal/domain"
	"github.com/esc4n0rx/abastececd/internal/repository"
	"github.com/esc4n0rx/abastececd/internal/storage"
)

const (
	resetMessage = "data reset by user"

	// ArchivePrefix is the object-key prefix under which raw uploaded
	// spreadsheets are stored.
	ArchivePrefix = "uploads/"
)

// Ingester runs the spreadsheet ingestion pipeline for one dataset.
type Ingester interface {
	Ingest(ctx context.Context, fileName string, size int64, data []byte, kind domain.DatasetKind) (*domain.IngestResult, error)
}

// Calculator rebuilds the replenishment position set.
type Calculator interface {
	Recalculate(ctx context.Context) (int, error)
}

// ReplenishmentService is the orchestration layer behind the API: it chains
// ingestion with recalculation, owns the settings policy, the positions
// query layer and the full data reset.
type ReplenishmentService struct {
	ingester   Ingester
	calculator Calculator
	stock      repository.StockRepository
	demand     repository.DemandRepository
	positions  repository.PositionRepository
	settings   repository.SettingsRepository
	uploads    repository.UploadHistoryRepository
	cache      cache.PositionCache
	archive    storage.ObjectStorage
}

func NewReplenishmentService(
	ingester Ingester,
	calculator Calculator,
	stock repository.StockRepository,
	demand repository.DemandRepository,
	positions repository.PositionRepository,
	settings repository.SettingsRepository,
	uploads repository.UploadHistoryRepository,
	positionCache cache.PositionCache,
	archive storage.ObjectStorage,
) *ReplenishmentService {
	if positionCache == nil {
		positionCache = cache.NewNoopPositionCache()
	}
	if archive == nil {
		archive = storage.NoopStorage{}
	}
	return &ReplenishmentService{
		ingester:   ingester,
		calculator: calculator,
		stock:      stock,
		demand:     demand,
		positions:  positions,
		settings:   settings,
		uploads:    uploads,
		cache:      positionCache,
		archive:    archive,
	}
}

// UploadDataset ingests one spreadsheet and, unless the run committed
// nothing, recalculates positions against the fresh data. A failed
// recalculation does not roll the ingestion back; it is reported in the log
// and the positions endpoint keeps serving the previous set semantics.
func (s *ReplenishmentService) UploadDataset(ctx context.Context, fileName string, size int64, data []byte, kind domain.DatasetKind) (*domain.IngestResult, error) {
	result, err := s.ingester.Ingest(ctx, fileName, size, data, kind)
	if err != nil {
		// result is non-nil only on a total batch failure, which still
		// wiped the dataset; validation errors happen before side effects.
		if result != nil {
			s.invalidatePositions(ctx)
		}
		return result, err
	}

	s.archiveUpload(ctx, fileName, data, kind)
	s.invalidatePositions(ctx)

	if count, err := s.calculator.Recalculate(ctx); err != nil {
		log.Error().Err(err).Str("dataset", string(kind)).Msg("recalculation after upload failed")
	} else {
		log.Info().Int("positions", count).Str("dataset", string(kind)).Msg("positions recalculated after upload")
	}

	return result, nil
}

// RecalculatePositions rebuilds the position set on demand.
func (s *ReplenishmentService) RecalculatePositions(ctx context.Context) (int, error) {
	count, err := s.calculator.Recalculate(ctx)
	if err != nil {
		return count, err
	}
	s.invalidatePositions(ctx)
	return count, nil
}

// ResetAll wipes stock, demand and positions and flips prior successful
// uploads to canceled. Settings survive a reset.
func (s *ReplenishmentService) ResetAll(ctx context.Context) error {
	stockCount, _ := s.stock.Count(ctx)
	demandCount, _ := s.demand.Count(ctx)

	if err := s.stock.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to reset stock: %w", err)
	}
	if err := s.demand.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to reset demand: %w", err)
	}
	if err := s.positions.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to reset positions: %w", err)
	}
	if err := s.uploads.CancelSuccessful(ctx, resetMessage); err != nil {
		return fmt.Errorf("failed to cancel upload history: %w", err)
	}

	s.invalidatePositions(ctx)
	log.Info().
		Int("stock_records", stockCount).
		Int("demand_records", demandCount).
		Msg("all datasets reset")
	return nil
}

func (s *ReplenishmentService) GetSettings(ctx context.Context) (*domain.Settings, error) {
	return s.settings.Get(ctx)
}

// UpdateSettings merges the partial update onto the singleton and, when a
// calculation-relevant field changed, recalculates positions under the new
// policy. A recalculation failure does not undo the settings change.
func (s *ReplenishmentService) UpdateSettings(ctx context.Context, update domain.SettingsUpdate) (*domain.Settings, error) {
	if update.Empty() {
		return s.settings.Get(ctx)
	}
	if err := validateSettingsUpdate(update); err != nil {
		return nil, err
	}

	settings, err := s.settings.Update(ctx, update)
	if err != nil {
		return nil, err
	}

	if update.AffectsCalculation() {
		s.invalidatePositions(ctx)
		if count, err := s.calculator.Recalculate(ctx); err != nil {
			log.Error().Err(err).Msg("recalculation after settings change failed")
		} else {
			log.Info().Int("positions", count).Msg("positions recalculated after settings change")
		}
	}

	return settings, nil
}

// ListPositions returns filtered positions grouped by aisle in first-seen
// order, consulting the cache before the database.
func (s *ReplenishmentService) ListPositions(ctx context.Context, filter domain.PositionFilter) ([]domain.AisleGroup, error) {
	if groups, ok, err := s.cache.GetGrouped(ctx, filter); err == nil && ok {
		return groups, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("positions cache get failed")
	}

	positions, err := s.positions.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	groups := groupByAisle(positions)

	if err := s.cache.SetGrouped(ctx, filter, groups); err != nil {
		log.Warn().Err(err).Msg("positions cache set failed")
	}

	return groups, nil
}

func (s *ReplenishmentService) ListUploads(ctx context.Context) ([]domain.UploadHistoryEntry, error) {
	return s.uploads.List(ctx)
}

// ListArchivedUploads lists the raw spreadsheets kept in the object
// archive. Returns an empty listing when archiving is disabled.
func (s *ReplenishmentService) ListArchivedUploads(ctx context.Context) ([]storage.ObjectInfo, error) {
	return s.archive.ListObjects(ctx, ArchivePrefix)
}

// groupByAisle preserves the order aisles first appear in the position
// list, which follows insertion order from the calculator.
func groupByAisle(positions []domain.Position) []domain.AisleGroup {
	groups := make([]domain.AisleGroup, 0)
	index := make(map[string]int)

	for _, p := range positions {
		i, ok := index[p.Aisle]
		if !ok {
			i = len(groups)
			index[p.Aisle] = i
			groups = append(groups, domain.AisleGroup{Aisle: p.Aisle})
		}
		groups[i].Positions = append(groups[i].Positions, p)
	}

	return groups
}

func validateSettingsUpdate(update domain.SettingsUpdate) error {
	if update.CalculationMode != nil {
		switch *update.CalculationMode {
		case domain.ModeStandard, domain.ModePercentage, domain.ModeWeighted:
		default:
			return fmt.Errorf("%w: unknown calculation mode %q", domain.ErrInvalidSettings, *update.CalculationMode)
		}
	}
	if update.CriticalThreshold != nil {
		if *update.CriticalThreshold < 0 || *update.CriticalThreshold > 100 {
			return fmt.Errorf("%w: critical threshold must be between 0 and 100", domain.ErrInvalidSettings)
		}
	}
	return nil
}

// archiveUpload stores the raw spreadsheet in the object archive. Failures
// only log; the archive is not on the ingestion critical path.
func (s *ReplenishmentService) archiveUpload(ctx context.Context, fileName string, data []byte, kind domain.DatasetKind) {
	key := fmt.Sprintf("%s%s/%s_%s", ArchivePrefix, kind, time.Now().UTC().Format("20060102T150405"), filepath.Base(fileName))
	if err := s.archive.UploadObject(ctx, key, data, contentTypeFor(fileName)); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to archive uploaded file")
	}
}

func contentTypeFor(fileName string) string {
	if strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (s *ReplenishmentService) invalidatePositions(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate positions cache")
	}
}
