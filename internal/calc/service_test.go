package calc

import (
	"context"
	"errors"
	"testing"

	"github.com/esc4n0rx/abastececd/internal/domain"
)

type fakeSettingsRepo struct {
	settings *domain.Settings
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	if f.settings == nil {
		return nil, domain.ErrSettingsNotFound
	}
	return f.settings, nil
}

func (f *fakeSettingsRepo) Update(ctx context.Context, update domain.SettingsUpdate) (*domain.Settings, error) {
	return f.settings, nil
}

type fakeStockRepo struct {
	records []domain.StockRecord
	area    string
}

func (f *fakeStockRepo) DeleteAll(ctx context.Context) error { return nil }

func (f *fakeStockRepo) InsertBatch(ctx context.Context, records []domain.StockRecord) error {
	return nil
}

func (f *fakeStockRepo) ListByStorageArea(ctx context.Context, area string) ([]domain.StockRecord, error) {
	f.area = area
	return f.records, nil
}

func (f *fakeStockRepo) Count(ctx context.Context) (int, error) { return len(f.records), nil }

type fakeDemandRepo struct {
	records []domain.DemandRecord
}

func (f *fakeDemandRepo) DeleteAll(ctx context.Context) error { return nil }

func (f *fakeDemandRepo) InsertBatch(ctx context.Context, records []domain.DemandRecord) error {
	return nil
}

func (f *fakeDemandRepo) ListAll(ctx context.Context) ([]domain.DemandRecord, error) {
	return f.records, nil
}

func (f *fakeDemandRepo) Count(ctx context.Context) (int, error) { return len(f.records), nil }

type fakePositionRepo struct {
	deletes   int
	batches   [][]domain.Position
	failBatch int // 1-based batch index to fail, 0 never fails
}

func (f *fakePositionRepo) DeleteAll(ctx context.Context) error {
	f.deletes++
	return nil
}

func (f *fakePositionRepo) InsertBatch(ctx context.Context, positions []domain.Position) error {
	f.batches = append(f.batches, positions)
	if f.failBatch > 0 && len(f.batches) == f.failBatch {
		return errors.New("insert failed")
	}
	return nil
}

func (f *fakePositionRepo) List(ctx context.Context, filter domain.PositionFilter) ([]domain.Position, error) {
	var all []domain.Position
	for _, b := range f.batches {
		all = append(all, b...)
	}
	return all, nil
}

func manyStock(n int) []domain.StockRecord {
	records := make([]domain.StockRecord, n)
	for i := range records {
		records[i] = domain.StockRecord{
			Material:     "M",
			Slot:         "H3S06010",
			AvailableQty: 1,
			StorageArea:  domain.PickingAreaCode,
		}
	}
	return records
}

func TestRecalculateRequiresSettings(t *testing.T) {
	svc := NewService(&fakeSettingsRepo{}, &fakeStockRepo{}, &fakeDemandRepo{}, &fakePositionRepo{}, 0)

	_, err := svc.Recalculate(context.Background())
	if !errors.Is(err, domain.ErrSettingsNotFound) {
		t.Fatalf("got %v, want ErrSettingsNotFound", err)
	}
}

func TestRecalculateReplacesPositionSet(t *testing.T) {
	settings := &fakeSettingsRepo{settings: defaultSettings()}
	stock := &fakeStockRepo{records: []domain.StockRecord{
		{Material: "X", Slot: "H3S06010", AvailableQty: 10, BaseUnit: "UN"},
	}}
	demand := &fakeDemandRepo{records: []domain.DemandRecord{
		{Material: "X", RequestedQty: 20},
	}}
	positions := &fakePositionRepo{}

	svc := NewService(settings, stock, demand, positions, 0)

	count, err := svc.Recalculate(context.Background())
	if err != nil {
		t.Fatalf("Recalculate returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if positions.deletes != 1 {
		t.Errorf("deletes = %d, want 1", positions.deletes)
	}
	if stock.area != domain.PickingAreaCode {
		t.Errorf("stock loaded from area %q, want picking area", stock.area)
	}
}

func TestRecalculateBatchesInserts(t *testing.T) {
	settings := &fakeSettingsRepo{settings: defaultSettings()}
	stock := &fakeStockRepo{records: manyStock(250)}
	demand := &fakeDemandRepo{records: []domain.DemandRecord{{Material: "M", RequestedQty: 5}}}
	positions := &fakePositionRepo{}

	svc := NewService(settings, stock, demand, positions, 100)

	count, err := svc.Recalculate(context.Background())
	if err != nil {
		t.Fatalf("Recalculate returned error: %v", err)
	}
	if count != 250 {
		t.Errorf("count = %d, want 250", count)
	}
	if len(positions.batches) != 3 {
		t.Errorf("batches = %d, want 3", len(positions.batches))
	}
}

func TestRecalculateAbortsOnInsertFailure(t *testing.T) {
	settings := &fakeSettingsRepo{settings: defaultSettings()}
	stock := &fakeStockRepo{records: manyStock(250)}
	demand := &fakeDemandRepo{records: []domain.DemandRecord{{Material: "M", RequestedQty: 5}}}
	positions := &fakePositionRepo{failBatch: 2}

	svc := NewService(settings, stock, demand, positions, 100)

	count, err := svc.Recalculate(context.Background())
	if err == nil {
		t.Fatal("expected error when a batch insert fails")
	}
	if count != 100 {
		t.Errorf("count = %d, want 100 inserted before the failure", count)
	}
	// No further batches after the failing one.
	if len(positions.batches) != 2 {
		t.Errorf("batches attempted = %d, want 2", len(positions.batches))
	}
}
