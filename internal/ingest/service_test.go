package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/esc4n0rx/abastececd/internal/domain"
)

type fakeStockRepo struct {
	deletes   int
	batches   [][]domain.StockRecord
	failBatch int // 1-based batch index to fail, 0 never fails
}

func (f *fakeStockRepo) DeleteAll(ctx context.Context) error {
	f.deletes++
	return nil
}

func (f *fakeStockRepo) InsertBatch(ctx context.Context, records []domain.StockRecord) error {
	f.batches = append(f.batches, records)
	if f.failBatch > 0 && len(f.batches) == f.failBatch {
		return errors.New("insert failed")
	}
	return nil
}

func (f *fakeStockRepo) ListByStorageArea(ctx context.Context, area string) ([]domain.StockRecord, error) {
	return nil, nil
}

func (f *fakeStockRepo) Count(ctx context.Context) (int, error) { return 0, nil }

type fakeDemandRepo struct {
	deletes   int
	batches   [][]domain.DemandRecord
	failAll   bool
	failBatch int // 1-based batch index to fail, 0 never fails
}

func (f *fakeDemandRepo) DeleteAll(ctx context.Context) error {
	f.deletes++
	return nil
}

func (f *fakeDemandRepo) InsertBatch(ctx context.Context, records []domain.DemandRecord) error {
	f.batches = append(f.batches, records)
	if f.failAll {
		return errors.New("insert failed")
	}
	if f.failBatch > 0 && len(f.batches) == f.failBatch {
		return fmt.Errorf("batch %d failed", len(f.batches))
	}
	return nil
}

func (f *fakeDemandRepo) ListAll(ctx context.Context) ([]domain.DemandRecord, error) {
	return nil, nil
}

func (f *fakeDemandRepo) Count(ctx context.Context) (int, error) { return 0, nil }

type fakeUploadRepo struct {
	created       []domain.UploadHistoryEntry
	progress      []int
	finalStatus   string
	finalMessage  string
	finalRecords  int
	cancelMessage string
}

func (f *fakeUploadRepo) Create(ctx context.Context, entry *domain.UploadHistoryEntry) error {
	entry.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *entry)
	return nil
}

func (f *fakeUploadRepo) UpdateProgress(ctx context.Context, id int64, recordsProcessed int) error {
	f.progress = append(f.progress, recordsProcessed)
	return nil
}

func (f *fakeUploadRepo) Finalize(ctx context.Context, id int64, status, message string, recordsProcessed int) error {
	f.finalStatus = status
	f.finalMessage = message
	f.finalRecords = recordsProcessed
	return nil
}

func (f *fakeUploadRepo) List(ctx context.Context) ([]domain.UploadHistoryEntry, error) {
	return f.created, nil
}

func (f *fakeUploadRepo) CancelSuccessful(ctx context.Context, message string) error {
	f.cancelMessage = message
	return nil
}

func demandCSV(rows int) []byte {
	var sb strings.Builder
	sb.WriteString("MATERIAL,QUANT_NT\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "10%04d,5\n", i)
	}
	return []byte(sb.String())
}

func TestIngestRejectsInvalidDataset(t *testing.T) {
	uploads := &fakeUploadRepo{}
	svc := NewService(&fakeStockRepo{}, &fakeDemandRepo{}, uploads, 0)

	_, err := svc.Ingest(context.Background(), "file.csv", 10, demandCSV(1), domain.DatasetKind("pricing"))
	if !errors.Is(err, domain.ErrInvalidDataset) {
		t.Fatalf("got %v, want ErrInvalidDataset", err)
	}
	if len(uploads.created) != 0 {
		t.Errorf("history entry created for rejected upload")
	}
}

func TestIngestRejectsInvalidExtensionBeforeSideEffects(t *testing.T) {
	stock := &fakeStockRepo{}
	uploads := &fakeUploadRepo{}
	svc := NewService(stock, &fakeDemandRepo{}, uploads, 0)

	_, err := svc.Ingest(context.Background(), "report.pdf", 10, []byte("x"), domain.DatasetStock)
	if !errors.Is(err, domain.ErrInvalidFileType) {
		t.Fatalf("got %v, want ErrInvalidFileType", err)
	}
	if stock.deletes != 0 {
		t.Errorf("stock was cleared for a rejected upload")
	}
	if len(uploads.created) != 0 {
		t.Errorf("history entry created for rejected upload")
	}
}

func TestIngestReplacesDatasetWholesale(t *testing.T) {
	stock := &fakeStockRepo{}
	uploads := &fakeUploadRepo{}
	svc := NewService(stock, &fakeDemandRepo{}, uploads, 0)

	data := []byte("Material,Estoque disponível\n100001,50\n100002,30\n100003,20\n")
	result, err := svc.Ingest(context.Background(), "estoque.csv", int64(len(data)), data, domain.DatasetStock)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	if stock.deletes != 1 {
		t.Errorf("deletes = %d, want 1", stock.deletes)
	}
	if result.Status != domain.UploadStatusSuccess {
		t.Errorf("status = %q, want success", result.Status)
	}
	if result.RecordsProcessed != 3 {
		t.Errorf("records processed = %d, want 3", result.RecordsProcessed)
	}
	if uploads.finalStatus != domain.UploadStatusSuccess {
		t.Errorf("finalized status = %q, want success", uploads.finalStatus)
	}
}

func TestIngestContinuesPastFailedBatch(t *testing.T) {
	// 250 rows make 3 batches; the middle one fails.
	demand := &fakeDemandRepo{failBatch: 2}
	uploads := &fakeUploadRepo{}
	svc := NewService(&fakeStockRepo{}, demand, uploads, 100)

	data := demandCSV(250)
	result, err := svc.Ingest(context.Background(), "demanda.csv", int64(len(data)), data, domain.DatasetDemand)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	if result.Status != domain.UploadStatusPartial {
		t.Errorf("status = %q, want partial", result.Status)
	}
	if result.RecordsProcessed != 150 {
		t.Errorf("records processed = %d, want 150", result.RecordsProcessed)
	}
	if len(demand.batches) != 3 {
		t.Errorf("batches attempted = %d, want 3", len(demand.batches))
	}
	if uploads.finalStatus != domain.UploadStatusPartial {
		t.Errorf("finalized status = %q, want partial", uploads.finalStatus)
	}
	if !strings.HasPrefix(uploads.finalMessage, "processed with errors: ") {
		t.Errorf("final message = %q", uploads.finalMessage)
	}
}

func TestIngestTotalFailureReturnsError(t *testing.T) {
	demand := &fakeDemandRepo{failAll: true}
	uploads := &fakeUploadRepo{}
	svc := NewService(&fakeStockRepo{}, demand, uploads, 100)

	data := demandCSV(150)
	result, err := svc.Ingest(context.Background(), "demanda.csv", int64(len(data)), data, domain.DatasetDemand)
	if err == nil {
		t.Fatal("expected error when every batch fails")
	}
	if result == nil {
		t.Fatal("expected result alongside error")
	}
	if result.Status != domain.UploadStatusError {
		t.Errorf("status = %q, want error", result.Status)
	}
	if result.RecordsProcessed != 0 {
		t.Errorf("records processed = %d, want 0", result.RecordsProcessed)
	}
	if uploads.finalStatus != domain.UploadStatusError {
		t.Errorf("finalized status = %q, want error", uploads.finalStatus)
	}
}

func TestIngestRejectsHeaderOnlyFile(t *testing.T) {
	uploads := &fakeUploadRepo{}
	stock := &fakeStockRepo{}
	svc := NewService(stock, &fakeDemandRepo{}, uploads, 0)

	_, err := svc.Ingest(context.Background(), "estoque.csv", 20, []byte("Material,Centro\n"), domain.DatasetStock)
	if !errors.Is(err, domain.ErrEmptyFile) {
		t.Fatalf("got %v, want ErrEmptyFile", err)
	}
	if stock.deletes != 0 {
		t.Errorf("dataset cleared for an empty file")
	}
	if uploads.finalStatus != domain.UploadStatusError {
		t.Errorf("finalized status = %q, want error", uploads.finalStatus)
	}
}

func TestIngestFinalizesErrorOnUnparsableFile(t *testing.T) {
	uploads := &fakeUploadRepo{}
	stock := &fakeStockRepo{}
	svc := NewService(stock, &fakeDemandRepo{}, uploads, 0)

	_, err := svc.Ingest(context.Background(), "empty.csv", 0, []byte(""), domain.DatasetStock)
	if err == nil {
		t.Fatal("expected error for empty file")
	}
	if uploads.finalStatus != domain.UploadStatusError {
		t.Errorf("finalized status = %q, want error", uploads.finalStatus)
	}
	if stock.deletes != 0 {
		t.Errorf("dataset cleared even though parsing failed")
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	long := strings.Repeat("atenção ", 64) // 512 runes, multi-byte ç and ã

	got := truncate(long)

	if n := len([]rune(got)); n != maxMessageLen {
		t.Errorf("truncated length = %d runes, want %d", n, maxMessageLen)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncated message is not valid UTF-8: %q", got)
	}
	if short := "tudo certo"; truncate(short) != short {
		t.Errorf("short message was modified: %q", truncate(short))
	}
}
