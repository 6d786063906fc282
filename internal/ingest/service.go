// internal/ingest/service.go
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/esc4n0rx/abastececd/internal/domain"
	"github.com/esc4n0rx/abastececd/internal/excel"
	"github.com/esc4n0rx/abastececd/internal/repository"
)

const (
	defaultBatchSize = 100
	maxMessageLen    = 255
)

// Service runs the ingestion pipeline: it validates the file, replaces the
// full contents of the target dataset with newly mapped rows in fixed-size
// batches, and records progress on the upload history entry. Batch failures
// are tolerated; the run continues and reports partial status.
type Service struct {
	stock     repository.StockRepository
	demand    repository.DemandRepository
	uploads   repository.UploadHistoryRepository
	batchSize int
}

func NewService(stock repository.StockRepository, demand repository.DemandRepository, uploads repository.UploadHistoryRepository, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Service{
		stock:     stock,
		demand:    demand,
		uploads:   uploads,
		batchSize: batchSize,
	}
}

// Ingest processes one uploaded spreadsheet for the given dataset kind.
// Validation failures are rejected before any side effect. A run that
// commits nothing returns the first batch error; otherwise batch errors are
// reported as warnings on the result.
func (s *Service) Ingest(ctx context.Context, fileName string, size int64, data []byte, kind domain.DatasetKind) (*domain.IngestResult, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidDataset
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if !excel.SupportedExtension(ext) {
		return nil, domain.ErrInvalidFileType
	}

	entry := &domain.UploadHistoryEntry{
		Dataset:   string(kind),
		FileName:  fileName,
		SizeBytes: size,
		Status:    domain.UploadStatusProcessing,
	}
	if err := s.uploads.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to start upload tracking: %w", err)
	}

	rows, err := excel.ReadRows(data, ext)
	if err != nil {
		s.finalize(ctx, entry.ID, domain.UploadStatusError, truncate(err.Error()), 0)
		return nil, fmt.Errorf("failed to parse %s file: %w", kind, err)
	}
	if len(rows) == 0 {
		s.finalize(ctx, entry.ID, domain.UploadStatusError, domain.ErrEmptyFile.Error(), 0)
		return nil, domain.ErrEmptyFile
	}

	// Wholesale replace: the previous dataset contents are gone from here on.
	if err := s.clearDataset(ctx, kind); err != nil {
		s.finalize(ctx, entry.ID, domain.UploadStatusError, truncate(err.Error()), 0)
		return nil, err
	}

	processed := 0
	var batchErrors []string
	for start := 0; start < len(rows); start += s.batchSize {
		end := start + s.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		if err := s.insertBatch(ctx, kind, batch); err != nil {
			log.Error().Err(err).
				Str("dataset", string(kind)).
				Int("batch_start", start).
				Msg("batch insert failed, continuing with next batch")
			batchErrors = append(batchErrors, err.Error())
			continue
		}

		processed += len(batch)
		if err := s.uploads.UpdateProgress(ctx, entry.ID, processed); err != nil {
			log.Warn().Err(err).Int64("upload_id", entry.ID).Msg("failed to update upload progress")
		}
	}

	result := &domain.IngestResult{
		RecordsProcessed: processed,
		Warnings:         batchErrors,
	}

	switch {
	case len(batchErrors) == 0:
		result.Status = domain.UploadStatusSuccess
		s.finalize(ctx, entry.ID, domain.UploadStatusSuccess, "", processed)
	case processed == 0:
		result.Status = domain.UploadStatusError
		s.finalize(ctx, entry.ID, domain.UploadStatusError, errorMessage(batchErrors), 0)
		return result, fmt.Errorf("file processing failed: %s", batchErrors[0])
	default:
		result.Status = domain.UploadStatusPartial
		s.finalize(ctx, entry.ID, domain.UploadStatusPartial, errorMessage(batchErrors), processed)
	}

	log.Info().
		Str("dataset", string(kind)).
		Str("file", fileName).
		Int("records", processed).
		Str("status", result.Status).
		Msg("ingestion finished")

	return result, nil
}

func (s *Service) clearDataset(ctx context.Context, kind domain.DatasetKind) error {
	if kind == domain.DatasetStock {
		return s.stock.DeleteAll(ctx)
	}
	return s.demand.DeleteAll(ctx)
}

func (s *Service) insertBatch(ctx context.Context, kind domain.DatasetKind, batch []excel.Row) error {
	if kind == domain.DatasetStock {
		records := make([]domain.StockRecord, len(batch))
		for i, row := range batch {
			records[i] = MapStockRow(row)
		}
		return s.stock.InsertBatch(ctx, records)
	}

	records := make([]domain.DemandRecord, len(batch))
	for i, row := range batch {
		records[i] = MapDemandRow(row)
	}
	return s.demand.InsertBatch(ctx, records)
}

func (s *Service) finalize(ctx context.Context, id int64, status, message string, processed int) {
	if err := s.uploads.Finalize(ctx, id, status, message, processed); err != nil {
		log.Error().Err(err).Int64("upload_id", id).Msg("failed to finalize upload history entry")
	}
}

func errorMessage(batchErrors []string) string {
	return "processed with errors: " + truncate(strings.Join(batchErrors, "; "))
}

// truncate caps messages at maxMessageLen runes so a cut never splits a
// multi-byte character.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) > maxMessageLen {
		return string(runes[:maxMessageLen])
	}
	return s
}
