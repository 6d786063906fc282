// internal/repository/upload_repository.go
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/esc4n0rx/abastececd/internal/domain"
	"github.com/esc4n0rx/abastececd/internal/repository/postgres"
)

type UploadHistoryRepository interface {
	Create(ctx context.Context, entry *domain.UploadHistoryEntry) error
	UpdateProgress(ctx context.Context, id int64, recordsProcessed int) error
	Finalize(ctx context.Context, id int64, status, message string, recordsProcessed int) error
	List(ctx context.Context) ([]domain.UploadHistoryEntry, error)
	CancelSuccessful(ctx context.Context, message string) error
}

type uploadHistoryRepository struct {
	db *postgres.DB
}

func NewUploadHistoryRepository(db *postgres.DB) UploadHistoryRepository {
	return &uploadHistoryRepository{db: db}
}

func (r *uploadHistoryRepository) Create(ctx context.Context, entry *domain.UploadHistoryEntry) error {
	query := `
		INSERT INTO upload_history (
			dataset, file_name, size_bytes, records_processed, status, message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowxContext(ctx, query,
		entry.Dataset, entry.FileName, entry.SizeBytes,
		entry.RecordsProcessed, entry.Status, entry.Message, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("error creating upload history entry: %w", err)
	}
	return nil
}

// UpdateProgress persists the running records-processed counter so progress
// is externally observable mid-run.
func (r *uploadHistoryRepository) UpdateProgress(ctx context.Context, id int64, recordsProcessed int) error {
	query := `UPDATE upload_history SET records_processed = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, recordsProcessed, id); err != nil {
		return fmt.Errorf("error updating upload progress: %w", err)
	}
	return nil
}

func (r *uploadHistoryRepository) Finalize(ctx context.Context, id int64, status, message string, recordsProcessed int) error {
	query := `
		UPDATE upload_history
		SET status = $1, message = $2, records_processed = $3
		WHERE id = $4
	`
	if _, err := r.db.ExecContext(ctx, query, status, message, recordsProcessed, id); err != nil {
		return fmt.Errorf("error finalizing upload history entry: %w", err)
	}
	return nil
}

func (r *uploadHistoryRepository) List(ctx context.Context) ([]domain.UploadHistoryEntry, error) {
	query := `
		SELECT id, dataset, file_name, size_bytes, records_processed,
		       status, message, created_at
		FROM upload_history
		ORDER BY created_at DESC
	`

	var entries []domain.UploadHistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("error listing upload history: %w", err)
	}
	return entries, nil
}

// CancelSuccessful flips prior successful entries to canceled. Used by the
// full data reset; entries are never deleted.
func (r *uploadHistoryRepository) CancelSuccessful(ctx context.Context, message string) error {
	query := `UPDATE upload_history SET status = $1, message = $2 WHERE status = $3`
	if _, err := r.db.ExecContext(ctx, query, domain.UploadStatusCanceled, message, domain.UploadStatusSuccess); err != nil {
		return fmt.Errorf("error canceling successful uploads: %w", err)
	}
	return nil
}
