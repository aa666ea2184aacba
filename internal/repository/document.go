package repository

import (
	"context"
	"time"

	"github.com/sajor2000/labmanager-sub005/internal/model"
)

// DocumentRepository defines data access for document metadata rows.
// No business logic here, strictly persistence operations. Absent rows are
// reported as sql.ErrNoRows by implementations.
type DocumentRepository interface {
	// Create inserts a new document row and returns the stored record.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, including soft-deleted rows.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListByEntity returns active documents attached to an entity, newest first.
	ListByEntity(ctx context.Context, entityType model.EntityType, entityID string) ([]model.Document, error)

	// ListActiveByLab returns all active documents owned by a lab.
	ListActiveByLab(ctx context.Context, labID string) ([]model.Document, error)

	// TouchAccess stamps last_accessed and bumps access_count.
	TouchAccess(ctx context.Context, id string) error

	// MarkDeleted flips the soft-delete flag and records the deletion time.
	// Returns false when the row was already soft-deleted (or missing), so the
	// mark-then-decrement pairing is applied at most once per document.
	MarkDeleted(ctx context.Context, id string, at time.Time) (bool, error)

	// DeleteExpired physically removes rows soft-deleted before cutoff,
	// re-checking the flag and age inside the statement. Returns the purged
	// rows' ids and storage paths so object cleanup can follow.
	DeleteExpired(ctx context.Context, cutoff time.Time) ([]PurgedDocument, error)

	// SumActiveSizes returns the summed file_size of a lab's active documents.
	SumActiveSizes(ctx context.Context, labID string) (int64, error)
}

// PurgedDocument identifies a physically removed row.
type PurgedDocument struct {
	ID          string
	StoragePath string
}
