package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sajor2000/labmanager-sub005/internal/model"
	"github.com/sajor2000/labmanager-sub005/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, filename, content_type, file_size, is_compressed, original_size,
		storage_path, lab_id, entity_type, entity_id, uploader_id, description, tags,
		uploaded_at, last_accessed, access_count, is_deleted, deleted_at`

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, filename, content_type, file_size, is_compressed, original_size,
			storage_path, lab_id, entity_type, entity_id, uploader_id, description, tags, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + documentColumns

	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Filename,
		doc.ContentType,
		doc.FileSize,
		doc.IsCompressed,
		nullableInt64(doc.OriginalSize),
		doc.StoragePath,
		doc.LabID,
		string(doc.EntityType),
		doc.EntityID,
		doc.UploaderID,
		doc.Description,
		tags,
		doc.UploadedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID, soft-deleted rows included.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// ListByEntity returns active documents attached to an entity, newest first.
func (r *DocumentPostgres) ListByEntity(ctx context.Context, entityType model.EntityType, entityID string) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE entity_type = $1 AND entity_id = $2 AND is_deleted = FALSE
		ORDER BY uploaded_at DESC, id DESC
	`
	return r.queryDocuments(ctx, q, string(entityType), entityID)
}

// ListActiveByLab returns all active documents owned by a lab.
func (r *DocumentPostgres) ListActiveByLab(ctx context.Context, labID string) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE lab_id = $1 AND is_deleted = FALSE
		ORDER BY uploaded_at DESC, id DESC
	`
	return r.queryDocuments(ctx, q, labID)
}

// TouchAccess stamps last_accessed and bumps access_count.
func (r *DocumentPostgres) TouchAccess(ctx context.Context, id string) error {
	const q = `UPDATE documents SET last_accessed = now(), access_count = access_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// MarkDeleted flips the soft-delete flag. The is_deleted guard in the WHERE
// clause makes the transition single-shot under concurrent deletes.
func (r *DocumentPostgres) MarkDeleted(ctx context.Context, id string, at time.Time) (bool, error) {
	const q = `UPDATE documents SET is_deleted = TRUE, deleted_at = $2 WHERE id = $1 AND is_deleted = FALSE`
	res, err := r.db.ExecContext(ctx, q, id, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpired removes rows soft-deleted before cutoff. Flag and age are
// re-checked inside the DELETE itself, not off a previously selected list.
func (r *DocumentPostgres) DeleteExpired(ctx context.Context, cutoff time.Time) ([]repository.PurgedDocument, error) {
	const q = `
		DELETE FROM documents
		WHERE is_deleted = TRUE AND deleted_at < $1
		RETURNING id, storage_path
	`
	rows, err := r.db.QueryContext(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purged := make([]repository.PurgedDocument, 0)
	for rows.Next() {
		var p repository.PurgedDocument
		if err := rows.Scan(&p.ID, &p.StoragePath); err != nil {
			return nil, err
		}
		purged = append(purged, p)
	}
	return purged, rows.Err()
}

// SumActiveSizes returns the summed file_size of a lab's active documents.
func (r *DocumentPostgres) SumActiveSizes(ctx context.Context, labID string) (int64, error) {
	const q = `SELECT COALESCE(SUM(file_size), 0) FROM documents WHERE lab_id = $1 AND is_deleted = FALSE`
	var total int64
	if err := r.db.QueryRowContext(ctx, q, labID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *DocumentPostgres) queryDocuments(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocumentRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row *sql.Row) (*model.Document, error) {
	return scanDocumentRow(row)
}

func scanDocumentRow(row rowScanner) (*model.Document, error) {
	var (
		d            model.Document
		entityType   string
		originalSize sql.NullInt64
		tags         []byte
		lastAccessed sql.NullTime
		deletedAt    sql.NullTime
	)
	if err := row.Scan(
		&d.ID,
		&d.Filename,
		&d.ContentType,
		&d.FileSize,
		&d.IsCompressed,
		&originalSize,
		&d.StoragePath,
		&d.LabID,
		&entityType,
		&d.EntityID,
		&d.UploaderID,
		&d.Description,
		&tags,
		&d.UploadedAt,
		&lastAccessed,
		&d.AccessCount,
		&d.IsDeleted,
		&deletedAt,
	); err != nil {
		return nil, err
	}

	d.EntityType = model.EntityType(entityType)
	if originalSize.Valid {
		d.OriginalSize = &originalSize.Int64
	}
	if lastAccessed.Valid {
		d.LastAccessed = &lastAccessed.Time
	}
	if deletedAt.Valid {
		d.DeletedAt = &deletedAt.Time
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &d.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	return &d, nil
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
