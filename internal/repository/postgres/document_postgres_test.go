package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajor2000/labmanager-sub005/internal/model"
)

var documentCols = []string{
	"id", "filename", "content_type", "file_size", "is_compressed", "original_size",
	"storage_path", "lab_id", "entity_type", "entity_id", "uploader_id", "description", "tags",
	"uploaded_at", "last_accessed", "access_count", "is_deleted", "deleted_at",
}

func addDocumentRow(rows *sqlmock.Rows, d *model.Document) *sqlmock.Rows {
	var originalSize any
	if d.OriginalSize != nil {
		originalSize = *d.OriginalSize
	}
	var lastAccessed any
	if d.LastAccessed != nil {
		lastAccessed = *d.LastAccessed
	}
	var deletedAt any
	if d.DeletedAt != nil {
		deletedAt = *d.DeletedAt
	}
	return rows.AddRow(
		d.ID, d.Filename, d.ContentType, d.FileSize, d.IsCompressed, originalSize,
		d.StoragePath, d.LabID, string(d.EntityType), d.EntityID, d.UploaderID, d.Description,
		[]byte(`["raw-data"]`), d.UploadedAt, lastAccessed, d.AccessCount, d.IsDeleted, deletedAt,
	)
}

func sampleDocument() *model.Document {
	orig := int64(2_000_000)
	return &model.Document{
		ID:           "doc-1",
		Filename:     "assay-results.csv",
		ContentType:  "text/csv",
		FileSize:     1_200_000,
		IsCompressed: true,
		OriginalSize: &orig,
		StoragePath:  "attachments/doc-1.csv",
		LabID:        "lab-1",
		EntityType:   model.EntityTask,
		EntityID:     "task-9",
		UploaderID:   "user-3",
		Description:  "weekly assay export",
		Tags:         []string{"raw-data"},
		UploadedAt:   time.Now().UTC(),
	}
}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	doc := sampleDocument()

	rows := addDocumentRow(sqlmock.NewRows(documentCols), doc)
	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(
			doc.ID, doc.Filename, doc.ContentType, doc.FileSize, doc.IsCompressed,
			sqlmock.AnyArg(), doc.StoragePath, doc.LabID, string(doc.EntityType),
			doc.EntityID, doc.UploaderID, doc.Description, []byte(`["raw-data"]`), doc.UploadedAt,
		).
		WillReturnRows(rows)

	stored, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, doc.ID, stored.ID)
	assert.True(t, stored.IsCompressed)
	require.NotNil(t, stored.OriginalSize)
	assert.Equal(t, int64(2_000_000), *stored.OriginalSize)
	assert.Equal(t, []string{"raw-data"}, stored.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		doc := sampleDocument()
		rows := addDocumentRow(sqlmock.NewRows(documentCols), doc)
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("doc-1").
			WillReturnRows(rows)

		got, err := repo.FindByID(ctx, "doc-1")

		assert.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "doc-1", got.ID)
		assert.Equal(t, model.EntityTask, got.EntityType)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_ListByEntity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	doc := sampleDocument()
	rows := addDocumentRow(sqlmock.NewRows(documentCols), doc)
	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("TASK", "task-9").
		WillReturnRows(rows)

	items, err := repo.ListByEntity(ctx, model.EntityTask, "task-9")

	assert.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "doc-1", items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_MarkDeleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("marks active row", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET is_deleted = TRUE").
			WithArgs("doc-1", now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		changed, err := repo.MarkDeleted(ctx, "doc-1", now)

		assert.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("already deleted row is untouched", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET is_deleted = TRUE").
			WithArgs("doc-1", now).
			WillReturnResult(sqlmock.NewResult(0, 0))

		changed, err := repo.MarkDeleted(ctx, "doc-1", now)

		assert.NoError(t, err)
		assert.False(t, changed)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_DeleteExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	cutoff := time.Now().UTC().AddDate(0, 0, -30)

	t.Run("purges expired rows", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "storage_path"}).
			AddRow("doc-1", "attachments/doc-1.csv").
			AddRow("doc-2", "attachments/doc-2.pdf")
		mock.ExpectQuery("DELETE FROM documents").
			WithArgs(cutoff).
			WillReturnRows(rows)

		purged, err := repo.DeleteExpired(ctx, cutoff)

		assert.NoError(t, err)
		require.Len(t, purged, 2)
		assert.Equal(t, "attachments/doc-1.csv", purged[0].StoragePath)
	})

	t.Run("nothing expired", func(t *testing.T) {
		mock.ExpectQuery("DELETE FROM documents").
			WithArgs(cutoff).
			WillReturnRows(sqlmock.NewRows([]string{"id", "storage_path"}))

		purged, err := repo.DeleteExpired(ctx, cutoff)

		assert.NoError(t, err)
		assert.Empty(t, purged)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_SumActiveSizes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("lab-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1_200_000))

	total, err := repo.SumActiveSizes(ctx, "lab-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(1_200_000), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_TouchAccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)

	mock.ExpectExec("UPDATE documents SET last_accessed").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.TouchAccess(context.Background(), "doc-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
