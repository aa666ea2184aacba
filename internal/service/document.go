package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sajor2000/labmanager-sub005/internal/compression"
	"github.com/sajor2000/labmanager-sub005/internal/metrics"
	"github.com/sajor2000/labmanager-sub005/internal/model"
	"github.com/sajor2000/labmanager-sub005/internal/quota"
	"github.com/sajor2000/labmanager-sub005/internal/repository"
	"github.com/sajor2000/labmanager-sub005/internal/storage"
	"github.com/sajor2000/labmanager-sub005/internal/validation"
)

var (
	ErrIDRequired     = errors.New("id is required")
	ErrNotFound       = errors.New("document not found")
	ErrAlreadyDeleted = errors.New("document already deleted")
	ErrEmptyPayload   = errors.New("payload is empty")
)

// UploadInput carries everything the upload caller provides.
type UploadInput struct {
	Data        []byte
	Filename    string
	ContentType string
	LabID       string
	EntityType  model.EntityType
	EntityID    string
	UploaderID  string
	Description string
	Tags        []string
}

// UploadResult is returned on a successful upload. Warning is non-empty when
// the lab's storage utilization crossed the warning threshold.
type UploadResult struct {
	Document *model.Document `json:"document"`
	Warning  string          `json:"warning,omitempty"`
}

// DownloadResult carries the decompressed payload back to the caller.
type DownloadResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ReconcileResult reports one lab's counter correction.
type ReconcileResult struct {
	LabID    string `json:"lab_id"`
	Recorded int64  `json:"recorded"`
	Actual   int64  `json:"actual"`
	Drift    int64  `json:"drift"`
}

// DocumentService defines the document lifecycle use cases: upload, download,
// soft delete, and the purge/reconcile maintenance sweeps.
type DocumentService interface {
	// Upload validates, optionally compresses, checks capacity against the
	// final stored size, persists the payload and metadata, and charges the
	// lab's quota. The quota increment is always last so a failure anywhere
	// can only leave the counter under, never over.
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)

	// Download returns the original payload of an active document and
	// best-effort records the access.
	Download(ctx context.Context, id string) (*DownloadResult, error)

	// SoftDelete marks a document deleted and credits its stored size back to
	// the lab's quota. Deleting twice returns ErrAlreadyDeleted.
	SoftDelete(ctx context.Context, id string) error

	// ListByEntity returns active documents attached to an entity, newest first.
	ListByEntity(ctx context.Context, entityType model.EntityType, entityID string) ([]model.Document, error)

	// Purge physically removes documents soft-deleted longer ago than the
	// retention window and returns the count removed. It never touches the
	// quota ledger; that was settled at soft-delete time.
	Purge(ctx context.Context) (int, error)

	// Reconcile recomputes storage_used from the active documents of the given
	// lab, or of every lab when labID is empty, and corrects any drift.
	Reconcile(ctx context.Context, labID string) ([]ReconcileResult, error)
}

type documentService struct {
	store     storage.Storage
	docs      repository.DocumentRepository
	labs      repository.LabRepository
	ledger    quota.Ledger
	codec     *compression.Codec
	retention time.Duration
	log       zerolog.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(
	store storage.Storage,
	docs repository.DocumentRepository,
	labs repository.LabRepository,
	ledger quota.Ledger,
	codec *compression.Codec,
	retention time.Duration,
	log zerolog.Logger,
) DocumentService {
	return &documentService{
		store:     store,
		docs:      docs,
		labs:      labs,
		ledger:    ledger,
		codec:     codec,
		retention: retention,
		log:       log,
	}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if len(in.Data) == 0 {
		return nil, ErrEmptyPayload
	}
	if err := validation.Validate(in.Data, in.ContentType); err != nil {
		return nil, err
	}

	res := s.codec.Compress(in.Data, in.ContentType)
	storedSize := int64(len(res.Data))

	// Capacity is checked against what will actually be stored, which is why
	// compression runs before the check.
	warning, err := s.ledger.CheckCapacity(ctx, in.LabID, storedSize)
	if err != nil {
		if errors.Is(err, quota.ErrCapacityExceeded) {
			metrics.QuotaDenials.Inc()
		}
		return nil, err
	}

	id := uuid.NewString()
	key := filepath.ToSlash(filepath.Join("attachments", id+filepath.Ext(in.Filename)))

	if _, err := s.store.Put(ctx, key, bytes.NewReader(res.Data), storage.PutObjectOptions{
		Size:        storedSize,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"original-filename": in.Filename,
		},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:           id,
		Filename:     in.Filename,
		ContentType:  in.ContentType,
		FileSize:     storedSize,
		IsCompressed: res.Compressed,
		StoragePath:  key,
		LabID:        in.LabID,
		EntityType:   in.EntityType,
		EntityID:     in.EntityID,
		UploaderID:   in.UploaderID,
		Description:  in.Description,
		Tags:         in.Tags,
		UploadedAt:   time.Now().UTC(),
	}
	if res.Compressed {
		orig := res.OriginalSize
		doc.OriginalSize = &orig
	}

	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		// Roll back the object so a failed upload leaves no bytes behind.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	// Increment strictly after the row is durable: a crash before this line
	// leaves an undercount, never a charge for a document that doesn't exist.
	if err := s.ledger.CommitIncrement(ctx, in.LabID, storedSize); err != nil {
		s.log.Error().Err(err).Str("document_id", stored.ID).Str("lab_id", in.LabID).
			Msg("document stored but usage increment failed, counter undercounts until reconcile")
		return nil, err
	}

	metrics.DocumentsUploaded.Inc()
	if res.Compressed {
		metrics.DocumentsCompressed.Inc()
	}

	return &UploadResult{Document: stored, Warning: warning}, nil
}

func (s *documentService) Download(ctx context.Context, id string) (*DownloadResult, error) {
	doc, err := s.findActive(ctx, id)
	if err != nil {
		return nil, err
	}

	obj, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("fetch from storage: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read from storage: %w", err)
	}

	if doc.IsCompressed {
		raw, err := s.codec.Decompress(data)
		if err != nil {
			// Degraded but successful: the caller gets the raw compressed
			// bytes rather than nothing.
			s.log.Error().Err(err).Str("document_id", doc.ID).
				Msg("decompression failed, returning stored bytes as-is")
		} else {
			data = raw
		}
	}

	// The bytes are already in hand; an access-stat failure must not fail
	// the download.
	if err := s.docs.TouchAccess(ctx, doc.ID); err != nil {
		s.log.Warn().Err(err).Str("document_id", doc.ID).Msg("failed to record document access")
	}

	return &DownloadResult{
		Data:        data,
		ContentType: doc.ContentType,
		Filename:    doc.Filename,
	}, nil
}

func (s *documentService) SoftDelete(ctx context.Context, id string) error {
	doc, err := s.findAny(ctx, id)
	if err != nil {
		return err
	}
	if doc.IsDeleted {
		return ErrAlreadyDeleted
	}

	changed, err := s.docs.MarkDeleted(ctx, doc.ID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}
	if !changed {
		// Lost a race with a concurrent delete; that delete owns the decrement.
		return ErrAlreadyDeleted
	}

	// Credit the stored size, not the original size: the quota was charged
	// for what was stored. Mark-then-decrement ordering means a crash here
	// leaves an overcount, which reconcile corrects.
	if err := s.ledger.CommitDecrement(ctx, doc.LabID, doc.FileSize); err != nil {
		s.log.Error().Err(err).Str("document_id", doc.ID).Str("lab_id", doc.LabID).
			Msg("document marked deleted but usage decrement failed, counter overcounts until reconcile")
		return err
	}
	return nil
}

func (s *documentService) ListByEntity(ctx context.Context, entityType model.EntityType, entityID string) ([]model.Document, error) {
	if entityID == "" {
		return nil, ErrIDRequired
	}
	return s.docs.ListByEntity(ctx, entityType, entityID)
}

func (s *documentService) Purge(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.retention)

	purged, err := s.docs.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge expired documents: %w", err)
	}

	for _, p := range purged {
		// Object cleanup is best-effort; an orphan object costs bytes in the
		// backing store but never skews the quota counter.
		if err := s.store.Delete(ctx, p.StoragePath); err != nil {
			s.log.Warn().Err(err).Str("document_id", p.ID).Str("storage_path", p.StoragePath).
				Msg("failed to remove purged document object")
		}
	}

	if len(purged) > 0 {
		metrics.DocumentsPurged.Add(float64(len(purged)))
		s.log.Info().Int("count", len(purged)).Time("cutoff", cutoff).Msg("purged expired documents")
	}
	return len(purged), nil
}

func (s *documentService) Reconcile(ctx context.Context, labID string) ([]ReconcileResult, error) {
	labIDs := []string{labID}
	if labID == "" {
		ids, err := s.labs.ListIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list labs: %w", err)
		}
		labIDs = ids
	}

	results := make([]ReconcileResult, 0, len(labIDs))
	for _, id := range labIDs {
		lab, err := s.labs.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("load lab %s: %w", id, err)
		}

		actual, err := s.docs.SumActiveSizes(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("sum active sizes for lab %s: %w", id, err)
		}

		r := ReconcileResult{
			LabID:    id,
			Recorded: lab.StorageUsed,
			Actual:   actual,
			Drift:    lab.StorageUsed - actual,
		}
		if r.Drift != 0 {
			if err := s.labs.SetUsage(ctx, id, actual); err != nil {
				return nil, fmt.Errorf("correct usage for lab %s: %w", id, err)
			}
			s.log.Warn().Str("lab_id", id).Int64("recorded", r.Recorded).Int64("actual", actual).
				Msg("storage counter drift corrected")
		}
		results = append(results, r)
	}
	return results, nil
}

// findAny fetches a document regardless of soft-delete state.
func (s *documentService) findAny(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// findActive fetches a document and treats soft-deleted rows as absent.
func (s *documentService) findActive(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.findAny(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.IsDeleted {
		return nil, ErrNotFound
	}
	return doc, nil
}
