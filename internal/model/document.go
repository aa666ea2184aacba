package model

import "time"

// Document represents a stored attachment in the system.
// This is a pure domain model with no database-specific dependencies or tags.
// FileSize is always the length of the bytes actually stored, i.e. the
// post-compression length when IsCompressed is true. OriginalSize is set only
// for compressed documents.
type Document struct {
	ID           string     `json:"id"`
	Filename     string     `json:"filename"`
	ContentType  string     `json:"content_type"`
	FileSize     int64      `json:"file_size"`
	IsCompressed bool       `json:"is_compressed"`
	OriginalSize *int64     `json:"original_size,omitempty"`
	StoragePath  string     `json:"storage_path"`
	LabID        string     `json:"lab_id"`
	EntityType   EntityType `json:"entity_type"`
	EntityID     string     `json:"entity_id"`
	UploaderID   string     `json:"uploader_id"`
	Description  string     `json:"description,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	UploadedAt   time.Time  `json:"uploaded_at"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
	AccessCount  int        `json:"access_count"`
	IsDeleted    bool       `json:"is_deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Active reports whether the document still counts against its lab's quota.
func (d *Document) Active() bool {
	return !d.IsDeleted
}
