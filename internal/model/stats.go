package model

// EntityTypeUsage is the per-entity-type slice of a lab's storage breakdown.
type EntityTypeUsage struct {
	Count     int   `json:"count"`
	TotalSize int64 `json:"total_size"`
}

// StorageStats is the aggregate storage view for one lab.
// CompressionSavings sums originalSize-fileSize for compressed documents
// where the original size was recorded, falling back to a 30%-of-stored
// estimate for historical rows without one.
type StorageStats struct {
	StorageUsed        int64                          `json:"storage_used"`
	StorageLimit       int64                          `json:"storage_limit"`
	UsedPercentage     float64                        `json:"used_percentage"`
	DocumentCount      int                            `json:"document_count"`
	ByEntityType       map[EntityType]EntityTypeUsage `json:"by_entity_type"`
	CompressionSavings int64                          `json:"compression_savings"`
	AverageFileSize    int64                          `json:"average_file_size"`
}
