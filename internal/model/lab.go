package model

import "time"

// Lab is the storage-quota owner. StorageUsed tracks the summed FileSize of
// all active documents owned by the lab and is mutated only through the quota
// ledger's atomic increment/decrement operations.
type Lab struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	StorageUsed  int64     `json:"storage_used"`
	StorageLimit int64     `json:"storage_limit"`
	CreatedAt    time.Time `json:"created_at"`
}
