package repository

import (
	"context"

	"github.com/sajor2000/labmanager-sub005/internal/model"
)

// LabRepository defines data access for lab storage accounts.
// AddUsage and SubtractUsage must be single atomic statements against the
// store, never read-modify-write round trips, so concurrent commits to the
// same lab cannot lose updates.
type LabRepository interface {
	// FindByID returns a lab by its ID.
	FindByID(ctx context.Context, id string) (*model.Lab, error)

	// AddUsage atomically adds bytes to storage_used and returns the new value.
	AddUsage(ctx context.Context, labID string, bytes int64) (int64, error)

	// SubtractUsage atomically subtracts bytes from storage_used, clamping at
	// zero. Both the previous and resulting values are returned so callers can
	// detect that a clamp occurred.
	SubtractUsage(ctx context.Context, labID string, bytes int64) (UsageDelta, error)

	// SetUsage overwrites storage_used, used by the reconciliation pass.
	SetUsage(ctx context.Context, labID string, bytes int64) error

	// ListIDs returns all lab ids, for maintenance sweeps.
	ListIDs(ctx context.Context) ([]string, error)
}

// UsageDelta reports a counter mutation.
type UsageDelta struct {
	Previous int64
	Current  int64
}
