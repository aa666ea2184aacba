// Package quota owns the lab storage counters. It is the only writer of
// storage_used; every other component goes through the Ledger.
package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sajor2000/labmanager-sub005/internal/repository"
)

// warnThresholdPct is the utilization above which uploads carry a warning.
const warnThresholdPct = 80.0

var ErrCapacityExceeded = errors.New("storage capacity exceeded")

// Ledger defines the quota accounting operations. CheckCapacity is advisory:
// it inspects current state without reserving capacity, so two concurrent
// uploads may both pass and slightly overshoot the limit. The commit
// operations are the atomic source of truth for the counter itself.
type Ledger interface {
	// CheckCapacity reports whether candidateBytes fits under the lab's limit.
	// A non-empty warning is returned when the resulting utilization exceeds
	// 80%. Denials are returned as errors wrapping ErrCapacityExceeded.
	CheckCapacity(ctx context.Context, labID string, candidateBytes int64) (warning string, err error)

	// CommitIncrement atomically adds bytes to the lab's storage_used.
	CommitIncrement(ctx context.Context, labID string, bytes int64) error

	// CommitDecrement atomically subtracts bytes, clamping at zero. A clamp
	// indicates prior drift and is logged as a reconciliation signal, not
	// returned as an error.
	CommitDecrement(ctx context.Context, labID string, bytes int64) error
}

type ledger struct {
	labs repository.LabRepository
	log  zerolog.Logger
}

// NewLedger constructs a Ledger over the given lab repository.
func NewLedger(labs repository.LabRepository, log zerolog.Logger) Ledger {
	return &ledger{labs: labs, log: log}
}

func (l *ledger) CheckCapacity(ctx context.Context, labID string, candidateBytes int64) (string, error) {
	lab, err := l.labs.FindByID(ctx, labID)
	if err != nil {
		return "", fmt.Errorf("load lab storage account: %w", err)
	}

	projected := lab.StorageUsed + candidateBytes
	if projected > lab.StorageLimit {
		return "", fmt.Errorf("%w: %.1f MB used of %.1f MB limit",
			ErrCapacityExceeded, toMB(lab.StorageUsed), toMB(lab.StorageLimit))
	}

	if pct := float64(projected) / float64(lab.StorageLimit) * 100; pct > warnThresholdPct {
		return fmt.Sprintf("storage is %.0f%% full", pct), nil
	}
	return "", nil
}

func (l *ledger) CommitIncrement(ctx context.Context, labID string, bytes int64) error {
	used, err := l.labs.AddUsage(ctx, labID, bytes)
	if err != nil {
		return fmt.Errorf("increment storage usage: %w", err)
	}
	l.log.Debug().Str("lab_id", labID).Int64("bytes", bytes).Int64("storage_used", used).
		Msg("storage usage incremented")
	return nil
}

func (l *ledger) CommitDecrement(ctx context.Context, labID string, bytes int64) error {
	delta, err := l.labs.SubtractUsage(ctx, labID, bytes)
	if err != nil {
		return fmt.Errorf("decrement storage usage: %w", err)
	}
	if delta.Previous < bytes {
		// The counter would have gone negative: earlier accounting drifted.
		l.log.Warn().Str("lab_id", labID).
			Int64("bytes", bytes).
			Int64("previous_used", delta.Previous).
			Msg("storage decrement clamped at zero, counter drift detected")
	}
	return nil
}

func toMB(b int64) float64 {
	return float64(b) / (1 << 20)
}
