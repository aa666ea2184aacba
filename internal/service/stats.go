package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sajor2000/labmanager-sub005/internal/model"
	"github.com/sajor2000/labmanager-sub005/internal/repository"
)

// heuristicSavingsPct estimates compression savings for historical rows that
// predate original-size tracking, as a percentage of the stored size.
const heuristicSavingsPct = 30

// StatsService computes per-lab storage usage breakdowns. Pure read, no
// mutation.
type StatsService interface {
	GetStats(ctx context.Context, labID string) (*model.StorageStats, error)
}

type statsService struct {
	labs repository.LabRepository
	docs repository.DocumentRepository
}

// NewStatsService constructs a StatsService.
func NewStatsService(labs repository.LabRepository, docs repository.DocumentRepository) StatsService {
	return &statsService{labs: labs, docs: docs}
}

func (s *statsService) GetStats(ctx context.Context, labID string) (*model.StorageStats, error) {
	if labID == "" {
		return nil, ErrIDRequired
	}

	lab, err := s.labs.FindByID(ctx, labID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load lab: %w", err)
	}

	docs, err := s.docs.ListActiveByLab(ctx, labID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	stats := &model.StorageStats{
		StorageUsed:  lab.StorageUsed,
		StorageLimit: lab.StorageLimit,
		ByEntityType: make(map[model.EntityType]model.EntityTypeUsage),
	}
	if lab.StorageLimit > 0 {
		stats.UsedPercentage = float64(lab.StorageUsed) / float64(lab.StorageLimit) * 100
	}

	var totalSize int64
	for i := range docs {
		d := &docs[i]
		stats.DocumentCount++
		totalSize += d.FileSize

		bucket := d.EntityType
		if !bucket.Known() {
			bucket = model.EntityOther
		}
		usage := stats.ByEntityType[bucket]
		usage.Count++
		usage.TotalSize += d.FileSize
		stats.ByEntityType[bucket] = usage

		if d.IsCompressed {
			if d.OriginalSize != nil {
				stats.CompressionSavings += *d.OriginalSize - d.FileSize
			} else {
				// Fallback estimate for rows without a recorded original size.
				stats.CompressionSavings += d.FileSize * heuristicSavingsPct / 100
			}
		}
	}
	if stats.DocumentCount > 0 {
		stats.AverageFileSize = totalSize / int64(stats.DocumentCount)
	}

	return stats, nil
}
