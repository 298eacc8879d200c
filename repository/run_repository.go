package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/photosync/models"
)

// RunRepository handles database operations for SyncRun bookkeeping rows
type RunRepository struct {
	DB *gorm.DB
}

// NewRunRepository creates a new instance of RunRepository
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{DB: db}
}

// Create inserts a new run row at invocation start
func (r *RunRepository) Create(run *models.SyncRun) error {
	if run.StartedAt == 0 {
		run.StartedAt = time.Now().Unix()
	}
	if err := r.DB.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create sync run %s: %w", run.ID, err)
	}
	return nil
}

// Finish stamps the run as completed, recording the counters accumulated in
// run and the error that ended it, if any
func (r *RunRepository) Finish(run *models.SyncRun, runErr error) error {
	now := time.Now().Unix()
	var errStr *string
	if runErr != nil {
		s := runErr.Error()
		errStr = &s
	}
	updates := map[string]interface{}{
		"finished_at":    now,
		"albums_indexed": run.AlbumsIndexed,
		"links_created":  run.LinksCreated,
		"links_removed":  run.LinksRemoved,
		"error":          errStr,
	}
	result := r.DB.Model(&models.SyncRun{}).Where("id = ?", run.ID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to finish sync run %s: %w", run.ID, result.Error)
	}
	return nil
}
