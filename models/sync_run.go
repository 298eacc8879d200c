package models

// SyncRun records one CLI invocation for bookkeeping. It corresponds to the
// 'sync_runs' table. ID is a UUID generated at run start; counters are
// written once when the run finishes.
type SyncRun struct {
	ID            string `gorm:"primaryKey" json:"id"`
	StartedAt     int64  `gorm:"not null" json:"started_at"`     // Unix timestamp
	FinishedAt    *int64 `gorm:"" json:"finished_at,omitempty"`  // Nullable, Unix timestamp
	AlbumsIndexed int    `gorm:"not null;default:0" json:"albums_indexed"`
	LinksCreated  int    `gorm:"not null;default:0" json:"links_created"`
	LinksRemoved  int    `gorm:"not null;default:0" json:"links_removed"`
	Error         *string `gorm:"" json:"error,omitempty"` // Nullable
}

// TableName explicitly sets the table name for GORM.
func (SyncRun) TableName() string {
	return "sync_runs"
}
