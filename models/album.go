package models

import "time"

// RemoteID is an opaque identifier assigned by the remote photo service.
// It is a distinct type so album/media ids cannot be mixed up with
// filenames or paths.
type RemoteID string

// Album represents one remote album summary in the local index using GORM.
// It corresponds to the 'albums' table. Date range fields are derived from
// the album's media items during indexing; the remote listing does not
// provide them. Rows are never deleted locally.
type Album struct {
	RemoteID   RemoteID  `gorm:"primaryKey" json:"remote_id"`
	Title      string    `gorm:"not null" json:"title"`
	Size       int       `gorm:"not null" json:"size"`
	FirstDate  time.Time `gorm:"not null" json:"first_date"`
	LastDate   time.Time `gorm:"not null" json:"last_date"`
	Shared     bool      `gorm:"not null;default:false" json:"shared"`
	Downloaded bool      `gorm:"not null;default:false" json:"downloaded"`
	CreatedAt  int64     `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt  int64     `gorm:"not null" json:"updated_at"` // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Album) TableName() string {
	return "albums"
}
