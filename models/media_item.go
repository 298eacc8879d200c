package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// MediaItem represents one media file known to the index using GORM.
// It corresponds to the 'media_items' table. The broader sync system owns
// most of these fields; album indexing only touches the subset needed for
// membership and on-disk naming.
type MediaItem struct {
	RemoteID        RemoteID  `gorm:"primaryKey" json:"remote_id"`
	Filename        string    `gorm:"not null;index:idx_media_name_folder" json:"filename"`
	RelativeFolder  string    `gorm:"not null;index:idx_media_name_folder" json:"relative_folder"`
	DuplicateNumber int       `gorm:"not null;default:0" json:"duplicate_number"`
	CreateDate      time.Time `gorm:"not null" json:"create_date"`
	IsVideo         bool      `gorm:"not null;default:false" json:"is_video"`
	Downloaded      bool      `gorm:"not null;default:false" json:"downloaded"`
}

// TableName explicitly sets the table name for GORM.
func (MediaItem) TableName() string {
	return "media_items"
}

// DiskFilename returns the on-disk name for a media file: the stored
// filename, with " (n)" inserted before the extension when the item carries
// a non-zero duplicate number. Numbering is 0-based in the index but shown
// 1-based on disk, so the first duplicate becomes "name (2).ext"
func DiskFilename(filename string, duplicateNumber int) string {
	if duplicateNumber == 0 {
		return filename
	}
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s (%d)%s", base, duplicateNumber+1, ext)
}
