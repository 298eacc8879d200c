package models

// AlbumFile associates a media item with an album at an ordinal position.
// It corresponds to the 'album_files' table. Position is the 0-based index
// at which the item appeared in the album's paginated listing and is later
// used to prefix link filenames. Re-indexing an album overwrites positions
// (upsert), it never accumulates duplicates.
type AlbumFile struct {
	AlbumID  RemoteID `gorm:"primaryKey" json:"album_id"`
	MediaID  RemoteID `gorm:"primaryKey" json:"media_id"`
	Position int      `gorm:"not null" json:"position"`
}

// TableName explicitly sets the table name for GORM.
func (AlbumFile) TableName() string {
	return "album_files"
}
