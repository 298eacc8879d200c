package repository

import (
	"time"

	"github.com/camden-git/photosync/models"
)

// AlbumFileRow is one row of the ordered album-file join consumed by link
// reconciliation: grouped by album, items within an album ordered by
// position (descending when inverted)
type AlbumFileRow struct {
	AlbumID         models.RemoteID
	Folder          string
	Filename        string
	DuplicateNumber int
	AlbumTitle      string
	StartDate       time.Time
	EndDate         time.Time
	Created         time.Time
	Shared          bool
}

// AlbumRepositoryInterface defines the methods for album data operations
type AlbumRepositoryInterface interface {
	Get(id models.RemoteID) (*models.Album, error)
	Put(album *models.Album, update bool) error
	MarkDownloaded(id models.RemoteID) error
}

// MediaRepositoryInterface defines the methods for media item data operations
type MediaRepositoryInterface interface {
	Put(item *models.MediaItem) error
	FileDuplicateNo(filename, folder string, id models.RemoteID) (int, bool, error)
	ExistsByNameAndDate(filename string, takenOn time.Time) (bool, error)
}

// AlbumFileRepositoryInterface defines the methods for album-file relation
// data operations
type AlbumFileRepositoryInterface interface {
	Put(albumID, mediaID models.RemoteID, position int) error
	ListOrdered(invert, downloadAgain bool) ([]AlbumFileRow, error)
}

// RunRepositoryInterface defines the methods for sync run bookkeeping
type RunRepositoryInterface interface {
	Create(run *models.SyncRun) error
	Finish(run *models.SyncRun, runErr error) error
}
