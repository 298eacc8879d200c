package repository

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/camden-git/photosync/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// MediaRepository handles database operations for MediaItem entities
type MediaRepository struct {
	DB *gorm.DB
}

// NewMediaRepository creates a new instance of MediaRepository
func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{DB: db}
}

// Put inserts a media item record, or refreshes its naming fields if a row
// with the same remote ID already exists. The downloaded flag is owned by
// the download pipeline and is never clobbered here
func (r *MediaRepository) Put(item *models.MediaItem) error {
	var existing models.MediaItem
	err := r.DB.Select("remote_id").Where("remote_id = ?", item.RemoteID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		if err := r.DB.Create(item).Error; err != nil {
			return fmt.Errorf("failed to create media item %s: %w", item.RemoteID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to put media item %s: %w", item.RemoteID, err)
	}

	updates := map[string]interface{}{
		"filename":         item.Filename,
		"relative_folder":  item.RelativeFolder,
		"duplicate_number": item.DuplicateNumber,
		"create_date":      item.CreateDate,
		"is_video":         item.IsVideo,
	}
	err = r.DB.Model(&models.MediaItem{}).Where("remote_id = ?", item.RemoteID).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update media item %s: %w", item.RemoteID, err)
	}
	return nil
}

// FileDuplicateNo reports how many already-indexed media items share the
// given (filename, folder) pair, the assignment source for duplicate
// numbers. If the item itself is already indexed its stored number is
// returned instead, with isNew == false. The count is scoped to the
// (filename, folder) pair, not global, so flat layouts that reuse the same
// filename across folders number independently
func (r *MediaRepository) FileDuplicateNo(filename, folder string, id models.RemoteID) (num int, isNew bool, err error) {
	var existing models.MediaItem
	err = r.DB.Where("remote_id = ?", id).First(&existing).Error
	if err == nil {
		return existing.DuplicateNumber, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, false, fmt.Errorf("failed to look up media item %s: %w", id, err)
	}

	queryBuilder := psql.Select("COUNT(*)").
		From("media_items").
		Where(sq.Eq{"filename": filename, "relative_folder": folder})
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("failed to build SQL query for FileDuplicateNo: %w", err)
	}

	var count int
	err = r.DB.Raw(sqlStr, args...).Row().Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("failed to count duplicates of %s in %s: %w", filename, folder, err)
	}
	return count, true, nil
}

// ExistsByNameAndDate reports whether some indexed media item has the given
// filename and was created on the same calendar day. Used by the
// compare-folder scan, where EXIF dates rarely carry sub-day precision
// worth trusting
func (r *MediaRepository) ExistsByNameAndDate(filename string, takenOn time.Time) (bool, error) {
	dayStart := time.Date(takenOn.Year(), takenOn.Month(), takenOn.Day(), 0, 0, 0, 0, takenOn.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	queryBuilder := psql.Select("COUNT(*)").
		From("media_items").
		Where(sq.Eq{"filename": filename}).
		Where(sq.GtOrEq{"create_date": dayStart}).
		Where(sq.Lt{"create_date": dayEnd})
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build SQL query for ExistsByNameAndDate: %w", err)
	}

	var count int
	err = r.DB.Raw(sqlStr, args...).Row().Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to look up %s by name and date: %w", filename, err)
	}
	return count > 0, nil
}
