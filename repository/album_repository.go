package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/photosync/models"
)

// AlbumRepository handles database operations for Album entities
type AlbumRepository struct {
	DB *gorm.DB
}

// NewAlbumRepository creates a new instance of AlbumRepository
func NewAlbumRepository(db *gorm.DB) *AlbumRepository {
	return &AlbumRepository{DB: db}
}

// Get retrieves an album by its remote ID. Returns gorm.ErrRecordNotFound
// when the album has never been indexed
func (r *AlbumRepository) Get(id models.RemoteID) (*models.Album, error) {
	var album models.Album
	err := r.DB.Where("remote_id = ?", id).First(&album).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get album %s: %w", id, err)
	}
	return &album, nil
}

// Put inserts or updates an album summary row. update should be true when a
// row for this album already exists; a fresh index pass resets Downloaded so
// the reconciler revisits the album
func (r *AlbumRepository) Put(album *models.Album, update bool) error {
	now := time.Now().Unix()
	album.UpdatedAt = now

	if !update {
		album.CreatedAt = now
		if err := r.DB.Create(album).Error; err != nil {
			return fmt.Errorf("failed to create album %s: %w", album.RemoteID, err)
		}
		return nil
	}

	updates := map[string]interface{}{
		"title":      album.Title,
		"size":       album.Size,
		"first_date": album.FirstDate,
		"last_date":  album.LastDate,
		"shared":     album.Shared,
		"downloaded": false,
		"updated_at": now,
	}
	result := r.DB.Model(&models.Album{}).Where("remote_id = ?", album.RemoteID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update album %s: %w", album.RemoteID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkDownloaded flags an album as having had its links materialized, so
// later reconciliation passes can skip it unless asked to redo everything
func (r *AlbumRepository) MarkDownloaded(id models.RemoteID) error {
	now := time.Now().Unix()
	result := r.DB.Model(&models.Album{}).Where("remote_id = ?", id).Updates(map[string]interface{}{
		"downloaded": true,
		"updated_at": now,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to mark album %s downloaded: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
