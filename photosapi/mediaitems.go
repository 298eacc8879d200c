package photosapi

import (
	"net/http"
	"time"
)

// MediaItem is one entry of a media-in-album listing.
type MediaItem struct {
	ID            string        `json:"id"`
	Filename      string        `json:"filename"`
	MediaMetadata MediaMetadata `json:"mediaMetadata"`
}

// MediaMetadata carries the creation time and the photo/video discriminator.
type MediaMetadata struct {
	CreationTime time.Time      `json:"creationTime"`
	Photo        *PhotoMetadata `json:"photo,omitempty"`
	Video        *VideoMetadata `json:"video,omitempty"`
}

// PhotoMetadata is present on photo items. Its fields are not consumed.
type PhotoMetadata struct{}

// VideoMetadata is present on video items. Its fields are not consumed.
type VideoMetadata struct{}

// IsVideo reports whether the item is a video.
func (m MediaItem) IsVideo() bool {
	return m.MediaMetadata.Video != nil
}

// CreateDate returns the item's creation timestamp.
func (m MediaItem) CreateDate() time.Time {
	return m.MediaMetadata.CreationTime
}

// MediaItemPage is one page of a media-items search.
type MediaItemPage struct {
	MediaItems    []MediaItem `json:"mediaItems"`
	NextPageToken string      `json:"nextPageToken"`
}

// SearchAlbumContents fetches one page of the media listing of a single
// album. An empty pageToken requests the first page.
func (c *Client) SearchAlbumContents(albumID, pageToken string) (*MediaItemPage, error) {
	body := map[string]interface{}{
		"albumId":  albumID,
		"pageSize": MediaPageSize,
	}
	if pageToken != "" {
		body["pageToken"] = pageToken
	}
	var page MediaItemPage
	if err := c.doJSON(http.MethodPost, c.url("mediaItems:search"), body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
