package photosapi

import (
	"net/http"
	"net/url"
	"strconv"
)

// Album is one entry of the album or shared-album listing. The service
// reports the item count as a decimal string; Size converts it. No date
// range is reported; it is derived locally from the album's contents.
type Album struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	MediaItemsCount string `json:"mediaItemsCount"`
}

// Size returns the claimed item count, or 0 if the service omitted it.
func (a Album) Size() int {
	n, err := strconv.Atoi(a.MediaItemsCount)
	if err != nil {
		return 0
	}
	return n
}

// AlbumPage is one page of an album listing.
type AlbumPage struct {
	Albums        []Album `json:"albums"`
	SharedAlbums  []Album `json:"sharedAlbums"`
	NextPageToken string  `json:"nextPageToken"`
}

// Items returns whichever listing slice the page carries.
func (p *AlbumPage) Items() []Album {
	if len(p.SharedAlbums) > 0 {
		return p.SharedAlbums
	}
	return p.Albums
}

// ListAlbums fetches one page of the owned-album listing.
func (c *Client) ListAlbums(pageToken string) (*AlbumPage, error) {
	return c.listAlbums("albums", pageToken)
}

// ListSharedAlbums fetches one page of the shared-album listing.
func (c *Client) ListSharedAlbums(pageToken string) (*AlbumPage, error) {
	return c.listAlbums("sharedAlbums", pageToken)
}

func (c *Client) listAlbums(endpoint, pageToken string) (*AlbumPage, error) {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(AlbumPageSize))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	var page AlbumPage
	if err := c.doJSON(http.MethodGet, c.url(endpoint)+"?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
