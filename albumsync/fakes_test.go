package albumsync_test

import (
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/photosync/models"
	"github.com/camden-git/photosync/photosapi"
	"github.com/camden-git/photosync/repository"
)

// fakeStore is an in-memory stand-in for the repository layer, shared by
// the indexer and reconciler tests.
type fakeStore struct {
	albums     map[models.RemoteID]*models.Album
	media      map[models.RemoteID]*models.MediaItem
	positions  map[models.RemoteID]map[models.RemoteID]int // album -> media -> position
	rows       []repository.AlbumFileRow                   // served by ListOrdered
	marked     []models.RemoteID
	lastInvert bool
	lastRelink bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		albums:    make(map[models.RemoteID]*models.Album),
		media:     make(map[models.RemoteID]*models.MediaItem),
		positions: make(map[models.RemoteID]map[models.RemoteID]int),
	}
}

type fakeAlbums struct{ s *fakeStore }

func (f fakeAlbums) Get(id models.RemoteID) (*models.Album, error) {
	a, ok := f.s.albums[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f fakeAlbums) Put(album *models.Album, update bool) error {
	cp := *album
	if update {
		cp.Downloaded = false
	}
	f.s.albums[album.RemoteID] = &cp
	return nil
}

func (f fakeAlbums) MarkDownloaded(id models.RemoteID) error {
	f.s.marked = append(f.s.marked, id)
	a, ok := f.s.albums[id]
	if !ok {
		a = &models.Album{RemoteID: id}
		f.s.albums[id] = a
	}
	a.Downloaded = true
	return nil
}

type fakeMedia struct{ s *fakeStore }

func (f fakeMedia) Put(item *models.MediaItem) error {
	cp := *item
	f.s.media[item.RemoteID] = &cp
	return nil
}

func (f fakeMedia) FileDuplicateNo(filename, folder string, id models.RemoteID) (int, bool, error) {
	if existing, ok := f.s.media[id]; ok {
		return existing.DuplicateNumber, false, nil
	}
	count := 0
	for _, m := range f.s.media {
		if m.Filename == filename && m.RelativeFolder == folder {
			count++
		}
	}
	return count, true, nil
}

func (f fakeMedia) ExistsByNameAndDate(filename string, takenOn time.Time) (bool, error) {
	for _, m := range f.s.media {
		if m.Filename == filename {
			return true, nil
		}
	}
	return false, nil
}

type fakeAlbumFiles struct{ s *fakeStore }

func (f fakeAlbumFiles) Put(albumID, mediaID models.RemoteID, position int) error {
	if f.s.positions[albumID] == nil {
		f.s.positions[albumID] = make(map[models.RemoteID]int)
	}
	f.s.positions[albumID][mediaID] = position
	return nil
}

func (f fakeAlbumFiles) ListOrdered(invert, downloadAgain bool) ([]repository.AlbumFileRow, error) {
	f.s.lastInvert = invert
	f.s.lastRelink = downloadAgain
	if downloadAgain {
		return f.s.rows, nil
	}
	var out []repository.AlbumFileRow
	for _, row := range f.s.rows {
		if a, ok := f.s.albums[row.AlbumID]; ok && a.Downloaded {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// fakeAPI serves canned listing pages. Page tokens are the string index of
// the next page.
type fakeAPI struct {
	owned      []*photosapi.AlbumPage
	shared     []*photosapi.AlbumPage
	mediaPages map[string][]*photosapi.MediaItemPage

	searchCalls map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		mediaPages:  make(map[string][]*photosapi.MediaItemPage),
		searchCalls: make(map[string]int),
	}
}

func pageAt[T any](pages []*T, token string) (*T, error) {
	idx := 0
	if token != "" {
		idx, _ = strconv.Atoi(token)
	}
	if idx >= len(pages) {
		return new(T), nil
	}
	return pages[idx], nil
}

func (f *fakeAPI) ListAlbums(pageToken string) (*photosapi.AlbumPage, error) {
	return pageAt(f.owned, pageToken)
}

func (f *fakeAPI) ListSharedAlbums(pageToken string) (*photosapi.AlbumPage, error) {
	return pageAt(f.shared, pageToken)
}

func (f *fakeAPI) SearchAlbumContents(albumID, pageToken string) (*photosapi.MediaItemPage, error) {
	f.searchCalls[albumID]++
	return pageAt(f.mediaPages[albumID], pageToken)
}

// remoteAlbum builds one listing entry.
func remoteAlbum(id, title string, size int) photosapi.Album {
	return photosapi.Album{ID: id, Title: title, MediaItemsCount: strconv.Itoa(size)}
}

// photo builds a photo media item.
func photo(id, filename string, created time.Time) photosapi.MediaItem {
	return photosapi.MediaItem{
		ID:       id,
		Filename: filename,
		MediaMetadata: photosapi.MediaMetadata{
			CreationTime: created,
			Photo:        &photosapi.PhotoMetadata{},
		},
	}
}

// video builds a video media item.
func video(id, filename string, created time.Time) photosapi.MediaItem {
	return photosapi.MediaItem{
		ID:       id,
		Filename: filename,
		MediaMetadata: photosapi.MediaMetadata{
			CreationTime: created,
			Video:        &photosapi.VideoMetadata{},
		},
	}
}
