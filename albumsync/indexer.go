package albumsync

import (
	"fmt"
	"log"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/photosync/config"
	"github.com/camden-git/photosync/models"
	"github.com/camden-git/photosync/photosapi"
	"github.com/camden-git/photosync/repository"
)

// Sentinel dates returned for an album with no observed items. First after
// last signals "no observations" to the caller; they are never a real range.
var (
	MaxObservedDate = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	MinObservedDate = time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC)
)

const progressEvery = 10

// ListingAPI is the slice of the photos API the indexer consumes. Each call
// fetches one page; an empty token requests the first page.
type ListingAPI interface {
	ListAlbums(pageToken string) (*photosapi.AlbumPage, error)
	ListSharedAlbums(pageToken string) (*photosapi.AlbumPage, error)
	SearchAlbumContents(albumID, pageToken string) (*photosapi.MediaItemPage, error)
}

// Indexer walks the paginated album listings, decides per album whether a
// re-fetch is needed, and persists album summaries and album-file positions
// into the local store. It never retries: the transport owns transient
// failures, and a hard failure aborts the pass with already-committed rows
// still valid for the next run.
type Indexer struct {
	api        ListingAPI
	albums     repository.AlbumRepositoryInterface
	media      repository.MediaRepositoryInterface
	albumFiles repository.AlbumFileRepositoryInterface
	namer      *Namer
	cfg        *config.Settings

	albumRegex *regexp.Regexp
}

// NewIndexer creates an Indexer. It fails only if the configured album name
// regex does not compile.
func NewIndexer(
	api ListingAPI,
	albums repository.AlbumRepositoryInterface,
	media repository.MediaRepositoryInterface,
	albumFiles repository.AlbumFileRepositoryInterface,
	namer *Namer,
	cfg *config.Settings,
) (*Indexer, error) {
	ix := &Indexer{
		api:        api,
		albums:     albums,
		media:      media,
		albumFiles: albumFiles,
		namer:      namer,
		cfg:        cfg,
	}
	if cfg.AlbumRegex != "" {
		re, err := regexp.Compile("(?i)" + cfg.AlbumRegex)
		if err != nil {
			return nil, fmt.Errorf("invalid album regex %q: %w", cfg.AlbumRegex, err)
		}
		ix.albumRegex = re
	}
	return ix, nil
}

// listingKind describes one of the two album listing endpoints and the
// policy attached to it.
type listingKind struct {
	description    string
	list           func(pageToken string) (*photosapi.AlbumPage, error)
	shared         bool
	allowNullTitle bool
	addMediaItems  bool
}

// IndexAlbumMedia indexes shared albums (when enabled) and then owned
// albums. Shared-album contents are always added to the media index; owned
// content addition is gated by the album-index and favourites-only
// settings, since a favourites-restricted run makes per-album content
// addition meaningless. Returns the number of albums actually (re)indexed.
func (ix *Indexer) IndexAlbumMedia() (int, error) {
	indexed := 0

	if ix.cfg.SharedAlbums {
		n, err := ix.indexAlbumsKind(listingKind{
			description:    "shared albums",
			list:           ix.api.ListSharedAlbums,
			shared:         true,
			allowNullTitle: true,
			addMediaItems:  true,
		})
		indexed += n
		if err != nil {
			return indexed, err
		}
	}

	n, err := ix.indexAlbumsKind(listingKind{
		description:    "albums",
		list:           ix.api.ListAlbums,
		shared:         false,
		allowNullTitle: false,
		addMediaItems:  ix.cfg.AlbumIndex && !ix.cfg.FavouritesOnly,
	})
	indexed += n
	return indexed, err
}

// indexAlbumsKind pages through one album listing endpoint, applying the
// skip rules in order and indexing whatever survives them.
func (ix *Indexer) indexAlbumsKind(kind listingKind) (int, error) {
	log.Printf("indexing %s ...", kind.description)

	listed := 0
	indexed := 0
	pageToken := ""
	for {
		page, err := kind.list(pageToken)
		if err != nil {
			return indexed, fmt.Errorf("listing %s: %w", kind.description, err)
		}

		for _, album := range page.Items() {
			listed++

			existing, err := ix.albums.Get(models.RemoteID(album.ID))
			if err != nil && err != gorm.ErrRecordNotFound {
				return indexed, err
			}
			alreadyIndexed := existing != nil && existing.Size == album.Size()

			switch {
			case ix.cfg.Album != "" && ix.cfg.Album != album.Title:
				log.Printf("skipping album %q, %d items (does not match --album)", album.Title, album.Size())
			case ix.albumRegex != nil && !ix.albumRegex.MatchString(album.Title):
				log.Printf("skipping album %q, %d items (does not match --album-regex)", album.Title, album.Size())
			case album.Title == "" && !kind.allowNullTitle:
				log.Printf("skipping no-title album, %d items", album.Size())
			case alreadyIndexed && !ix.cfg.Flush:
				log.Printf("skipping album %q, %d items (already indexed)", album.Title, album.Size())
			default:
				log.Printf("indexing album %q, %d items", album.Title, album.Size())
				firstDate, lastDate, err := ix.fetchAlbumContents(models.RemoteID(album.ID), kind.addMediaItems)
				if err != nil {
					return indexed, err
				}
				row := &models.Album{
					RemoteID:  models.RemoteID(album.ID),
					Title:     album.Title,
					Size:      album.Size(),
					FirstDate: firstDate,
					LastDate:  lastDate,
					Shared:    kind.shared,
				}
				if err := ix.albums.Put(row, existing != nil); err != nil {
					return indexed, err
				}
				indexed++
			}

			if ix.cfg.Progress && listed%progressEvery == 0 {
				log.Printf("listed %d %s ...", listed, kind.description)
			}
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	log.Printf("indexed %d of %d %s", indexed, listed, kind.description)
	return indexed, nil
}

// fetchAlbumContents pages through one album's media listing, recording
// each surviving item's position in the album-file relation and tracking
// the observed create-date range. Skipped videos do not consume a position.
// When addMediaItems is set, items are also written into the media index
// with their on-disk folder and duplicate number.
func (ix *Indexer) fetchAlbumContents(albumID models.RemoteID, addMediaItems bool) (time.Time, time.Time, error) {
	firstDate := MaxObservedDate
	lastDate := MinObservedDate

	position := 0
	pageToken := ""
	for {
		page, err := ix.api.SearchAlbumContents(string(albumID), pageToken)
		if err != nil {
			return firstDate, lastDate, fmt.Errorf("fetching contents of album %s: %w", albumID, err)
		}

		// remote API quirk: a page can report zero items while still
		// carrying a next-page token
		if len(page.MediaItems) == 0 && page.NextPageToken != "" {
			log.Printf("warning: empty media page with a next page token")
		}

		for _, item := range page.MediaItems {
			if !ix.cfg.IncludeVideo && item.IsVideo() {
				log.Printf("skipping %s (video)", item.Filename)
				continue
			}

			if err := ix.albumFiles.Put(albumID, models.RemoteID(item.ID), position); err != nil {
				return firstDate, lastDate, err
			}
			position++

			created := item.CreateDate()
			if created.After(lastDate) {
				lastDate = created
			}
			if created.Before(firstDate) {
				firstDate = created
			}

			if addMediaItems {
				if err := ix.addMediaItem(item); err != nil {
					return firstDate, lastDate, err
				}
			}
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return firstDate, lastDate, nil
}

// addMediaItem writes one album item into the media index, assigning its
// on-disk folder from the create date and its duplicate number from the
// count of already-indexed items sharing the same (filename, folder). The
// count comes from the store's own read-modify-write, so two items with the
// same name in the same folder cannot receive the same number within a run.
func (ix *Indexer) addMediaItem(item photosapi.MediaItem) error {
	folder := ix.namer.MediaFolderFor(item.CreateDate())
	num, _, err := ix.media.FileDuplicateNo(item.Filename, folder, models.RemoteID(item.ID))
	if err != nil {
		return err
	}
	return ix.media.Put(&models.MediaItem{
		RemoteID:        models.RemoteID(item.ID),
		Filename:        item.Filename,
		RelativeFolder:  folder,
		DuplicateNumber: num,
		CreateDate:      item.CreateDate(),
		IsVideo:         item.IsVideo(),
	})
}
