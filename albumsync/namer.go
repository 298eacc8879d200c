// Package albumsync implements album indexing and link reconciliation: it
// walks the remote album listings into the local index and materializes the
// index as a tree of hard or symbolic links under the album roots, pointing
// at already-downloaded media files.
package albumsync

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/camden-git/photosync/checks"
	"github.com/camden-git/photosync/config"
)

// default month layouts: nested trees use the month alone (the year is its
// own directory), flat trees add the day for uniqueness
const (
	defaultMonthNested = "01"
	defaultMonthFlat   = "0102"
)

// Namer maps album metadata to a deterministic absolute folder path. It is
// pure: no filesystem access, no side effects, and it never fails for a
// non-empty title. Two different albums may legitimately map to the same
// folder; reconciliation tolerates that.
type Namer struct {
	albumsRoot string
	sharedRoot string
	photosRel  string

	useStartDate  bool
	useFlatPath   bool
	omitAlbumDate bool
	monthFormat   string
	pathFormat    string

	check *checks.Checker
}

// NewNamer resolves the album and shared-album roots once from the settings
// and returns a Namer using the given filesystem checker for sanitization.
func NewNamer(cfg *config.Settings, check *checks.Checker) *Namer {
	return &Namer{
		albumsRoot:    cfg.AlbumsRoot(),
		sharedRoot:    cfg.SharedAlbumsRoot(),
		photosRel:     cfg.PhotosPath,
		useStartDate:  cfg.UseStartDate,
		useFlatPath:   cfg.UseFlatPath,
		omitAlbumDate: cfg.OmitAlbumDate,
		monthFormat:   cfg.MonthFormat,
		pathFormat:    cfg.PathFormat,
		check:         check,
	}
}

// FolderFor returns the absolute folder path for an album given its title,
// derived date range and shared flag.
func (n *Namer) FolderFor(title string, startDate, endDate time.Time, shared bool) string {
	name := n.check.ValidFileName(title)

	var rel string
	if n.omitAlbumDate {
		rel = name
	} else {
		d := endDate
		if n.useStartDate {
			d = startDate
		}
		year := d.Format("2006")
		month := d.Format(n.monthLayout())

		if n.useFlatPath {
			format := n.pathFormat
			if format == "" {
				format = "%s-%s %s"
			}
			rel = fmt.Sprintf(format, year, month, name)
		} else {
			format := n.pathFormat
			if format == "" {
				format = "%s %s"
			}
			rel = filepath.Join(year, fmt.Sprintf(format, month, name))
		}
	}

	if shared {
		return filepath.Join(n.sharedRoot, rel)
	}
	return filepath.Join(n.albumsRoot, rel)
}

// MediaFolderFor returns the relative folder under the root where a media
// item created at the given time lives: photos/YYYY/MM nested, or
// photos/YYYY-MM flat.
func (n *Namer) MediaFolderFor(created time.Time) string {
	year := created.Format("2006")
	month := created.Format("01")
	if n.useFlatPath {
		return filepath.Join(n.photosRel, year+"-"+month)
	}
	return filepath.Join(n.photosRel, year, month)
}

func (n *Namer) monthLayout() string {
	if n.monthFormat != "" {
		return n.monthFormat
	}
	if n.useFlatPath {
		return defaultMonthFlat
	}
	return defaultMonthNested
}
