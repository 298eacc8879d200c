// Package localscan walks a user-supplied comparison folder and reports
// media files that exist locally but are absent from the index, matching on
// filename plus the EXIF capture date (file modification time when no EXIF
// data is readable).
package localscan

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/facette/natsort"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/camden-git/photosync/repository"
)

var scannedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".heic": true,
	".mp4":  true,
	".mov":  true,
}

// Scanner compares a local folder tree against the media index
type Scanner struct {
	Media         repository.MediaRepositoryInterface
	CompareFolder string
}

// NewScanner creates a Scanner over the given folder
func NewScanner(media repository.MediaRepositoryInterface, compareFolder string) *Scanner {
	return &Scanner{Media: media, CompareFolder: compareFolder}
}

// FindMissing returns the relative paths of local media files that have no
// indexed counterpart, in natural sort order for a stable report
func (s *Scanner) FindMissing() ([]string, error) {
	log.Printf("scanning local files in %s ...", s.CompareFolder)

	var missing []string
	scanned := 0
	err := filepath.WalkDir(s.CompareFolder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("warning: error scanning %s: %v", path, err)
			return nil
		}
		if d.IsDir() || !scannedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		scanned++

		taken := captureDate(path)
		found, err := s.Media.ExistsByNameAndDate(d.Name(), taken)
		if err != nil {
			return err
		}
		if !found {
			rel, relErr := filepath.Rel(s.CompareFolder, path)
			if relErr != nil {
				rel = path
			}
			missing = append(missing, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	natsort.Sort(missing)
	log.Printf("scanned %d local files, %d not in the index", scanned, len(missing))
	return missing, nil
}

// captureDate extracts the EXIF original date from a file, falling back to
// the file's modification time
func captureDate(path string) time.Time {
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if x, err := exif.Decode(f); err == nil {
			if dt, err := x.DateTime(); err == nil {
				return dt
			}
		}
	}
	if fi, err := os.Stat(path); err == nil {
		return fi.ModTime()
	}
	return time.Time{}
}
