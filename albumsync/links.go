package albumsync

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"golang.org/x/sys/unix"

	"github.com/camden-git/photosync/checks"
	"github.com/camden-git/photosync/config"
	"github.com/camden-git/photosync/models"
	"github.com/camden-git/photosync/repository"
)

// Reconciler materializes the indexed album-file relation as an on-disk
// link tree. Rebuild mode (the default) wipes and recreates both roots;
// preserve mode diffs against the existing tree, only touching links that
// are absent or wrong, then prunes whatever the index no longer accounts
// for. The underlying media files are never deleted.
type Reconciler struct {
	albums     repository.AlbumRepositoryInterface
	albumFiles repository.AlbumFileRepositoryInterface
	namer      *Namer
	check      *checks.Checker
	cfg        *config.Settings

	rootFolder string
	albumsRoot string
	sharedRoot string
}

// NewReconciler creates a Reconciler over the given store and naming
// collaborators.
func NewReconciler(
	albums repository.AlbumRepositoryInterface,
	albumFiles repository.AlbumFileRepositoryInterface,
	namer *Namer,
	check *checks.Checker,
	cfg *config.Settings,
) *Reconciler {
	return &Reconciler{
		albums:     albums,
		albumFiles: albumFiles,
		namer:      namer,
		check:      check,
		cfg:        cfg,
		rootFolder: cfg.RootFolder,
		albumsRoot: cfg.AlbumsRoot(),
		sharedRoot: cfg.SharedAlbumsRoot(),
	}
}

// linkAction is one planned link: where the link goes, what it points at,
// and the create date its mtime should carry.
type linkAction struct {
	AlbumID  models.RemoteID
	LinkPath string
	Target   string
	Relative string
	Created  time.Time
}

// Reconcile runs one full reconciliation pass and returns the number of
// links created or confirmed and the number of stale links removed.
func (r *Reconciler) Reconcile() (created, removed int, err error) {
	log.Printf("creating album folder links to media ...")

	if !r.cfg.PreserveAlbumLinks {
		if dirExists(r.albumsRoot) {
			log.Printf("removing previous album links tree")
			if err := os.RemoveAll(r.albumsRoot); err != nil {
				return 0, 0, fmt.Errorf("failed to remove album links tree: %w", err)
			}
		}
		if dirExists(r.sharedRoot) {
			log.Printf("removing previous shared album links tree")
			if err := os.RemoveAll(r.sharedRoot); err != nil {
				return 0, 0, fmt.Errorf("failed to remove shared album links tree: %w", err)
			}
		}
	}

	// preserve mode diffs and prunes against the full index: a listing
	// filtered to unprocessed albums would leave correct links out of the
	// valid set and pruning would destroy them. A missing albums root
	// likewise forces a full listing, regardless of what the store thinks
	// it already processed
	fullListing := r.cfg.PreserveAlbumLinks || !dirExists(r.albumsRoot)

	for _, root := range []string{r.albumsRoot, r.sharedRoot} {
		if err := os.MkdirAll(root, 0755); err != nil {
			return 0, 0, fmt.Errorf("failed to create link root %s: %w", root, err)
		}
	}

	rows, err := r.albumFiles.ListOrdered(r.cfg.AlbumInvert, fullListing)
	if err != nil {
		return 0, 0, err
	}

	actions := r.plan(rows)

	valid := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		valid[a.LinkPath] = struct{}{}
	}

	created = r.apply(actions)

	if r.cfg.PreserveAlbumLinks {
		// an empty valid set means an empty index; pruning on it would
		// unlink everything under the roots
		if len(valid) > 0 {
			removed = r.prune(valid)
		}
		log.Printf("created or updated %d album folder links, removed %d stale links", created, removed)
	} else {
		log.Printf("created %d new album folder links", created)
	}
	return created, removed, nil
}

// plan is the pure first pass: it turns the ordered album-file rows into
// link actions without touching the filesystem. The position counter resets
// whenever the album id changes, which is what makes link prefixes stable
// per album.
func (r *Reconciler) plan(rows []repository.AlbumFileRow) []linkAction {
	actions := make([]linkAction, 0, len(rows))

	var currentAlbum models.RemoteID
	albumItem := 0
	for i, row := range rows {
		if i > 0 && row.AlbumID == currentAlbum {
			albumItem++
		} else {
			currentAlbum = row.AlbumID
			albumItem = 0
		}

		folder := row.Folder
		if over := len(filepath.Join(r.rootFolder, folder)) - r.check.MaxPath; over > 0 && over < len(folder) {
			shrunk := folder[:len(folder)-over]
			log.Printf("shrinking over-long media path %s to %s", folder, shrunk)
			folder = shrunk
		}

		fileName := truncateName(models.DiskFilename(row.Filename, row.DuplicateNumber), r.check.MaxFilename)
		target := filepath.Join(r.rootFolder, folder, fileName)

		linkFolder := r.namer.FolderFor(row.AlbumTitle, row.StartDate, row.EndDate, row.Shared)

		linkName := fileName
		if !r.cfg.NoAlbumSorting {
			linkName = fmt.Sprintf("%04d_%s", albumItem, fileName)
		}
		linkName = truncateName(linkName, r.check.MaxFilename)
		linkPath := filepath.Join(linkFolder, linkName)

		relative, err := filepath.Rel(linkFolder, target)
		if err != nil {
			// distinct volumes; fall back to the absolute target
			relative = target
		}

		actions = append(actions, linkAction{
			AlbumID:  row.AlbumID,
			LinkPath: linkPath,
			Target:   target,
			Relative: relative,
			Created:  row.Created,
		})
	}
	return actions
}

// apply is the write pass: it creates or corrects each planned link. A
// failure on one link is logged and never aborts the pass. Albums are
// marked processed in the store as the iteration crosses them.
func (r *Reconciler) apply(actions []linkAction) int {
	created := 0
	var currentAlbum models.RemoteID
	for _, a := range actions {
		if a.AlbumID != currentAlbum {
			currentAlbum = a.AlbumID
			if err := r.albums.MarkDownloaded(a.AlbumID); err != nil {
				log.Printf("warning: failed to mark album %s processed: %v", a.AlbumID, err)
			}
		}

		if err := r.applyOne(a); err != nil {
			log.Printf("warning: could not link %s: %v", a.LinkPath, err)
			continue
		}
		if entryExists(a.LinkPath) {
			created++
		}
	}
	return created
}

// applyOne creates, confirms or replaces a single link.
func (r *Reconciler) applyOne(a linkAction) error {
	if _, err := os.Stat(a.Target); err != nil {
		log.Printf("skip link for %s, not downloaded", filepath.Base(a.Target))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(a.LinkPath), 0755); err != nil {
		return err
	}

	if r.linkIsCorrect(a) {
		return nil
	}

	// remove-before-create: a changed link must not leave a stale entry in
	// place, and only links (or anything at all in hardlink mode) may be
	// removed
	if fi, err := os.Lstat(a.LinkPath); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 || r.cfg.UseHardlinks {
			if err := os.Remove(a.LinkPath); err != nil {
				return err
			}
		} else {
			log.Printf("warning: could not update link %s: not a link", a.LinkPath)
			return nil
		}
	}

	if r.cfg.UseHardlinks {
		if err := os.Link(a.Target, a.LinkPath); err != nil {
			return err
		}
	} else {
		if err := os.Symlink(a.Relative, a.LinkPath); err != nil {
			return err
		}
	}

	r.setLinkTimes(a)
	return nil
}

// linkIsCorrect reports whether an existing entry at the link path already
// represents the target. Only meaningful in preserve mode; rebuild mode
// starts from an empty tree.
func (r *Reconciler) linkIsCorrect(a linkAction) bool {
	if !r.cfg.PreserveAlbumLinks {
		return false
	}
	if r.cfg.UseHardlinks {
		linkInfo, err := os.Stat(a.LinkPath)
		if err != nil {
			return false
		}
		targetInfo, err := os.Stat(a.Target)
		if err != nil {
			return false
		}
		return os.SameFile(linkInfo, targetInfo)
	}

	fi, err := os.Lstat(a.LinkPath)
	if err != nil || fi.Mode()&os.ModeSymlink == 0 {
		return false
	}
	dest, err := os.Readlink(a.LinkPath)
	return err == nil && dest == a.Relative
}

// setLinkTimes stamps the link with the media item's creation date. Best
// effort: some platforms cannot set timestamps on a link without following
// it, and a failure here does not invalidate the link.
func (r *Reconciler) setLinkTimes(a linkAction) {
	if r.cfg.UseHardlinks {
		if err := os.Chtimes(a.LinkPath, a.Created, a.Created); err != nil {
			log.Printf("can't set date on %s: %v", a.LinkPath, err)
		}
		return
	}
	tv := unix.NsecToTimeval(a.Created.UnixNano())
	if err := unix.Lutimes(a.LinkPath, []unix.Timeval{tv, tv}); err != nil {
		log.Printf("can't set date on %s: %v", a.LinkPath, err)
	}
}

// truncateName clamps a name to max bytes without splitting a multi-byte
// rune at the cut.
func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	for max > 0 && !utf8.RuneStart(name[max]) {
		max--
	}
	return name[:max]
}

func dirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func entryExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
