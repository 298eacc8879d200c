package albumsync

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// prune removes filesystem entries under both link roots that the current
// valid-link set does not account for, then removes directories left empty,
// deepest first so an emptied child can empty its parent. In symlink mode
// only symbolic links are pruned; in hardlink mode any file under the roots
// is fair game, since hardlinks are indistinguishable from ordinary files.
func (r *Reconciler) prune(valid map[string]struct{}) int {
	removed := 0
	for _, root := range []string{r.albumsRoot, r.sharedRoot} {
		if !dirExists(root) {
			continue
		}
		removed += r.pruneStaleLinks(root, valid)
		r.removeEmptyDirs(root)
	}
	return removed
}

// pruneStaleLinks walks one root and unlinks every entry not in the valid
// set.
func (r *Reconciler) pruneStaleLinks(root string, valid map[string]struct{}) int {
	removed := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("warning: error walking %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := valid[path]; ok {
			return nil
		}
		isLink := d.Type()&os.ModeSymlink != 0
		if isLink || r.cfg.UseHardlinks {
			log.Printf("removing stale link %s", path)
			if err := os.Remove(path); err != nil {
				log.Printf("warning: error removing stale link %s: %v", path, err)
				return nil
			}
			removed++
		}
		return nil
	})
	if err != nil {
		log.Printf("warning: error pruning %s: %v", root, err)
	}
	return removed
}

// removeEmptyDirs deletes empty directories under root (never root itself),
// longest paths first so parents emptied by a child's removal go too.
func (r *Reconciler) removeEmptyDirs(root string) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		log.Printf("warning: error scanning %s for empty directories: %v", root, err)
		return
	}

	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		log.Printf("removing empty directory %s", dir)
		if err := os.Remove(dir); err != nil {
			log.Printf("warning: error removing empty directory %s: %v", dir, err)
		}
	}
}
