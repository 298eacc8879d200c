// Package checks probes the target filesystem once at startup and answers
// naming questions for everyone else: maximum path and filename lengths,
// filename sanitization, symlink support and case sensitivity.
package checks

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const (
	maxPathDefault     = 4096
	maxPathNtfs        = 260
	maxFilenameDefault = 255
	maxFilenameNtfs    = 255
)

// characters that never survive into a folder or file name. Superset of the
// NTFS-illegal set so trees stay portable across filesystems
const illegalChars = "<>:\"/\\|?*!"

// Checker holds the filesystem limits and capabilities detected for a root
// folder
type Checker struct {
	Root            string
	MaxPath         int
	MaxFilename     int
	IsSymlink       bool
	IsCaseSensitive bool
	IsNtfs          bool
}

// New probes the filesystem that root lives on. maxFilenameOverride forces
// the filename limit when non-zero; ntfs forces NTFS-style limits instead
// of probing
func New(root string, maxFilenameOverride int, ntfs bool) *Checker {
	c := &Checker{
		Root:        root,
		MaxPath:     maxPathDefault,
		MaxFilename: maxFilenameDefault,
		IsNtfs:      ntfs,
	}
	if ntfs {
		c.MaxPath = maxPathNtfs
		c.MaxFilename = maxFilenameNtfs
	}
	if maxFilenameOverride > 0 {
		c.MaxFilename = maxFilenameOverride
	}
	c.IsSymlink = c.probeSymlink()
	c.IsCaseSensitive = c.probeCaseSensitive()
	return c
}

// ValidFileName sanitizes a single path segment so it is legal on the
// target filesystem: Unicode NFC normalization, removal of illegal and
// control characters, trailing dots and spaces trimmed, clamped to the
// filename limit. Never returns an empty string for non-empty input
func (c *Checker) ValidFileName(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			continue
		}
		if strings.ContainsRune(illegalChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimRight(b.String(), ". ")
	if len(out) > c.MaxFilename {
		// never cut inside a multi-byte rune
		cut := c.MaxFilename
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	if out == "" {
		out = "_"
	}
	return out
}

// probeSymlink reports whether the root filesystem supports symbolic links
// by creating and removing a throwaway link
func (c *Checker) probeSymlink() bool {
	probe := filepath.Join(c.Root, ".symlink_probe_"+uuid.NewString())
	if err := os.Symlink("dangling_target", probe); err != nil {
		log.Printf("warning: symlinks not supported on %s: %v", c.Root, err)
		return false
	}
	os.Remove(probe)
	return true
}

// probeCaseSensitive reports whether the root filesystem distinguishes
// names by case
func (c *Checker) probeCaseSensitive() bool {
	probe := filepath.Join(c.Root, ".Case_Probe_"+uuid.NewString())
	f, err := os.Create(probe)
	if err != nil {
		// cannot probe; assume the common Linux case
		return true
	}
	f.Close()
	defer os.Remove(probe)

	_, err = os.Stat(strings.ToLower(probe))
	return os.IsNotExist(err)
}
