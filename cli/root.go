// Package cli wires the cobra command surface to the indexing and
// reconciliation components.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/camden-git/photosync/config"
)

var (
	v   *viper.Viper
	cfg *config.Settings

	flagConfig           string
	flagSkipSharedAlbums bool
	flagNoAlbumIndex     bool
	flagSkipVideo        bool
)

var rootCmd = &cobra.Command{
	Use:   "photosync",
	Short: "Index remote photo albums and mirror them as link trees",
	Long: `photosync indexes a remote photo library's albums into a local SQLite
database and materializes the index as a browsable tree of hard or symbolic
links pointing at already-downloaded media files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	v = config.NewViper()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file path (default: ./photosync.yml or ~/.config/photosync/)")

	pf.String("root-folder", "", "root of the local folders holding downloaded media")
	pf.String("db-path", "", "folder for the index database (default: root folder)")
	pf.String("photos-path", "photos", "media tree folder, relative to root unless absolute")
	pf.String("albums-path", "albums", "album link folder, relative to root unless absolute")
	pf.String("shared-albums-path", "sharedAlbums", "shared album link folder, relative to root unless absolute")

	pf.String("album", "", "only index the album with this exact title")
	pf.String("album-regex", "", "only index albums whose title matches this regex (case-insensitive)")
	pf.BoolVar(&flagSkipSharedAlbums, "skip-shared-albums", false, "skip albums that only appear in sharing")
	pf.BoolVar(&flagNoAlbumIndex, "no-album-index", false, "skip adding owned-album contents to the media index")
	pf.Bool("favourites-only", false, "restrict the run to favourite media")
	pf.BoolVar(&flagSkipVideo, "skip-video", false, "skip video items when indexing albums")
	pf.Bool("flush", false, "re-index albums even when their size is unchanged")
	pf.Bool("progress", false, "log listing progress every few albums")

	pf.Bool("album-date-by-first-photo", false, "name album folders by their earliest photo instead of the latest")
	pf.Bool("use-flat-path", false, "use a flat 'YYYY-MM name' layout instead of nested 'YYYY/MM name'")
	pf.Bool("omit-album-date", false, "omit year and month from album folder names")
	pf.String("month-format", "", "month layout for album folder names (Go reference-time layout)")
	pf.String("path-format", "", "printf-style template for album folder names")

	pf.Bool("album-invert", false, "invert item ordering inside each album")
	pf.Bool("use-hardlinks", false, "create hardlinks instead of symbolic links")
	pf.Bool("no-album-sorting", false, "omit the position prefix from link filenames")
	pf.Bool("preserve-album-links", false, "diff against the existing link tree instead of rebuilding it")

	pf.Bool("ntfs", false, "assume NTFS-style filesystem limits instead of probing")
	pf.Int("max-filename", 0, "override the detected maximum filename length")
	pf.Bool("case-insensitive-fs", false, "declare the target filesystem case insensitive")

	pf.String("compare-folder", "", "local folder to compare against the media index")

	pf.String("api-base", "", "photos API base URL (for testing against a stub)")
	pf.String("client-id", "", "OAuth client id")
	pf.String("client-secret", "", "OAuth client secret")
	pf.Int("login-port", 8080, "local port for the login redirect listener")

	bind := map[string]string{
		"root_folder":          "root-folder",
		"db_path":              "db-path",
		"photos_path":          "photos-path",
		"albums_path":          "albums-path",
		"shared_albums_path":   "shared-albums-path",
		"album":                "album",
		"album_regex":          "album-regex",
		"favourites_only":      "favourites-only",
		"flush":                "flush",
		"progress":             "progress",
		"use_start_date":       "album-date-by-first-photo",
		"use_flat_path":        "use-flat-path",
		"omit_album_date":      "omit-album-date",
		"month_format":         "month-format",
		"path_format":          "path-format",
		"album_invert":         "album-invert",
		"use_hardlinks":        "use-hardlinks",
		"no_album_sorting":     "no-album-sorting",
		"preserve_album_links": "preserve-album-links",
		"ntfs":                 "ntfs",
		"max_filename":         "max-filename",
		"case_insensitive_fs":  "case-insensitive-fs",
		"compare_folder":       "compare-folder",
		"api_base":             "api-base",
		"client_id":            "client-id",
		"client_secret":        "client-secret",
		"login_port":           "login-port",
	}
	for key, flag := range bind {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// inverted toggles keep their CLI spelling but map onto the
		// positive settings keys
		if flagSkipSharedAlbums {
			v.Set("shared_albums", false)
		}
		if flagNoAlbumIndex {
			v.Set("album_index", false)
		}
		if flagSkipVideo {
			v.Set("include_video", false)
		}

		var err error
		cfg, err = config.Load(v, flagConfig)
		if err != nil {
			return err
		}
		return nil
	}
}
