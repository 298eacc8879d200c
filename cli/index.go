package cli

import (
	"github.com/spf13/cobra"

	"github.com/camden-git/photosync/albumsync"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index remote albums and their contents into the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}

		run, finish := a.beginRun()
		n, err := runIndexPass(a)
		run.AlbumsIndexed = n
		finish(err)
		return err
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

// runIndexPass builds the indexer and runs one full indexing pass.
func runIndexPass(a *app) (int, error) {
	ix, err := albumsync.NewIndexer(a.newAPIClient(cfg), a.albums, a.media, a.albumFiles, a.namer, cfg)
	if err != nil {
		return 0, err
	}
	return ix.IndexAlbumMedia()
}
