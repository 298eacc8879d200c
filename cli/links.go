package cli

import (
	"github.com/spf13/cobra"

	"github.com/camden-git/photosync/albumsync"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Create or update the album link trees from the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}

		run, finish := a.beginRun()
		created, removed, err := runLinksPass(a)
		run.LinksCreated = created
		run.LinksRemoved = removed
		finish(err)
		return err
	},
}

func init() {
	rootCmd.AddCommand(linksCmd)
}

// runLinksPass builds the reconciler and runs one reconciliation pass.
func runLinksPass(a *app) (created, removed int, err error) {
	rec := albumsync.NewReconciler(a.albums, a.albumFiles, a.namer, a.check, cfg)
	return rec.Reconcile()
}
