package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Index remote albums, then reconcile the album link trees",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}

		run, finish := a.beginRun()
		err = func() error {
			n, err := runIndexPass(a)
			run.AlbumsIndexed = n
			if err != nil {
				return err
			}
			created, removed, err := runLinksPass(a)
			run.LinksCreated = created
			run.LinksRemoved = removed
			return err
		}()
		finish(err)
		if err != nil {
			return err
		}

		color.Green("indexed %d albums, created or updated %d links, removed %d stale links",
			run.AlbumsIndexed, run.LinksCreated, run.LinksRemoved)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
