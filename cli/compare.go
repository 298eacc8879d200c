package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/camden-git/photosync/localscan"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Report local media files that are missing from the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.CompareFolder == "" {
			return fmt.Errorf("compare_folder must be configured (--compare-folder)")
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}

		missing, err := localscan.NewScanner(a.media, cfg.CompareFolder).FindMissing()
		if err != nil {
			return err
		}
		if len(missing) == 0 {
			color.Green("all scanned local files are present in the index")
			return nil
		}
		color.Yellow("%d local files not found in the index:", len(missing))
		for _, rel := range missing {
			fmt.Println(rel)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
