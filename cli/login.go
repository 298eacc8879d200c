package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/camden-git/photosync/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize access to the photo library and store the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.ClientID == "" || cfg.ClientSecret == "" {
			return fmt.Errorf("client_id and client_secret must be configured before login")
		}
		if err := os.MkdirAll(cfg.DBPath, 0700); err != nil {
			return fmt.Errorf("failed to create database folder: %w", err)
		}
		return auth.Login(cmd.Context(), cfg.TokenFile(), cfg.ClientID, cfg.ClientSecret, cfg.LoginPort)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
