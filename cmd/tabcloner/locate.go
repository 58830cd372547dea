package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLocateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Print the destination browser binary that would be launched",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			path, err := newLocator(cfg).Locate()
			if err != nil {
				return fmt.Errorf("%s: %w (install from %s)", cfg.Browser.Name, err, cfg.Browser.DownloadURL)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}
