package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/tabcloner/pkg/browser"
	"github.com/entrhq/tabcloner/pkg/relay"
)

func newDoctorCmd(cfgPath *string) *cobra.Command {
	var skipProbe bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the destination browser can be found and driven",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			loc := newLocator(cfg)
			fmt.Fprintf(out, "well-known path: %s\n", loc.WellKnownPath())
			fmt.Fprintf(out, "binary name:     %s\n", loc.BinaryName())

			path, err := loc.Locate()
			if err != nil {
				return fmt.Errorf("%s: %w (install from %s)", cfg.Browser.Name, err, cfg.Browser.DownloadURL)
			}
			fmt.Fprintf(out, "browser:         %s\n", path)

			if !skipProbe {
				res, err := browser.Probe(cmd.Context(), path, cfg.Browser.LaunchTimeout)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "product:         %s\n", res.Product)
				fmt.Fprintf(out, "protocol:        %s\n", res.ProtocolVersion)
			}

			status, err := relay.NewClient(cfg.Relay.URL, 2*time.Second).Status(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "relay:           not reachable at %s\n", cfg.Relay.URL)
			} else {
				fmt.Fprintf(out, "relay:           %s (pending data: %t)\n", status.Status, status.HasPendingData)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipProbe, "skip-probe", false, "do not start the browser for a CDP probe")
	return cmd
}
