package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/tabcloner/pkg/relay"
	"github.com/entrhq/tabcloner/pkg/transport"
	"github.com/entrhq/tabcloner/pkg/types"
)

func newPullCmd(cfgPath *string) *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch pending tab data from the relay and open it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if url != "" {
				cfg.Relay.URL = url
			}

			logger := newLogger("pull")
			defer func() { _ = logger.Close() }()

			snap, err := relay.NewClient(cfg.Relay.URL, 0).FetchPending(cmd.Context())
			if err != nil {
				logger.Errorf("Pull failed: %v", err)
				return err
			}

			var res types.Result
			if snap == nil {
				res = types.Result{Status: relay.StatusEmpty, Message: "No pending tab data"}
			} else {
				engine, err := newEngine(cfg, logger)
				if err != nil {
					return err
				}
				res = transport.NewDirect(engine).Deliver(cmd.Context(), snap)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if res.Status == types.StatusError {
				return fmt.Errorf("%s", res.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "relay base URL (overrides relay.url)")
	return cmd
}
