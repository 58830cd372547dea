package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/tabcloner/pkg/relay"
	"github.com/entrhq/tabcloner/pkg/transport"
)

func newRelayCmd(cfgPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the HTTP relay that buffers tab data for a later pull",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Relay.Addr = addr
			}

			logger := newLogger("relay")
			defer func() { _ = logger.Close() }()

			server := relay.NewServer(transport.NewMailbox(), relay.Options{
				Addr:           cfg.Relay.Addr,
				MaxConnections: cfg.Relay.MaxConnections,
				MaxBodyBytes:   cfg.Relay.MaxBodyBytes,
				Logger:         logger,
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "Tab relay running on http://%s\nPress Ctrl+C to stop\n", cfg.Relay.Addr)
			return server.ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides relay.addr)")
	return cmd
}
