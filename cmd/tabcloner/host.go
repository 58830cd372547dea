package main

import (
	"bufio"

	"github.com/spf13/cobra"

	"github.com/entrhq/tabcloner/pkg/host"
	"github.com/entrhq/tabcloner/pkg/transport"
)

// runHost serves native messaging requests on the command's stdin and
// stdout until the browser closes the pipe.
func runHost(cmd *cobra.Command, cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	logger := newLogger("host")
	defer func() { _ = logger.Close() }()
	logger.Infof("Starting native messaging host (log: %s)", logger.LogPath())

	engine, err := newEngine(cfg, logger)
	if err != nil {
		logger.Errorf("Failed to set up replication: %v", err)
		return err
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	h := host.New(cmd.InOrStdin(), out, transport.NewDirect(engine), host.Options{
		MaxFrameSize: cfg.Host.MaxFrameSize,
		Logger:       logger,
	})

	if err := h.Run(cmd.Context()); err != nil {
		logger.Errorf("Host stopped: %v", err)
		return err
	}
	logger.Infof("Host stopped")
	return nil
}
