// Package main is the tabcloner binary. Started without a subcommand it is
// the native messaging host the source browser talks to over stdio.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		// stdout may be the native messaging pipe
		fmt.Fprintf(os.Stderr, "tabcloner: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "tabcloner",
		Short: "Clone browser tab groups into Sidekick",
		Long: `tabcloner receives tab group snapshots from the Chrome extension and
reopens them in the Sidekick browser.

Without a subcommand it runs as a native messaging host on stdin/stdout.
The browser passes the caller origin and, on Windows, --parent-window;
both are accepted and ignored.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{
			UnknownFlags: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(cmd, cfgPath)
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default ~/.tabcloner/config.yaml)")

	root.AddCommand(newRelayCmd(&cfgPath))
	root.AddCommand(newPullCmd(&cfgPath))
	root.AddCommand(newLocateCmd(&cfgPath))
	root.AddCommand(newDoctorCmd(&cfgPath))
	root.AddCommand(newConfigCmd(&cfgPath))
	root.AddCommand(newVersionCmd())

	return root
}
