// Package cmd wires up the CLI and dispatches to the chat engine.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/DerWahreMirakulix/metor/config"
)

// version is overridable at link time:
//
//	go build -ldflags "-X github.com/DerWahreMirakulix/metor/cmd.version=0.2.0"
var version = "0.1.0" //nolint:gochecknoglobals

// configLoader resolves the effective configuration for a subcommand,
// layering file, environment and flag overrides.
type configLoader func(cmd *cobra.Command) (*config.Config, error)

// Execute parses args and runs the selected metor command.
func Execute(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath   string
		verbose   bool
		overrides configOverrides
	)

	cmd := &cobra.Command{
		Use:   "metor",
		Short: "Anonymous 1:1 terminal chat over Tor",
		Long: `Metor is a terminal messenger for private 1:1 conversations over Tor
hidden services.  Each endpoint publishes a v3 onion service; either
side can dial the other's address and exactly one conversation runs at
a time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "Config file (default: config.yaml in the data directory)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
	bindConfigFlags(pf, &overrides)

	load := func(c *cobra.Command) (*config.Config, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		if verbose {
			cfg.Verbose = true
		}
		if err := overrides.apply(c.Flags(), cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cmd.AddCommand(
		newChatCmd(load),
		newAddressCmd(load),
		newHistoryCmd(load),
		newVersionCmd(),
	)
	return cmd
}
