package main

import (
	"github.com/spf13/cobra"

	"github.com/cory-johannsen/statengine/internal/config"
)

const defaultConfigPath = "configs/dev.yaml"

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "statengine",
		Short: "Attribute and capability resolution engine",
		Long: `statengine runs a fixed-rate game loop over a state of tagged entities,
resolving their stats through layered modifiers and scripted conditions.

Commands are read one per line from standard input:
  statengine run --config configs/dev.yaml`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath,
		"path to configuration file (empty for defaults and STATENGINE_* environment only)")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newValidateCmd(opts))
	root.AddCommand(newSnapshotCmd(opts))
	return root
}
