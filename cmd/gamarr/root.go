package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	configPath string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "gamarr",
		Short: "Import finished game downloads into a RomM library",
		Long: `gamarr - game library importer

Moves completed qBittorrent downloads into a RomM library, renamed to their
catalog titles, and keeps library content hashes current.`,
		SilenceUsage: true,
		Version:      version,
	}
	cmd.SetVersionTemplate("gamarr {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: $GAMARR_CONFIG, ./config.toml, XDG, /etc/gamarr)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(
		newRunCmd(opts),
		newServeCmd(opts),
		newResolveCmd(opts),
		newHistoryCmd(opts),
		newCacheCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("gamarr %s\n", version)
		},
	}
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
