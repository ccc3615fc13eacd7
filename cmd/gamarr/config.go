package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vmunix/gamarr/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Long:  "Writes an annotated default config.toml to path (default: the XDG config location).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.WriteDefault(path, force); err != nil {
				if errors.Is(err, config.ErrExists) {
					return fmt.Errorf("%s already exists, use --force to overwrite", path)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	checkCmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate configuration file",
		Long:  "Validates config.toml syntax, required fields, and environment variable substitution without contacting any service.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			explicit := opts.configPath
			if len(args) > 0 {
				explicit = args[0]
			}
			path, err := config.Discover(explicit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Validating %s...\n\n", path)

			cfg, err := config.Load(path)
			if err != nil {
				var configErr *config.ConfigError
				if errors.As(err, &configErr) {
					printConfigErrors(out, configErr)
					return fmt.Errorf("configuration invalid")
				}
				return fmt.Errorf("failed to load config: %w", err)
			}

			printConfigSummary(out, cfg)
			fmt.Fprintln(out, "\nConfiguration valid!")
			return nil
		},
	}

	cmd.AddCommand(initCmd, checkCmd)
	return cmd
}

func printConfigErrors(out io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(out, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(out, "  - %s\n", m)
		}
		fmt.Fprintln(out)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(out, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(out, "  - %s\n", err)
		}
		fmt.Fprintln(out)
	}
}

func printConfigSummary(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Configuration Summary:")
	fmt.Fprintf(out, "  Schedule:     every %s (on startup: %v)\n", cfg.Schedule.Interval, cfg.Schedule.OnStartup)
	fmt.Fprintf(out, "  Database:     %s\n", cfg.Database.Path)
	fmt.Fprintf(out, "  qBittorrent:  %s (remove after import: %v)\n", cfg.QBittorrent.URL, cfg.QBittorrent.RemoveDownloads())
	fmt.Fprintf(out, "  RomM:         %s (scan after import: %v)\n", cfg.Romm.URL, cfg.Romm.ScanAfterImport)
	fmt.Fprintf(out, "  Catalog:      %s (ttl %s, min confidence %.2f)\n", cfg.Metadata.CatalogURL, cfg.Metadata.CacheTTL, cfg.Metadata.MinConfidence)
	fmt.Fprintln(out, "  Platforms:")
	for _, p := range cfg.Platforms {
		minSize := "none"
		if p.MinSizeBytes > 0 {
			minSize = formatSize(p.MinSizeBytes)
		}
		fmt.Fprintf(out, "    %-8s category %-12s -> %s (min size %s, naming %s)\n", p.Slug, p.Category, p.LibraryDir, minSize, p.Naming)
	}
}
