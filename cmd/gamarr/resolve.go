package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/gamarr/pkg/release"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var (
		platform string
		refresh  bool
	)
	cmd := &cobra.Command{
		Use:   "resolve <release name>",
		Short: "Show how a release name resolves against the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if platform == "" {
				platform = a.cfg.Platforms[0].Slug
			}
			if _, ok := a.cfg.Platform(platform); !ok {
				return fmt.Errorf("platform %q not configured", platform)
			}

			catalog := a.catalog()
			if refresh {
				if err := catalog.Refresh(cmd.Context(), platform); err != nil {
					return err
				}
			}

			info := release.Parse(args[0])
			candidates, err := a.resolver(catalog).Resolve(cmd.Context(), args[0], platform)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"parsed":     info,
					"candidates": candidates,
				})
			}

			fmt.Fprintf(out, "Parsed:   %s\n", info.Title)
			if info.Group != "" {
				fmt.Fprintf(out, "Group:    %s\n", info.Group)
			}
			if info.Version != "" {
				fmt.Fprintf(out, "Version:  %s\n", info.Version)
			}
			if len(candidates) == 0 {
				fmt.Fprintf(out, "\nNo match on %s (would be quarantined)\n", platform)
				return nil
			}
			fmt.Fprintf(out, "\nCandidates on %s:\n", platform)
			for i, c := range candidates {
				fmt.Fprintf(out, "  %2d. %-50s %.3f %-6s %s\n", i+1, truncate(c.Title, 50), c.Score,
					release.ConfidenceFor(c.Score), c.ExternalID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&platform, "platform", "p", "", "Platform slug (default: first configured)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Refetch the catalog instead of using the cache")
	return cmd
}
