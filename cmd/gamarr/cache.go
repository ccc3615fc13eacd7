package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/gamarr/internal/metadata"
)

func newCacheCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the metadata cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired catalog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := metadata.NewCache(a.db).Prune(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired entries\n", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh [platform...]",
		Short: "Refetch catalogs (default: every configured platform)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			platforms := args
			if len(platforms) == 0 {
				for _, p := range a.cfg.Platforms {
					platforms = append(platforms, p.Slug)
				}
			}

			catalog := a.catalog()
			for _, p := range platforms {
				if err := catalog.Refresh(cmd.Context(), p); err != nil {
					return err
				}
				games, err := catalog.Games(cmd.Context(), p)
				if err != nil {
					return fmt.Errorf("%s: %w", p, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d games\n", p, len(games))
			}
			return nil
		},
	})
	return cmd
}
