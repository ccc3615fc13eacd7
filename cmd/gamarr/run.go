package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vmunix/gamarr/internal/server"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one reconciliation pass",
		Long: `Runs a single pass: imports finished downloads, refreshes stale content
hashes and tidies the library. Exits non-zero when any entry failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.runner().RunOnce(ctx)
			if errors.Is(err, server.ErrPassRunning) {
				return fmt.Errorf("another gamarr pass is running")
			}
			if res != nil {
				if perr := printPassResult(cmd.OutOrStdout(), res, opts.jsonOutput); perr != nil {
					return perr
				}
			}
			if err != nil {
				return err
			}
			if res.Failed > 0 {
				return fmt.Errorf("%d of %d downloads failed", res.Failed, len(res.Decisions))
			}
			return nil
		},
	}
}
