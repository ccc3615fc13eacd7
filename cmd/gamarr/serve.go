package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run passes on the configured schedule",
		Long: `Runs reconciliation passes every schedule.interval until interrupted.
Send SIGHUP to request an immediate pass.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			runner := a.runner()

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-hup:
						runner.Trigger()
					}
				}
			}()

			a.log.Info("gamarr serving", "version", version, "platforms", len(a.cfg.Platforms), "database", a.cfg.Database.Path)
			return runner.Run(ctx)
		},
	}
}
