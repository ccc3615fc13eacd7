package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vmunix/gamarr/internal/importer"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var filter importer.HistoryFilter
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the import ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.history().List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No imports recorded")
				return nil
			}

			fmt.Fprintf(out, "%-14s  %-8s  %-6s  %-40s  %s\n", "WHEN", "EVENT", "PLAT", "TITLE", "DEST")
			for _, h := range entries {
				fmt.Fprintf(out, "%-14s  %-8s  %-6s  %-40s  %s\n",
					humanize.Time(h.CreatedAt), h.Event, h.Platform, truncate(h.Title, 40), h.DestPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.DownloadID, "download", "", "Filter by download (torrent hash)")
	cmd.Flags().StringVarP(&filter.Platform, "platform", "p", "", "Filter by platform")
	cmd.Flags().StringVar(&filter.Event, "event", "", "Filter by event (imported, replaced, source_kept)")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 20, "Maximum entries to show")
	return cmd
}
