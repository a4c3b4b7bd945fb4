package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fileconv/internal/history"
	"fileconv/internal/present"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent uploads and conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runCtx := cmd.Context()
			uploads, err := store.ListUploads(runCtx, limit)
			if err != nil {
				return err
			}
			conversions, err := store.ListConversions(runCtx, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(uploads) == 0 && len(conversions) == 0 {
				fmt.Fprintln(out, "No history yet")
				return nil
			}
			now := time.Now()
			fmt.Fprintln(out, "Uploads")
			fmt.Fprintln(out, present.UploadsTable(uploads, now))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Conversions")
			fmt.Fprintln(out, present.ConversionsTable(conversions, now))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Rows per table (0 shows everything)")
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget every recorded upload and conversion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			store, err := history.Open(cfg)
			if errors.Is(err, history.ErrSchemaMismatch) {
				if err := history.Remove(cfg); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed incompatible history database %s\n", cfg.HistoryPath())
				return nil
			}
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Cleared %d history entries\n", removed)
			return nil
		},
	}
}
