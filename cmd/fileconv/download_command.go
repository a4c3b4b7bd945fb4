package main

import (
	"errors"

	"github.com/spf13/cobra"

	"fileconv/internal/session"
)

var errNoConversion = errors.New("no completed conversion; run `fileconv convert --to <code>` first")

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the result of the most recent successful conversion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			env, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := env.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			runCtx := cmd.Context()
			latest, err := env.store.LatestConversion(runCtx)
			if err != nil {
				return err
			}
			if latest == nil {
				return errNoConversion
			}
			result := session.Result{Filename: latest.OutputFilename, DownloadURL: latest.DownloadURL}
			return env.saveResult(runCtx, cmd.OutOrStdout(), result, latest.RequestID, overwrite)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file in the download directory")
	return cmd
}
