package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fileconv/internal/session"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file> [file...]",
		Short: "Upload a file and list the formats it can be converted to",
		Long: "Upload a file to the conversion service. Only the first file is used when\n" +
			"several are given. The uploaded file is remembered for `fileconv convert`.",
		Args: cobra.MinimumNArgs(1),
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

			if err := env.machine.Intake(cmd.Context(), session.SourcePicker, args); err != nil {
				return env.explain(cmd.OutOrStdout(), err)
			}
			snap := env.machine.Snapshot()
			if snap.HasFormats() {
				fmt.Fprintln(cmd.OutOrStdout(), "Convert with `fileconv convert --to <code>`.")
			}
			return nil
		},
	}
}
