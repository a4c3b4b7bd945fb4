package main

import (
	"github.com/spf13/cobra"

	"fileconv/internal/session"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Upload a file, convert it and optionally download the result",
		Args:  cobra.ExactArgs(1),
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
			return env.convertLoaded(cmd, flags)
		},
	}

	flags.bind(cmd)
	return cmd
}
