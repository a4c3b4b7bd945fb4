package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNoUpload = errors.New("no uploaded file; run `fileconv upload <file>` first")

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert the most recently uploaded file",
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

			upload, err := env.store.LatestUpload(cmd.Context())
			if err != nil {
				return err
			}
			if upload == nil {
				return errNoUpload
			}
			if err := env.machine.Restore(upload.Handle, upload.Category); err != nil {
				return err
			}
			return env.convertLoaded(cmd, flags)
		},
	}

	flags.bind(cmd)
	return cmd
}
