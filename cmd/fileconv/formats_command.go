package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"fileconv/internal/formats"
	"fileconv/internal/present"
)

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "formats [category]",
		Short: "List target formats per file category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			catalog := formats.FromConfig(cfg)
			categories := catalog.Categories()
			if len(args) == 1 {
				category := strings.ToLower(strings.TrimSpace(args[0]))
				if !slices.Contains(categories, category) {
					return fmt.Errorf("unknown category %q (known: %s)", args[0], strings.Join(categories, ", "))
				}
				categories = []string{category}
			}
			fmt.Fprintln(cmd.OutOrStdout(), present.FormatsTable(catalog, categories))
			return nil
		},
	}
}
