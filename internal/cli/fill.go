package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satchel/pkg/properties"
)

func newFillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "properties:fill",
		Short: "Register every declared property in the catalog",
		Long: "Collect the properties declared by every registered record type and\n" +
			"create or update their catalog entries. Safe to run repeatedly.",
		Args: cobra.NoArgs,
		RunE: runFill,
	}
}

func runFill(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := properties.Fill(ctx, a.catalog, properties.DefaultRegistry, cmd.OutOrStdout(), a.log); err != nil {
			return exitError(exitSysError, err)
		}
		return nil
	})
}
