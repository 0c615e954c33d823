package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the satchel release.
const Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/satchel"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the satchel version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.jsonMode {
				return writeJSON(cmd, map[string]string{"version": Version, "module": modulePath})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "satchel v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
