package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the storage location and schema, then exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, store, err := openStore(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "storage %q ready\n", cfg.Storage.Type)
			return nil
		},
	}
}
