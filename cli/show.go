package cli

import (
	"errors"
	"fmt"
	"mindmap-share/core"

	"github.com/spf13/cobra"
)

func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <token>",
		Short: "Print a shared mind-map as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, store, err := openStore(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			document, err := store.FindID(cmd.Context(), args[0])
			if errors.Is(err, core.ErrNotFound) {
				return NewExitError(ExitNotFound, fmt.Sprintf("mindmap %s not found", args[0]))
			}
			if err != nil {
				return WrapExitError(ExitFailure, "failed to load mindmap", err)
			}

			data, err := core.Marshal(document.Payload)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to encode mindmap", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
