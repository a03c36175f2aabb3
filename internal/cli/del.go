package cli

import (
	"github.com/spf13/cobra"
)

// NewDelCommand creates the "del" command: remove the value at a key path.
func NewDelCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "del <key>",
		Short: "Remove the value at a key path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.Open()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(args[0]); err != nil {
				return WrapExitError(ExitCommandError, "del "+args[0], err)
			}
			return opts.Formatter(cmd).Print("ok")
		},
	}
}
