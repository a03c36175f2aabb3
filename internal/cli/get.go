package cli

import (
	"github.com/spf13/cobra"
)

// NewGetCommand creates the "get" command: print the value at a key path.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value at a key path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.Open()
			if err != nil {
				return err
			}
			defer store.Close()

			ok, err := store.Has(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "get "+args[0], err)
			}
			if !ok {
				return NewExitError(ExitFailure, "key not found: "+args[0])
			}
			v, err := store.Get(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "get "+args[0], err)
			}
			return opts.Formatter(cmd).Print(v)
		},
	}
}
