package cli

import (
	"github.com/spf13/cobra"
)

// NewHasCommand creates the "has" command: report whether a key resolves.
// An absent key prints false and exits with code 1.
func NewHasCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "has <key>",
		Short: "Report whether a key path resolves to a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.Open()
			if err != nil {
				return err
			}
			defer store.Close()

			ok, err := store.Has(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "has "+args[0], err)
			}
			if perr := opts.Formatter(cmd).Print(ok); perr != nil {
				return perr
			}
			if !ok {
				return &ExitError{Code: ExitFailure, Message: "key not found: " + args[0]}
			}
			return nil
		},
	}
}
