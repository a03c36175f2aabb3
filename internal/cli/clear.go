package cli

import (
	"github.com/spf13/cobra"
)

// NewClearCommand creates the "clear" command: reset the document to empty.
func NewClearCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Reset the document to empty and persist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "refusing to clear without --yes")
			}

			store, err := opts.Open()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(); err != nil {
				return WrapExitError(ExitCommandError, "clear", err)
			}
			return opts.Formatter(cmd).Print("ok")
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm destructive clear")
	return cmd
}
