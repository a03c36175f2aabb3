package cli

import (
	"github.com/spf13/cobra"
)

// NewPathCommand creates the "path" command: print the resolved store file
// path without touching the file.
func NewPathCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the resolved store file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.Open()
			if err != nil {
				return err
			}
			defer store.Close()
			return opts.Formatter(cmd).Print(store.Path())
		},
	}
}
