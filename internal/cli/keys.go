package cli

import (
	"github.com/spf13/cobra"
)

// NewKeysCommand creates the "keys" command: list the top-level keys of the
// entrypoint-scoped document.
func NewKeysCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the document's top-level keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.Open()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Iterate()
			if err != nil {
				return WrapExitError(ExitCommandError, "keys", err)
			}

			out := opts.Formatter(cmd)
			if out.Format == "json" {
				keys := make([]string, 0, len(entries))
				for _, e := range entries {
					keys = append(keys, e.Key)
				}
				return out.Print(keys)
			}
			for _, e := range entries {
				if err := out.Print(e.Key); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
