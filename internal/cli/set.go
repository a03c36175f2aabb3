package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewSetCommand creates the "set" command: assign one or more key/value
// pairs and persist once.
func NewSetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value> [<key> <value>...]",
		Short: "Assign values at key paths",
		Long: `Assign one or more key/value pairs. Values parse as JSON when possible
("30" becomes a number, "true" a boolean, '{"a":1}' an object) and fall back
to plain strings. Multiple pairs persist in a single write.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 || len(args)%2 != 0 {
				return NewExitError(ExitCommandError, "set requires key/value pairs")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.Open()
			if err != nil {
				return err
			}
			defer store.Close()

			values := make(map[string]any, len(args)/2)
			for i := 0; i < len(args); i += 2 {
				values[args[i]] = parseValue(args[i+1])
			}
			if err := store.SetAll(values); err != nil {
				return WrapExitError(ExitCommandError, "set", err)
			}
			return opts.Formatter(cmd).Print("ok")
		},
	}
}

// parseValue decodes a CLI argument as JSON when possible, otherwise keeps
// it as a plain string.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}
