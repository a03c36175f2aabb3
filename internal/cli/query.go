package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewQueryCommand creates the "query" command: filter the document's
// top-level rows with an operator expression.
func NewQueryCommand(opts *RootOptions) *cobra.Command {
	var skip, take int

	cmd := &cobra.Command{
		Use:   "query <filter>",
		Short: "Filter top-level rows with an operator expression",
		Long: `Filter the document's top-level rows with a JSON operator expression:

  kstor query '{"teams": {"$gt": 30}}'
  kstor query '{"$and": [{"teams": {"$gt": 30}}, {"teams": {"$lt": 32}}]}'
  kstor query '{"name": {"$like": "blog"}}' --take 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter map[string]any
			if err := json.Unmarshal([]byte(args[0]), &filter); err != nil {
				return WrapExitError(ExitCommandError, "parse filter", err)
			}

			store, err := opts.Open()
			if err != nil {
				return err
			}
			defer store.Close()

			rows, err := store.Query(filter, skip, take)
			if err != nil {
				return WrapExitError(ExitCommandError, "query", err)
			}
			return opts.Formatter(cmd).Print(rows)
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "number of leading entries to skip")
	cmd.Flags().IntVar(&take, "take", 0, "maximum number of matches to return (0 = all)")
	return cmd
}
