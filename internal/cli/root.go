// Package cli implements the kstor command tree: startup glue that
// constructs a store from flags (or a YAML profile) and calls its public
// methods. All document semantics live in the root kstor package.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blujedis/kstor"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Name          string
	Dir           string
	AppName       string
	Entrypoint    string
	EncryptionKey string
	Profile       string
	Format        string // "json" | "text"
	Verbose       bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kstor CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kstor",
		Short: "kstor - file-backed JSON key-value store",
		Long:  "A local key-value store addressed by dotted property paths inside a single JSON document, optionally encrypted at rest.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			return applyProfile(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Name, "name", "", "store file name (default config.json)")
	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", "", "store directory (default $HOME/.kstor/<app>)")
	cmd.PersistentFlags().StringVar(&opts.AppName, "app", "", "application name segment of the default path")
	cmd.PersistentFlags().StringVar(&opts.Entrypoint, "entrypoint", "", "path prefix aliasing the visible root")
	cmd.PersistentFlags().StringVar(&opts.EncryptionKey, "key", "", "encryption key for at-rest encryption")
	cmd.PersistentFlags().StringVar(&opts.Profile, "profile", "", "profile file (default $HOME/.kstor.yaml when present)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewHasCommand(opts))
	cmd.AddCommand(NewDelCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewPathCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// applyProfile merges the profile file into the options. Explicitly set
// flags win over profile values; a missing default profile is not an error.
func applyProfile(cmd *cobra.Command, opts *RootOptions) error {
	path := opts.Profile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".kstor.yaml")
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}

	profile, err := LoadProfile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load profile", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("name") && profile.Name != "" {
		opts.Name = profile.Name
	}
	if !flags.Changed("dir") && profile.Dir != "" {
		opts.Dir = profile.Dir
	}
	if !flags.Changed("app") && profile.AppName != "" {
		opts.AppName = profile.AppName
	}
	if !flags.Changed("entrypoint") && profile.Entrypoint != "" {
		opts.Entrypoint = profile.Entrypoint
	}
	if !flags.Changed("key") && profile.EncryptionKey != "" {
		opts.EncryptionKey = profile.EncryptionKey
	}
	return nil
}

// Open constructs the store the options describe.
func (o *RootOptions) Open() (*kstor.Store, error) {
	store, err := kstor.New(kstor.Options{
		Name:          o.Name,
		Dir:           o.Dir,
		AppName:       o.AppName,
		Entrypoint:    o.Entrypoint,
		EncryptionKey: o.EncryptionKey,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}
	return store, nil
}

// Formatter returns the output formatter bound to the command's stdout.
func (o *RootOptions) Formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}
