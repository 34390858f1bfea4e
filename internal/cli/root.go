// Package cli implements the recache command line interface: inspection
// tooling over the accumulating record log.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/morrowdev/recache/internal/config"
	"github.com/morrowdev/recache/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DBPath     string
	ConfigPath string
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the recache CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "recache",
		Short: "Inspect a recache result store",
		Long:  "Tooling over the append-only cache record log: list attempts, show outcomes, count statuses.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the cache database (default from config/env)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewLsCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// openStore resolves configuration and opens the record store for a
// command invocation.
func openStore(opts *RootOptions) (*store.Store, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "resolve configuration", err)
	}

	slog.SetLogLoggerLevel(cfg.LogLevel)

	path := cfg.DBPath
	if opts.DBPath != "" {
		path = opts.DBPath
	}
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("cache database %s not found", path), err)
	}

	s, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open cache database", err)
	}
	return s, nil
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
