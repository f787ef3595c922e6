// Package cli provides the command-line interface for recordsd.
//
// Commands:
//   - serve: run the site and data servers
//   - query: filter a configured collection in-process
//   - browse: open a page and navigate like an interactive client
//   - config: print the effective configuration
//   - validate: check the configuration and its seed files
//   - version: show build information
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/recordsd/pkg/config"
	"github.com/getmockd/recordsd/pkg/logging"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
	jsonOutput bool
}

// NewRootCmd builds the recordsd command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "recordsd",
		Short: "recordsd serves filterable record collections and the pages that browse them",
		Long: `recordsd runs two HTTP servers: a site server that renders pages and serves
the people collection, and a data server that serves the books collection.

Configuration can be provided via flags, environment variables (RECORDSD_*),
or a configuration file. By default, recordsd looks for recordsd.yaml in the
working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "Configuration file (default: ./recordsd.yaml)")
	pf.StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&g.logFormat, "log-format", "text", "Log format (text, json)")
	pf.BoolVar(&g.jsonOutput, "json", false, "Output command results in JSON format")

	root.AddCommand(
		newServeCmd(g),
		newQueryCmd(g),
		newBrowseCmd(g),
		newConfigCmd(g),
		newValidateCmd(g),
		newVersionCmd(g),
	)
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration with the command's flags bound over it.
// bindings maps configuration keys to local flag names.
func loadConfig(cmd *cobra.Command, g *globalFlags, bindings map[string]string) (*config.Config, error) {
	opts := []config.Option{
		config.WithFlag("log.level", cmd.Flag("log-level")),
		config.WithFlag("log.format", cmd.Flag("log-format")),
	}
	if g.configFile != "" {
		opts = append(opts, config.WithFile(g.configFile))
	}
	for key, name := range bindings {
		opts = append(opts, config.WithFlag(key, cmd.Flag(name)))
	}
	return config.Load(opts...)
}

// newLogger writes operational logs to stderr so stdout stays parseable.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	lc := cfg.Logging()
	lc.Output = cmd.ErrOrStderr()
	return logging.New(lc)
}

func stdout(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
