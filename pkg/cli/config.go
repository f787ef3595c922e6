package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/recordsd/pkg/cli/internal/output"
	"github.com/getmockd/recordsd/pkg/config"
	"github.com/getmockd/recordsd/pkg/engine"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show effective configuration",
		Long: `Show the configuration after merging defaults, the configuration file,
RECORDSD_* environment variables and flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g, nil)
			if err != nil {
				return err
			}
			if g.jsonOutput {
				return output.JSON(stdout(cmd), cfg)
			}

			file := g.configFile
			if file == "" {
				file = config.UsedFile()
			}
			if file == "" {
				file = "(defaults)"
			}
			fmt.Fprintf(stdout(cmd), "# source: %s\n", file)
			return output.YAML(stdout(cmd), cfg)
		},
	}
}

func newValidateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and its seed files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g, nil)
			if err != nil {
				return err
			}
			e, err := engine.New(cfg)
			if err != nil {
				return err
			}

			w := stdout(cmd)
			for _, cc := range cfg.Collections {
				c, _ := e.Collection(cc.Name)
				fmt.Fprintf(w, "%-10s %4d records  %s%s\n", cc.Name, c.Len(), cfg.Server(cc.Server).BaseURL, cc.Path)
			}
			fmt.Fprintln(w, "configuration valid")
			return nil
		},
	}
}
