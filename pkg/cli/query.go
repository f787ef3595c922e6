package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/recordsd/pkg/cli/internal/output"
	"github.com/getmockd/recordsd/pkg/engine"
	"github.com/getmockd/recordsd/pkg/fetch"
	"github.com/getmockd/recordsd/pkg/logging"
	"github.com/getmockd/recordsd/pkg/records"
)

func newQueryCmd(g *globalFlags) *cobra.Command {
	var (
		id     string
		table  bool
		remote bool
	)

	cmd := &cobra.Command{
		Use:   "query <collection> [field=value...]",
		Short: "Filter a collection",
		Long: `Filter a configured collection and print the matching records.

Filters combine conjunctively. Unrecognized fields are ignored, as they are
by the HTTP endpoint. With --remote the query is sent to the running servers.

Examples:
  recordsd query people
  recordsd query people country=Japan livesIn=Italy
  recordsd query books --id 4
  recordsd query books author="Banana Yoshimoto" --remote --table`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, g, nil)
			if err != nil {
				return err
			}
			log := newLogger(cmd, cfg)

			var recs []records.Record
			if remote {
				client, err := fetch.NewClient(cfg.Endpoints(),
					fetch.WithTimeout(cfg.Fetch.Timeout),
					fetch.WithLogger(logging.Component(log, "fetch")),
				)
				if err != nil {
					return err
				}
				recs, err = client.Fetch(cmd.Context(), args[0], records.ParseFilter(params, nil))
				if err != nil {
					return err
				}
				if id != "" {
					// Collections that do not recognize id as a filter return
					// every record.
					recs = records.Apply(recs, records.Filter{}.With(records.IDField, id))
				}
			} else {
				e, err := engine.New(cfg, engine.WithLogger(log))
				if err != nil {
					return err
				}
				c, ok := e.Collection(args[0])
				if !ok {
					return &records.NotFoundError{Collection: args[0]}
				}
				if id != "" {
					r, err := c.Get(id)
					if err != nil {
						return err
					}
					recs = records.Apply([]records.Record{r}, c.ParseFilter(params))
				} else {
					recs = c.Query(params)
				}
			}

			if recs == nil {
				recs = []records.Record{}
			}
			if id != "" && len(recs) == 0 {
				return &records.NotFoundError{Collection: args[0], ID: id}
			}
			if table && !g.jsonOutput {
				return output.Records(stdout(cmd), recs)
			}
			return output.JSON(stdout(cmd), recs)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Select a single record by id")
	cmd.Flags().BoolVar(&table, "table", false, "Print records as a table")
	cmd.Flags().BoolVar(&remote, "remote", false, "Query the running servers instead of the configured seeds")
	return cmd
}

// parseParams turns field=value arguments into query parameters.
func parseParams(args []string) (url.Values, error) {
	params := url.Values{}
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q: expected field=value", arg)
		}
		params.Add(field, value)
	}
	return params, nil
}
