package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/recordsd/pkg/browser"
	"github.com/getmockd/recordsd/pkg/cli/internal/output"
	"github.com/getmockd/recordsd/pkg/fetch"
	"github.com/getmockd/recordsd/pkg/loader"
	"github.com/getmockd/recordsd/pkg/logging"
	"github.com/getmockd/recordsd/pkg/pages"
)

// FrameOutput is the JSON form of a rendered frame.
type FrameOutput struct {
	Seq     int    `json:"seq"`
	Href    string `json:"href"`
	Page    string `json:"page"`
	Context string `json:"context"`
	State   string `json:"state"`
	Status  int    `json:"status"`
	Body    string `json:"body,omitempty"`
}

func newBrowseCmd(g *globalFlags) *cobra.Command {
	var (
		showBody bool
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "browse <url> [url...]",
		Short: "Open a page and navigate through the others",
		Long: `Open the first URL with a full request to the site server, then navigate
to each further URL the way an interactive client does: the page renders at
once from a placeholder and again when its data arrives.

Every rendering is printed as a frame. The servers must be running.

Examples:
  recordsd browse /list /mock /books/4
  recordsd browse "/fetch?country=Japan" /Japan/jotaro --body`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g, nil)
			if err != nil {
				return err
			}
			log := newLogger(cmd, cfg)

			client, err := fetch.NewClient(cfg.Endpoints(),
				fetch.WithTimeout(cfg.Fetch.Timeout),
				fetch.WithBreaker(cfg.BreakerSettings()),
				fetch.WithLogger(logging.Component(log, "fetch")),
			)
			if err != nil {
				return err
			}
			set, err := pages.NewSet()
			if err != nil {
				return err
			}
			l := loader.New(client, loader.WithLogger(logging.Component(log, "loader")))

			opts := []browser.Option{browser.WithLogger(logging.Component(log, "browser"))}
			if !g.jsonOutput {
				w := stdout(cmd)
				opts = append(opts, browser.WithSink(func(f browser.Frame) {
					printFrame(w, f, showBody)
				}))
			}
			session, err := browser.New(cfg.Site.BaseURL, set, l, opts...)
			if err != nil {
				return err
			}
			defer session.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if _, err := session.Open(ctx, args[0]); err != nil {
				return err
			}
			for _, href := range args[1:] {
				if err := session.Navigate(ctx, href); err != nil {
					return err
				}
				if err := session.Wait(ctx); err != nil {
					return err
				}
			}

			if g.jsonOutput {
				frames := session.Frames()
				out := make([]FrameOutput, len(frames))
				for i, f := range frames {
					out[i] = frameOutput(f, showBody)
				}
				return output.JSON(stdout(cmd), out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showBody, "body", false, "Print the rendered HTML of every frame")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall time limit")
	return cmd
}

func frameOutput(f browser.Frame, body bool) FrameOutput {
	out := FrameOutput{
		Seq:     f.Seq,
		Href:    f.Href,
		Page:    f.Page,
		Context: f.Context.String(),
		State:   f.State,
		Status:  f.Status,
	}
	if body {
		out.Body = f.Body
	}
	return out
}

func printFrame(w io.Writer, f browser.Frame, body bool) {
	fmt.Fprintf(w, "#%d %-6s %-8s %d %s\n", f.Seq, f.Context, f.State, f.Status, f.Href)
	if body {
		fmt.Fprintln(w, f.Body)
	}
}
