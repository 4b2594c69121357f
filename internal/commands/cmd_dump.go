package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/muesli/reflow/truncate"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/reviewfeed/internal/core/feed"
	"github.com/hay-kot/reviewfeed/internal/reviewfeed"
	"github.com/hay-kot/reviewfeed/pkg/iojson"
)

type DumpCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
	maxPages   int
}

// NewDumpCmd creates a new dump command
func NewDumpCmd(flags *Flags) *DumpCmd {
	return &DumpCmd{flags: flags}
}

// Register adds the dump command to the application
func (cmd *DumpCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "dump",
		Usage:     "Load every page and print the reviews",
		UsageText: "reviewfeed dump [--json] [--pages N]",
		Description: `Loads pages from the configured source until the server-side total is reached
and prints one row per review, followed by the review count.

Use --json for JSON lines output.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.IntFlag{
				Name:        "pages",
				Usage:       "stop after N pages (0 loads all)",
				Destination: &cmd.maxPages,
			},
		},
		Action: cmd.run,
	})

	return app
}

// dumpRow is the JSON lines record for one review.
type dumpRow struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Rating   int     `json:"rating"`
	Created  string  `json:"created"`
	Text     string  `json:"text"`
	Photos   int     `json:"photos"`
	Height   float64 `json:"height"`
	Lines    int     `json:"lines"`
	ShowMore bool    `json:"show_more"`
}

type dumpCount struct {
	Count int `json:"count"`
}

func (cmd *DumpCmd) run(ctx context.Context, c *cli.Command) error {
	app, err := cmd.flags.App()
	if err != nil {
		return err
	}

	st, loadErr := app.LoadPages(ctx, cmd.maxPages)

	w := c.Root().Writer
	if cmd.jsonOutput {
		err = cmd.writeJSON(w, app, st)
	} else {
		err = cmd.writeTable(w, app, st)
	}
	if err != nil {
		return err
	}

	if loadErr != nil {
		return fmt.Errorf("load page at offset %d: %w", st.Offset, loadErr)
	}
	return nil
}

func (cmd *DumpCmd) rows(app *reviewfeed.App, st feed.State) []dumpRow {
	width := app.Config.Layout.Width

	out := make([]dumpRow, 0, len(st.Items))
	for _, row := range st.Reviews() {
		res := app.Layout.Review(row.Cell(), width)
		out = append(out, dumpRow{
			ID:       row.ID.String(),
			Username: row.Username,
			Rating:   row.Rating,
			Created:  row.Created,
			Text:     row.Text,
			Photos:   len(row.Photos),
			Height:   res.Height,
			Lines:    app.Layout.VisibleLines(res),
			ShowMore: res.ShowMoreVisible,
		})
	}
	return out
}

func (cmd *DumpCmd) writeJSON(w io.Writer, app *reviewfeed.App, st feed.State) error {
	lw := iojson.NewLineWriter(w)
	for _, r := range cmd.rows(app, st) {
		if err := lw.Write(r); err != nil {
			return err
		}
	}

	if count, ok := st.Count(); ok {
		return lw.Write(dumpCount{Count: count.ReviewCount})
	}
	return nil
}

func (cmd *DumpCmd) writeTable(w io.Writer, app *reviewfeed.App, st feed.State) error {
	rows := cmd.rows(app, st)
	if len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "No reviews found\n")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tUSER\tRATING\tCREATED\tPHOTOS\tHEIGHT\tTEXT")
	for i, r := range rows {
		text := strings.Join(strings.Fields(r.Text), " ")
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\t%.0f\t%s\n",
			i+1, r.Username, r.Rating, r.Created, r.Photos, r.Height, truncate.StringWithTail(text, 48, "..."))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if count, ok := st.Count(); ok {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, count.Label())
	}
	return nil
}
