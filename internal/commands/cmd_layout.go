package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/reviewfeed/internal/core/layout"
	"github.com/hay-kot/reviewfeed/internal/core/review"
	"github.com/hay-kot/reviewfeed/internal/core/styles"
	"github.com/hay-kot/reviewfeed/internal/core/textmetrics"
	"github.com/hay-kot/reviewfeed/pkg/iojson"
)

type LayoutCmd struct {
	flags *Flags

	// flags
	width      float64
	expanded   bool
	jsonOutput bool
	stdin      bool
	input      iojson.FileReader
}

// NewLayoutCmd creates a new layout command
func NewLayoutCmd(flags *Flags) *LayoutCmd {
	return &LayoutCmd{flags: flags}
}

// Register adds the layout command to the application
func (cmd *LayoutCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "layout",
		Usage:     "Print cell frames for the first page of reviews",
		UsageText: "reviewfeed layout [--width N] [--expanded] [--json] [-f page.json | --stdin]",
		Description: `Computes the frame of every element of each review cell and the cell height.

Reviews come from the configured source, or from a page payload given with
--file or piped in with --stdin.`,
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:        "width",
				Usage:       "row width in layout units (defaults to layout.width)",
				Destination: &cmd.width,
			},
			&cli.BoolFlag{
				Name:        "expanded",
				Usage:       "lay out every review without a line limit",
				Destination: &cmd.expanded,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "stdin",
				Usage:       "read the page payload from stdin",
				Destination: &cmd.stdin,
			},
			cmd.input.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

// cellLayout is the output record for one review.
type cellLayout struct {
	Username string        `json:"username"`
	Cell     layout.Result `json:"frames"`
	Lines    int           `json:"lines"`
	Photos   int           `json:"visible_photos"`
}

func (cmd *LayoutCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	width := cmd.width
	if width <= 0 {
		width = cfg.Layout.Width
	}

	cells, err := cmd.cells(ctx)
	if err != nil {
		return err
	}

	engine := layout.New(textmetrics.NewMonospace(cfg.Layout.Advance, cfg.Layout.LineHeight))

	out := make([]cellLayout, len(cells))
	for i, cell := range cells {
		if cmd.expanded {
			cell.MaxLines = 0
		}
		res := engine.Review(cell, width)
		out[i] = cellLayout{
			Username: cell.Username,
			Cell:     res,
			Lines:    engine.VisibleLines(res),
			Photos:   layout.VisiblePhotos(res),
		}
	}

	w := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(w, c.Root().ErrWriter, out)
	}
	return writeLayouts(w, width, out)
}

func (cmd *LayoutCmd) cells(ctx context.Context) ([]layout.Cell, error) {
	if cmd.input.Given() || cmd.stdin {
		data, err := cmd.input.Read()
		if err != nil {
			return nil, err
		}
		page, err := review.Decode(data)
		if err != nil {
			return nil, err
		}

		cells := make([]layout.Cell, len(page.Items))
		for i, r := range page.Items {
			cells[i] = layout.Cell{
				Username:   r.Username(),
				Text:       r.Text,
				Created:    r.Created,
				Rating:     r.Rating,
				PhotoCount: len(r.PhotoURLs()),
				MaxLines:   layout.DefaultMaxLines,
			}
		}
		return cells, nil
	}

	app, err := cmd.flags.App()
	if err != nil {
		return nil, err
	}

	st, err := app.LoadPages(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("load first page: %w", err)
	}

	rows := st.Reviews()
	cells := make([]layout.Cell, len(rows))
	for i, row := range rows {
		cells[i] = row.Cell()
	}
	return cells, nil
}

func writeLayouts(w io.Writer, width float64, out []cellLayout) error {
	_, _ = fmt.Fprintln(w, styles.CommandHeaderStyle.Render(fmt.Sprintf("width %.0f, %d cells", width, len(out))))

	for i, c := range out {
		res := c.Cell
		_, _ = fmt.Fprintf(w, "\n[%d] %s  height=%.0f lines=%d show_more=%t\n",
			i+1, c.Username, res.Height, c.Lines, res.ShowMoreVisible)

		frames := []struct {
			name string
			rect layout.Rect
		}{
			{"avatar", res.Avatar},
			{"username", res.Username},
			{"rating", res.Rating},
			{"photos", res.Photos},
			{"text", res.Text},
			{"show_more", res.ShowMore},
			{"created", res.Created},
		}
		for _, f := range frames {
			if f.rect.Empty() {
				continue
			}
			_, _ = fmt.Fprintf(w, "    %-10s x=%-4.0f y=%-4.0f w=%-4.0f h=%.0f\n", f.name, f.rect.X, f.rect.Y, f.rect.W, f.rect.H)
		}
	}

	_, err := fmt.Fprintln(w, styles.DividerStyle.Render(fmt.Sprintf("\ncount row height=%.0f", float64(layout.CountRowHeight))))
	return err
}
