package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/reviewfeed/internal/core/logging"
	"github.com/hay-kot/reviewfeed/internal/core/review"
	"github.com/hay-kot/reviewfeed/internal/fixtures"
)

type ServeCmd struct {
	flags *Flags

	// flags
	addr    string
	fixture string
	images  string
	delay   time.Duration
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve review pages and images for local development",
		UsageText: "reviewfeed serve [--addr :8080] [--fixture reviews.json] [--images dir]",
		Description: `Starts an HTTP server with GET /reviews?offset=N&limit=M and GET /images/{name}.

Without --fixture the built-in sample page is served. Without --images, image
requests get generated solid-color PNGs. Point source.url at
http://<addr>/reviews to browse it.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       ":8080",
				Sources:     cli.EnvVars("REVIEWFEED_SERVE_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "fixture",
				Usage:       "page payload JSON file to serve",
				Destination: &cmd.fixture,
			},
			&cli.StringFlag{
				Name:        "images",
				Usage:       "directory served under /images/",
				Destination: &cmd.images,
			},
			&cli.DurationFlag{
				Name:        "delay",
				Usage:       "artificial latency added to every page response",
				Destination: &cmd.delay,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	page, err := cmd.page()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := fixtures.New(page, fixtures.Options{
		ImagesDir: cmd.images,
		Delay:     cmd.delay,
	}, logging.Component("fixtures"))

	return srv.Run(ctx, cmd.addr)
}

func (cmd *ServeCmd) page() (review.Page, error) {
	if cmd.fixture == "" {
		return fixtures.Sample()
	}

	data, err := os.ReadFile(cmd.fixture)
	if err != nil {
		return review.Page{}, fmt.Errorf("read fixture: %w", err)
	}
	return review.Decode(data)
}
