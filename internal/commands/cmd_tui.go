package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/reviewfeed/internal/core/logging"
	"github.com/hay-kot/reviewfeed/internal/tui"
	"github.com/hay-kot/reviewfeed/pkg/profiler"
)

type TuiCmd struct {
	flags *Flags

	// flags
	profilerPort int
	noMouse      bool
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "tui",
		Usage:       "Browse reviews interactively",
		UsageText:   "reviewfeed tui [options]",
		Description: "Opens the review list. This is also the default when no command is given.",
		Flags:       cmd.Flags(),
		Action:      cmd.run,
	})

	return app
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("REVIEWFEED_PROFILER_PORT"),
			Destination: &cmd.profilerPort,
		},
		&cli.BoolFlag{
			Name:        "no-mouse",
			Usage:       "disable mouse wheel scrolling",
			Destination: &cmd.noMouse,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	app, err := cmd.flags.App()
	if err != nil {
		return err
	}

	if cmd.profilerPort > 0 {
		profServer := profiler.New(cmd.profilerPort)
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("url", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
			Msg("profiler endpoint available")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := tui.New(ctx, app.Store, tui.Options{
		Layout:          app.Layout,
		Text:            app.Text,
		PrefetchScreens: app.Config.Prefetch.Screens,
		Log:             logging.Component("tui"),
	})

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if !cmd.noMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	// Console logs would tear the screen; hold them until the program exits.
	if cmd.flags.Stderr != nil {
		cmd.flags.Stderr.Hold()
		defer func() { _ = cmd.flags.Stderr.Release() }()
	}

	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	// Let an in-flight page finish so its goroutine does not outlive the run.
	cancel()
	app.Store.Wait()
	return nil
}
