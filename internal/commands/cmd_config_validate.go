package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/reviewfeed/internal/core/styles"
	"github.com/hay-kot/reviewfeed/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "reviewfeed config validate [options]",
				Description: "Validates the configuration file, including that a review source is set and that source.file exists.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

// validationIssue is one failed check.
type validationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	var issues []validationIssue
	for _, err := range []error{cfg.ValidateDeep(), cfg.RequireSource()} {
		issues = append(issues, toIssues(err)...)
	}

	w := c.Root().Writer
	if cmd.format == "json" {
		out := struct {
			Path   string            `json:"path"`
			Valid  bool              `json:"valid"`
			Issues []validationIssue `json:"issues,omitempty"`
		}{
			Path:   cmd.flags.ConfigPath,
			Valid:  len(issues) == 0,
			Issues: issues,
		}
		if err := iojson.WriteWith(w, c.Root().ErrWriter, out); err != nil {
			return err
		}
		if len(issues) > 0 {
			return cli.Exit("", 1)
		}
		return nil
	}

	return cmd.outputText(w, issues)
}

func (cmd *ConfigValidateCmd) outputText(w io.Writer, issues []validationIssue) error {
	_, _ = fmt.Fprintln(w, styles.CommandHeaderStyle.Render(cmd.flags.ConfigPath))

	for _, is := range issues {
		_, _ = fmt.Fprintln(w, styles.ErrorStyle.Render(fmt.Sprintf("✗ %s: %s", is.Field, is.Message)))
	}

	if len(issues) == 0 {
		_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render("✓ Configuration is valid"))
		return nil
	}

	_, _ = fmt.Fprintln(w, styles.ErrorStyle.Render(fmt.Sprintf("%d error(s) found", len(issues))))
	return cli.Exit("", 1)
}

func toIssues(err error) []validationIssue {
	if err == nil {
		return nil
	}

	var fe criterio.FieldErrors
	if errors.As(err, &fe) {
		out := make([]validationIssue, 0, len(fe))
		for _, e := range fe {
			out = append(out, validationIssue{Field: e.Field, Message: e.Err.Error()})
		}
		return out
	}

	return []validationIssue{{Field: "config", Message: err.Error()}}
}
