package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dataexplorer/internal/cli/config"
	"github.com/leapstack-labs/dataexplorer/internal/cli/output"
	"github.com/leapstack-labs/dataexplorer/internal/dashboard"
	"github.com/leapstack-labs/dataexplorer/internal/dataset"
	"github.com/leapstack-labs/dataexplorer/internal/loader"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the context from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// getConfig returns the loaded configuration, or the defaults when a command
// runs without the root command's pre-run (as in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// LoadFunc returns a function that loads the configured dataset and checks it
// against the column bindings.
func (c *CommandContext) LoadFunc() dashboard.LoadFunc {
	bindings := c.Cfg.Bindings()
	l := loader.New(loader.Options{
		Logger:   c.Logger,
		Required: bindings.Required(),
	})
	src := c.Cfg.Source()

	return func(ctx context.Context) (*dataset.Dataset, error) {
		d, _, err := l.Load(ctx, src)
		return d, err
	}
}

// loadDataset loads the dataset once and validates the bindings, failing fast
// on misconfigured columns.
func (c *CommandContext) loadDataset(ctx context.Context) (*dataset.Dataset, error) {
	d, err := c.LoadFunc()(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Cfg.Bindings().Validate(d); err != nil {
		return nil, fmt.Errorf("check configured columns: %w", err)
	}
	return d, nil
}

// filterDataset loads the dataset and applies the selection on the configured
// filter column. An empty selection means all rows.
func (c *CommandContext) filterDataset(ctx context.Context, selection string) (*dataset.Dataset, string, error) {
	if selection == "" {
		selection = dataset.AllValues
	}
	d, err := c.loadDataset(ctx)
	if err != nil {
		return nil, "", err
	}
	filtered, err := dataset.Filter(d, c.Cfg.FilterColumn, selection)
	if err != nil {
		return nil, "", err
	}
	return filtered, selection, nil
}
