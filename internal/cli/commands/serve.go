package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dataexplorer/internal/cli/config"
	"github.com/leapstack-labs/dataexplorer/internal/dashboard"
	"github.com/leapstack-labs/dataexplorer/internal/loader"
	"github.com/leapstack-labs/dataexplorer/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the interactive data explorer",
		Long: `Load the dataset and serve the explorer page.

The dataset is fetched from data_url when one is configured and read from
local_path otherwise, or when the fetch fails. The page shows a species
dropdown, the number of matching rows, a scatter plot and a table.`,
		Example: `  # Serve on the default port
  dataexplorer serve

  # Serve on a custom port without opening a browser
  dataexplorer serve --port 3000 --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, fmt.Sprintf("Port to serve on (default: %d)", config.DefaultPort))
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload the local data file when it changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	c := NewCommandContext(cmd)
	uiCfg := c.Cfg.GetUIConfig()

	// CLI flags override config file
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	autoOpen := uiCfg.AutoOpen && !opts.NoBrowser
	watch := uiCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	d, err := c.loadDataset(cmd.Context())
	if err != nil {
		if errors.Is(err, loader.ErrDataUnavailable) {
			return fmt.Errorf("cannot start without data: %w", err)
		}
		return err
	}

	bindings := c.Cfg.Bindings()
	holder := dashboard.NewHolder(d, c.LoadFunc(), bindings.Validate, c.Logger)
	registry := dashboard.NewRegistry(holder, bindings, uiCfg.SessionTTL, c.Logger)

	server := ui.NewServer(ui.Config{
		Registry:      registry,
		Port:          port,
		Watch:         watch,
		WatchPath:     c.Cfg.LocalPath,
		SessionSecret: sessionSecret(uiCfg.SessionSecret),
		SessionTTL:    uiCfg.SessionTTL,
		Logger:        c.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	c.Renderer.Printf("Serving %d rows on %s\n", d.Len(), url)
	c.Renderer.Println("Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// sessionSecret returns the configured cookie secret, or a random one. A
// random secret invalidates session cookies on every restart.
func sessionSecret(configured string) string {
	if configured != "" {
		return configured
	}
	return hex.EncodeToString(securecookie.GenerateRandomKey(32))
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
