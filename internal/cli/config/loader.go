package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/dataexplorer/internal/dashboard"
	"github.com/leapstack-labs/dataexplorer/internal/loader"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// ConfigFileNames are searched in the working directory, in order.
var ConfigFileNames = []string{"dataexplorer.yaml", "dataexplorer.yml"}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
	unusedKeys     []string
)

// defaults mirrors the documented configuration defaults.
func defaults() map[string]any {
	b := dashboard.DefaultBindings()
	return map[string]any{
		"local_path":        DefaultLocalPath,
		"fetch_timeout":     loader.DefaultTimeout.String(),
		"filter_column":     b.FilterColumn,
		"x_column":          b.X,
		"y_column":          b.Y,
		"color_column":      b.Color,
		"size_column":       b.Size,
		"title":             b.Title,
		"log_level":         DefaultLogLevel,
		"output":            DefaultOutput,
		"ui.port":           DefaultPort,
		"ui.auto_open":      false,
		"ui.watch":          true,
		"ui.session_ttl":    dashboard.DefaultSessionTTL.String(),
		"ui.session_secret": "",
	}
}

// findConfigFile finds the config file to use.
// Priority: explicit path > dataexplorer.yaml > dataexplorer.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// envKey maps DATAEXPLORER_UI_PORT to ui.port and DATAEXPLORER_X_COLUMN to
// x_column.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "ui_"); ok {
		return "ui." + rest
	}
	return key
}

// flagKey maps a flag name to its config key. Flags that are not settings
// map to the empty key and are skipped.
func flagKey(name string) string {
	switch name {
	case "port", "watch":
		return "ui." + name
	case "data-url", "local-path", "fetch-timeout", "log-level", "output":
		return strings.ReplaceAll(name, "-", "_")
	default:
		return ""
	}
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
	unusedKeys = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")
	unusedKeys = nil

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile)
	projectRoot, _ := os.Getwd()
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 3. Load environment variables (DATAEXPLORER_ prefix)
	// Transform: DATAEXPLORER_LOCAL_PATH -> local_path, DATAEXPLORER_UI_PORT -> ui.port
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}
	if k.String("data_url") == "" {
		if legacy := os.Getenv(EnvLegacyDataURL); legacy != "" {
			if err := k.Set("data_url", legacy); err != nil {
				return nil, fmt.Errorf("failed to apply %s: %w", EnvLegacyDataURL, err)
			}
		}
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	var flagLocalPath string
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key := flagKey(f.Name)
			if key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
		if flags.Changed("local-path") {
			if v, _ := flags.GetString("local-path"); v != "" {
				flagLocalPath, _ = filepath.Abs(v)
			}
		}
	}

	// 5. Unmarshal into Config struct
	cfg, err := unmarshal()
	if err != nil {
		return nil, err
	}

	// 6. Resolve the local path: flags are relative to the working directory,
	// everything else to the project root.
	cfg.ProjectRoot = projectRoot
	if flagLocalPath != "" {
		cfg.LocalPath = flagLocalPath
	} else {
		cfg.LocalPath = resolvePathRelativeTo(cfg.LocalPath, projectRoot)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Store config for access by commands
	currentConfig = cfg

	return cfg, nil
}

func unmarshal() (*Config, error) {
	var cfg Config
	var md mapstructure.Metadata
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Metadata:         &md,
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	unusedKeys = md.Unused
	sort.Strings(unusedKeys)
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// UnusedKeys returns configuration keys that matched no setting in the last
// load, typically typos in the config file.
func UnusedKeys() []string {
	return unusedKeys
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// Default returns the configuration used when nothing overrides the defaults.
func Default() *Config {
	return &Config{
		LocalPath:    DefaultLocalPath,
		FetchTimeout: loader.DefaultTimeout,
		FilterColumn: dashboard.DefaultBindings().FilterColumn,
		XColumn:      dashboard.DefaultBindings().X,
		YColumn:      dashboard.DefaultBindings().Y,
		ColorColumn:  dashboard.DefaultBindings().Color,
		SizeColumn:   dashboard.DefaultBindings().Size,
		Title:        dashboard.DefaultBindings().Title,
		LogLevel:     slog.LevelInfo,
		OutputFormat: DefaultOutput,
		UI:           DefaultUIConfig(),
	}
}

// NewLogger returns the text logger the CLI writes diagnostics with.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithLogger stores logger in ctx for GetLogger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
