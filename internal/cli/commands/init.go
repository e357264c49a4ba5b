package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/dataexplorer/data"
	"github.com/leapstack-labs/dataexplorer/internal/cli/config"
	"github.com/leapstack-labs/dataexplorer/internal/cli/output"
)

const configFileName = "dataexplorer.yaml"

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var sample bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default dataexplorer.yaml",
		Long: `Write a dataexplorer.yaml holding every setting at its default value.

Use --sample to also write the bundled iris dataset to data/sample.csv, the
default local_path.`,
		Example: `  # Initialize in current directory
  dataexplorer init

  # Initialize a new directory with the sample data
  dataexplorer init my-explorer --sample

  # Force overwrite existing files
  dataexplorer init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
			return runInit(r, dir, force, sample)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&sample, "sample", false, "Also write the bundled sample dataset")

	return cmd
}

func runInit(r *output.Renderer, dir string, force, sample bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, configFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configFileName)
	}

	content, err := defaultConfigYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	written := []string{configFileName}

	if sample {
		samplePath := filepath.Join(dir, filepath.FromSlash(config.DefaultLocalPath))
		if _, err := os.Stat(samplePath); err == nil && !force {
			return fmt.Errorf("%s already exists. Use --force to overwrite", config.DefaultLocalPath)
		}
		if err := os.MkdirAll(filepath.Dir(samplePath), 0750); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", samplePath, err)
		}
		if err := os.WriteFile(samplePath, data.Sample, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", samplePath, err)
		}
		written = append(written, config.DefaultLocalPath)
	}

	for _, f := range written {
		r.Success("created " + f)
	}

	r.Println("")
	r.Println("Next steps:")
	if !sample {
		r.Printf("  1. Put a CSV at %s or set data_url\n", config.DefaultLocalPath)
	} else {
		r.Println("  1. Edit dataexplorer.yaml to point at your own data")
	}
	r.Println("  2. Run 'dataexplorer show' to print the rows")
	r.Println("  3. Run 'dataexplorer serve' to open the explorer")

	return nil
}

func defaultConfigYAML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# dataexplorer configuration. Environment variables (DATAEXPLORER_*)\n")
	buf.WriteString("# and command-line flags override these values.\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config.Default()); err != nil {
		return nil, fmt.Errorf("failed to encode default config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
