package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dataexplorer/internal/dataset"
	"github.com/leapstack-labs/dataexplorer/internal/export"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Species string
	Format  string
	Out     string
	Force   bool
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered dataset to a file",
		Long: `Write the rows matching a species selection as CSV, Markdown, an Excel
workbook or a standalone HTML report with the scatter plot.

Without --out the file is named after the selection, e.g.
dataexplorer-versicolor.xlsx. "-" writes to standard output.`,
		Example: `  # Versicolor rows as an Excel workbook
  dataexplorer export --species versicolor --format xlsx

  # HTML report of every row
  dataexplorer export --format html --out report.html`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Species, "species", dataset.AllValues, "Value of the filter column to keep")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Export format (csv|md|xlsx|html); defaults to the --out extension, then csv")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output file, or - for stdout")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing output file")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for _, f := range export.Formats() {
			names = append(names, string(f))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	c := NewCommandContext(cmd)

	format, err := exportFormat(opts.Format, opts.Out)
	if err != nil {
		return err
	}

	d, selection, err := c.filterDataset(cmd.Context(), opts.Species)
	if err != nil {
		return err
	}

	report := export.Report{
		Title:     c.Cfg.Title,
		Selection: selection,
		Data:      d,
		Spec:      c.Cfg.Bindings().ScatterSpec(),
	}

	if opts.Out == "-" {
		return export.Write(cmd.Context(), c.Renderer.Writer(), format, report)
	}

	path := opts.Out
	if path == "" {
		path = format.Filename(selection)
	}
	if _, err := os.Stat(path); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", path)
	}

	f, err := os.Create(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(cmd.Context(), f, format, report); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	c.Renderer.Success(fmt.Sprintf("Exported %d rows to %s", d.Len(), path))
	return nil
}

// exportFormat resolves the format from the flag, falling back to the output
// file's extension and then CSV.
func exportFormat(flag, out string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if ext := strings.TrimPrefix(filepath.Ext(out), "."); ext != "" && out != "-" {
		if f, err := export.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return export.FormatCSV, nil
}
