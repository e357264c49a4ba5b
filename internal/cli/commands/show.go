package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dataexplorer/internal/cli/output"
	"github.com/leapstack-labs/dataexplorer/internal/dataset"
	"github.com/leapstack-labs/dataexplorer/internal/export"
	"github.com/leapstack-labs/dataexplorer/internal/visualize"
)

// ShowOptions holds options for the show command.
type ShowOptions struct {
	Species string
	Summary bool
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	opts := &ShowOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the filtered dataset",
		Long: `Print the rows matching a species selection.

The output format follows --output: a table on a terminal, Markdown when piped,
or JSON and CSV on request.`,
		Example: `  # All rows
  dataexplorer show

  # Only versicolor, as CSV
  dataexplorer show --species versicolor -o csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Species, "species", dataset.AllValues, "Value of the filter column to keep")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "Print descriptive statistics after the rows (text and markdown)")

	return cmd
}

func runShow(cmd *cobra.Command, opts *ShowOptions) error {
	c := NewCommandContext(cmd)

	d, selection, err := c.filterDataset(cmd.Context(), opts.Species)
	if err != nil {
		return err
	}

	r := c.Renderer
	w := r.Writer()
	heading := fmt.Sprintf("%s: %s", visualize.Humanize(c.Cfg.FilterColumn), selection)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return renderJSON(w, d)
	case output.ModeCSV:
		return export.CSV(w, d)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(2, heading))
		md, err := export.Markdown(cmd.Context(), d)
		if err != nil {
			return err
		}
		r.Println(md)
		r.Println("")
		r.Printf("Showing %d rows\n", d.Len())
	default:
		r.Println(r.Styles().Header1.Render(heading))
		renderTable(w, d)
	}

	if opts.Summary && r.EffectiveMode() != output.ModeJSON && r.EffectiveMode() != output.ModeCSV {
		s, err := visualize.Summarize(d, c.Cfg.XColumn, c.Cfg.YColumn)
		if err != nil {
			return err
		}
		renderSummary(r, s)
	}
	return nil
}

func renderTable(w io.Writer, d *dataset.Dataset) {
	if d.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	cols := d.Columns()
	header := make(table.Row, len(cols))
	var configs []table.ColumnConfig
	for i, col := range cols {
		header[i] = col
		if kind, _ := d.Kind(col); kind == dataset.KindNumber {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, rec := range d.Records() {
		row := make(table.Row, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", d.Len())
}

// renderJSON writes the rows as objects, numeric columns as numbers.
func renderJSON(w io.Writer, d *dataset.Dataset) error {
	cols := d.Columns()
	numeric := make([]bool, len(cols))
	for i, col := range cols {
		kind, _ := d.Kind(col)
		numeric[i] = kind == dataset.KindNumber
	}

	results := make([]map[string]any, 0, d.Len())
	for _, rec := range d.Records() {
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = rec[i]
			if numeric[i] {
				if f, err := strconv.ParseFloat(rec[i], 64); err == nil {
					row[col] = f
				}
			}
		}
		results = append(results, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderSummary(r *output.Renderer, s visualize.Summary) {
	styles := r.Styles()
	markdown := r.EffectiveMode() == output.ModeMarkdown

	r.Println("")
	if markdown {
		r.Println(output.FormatHeader(3, "Summary"))
	} else {
		r.Println(styles.Header2.Render("Summary"))
	}
	for _, col := range s.Columns {
		value := fmt.Sprintf("mean %.3f, median %.3f, sd %.3f, range %.2f to %.2f",
			col.Mean, col.Median, col.StdDev, col.Min, col.Max)
		if markdown {
			r.Println(output.FormatKeyValue(col.Column, value))
			continue
		}
		r.Printf("  %s  %s\n", styles.Bold.Render(col.Column), styles.Value.Render(value))
	}
	if s.Fit.Valid {
		fit := fmt.Sprintf("%s = %.3f + %.3f * %s (r = %.3f)", s.Fit.Y, s.Fit.Intercept, s.Fit.Slope, s.Fit.X, s.Fit.Correlation)
		if markdown {
			r.Println(output.FormatKeyValue("fit", fit))
		} else {
			r.Printf("  %s  %s\n", styles.Bold.Render("fit"), styles.Muted.Render(fit))
		}
	}
}
