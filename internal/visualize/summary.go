package visualize

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/a-h/templ"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/leapstack-labs/dataexplorer/internal/dataset"
)

// ColumnSummary describes one numeric column.
type ColumnSummary struct {
	Column string
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	StdDev float64
}

// Fit is the least-squares line Y = Intercept + Slope*X and the Pearson
// correlation of the two scatter axes. Valid is false when the fit is
// undefined, e.g. fewer than two rows or a constant axis.
type Fit struct {
	X           string
	Y           string
	Correlation float64
	Slope       float64
	Intercept   float64
	Valid       bool
}

// Summary holds descriptive statistics for a dataset.
type Summary struct {
	Rows    int
	Columns []ColumnSummary
	Fit     Fit
}

// Summarize computes statistics for every numeric column of d and the fit of
// y against x.
func Summarize(d *dataset.Dataset, x, y string) (Summary, error) {
	s := Summary{Rows: d.Len(), Columns: []ColumnSummary{}, Fit: Fit{X: x, Y: y}}
	if d.Len() == 0 {
		return s, nil
	}

	for _, name := range d.Columns() {
		if kind, _ := d.Kind(name); kind != dataset.KindNumber {
			continue
		}
		values, err := d.Floats(name)
		if err != nil {
			return s, err
		}
		cs, err := summarizeColumn(name, values)
		if err != nil {
			return s, fmt.Errorf("summarize %s: %w", name, err)
		}
		s.Columns = append(s.Columns, cs)
	}

	xs, err := d.Floats(x)
	if err != nil {
		return s, err
	}
	ys, err := d.Floats(y)
	if err != nil {
		return s, err
	}
	s.Fit = fitLine(x, y, xs, ys)
	return s, nil
}

func summarizeColumn(name string, values []float64) (ColumnSummary, error) {
	cs := ColumnSummary{Column: name, Count: len(values)}
	var err error
	if cs.Min, err = stats.Min(values); err != nil {
		return cs, err
	}
	if cs.Max, err = stats.Max(values); err != nil {
		return cs, err
	}
	if cs.Mean, err = stats.Mean(values); err != nil {
		return cs, err
	}
	if cs.Median, err = stats.Median(values); err != nil {
		return cs, err
	}
	if len(values) > 1 {
		if cs.StdDev, err = stats.StandardDeviationSample(values); err != nil {
			return cs, err
		}
	}
	return cs, nil
}

func fitLine(x, y string, xs, ys []float64) Fit {
	f := Fit{X: x, Y: y}
	if len(xs) < 2 {
		return f
	}
	f.Correlation = stat.Correlation(xs, ys, nil)
	f.Intercept, f.Slope = stat.LinearRegression(xs, ys, nil, false)
	f.Valid = !math.IsNaN(f.Correlation) && !math.IsNaN(f.Slope) && !math.IsInf(f.Slope, 0)
	return f
}

// Component renders the summary as a compact table.
func (s Summary) Component() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div class="summary" data-rows="%d">`, s.Rows)
		if len(s.Columns) == 0 {
			b.WriteString(`<p class="muted">No numeric data</p></div>`)
			_, err := io.WriteString(w, b.String())
			return err
		}

		b.WriteString(`<table class="summary-table"><thead><tr>`)
		for _, h := range []string{"column", "count", "min", "max", "mean", "median", "std"} {
			fmt.Fprintf(&b, `<th scope="col">%s</th>`, h)
		}
		b.WriteString(`</tr></thead><tbody>`)
		for _, c := range s.Columns {
			fmt.Fprintf(&b,
				`<tr><th scope="row">%s</th><td class="num">%d</td><td class="num">%.2f</td><td class="num">%.2f</td><td class="num">%.3f</td><td class="num">%.2f</td><td class="num">%.3f</td></tr>`,
				templ.EscapeString(c.Column), c.Count, c.Min, c.Max, c.Mean, c.Median, c.StdDev)
		}
		b.WriteString(`</tbody></table>`)

		if s.Fit.Valid {
			fmt.Fprintf(&b,
				`<p class="fit">%s = %.3f + %.3f &times; %s (r = %.3f)</p>`,
				templ.EscapeString(Humanize(s.Fit.Y)), s.Fit.Intercept, s.Fit.Slope,
				templ.EscapeString(Humanize(s.Fit.X)), s.Fit.Correlation)
		}
		b.WriteString(`</div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}
