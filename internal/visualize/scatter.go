// Package visualize turns datasets into embeddable markup: a scatter plot,
// an HTML table and a column summary.
package visualize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/a-h/templ"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/leapstack-labs/dataexplorer/internal/dataset"
)

const (
	defaultWidth  = 720
	defaultHeight = 480

	defaultRadius = 5.0
	minRadius     = 3.0
	maxRadius     = 9.0
)

// palette is the qualitative color cycle assigned to groups in order of
// first appearance.
var palette = []string{
	"#636efa", "#ef553b", "#00cc96", "#ab63fa",
	"#ffa15a", "#19d3f3", "#ff6692", "#b6e880",
}

// ScatterSpec names the columns a scatter plot is drawn from.
type ScatterSpec struct {
	X     string
	Y     string
	Color string
	// Size is optional; when the dataset has this numeric column, point radii
	// scale with it.
	Size   string
	Title  string
	Width  int
	Height int
}

// Point is one plotted row.
type Point struct {
	X      float64           `json:"x"`
	Y      float64           `json:"y"`
	Radius float64           `json:"r"`
	Meta   map[string]string `json:"meta"`
}

// Trace is the set of points sharing one color value.
type Trace struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// Figure is a scatter plot ready to render.
type Figure struct {
	Title  string  `json:"title"`
	XLabel string  `json:"x"`
	YLabel string  `json:"y"`
	Width  int     `json:"-"`
	Height int     `json:"-"`
	Traces []Trace `json:"traces"`
}

// Scatter maps every row of d to a point at (X, Y), grouped into traces by
// the Color column. Columns other than X and Y travel with each point as
// hover metadata.
func Scatter(d *dataset.Dataset, spec ScatterSpec) (*Figure, error) {
	xs, err := d.Floats(spec.X)
	if err != nil {
		return nil, fmt.Errorf("scatter x: %w", err)
	}
	ys, err := d.Floats(spec.Y)
	if err != nil {
		return nil, fmt.Errorf("scatter y: %w", err)
	}
	groups, err := d.Values(spec.Color)
	if err != nil {
		return nil, fmt.Errorf("scatter color: %w", err)
	}
	radii, err := pointRadii(d, spec.Size)
	if err != nil {
		return nil, fmt.Errorf("scatter size: %w", err)
	}

	fig := &Figure{
		Title:  spec.Title,
		XLabel: Humanize(spec.X),
		YLabel: Humanize(spec.Y),
		Width:  spec.Width,
		Height: spec.Height,
		Traces: []Trace{},
	}
	if fig.Width <= 0 {
		fig.Width = defaultWidth
	}
	if fig.Height <= 0 {
		fig.Height = defaultHeight
	}

	columns := d.Columns()
	traceIndex := make(map[string]int)
	for i, row := range d.Records() {
		meta := make(map[string]string, len(columns))
		for c, name := range columns {
			if name == spec.X || name == spec.Y {
				continue
			}
			meta[name] = row[c]
		}

		group := groups[i]
		ti, ok := traceIndex[group]
		if !ok {
			ti = len(fig.Traces)
			traceIndex[group] = ti
			fig.Traces = append(fig.Traces, Trace{
				Name:  group,
				Color: palette[ti%len(palette)],
			})
		}
		fig.Traces[ti].Points = append(fig.Traces[ti].Points, Point{
			X:      xs[i],
			Y:      ys[i],
			Radius: radii[i],
			Meta:   meta,
		})
	}
	return fig, nil
}

// pointRadii returns one radius per row: scaled by the size column when the
// dataset has it as a number, constant otherwise.
func pointRadii(d *dataset.Dataset, sizeCol string) ([]float64, error) {
	radii := make([]float64, d.Len())
	for i := range radii {
		radii[i] = defaultRadius
	}
	if sizeCol == "" || !d.HasColumn(sizeCol) {
		return radii, nil
	}
	if kind, _ := d.Kind(sizeCol); kind != dataset.KindNumber {
		return radii, nil
	}
	sizes, err := d.Floats(sizeCol)
	if err != nil {
		return nil, err
	}
	lo, hi := bounds(sizes)
	for i, s := range sizes {
		if hi == lo {
			radii[i] = (minRadius + maxRadius) / 2
			continue
		}
		radii[i] = minRadius + (s-lo)/(hi-lo)*(maxRadius-minRadius)
	}
	return radii, nil
}

// PointCount returns the number of plotted points across all traces.
func (f *Figure) PointCount() int {
	n := 0
	for _, tr := range f.Traces {
		n += len(tr.Points)
	}
	return n
}

// SVG renders the figure with go-chart. An empty figure renders a
// placeholder frame.
func (f *Figure) SVG() ([]byte, error) {
	if f.PointCount() == 0 {
		return f.placeholderSVG(), nil
	}

	var allX, allY []float64
	for _, tr := range f.Traces {
		for _, p := range tr.Points {
			allX = append(allX, p.X)
			allY = append(allY, p.Y)
		}
	}

	series := make([]chart.Series, 0, len(f.Traces))
	for _, tr := range f.Traces {
		xs := make([]float64, len(tr.Points))
		ys := make([]float64, len(tr.Points))
		radii := make([]float64, len(tr.Points))
		for i, p := range tr.Points {
			xs[i], ys[i], radii[i] = p.X, p.Y, p.Radius
		}
		series = append(series, chart.ContinuousSeries{
			Name:    tr.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotColor:    drawing.ColorFromHex(strings.TrimPrefix(tr.Color, "#")),
				DotWidth:    defaultRadius,
				DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
					return radii[index]
				},
			},
		})
	}

	ch := chart.Chart{
		Title:      f.Title,
		Width:      f.Width,
		Height:     f.Height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: f.XLabel, Range: paddedRange(allX)},
		YAxis:      chart.YAxis{Name: f.YLabel, Range: paddedRange(allY)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render scatter: %w", err)
	}
	return buf.Bytes(), nil
}

func (f *Figure) placeholderSVG() []byte {
	return []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="100%%" height="100%%" fill="#ffffff" stroke="#dddddd"/>`+
			`<text x="50%%" y="50%%" text-anchor="middle" fill="#888888">%s: no data</text></svg>`,
		f.Width, f.Height, f.Width, f.Height, templ.EscapeString(f.Title)))
}

// Component renders the figure as a <figure> holding the SVG and a JSON
// payload of every point with its metadata for hover inspection.
func (f *Figure) Component() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		svg, err := f.SVG()
		if err != nil {
			return err
		}
		payload, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("encode scatter points: %w", err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, `<figure class="scatter" data-points="%d">`, f.PointCount())
		fmt.Fprintf(&b, `<figcaption>%s</figcaption>`, templ.EscapeString(f.Title))
		b.Write(svg)
		// json.Marshal escapes <, > and &, so the payload cannot close the script.
		fmt.Fprintf(&b, `<script type="application/json" class="scatter-data">%s</script>`, payload)
		b.WriteString(`</figure>`)

		_, err = io.WriteString(w, b.String())
		return err
	})
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// paddedRange widens [min, max] by 5% on each side so points never sit on
// the axes, and keeps the range non-degenerate for single-valued data.
func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := bounds(values)
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
