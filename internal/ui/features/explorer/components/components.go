// Package components renders the explorer page and the fragments patched
// into it over SSE.
package components

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/dataexplorer/internal/dashboard"
	"github.com/leapstack-labs/dataexplorer/internal/export"
	"github.com/leapstack-labs/dataexplorer/internal/ui/resources"
	"github.com/leapstack-labs/dataexplorer/internal/visualize"
)

// Element ids patched by the SSE endpoints.
const (
	FilterControlID = "filter-control"
	RowCountID      = "row-count"
	PlotViewID      = "plot-view"
	SummaryViewID   = "summary-view"
	TableViewID     = "table-view"
)

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

// Page renders the whole document with the views already filled in.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := json.Marshal(Signals{Species: data.Views.Selection})
		if err != nil {
			return err
		}

		var b strings.Builder
		b.WriteString(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		fmt.Fprintf(&b, `<title>%s</title>`, templ.EscapeString(data.Title))
		fmt.Fprintf(&b, `<link rel="stylesheet" href="%s">`, resources.StaticPath("app.css"))
		fmt.Fprintf(&b, `<script type="module" src="%s"></script>`, resources.DatastarScript)
		b.WriteString(`</head>`)
		fmt.Fprintf(&b, `<body data-signals="%s" data-init="@get('/updates')">`, templ.EscapeString(string(signals)))
		if data.IsDev {
			b.WriteString(`<div data-init="@get('/reload', {retryMaxCount: 1000, retryInterval: 20, retryMaxWaitMs: 200})"></div>`)
		}
		fmt.Fprintf(&b, `<header><h1>%s</h1></header>`, templ.EscapeString(data.Title))
		b.WriteString(`<div class="layout"><aside class="sidebar">`)
		if err := writeString(w, b.String()); err != nil {
			return err
		}

		if err := FilterControl(data.FilterColumn, data.Views.Choices, data.Views.Selection).Render(ctx, w); err != nil {
			return err
		}
		if err := ExportLinks().Render(ctx, w); err != nil {
			return err
		}
		if err := writeString(w, `</aside><main>`); err != nil {
			return err
		}
		for _, c := range Views(data.Views) {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return writeString(w, `</main></div></body></html>`)
	})
}

// Views returns the components patched after every selection change or reload.
func Views(v *dashboard.Views) []templ.Component {
	return []templ.Component{
		RowCount(v.RowCount()),
		region(PlotViewID, v.PlotHTML),
		region(SummaryViewID, v.SummaryHTML),
		region(TableViewID, v.TableHTML),
	}
}

// FilterControl renders the labelled dropdown bound to the species signal.
func FilterControl(column string, choices []string, selected string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div id="%s">`, FilterControlID)
		fmt.Fprintf(&b, `<label for="species">%s:</label>`, templ.EscapeString(visualize.Humanize(column)))
		b.WriteString(`<select id="species" data-bind:species data-on:change="@get('/views')">`)
		for _, c := range choices {
			if c == selected {
				fmt.Fprintf(&b, `<option value="%s" selected>%s</option>`, templ.EscapeString(c), templ.EscapeString(c))
				continue
			}
			fmt.Fprintf(&b, `<option value="%s">%s</option>`, templ.EscapeString(c), templ.EscapeString(c))
		}
		b.WriteString(`</select></div>`)
		return writeString(w, b.String())
	})
}

// ExportLinks renders download links for the current selection.
func ExportLinks() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<nav class="exports"><span>Download:</span> `)
		for _, f := range export.Formats() {
			fmt.Fprintf(&b, `<a href="/export/%s" download>%s</a>`, f, strings.ToUpper(string(f)))
		}
		b.WriteString(`</nav>`)
		return writeString(w, b.String())
	})
}

// RowCount renders the "Showing N rows" line.
func RowCount(n int) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		noun := "rows"
		if n == 1 {
			noun = "row"
		}
		return writeString(w, fmt.Sprintf(`<p id="%s">Showing %d %s</p>`, RowCountID, n, noun))
	})
}

// region wraps pre-rendered markup in an element the SSE patches can target.
func region(id, inner string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return writeString(w, `<div id="`+id+`">`+inner+`</div>`)
	})
}
