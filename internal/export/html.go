package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/dataexplorer/internal/visualize"
)

const reportStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2933}
h1{font-size:1.4rem}table{border-collapse:collapse;font-size:.85rem}
th,td{border:1px solid #d9e2ec;padding:.25rem .5rem}td.num{text-align:right}
.meta{color:#627d98}.summary,.scatter{margin:1.5rem 0}`

// HTML writes a standalone report with the summary, the scatter plot and the
// table for r.Data.
func HTML(ctx context.Context, w io.Writer, r Report) error {
	fig, err := visualize.Scatter(r.Data, r.Spec)
	if err != nil {
		return fmt.Errorf("export html: %w", err)
	}
	summary, err := visualize.Summarize(r.Data, r.Spec.X, r.Spec.Y)
	if err != nil {
		return fmt.Errorf("export html: %w", err)
	}

	title := r.Title
	if title == "" {
		title = "Sample Data Explorer"
	}
	selection := r.Selection
	if selection == "" {
		selection = "All"
	}

	page := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		fmt.Fprintf(&b, `<title>%s</title><style>%s</style></head><body>`, templ.EscapeString(title), reportStyle)
		fmt.Fprintf(&b, `<h1>%s</h1>`, templ.EscapeString(title))
		fmt.Fprintf(&b, `<p class="meta">Selection: <strong>%s</strong> &middot; %d rows &middot; generated %s</p>`,
			templ.EscapeString(selection), r.Data.Len(), time.Now().UTC().Format(time.RFC3339))
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		for _, c := range []templ.Component{summary.Component(), fig.Component(), visualize.Table(r.Data)} {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})

	if err := page.Render(ctx, w); err != nil {
		return fmt.Errorf("export html: %w", err)
	}
	return nil
}
