package visualize

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/dataexplorer/internal/dataset"
)

// Table renders every row and column of d as an HTML table with a header row,
// in source column and row order. An empty dataset renders the header only.
func Table(d *dataset.Dataset) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		columns := d.Columns()
		numeric := make([]bool, len(columns))
		for i, name := range columns {
			kind, _ := d.Kind(name)
			numeric[i] = kind == dataset.KindNumber
		}

		var b strings.Builder
		fmt.Fprintf(&b, `<table class="data-table" data-rows="%d">`, d.Len())
		b.WriteString(`<thead><tr>`)
		for _, name := range columns {
			fmt.Fprintf(&b, `<th scope="col">%s</th>`, templ.EscapeString(name))
		}
		b.WriteString(`</tr></thead><tbody>`)
		for _, row := range d.Records() {
			b.WriteString(`<tr>`)
			for i, v := range row {
				if numeric[i] {
					fmt.Fprintf(&b, `<td class="num">%s</td>`, templ.EscapeString(v))
					continue
				}
				fmt.Fprintf(&b, `<td>%s</td>`, templ.EscapeString(v))
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Render renders a component to a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Humanize turns a column name such as "sepal_length" into "Sepal Length".
// A cases.Caser is stateful, so each call builds its own.
func Humanize(column string) string {
	words := strings.FieldsFunc(column, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}
