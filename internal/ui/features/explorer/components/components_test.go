package components

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func TestFilterControl(t *testing.T) {
	markup := render(t, FilterControl("species", []string{"All", "setosa", `<x>"y"`}, "setosa"))

	assert.Contains(t, markup, `id="filter-control"`)
	assert.Contains(t, markup, `<label for="species">Species:</label>`)
	assert.Contains(t, markup, `<option value="setosa" selected>setosa</option>`)
	assert.Contains(t, markup, `<option value="All">All</option>`)
	assert.NotContains(t, markup, `<x>`)
	assert.Equal(t, 3, strings.Count(markup, "<option"))
}

func TestRowCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{n: 0, want: "Showing 0 rows"},
		{n: 1, want: "Showing 1 row<"},
		{n: 50, want: "Showing 50 rows"},
	}
	for _, tt := range tests {
		markup := render(t, RowCount(tt.n))
		assert.Contains(t, markup, tt.want)
		assert.Contains(t, markup, `id="row-count"`)
	}
}

func TestExportLinks(t *testing.T) {
	markup := render(t, ExportLinks())
	for _, href := range []string{"/export/csv", "/export/md", "/export/xlsx", "/export/html"} {
		assert.Contains(t, markup, `href="`+href+`"`)
	}
}
