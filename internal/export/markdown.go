package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/leapstack-labs/dataexplorer/internal/dataset"
	"github.com/leapstack-labs/dataexplorer/internal/visualize"
)

func newConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}

// Markdown converts the table markup of d into a GitHub-flavored Markdown
// table.
func Markdown(ctx context.Context, d *dataset.Dataset) (string, error) {
	markup, err := visualize.Render(ctx, visualize.Table(d))
	if err != nil {
		return "", fmt.Errorf("export markdown: %w", err)
	}
	md, err := newConverter().ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("export markdown: %w", err)
	}
	return strings.TrimSpace(md) + "\n", nil
}
