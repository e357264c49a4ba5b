// Package export writes a dataset view to files: CSV, Markdown, XLSX and a
// standalone HTML report.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/dataexplorer/internal/dataset"
	"github.com/leapstack-labs/dataexplorer/internal/visualize"
)

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatXLSX     Format = "xlsx"
	FormatHTML     Format = "html"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatCSV, FormatMarkdown, FormatXLSX, FormatHTML}
}

// ParseFormat accepts a format name or a common alias ("markdown", "excel").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q (want one of %v)", ErrUnknownFormat, s, Formats())
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Filename returns a download name for the view of selection.
func (f Format) Filename(selection string) string {
	name := strings.ToLower(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, selection))
	if name == "" {
		name = "all"
	}
	return "dataexplorer-" + name + "." + string(f)
}

// Report is the input of an export. Spec is only used by the HTML report.
type Report struct {
	Title     string
	Selection string
	Data      *dataset.Dataset
	Spec      visualize.ScatterSpec
}

// Write exports r in format f.
func Write(ctx context.Context, w io.Writer, f Format, r Report) error {
	switch f {
	case FormatCSV:
		return CSV(w, r.Data)
	case FormatMarkdown:
		md, err := Markdown(ctx, r.Data)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md)
		return err
	case FormatXLSX:
		return XLSX(w, r.Data)
	case FormatHTML:
		return HTML(ctx, w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// CSV writes d with a header row.
func CSV(w io.Writer, d *dataset.Dataset) error {
	if err := d.WriteCSV(w); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return nil
}
