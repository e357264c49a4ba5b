package dashboard

import (
	"fmt"

	"github.com/leapstack-labs/dataexplorer/internal/dataset"
	"github.com/leapstack-labs/dataexplorer/internal/visualize"
)

// Bindings names the dataset columns the dashboard is built around.
type Bindings struct {
	FilterColumn string
	X            string
	Y            string
	Color        string
	// Size is optional and ignored when the dataset lacks it.
	Size  string
	Title string
}

// DefaultBindings matches the bundled iris sample.
func DefaultBindings() Bindings {
	return Bindings{
		FilterColumn: "species",
		X:            "sepal_length",
		Y:            "petal_length",
		Color:        "species",
		Size:         "petal_width",
		Title:        "Sepal vs Petal",
	}
}

// Required returns the columns a dataset must have for these bindings.
func (b Bindings) Required() []string {
	return []string{b.FilterColumn, b.X, b.Y, b.Color}
}

// ScatterSpec returns the plot description for these bindings.
func (b Bindings) ScatterSpec() visualize.ScatterSpec {
	return visualize.ScatterSpec{
		X:     b.X,
		Y:     b.Y,
		Color: b.Color,
		Size:  b.Size,
		Title: b.Title,
	}
}

// Validate checks that d has every bound column and that the axes are
// numeric. Column kinds are unknown without rows, so an empty dataset only
// needs the columns.
func (b Bindings) Validate(d *dataset.Dataset) error {
	for _, col := range b.Required() {
		if !d.HasColumn(col) {
			return fmt.Errorf("%w: %q is not in the dataset (columns: %v)", dataset.ErrInvalidColumn, col, d.Columns())
		}
	}
	if d.Len() == 0 {
		return nil
	}
	for _, col := range []string{b.X, b.Y} {
		if kind, _ := d.Kind(col); kind != dataset.KindNumber {
			return fmt.Errorf("%w: axis %q is not numeric", dataset.ErrInvalidColumn, col)
		}
	}
	return nil
}

// Choices returns the dropdown options for column: AllValues followed by the
// sorted distinct values.
func Choices(d *dataset.Dataset, column string) ([]string, error) {
	values, err := d.Distinct(column)
	if err != nil {
		return nil, err
	}
	return append([]string{dataset.AllValues}, values...), nil
}
