// Package dataset holds the immutable tabular data the explorer works on.
//
// A Dataset wraps a gota DataFrame whose columns are kept as the raw text read
// from the source, so that rendering shows values exactly as they were
// supplied. Numeric access goes through Floats, which is only allowed for
// columns detected as numeric at load time.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// AllValues is the filter selection that keeps every row.
const AllValues = "All"

var (
	// ErrInvalidColumn is returned when an operation names a column the
	// dataset does not have.
	ErrInvalidColumn = errors.New("invalid column")

	// ErrParse is returned when delimited text cannot be turned into a dataset.
	ErrParse = errors.New("parse failure")
)

// Kind is the detected type of a column.
type Kind int

// Column kinds.
const (
	KindText Kind = iota
	KindNumber
)

func (k Kind) String() string {
	if k == KindNumber {
		return "number"
	}
	return "text"
}

// Dataset is an immutable table of rows sharing one column set.
// Methods never modify the receiver; derived datasets are new values.
type Dataset struct {
	frame dataframe.DataFrame
	kinds map[string]Kind
}

// ReadCSV parses comma separated text with a header row. A header without
// data rows is a valid, empty dataset.
func ReadCSV(r io.Reader) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return FromRecords(records)
}

// FromRecords builds a dataset from a header row followed by data rows.
func FromRecords(records [][]string) (*Dataset, error) {
	if len(records) == 1 {
		return headerOnly(records[0])
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	return fromFrame(df)
}

// headerOnly builds the zero-row dataset for a header. gota refuses to load
// records without data rows.
func headerOnly(names []string) (*Dataset, error) {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrParse, name)
		}
		seen[name] = struct{}{}
	}
	return fromFrame(emptyColumns(names))
}

func fromFrame(df dataframe.DataFrame) (*Dataset, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, df.Err)
	}
	if df.Ncol() == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrParse)
	}
	return &Dataset{frame: df, kinds: detectKinds(df)}, nil
}

// detectKinds marks a column numeric when every value parses as a finite
// float.
func detectKinds(df dataframe.DataFrame) map[string]Kind {
	kinds := make(map[string]Kind, df.Ncol())
	for _, name := range df.Names() {
		kinds[name] = KindText
		if df.Nrow() == 0 {
			continue
		}
		numeric := true
		for _, f := range df.Col(name).Float() {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				numeric = false
				break
			}
		}
		if numeric {
			kinds[name] = KindNumber
		}
	}
	return kinds
}

// Columns returns the column names in source order.
func (d *Dataset) Columns() []string {
	return d.frame.Names()
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return d.frame.Nrow()
}

// HasColumn reports whether name is one of the dataset's columns.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.kinds[name]
	return ok
}

// Kind returns the detected kind of a column.
func (d *Dataset) Kind(name string) (Kind, error) {
	k, ok := d.kinds[name]
	if !ok {
		return KindText, fmt.Errorf("%w: %q", ErrInvalidColumn, name)
	}
	return k, nil
}

// Records returns the data rows, without the header, in row order.
func (d *Dataset) Records() [][]string {
	all := d.frame.Records()
	if len(all) <= 1 {
		return [][]string{}
	}
	return all[1:]
}

// Values returns the raw text of one column in row order.
func (d *Dataset) Values(name string) ([]string, error) {
	if !d.HasColumn(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, name)
	}
	if d.Len() == 0 {
		return []string{}, nil
	}
	return d.frame.Col(name).Records(), nil
}

// Floats returns a numeric column as float64 values.
func (d *Dataset) Floats(name string) ([]float64, error) {
	kind, err := d.Kind(name)
	if err != nil {
		return nil, err
	}
	if kind != KindNumber && d.Len() > 0 {
		return nil, fmt.Errorf("%w: %q is not numeric", ErrInvalidColumn, name)
	}
	if d.Len() == 0 {
		return []float64{}, nil
	}
	return d.frame.Col(name).Float(), nil
}

// Distinct returns the sorted set of values found in a column.
func (d *Dataset) Distinct(name string) ([]string, error) {
	values, err := d.Values(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// WriteCSV writes the dataset, header included, as comma separated text.
func (d *Dataset) WriteCSV(w io.Writer) error {
	if d.Len() == 0 {
		return d.emptyFrame().WriteCSV(w)
	}
	return d.frame.WriteCSV(w)
}

// Equal reports whether two datasets have the same columns and rows in the
// same order.
func Equal(a, b *Dataset) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !slices.Equal(a.Columns(), b.Columns()) || a.Len() != b.Len() {
		return false
	}
	ar, br := a.Records(), b.Records()
	for i := range ar {
		if !slices.Equal(ar[i], br[i]) {
			return false
		}
	}
	return true
}

// empty returns a dataset with the same columns and kinds but no rows.
func (d *Dataset) empty() *Dataset {
	return &Dataset{frame: d.emptyFrame(), kinds: d.kinds}
}

func (d *Dataset) emptyFrame() dataframe.DataFrame {
	return emptyColumns(d.frame.Names())
}

func emptyColumns(names []string) dataframe.DataFrame {
	cols := make([]series.Series, 0, len(names))
	for _, name := range names {
		cols = append(cols, series.New([]string{}, series.String, name))
	}
	return dataframe.New(cols...)
}
