package dataset

import "fmt"

// Filter returns the rows of d whose value in column equals value, in their
// original order. The AllValues selection returns d itself.
func Filter(d *Dataset, column, value string) (*Dataset, error) {
	if !d.HasColumn(column) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, column)
	}
	if value == AllValues {
		return d, nil
	}

	values, err := d.Values(column)
	if err != nil {
		return nil, err
	}
	var rows []int
	for i, v := range values {
		if v == value {
			rows = append(rows, i)
		}
	}
	switch len(rows) {
	case 0:
		return d.empty(), nil
	case len(values):
		// Every row matches; the subset is the dataset.
		return d, nil
	}

	// Subset by index: gota reads the text "NaN" as NA, which no comparator
	// matches.
	out := d.frame.Subset(rows)
	if out.Err != nil {
		return nil, fmt.Errorf("filter %s == %q: %w", column, value, out.Err)
	}
	return &Dataset{frame: out, kinds: d.kinds}, nil
}
