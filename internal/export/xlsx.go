package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/dataexplorer/internal/dataset"
)

// SheetName is the worksheet the XLSX export writes to.
const SheetName = "data"

// XLSX writes d to a single-sheet workbook. Numeric columns are written as
// number cells.
func XLSX(w io.Writer, d *dataset.Dataset) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}

	columns := d.Columns()
	numeric := make([]bool, len(columns))
	header := make([]any, len(columns))
	for i, name := range columns {
		kind, _ := d.Kind(name)
		numeric[i] = kind == dataset.KindNumber
		header[i] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}

	for r, record := range d.Records() {
		row := make([]any, len(record))
		for c, v := range record {
			row[c] = v
			if numeric[c] {
				if n, perr := strconv.ParseFloat(v, 64); perr == nil {
					row[c] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("export xlsx: %w", err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("export xlsx: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	return nil
}
