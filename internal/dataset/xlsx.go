package dataset

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx/v2"

	"github.com/signalworks/vendormetrics/internal/apperr"
)

// DecodeXLSX parses the first sheet of an XLSX workbook into a Dataset.
// The sheet must carry the same header and coercion rules as the CSV
// ingest; date cells must be ISO-8601 text.
func DecodeXLSX(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.DataFormat(fmt.Sprintf("read workbook: %v", err))
	}

	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, apperr.DataFormat(fmt.Sprintf("open workbook: %v", err))
	}
	if len(f.Sheets) == 0 {
		return nil, apperr.DataFormat("workbook has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, apperr.DataFormat("input is empty")
	}

	cols, err := mapColumns(rowToStrings(sheet.Rows[0]))
	if err != nil {
		return nil, err
	}

	var rows []Observation
	for i, row := range sheet.Rows[1:] {
		record := rowToStrings(row)
		if blankRecord(record) {
			continue
		}
		obs, err := decodeRow(record, cols, i+2)
		if err != nil {
			return nil, err
		}
		rows = append(rows, obs)
	}

	if len(rows) == 0 {
		return nil, apperr.DataFormat("no data rows")
	}

	return newDataset(rows), nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

// blankRecord reports whether every cell is empty. Trailing empty rows are
// common in hand-edited workbooks and are skipped rather than rejected.
func blankRecord(record []string) bool {
	for _, c := range record {
		if c != "" {
			return false
		}
	}
	return true
}
