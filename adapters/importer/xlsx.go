package importer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"opsdash/adapters/datareadiness/coercer"
	"opsdash/domain/core"
	"opsdash/domain/dataset"
)

// XLSXReader reads one worksheet of a workbook. The first row holds the
// headers; blank rows are skipped and short rows are padded with empty cells.
type XLSXReader struct {
	coercer   *coercer.TypeCoercer
	sheetName string
}

// NewXLSXReader creates a workbook reader. An empty sheet name selects the
// first sheet.
func NewXLSXReader(c *coercer.TypeCoercer, sheetName string) *XLSXReader {
	return &XLSXReader{coercer: c, sheetName: sheetName}
}

// Read parses the workbook in data
func (r *XLSXReader) Read(ctx context.Context, data []byte) (dataset.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return dataset.RawTable{}, core.NewParseError("xlsx", err.Error())
	}
	defer f.Close()

	sheet := r.sheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dataset.RawTable{}, core.NewParseError("xlsx", "workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataset.RawTable{}, core.NewParseError("xlsx", fmt.Sprintf("failed to read %s: %v", sheet, err))
	}
	if len(rows) < 2 {
		return dataset.RawTable{Headers: []string{}, Records: []dataset.Record{}}, nil
	}

	fields := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(fields))
	var headers []string
	for i, h := range rows[0] {
		fields[i] = strings.TrimSpace(h)
		headers = addHeader(headers, seen, fields[i])
	}

	records := make([]dataset.Record, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return dataset.RawTable{}, err
		}
		if blankRow(cells) || len(cells) > len(fields) {
			continue
		}
		row := make(dataset.Record, len(headers))
		for j, header := range fields {
			cell := ""
			if j < len(cells) {
				cell = strings.TrimSpace(cells[j])
			}
			row[header] = r.coercer.CoerceCell(cell)
		}
		records = append(records, row)
	}

	return dataset.RawTable{Headers: headers, Records: records}, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
