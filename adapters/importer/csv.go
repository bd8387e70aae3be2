package importer

import (
	"context"
	"strings"

	"opsdash/adapters/datareadiness/coercer"
	"opsdash/domain/dataset"
)

// CSVReader parses comma-separated text with a plain comma split. Quotes are
// stripped, not interpreted, so quoted fields containing commas change the
// field count and their row is discarded.
type CSVReader struct {
	coercer *coercer.TypeCoercer
}

// NewCSVReader creates a CSV reader
func NewCSVReader(c *coercer.TypeCoercer) *CSVReader {
	return &CSVReader{coercer: c}
}

// Read parses the header line and every row whose field count matches it.
// Fewer than two lines yields an empty table.
func (r *CSVReader) Read(ctx context.Context, data []byte) (dataset.RawTable, error) {
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 2 {
		return dataset.RawTable{Headers: []string{}, Records: []dataset.Record{}}, nil
	}

	fields := splitLine(lines[0])
	seen := make(map[string]bool, len(fields))
	var headers []string
	for _, h := range fields {
		headers = addHeader(headers, seen, h)
	}

	records := make([]dataset.Record, 0, len(lines)-1)
	for i, line := range lines[1:] {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return dataset.RawTable{}, err
			}
		}
		values := splitLine(line)
		if len(values) != len(fields) {
			continue
		}
		row := make(dataset.Record, len(headers))
		for j, header := range fields {
			row[header] = r.coercer.CoerceCell(values[j])
		}
		records = append(records, row)
	}

	return dataset.RawTable{Headers: headers, Records: records}, nil
}

func splitLine(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(strings.TrimSpace(p), `"`, "")
	}
	return parts
}
