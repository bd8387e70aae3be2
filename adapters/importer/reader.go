package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"opsdash/adapters/datareadiness/coercer"
	"opsdash/domain/core"
	"opsdash/domain/dataset"
	"opsdash/ports"
)

// Format is a supported upload format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from a file name's extension
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFmt, filepath.Ext(fileName))
}

// DatasetName strips directory and extension from a file name
func DatasetName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DataReader dispatches uploads to the reader for their format
type DataReader struct {
	readers map[Format]ports.TableReader
}

// NewDataReader creates a reader for all supported formats
func NewDataReader(config ImportConfig) *DataReader {
	c := coercer.NewTypeCoercer()
	return &DataReader{
		readers: map[Format]ports.TableReader{
			FormatCSV:  NewCSVReader(c),
			FormatJSON: NewJSONReader(),
			FormatXLSX: NewXLSXReader(c, config.SheetName),
		},
	}
}

// ReadFile parses data according to the extension of fileName. A file that
// yields no records is a parse error.
func (r *DataReader) ReadFile(ctx context.Context, fileName string, data []byte) (dataset.RawTable, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return dataset.RawTable{}, err
	}

	table, err := r.readers[format].Read(ctx, data)
	if err != nil {
		return dataset.RawTable{}, err
	}
	if len(table.Records) == 0 {
		return dataset.RawTable{}, fmt.Errorf("%w: %s", core.ErrNoData, format)
	}
	return table, nil
}

// addHeader appends name unless it is already present
func addHeader(headers []string, seen map[string]bool, name string) []string {
	if seen[name] {
		return headers
	}
	seen[name] = true
	return append(headers, name)
}
