package importer

import (
	"context"

	"github.com/tidwall/gjson"

	"opsdash/domain/core"
	"opsdash/domain/dataset"
)

// JSONReader accepts a top-level array of records, an object with a "data"
// array, or a single object. Columns are the keys of the first object record,
// in document order; keys that only appear in later records stay in the row.
type JSONReader struct{}

// NewJSONReader creates a JSON reader
func NewJSONReader() *JSONReader {
	return &JSONReader{}
}

// Read parses data into an ordered table
func (r *JSONReader) Read(ctx context.Context, data []byte) (dataset.RawTable, error) {
	if !gjson.ValidBytes(data) {
		return dataset.RawTable{}, core.NewParseError("json", "malformed document")
	}

	root := gjson.ParseBytes(data)
	var items []gjson.Result
	switch {
	case root.IsArray():
		items = root.Array()
	case root.IsObject():
		if inner := root.Get("data"); inner.IsArray() {
			items = inner.Array()
		} else {
			items = []gjson.Result{root}
		}
	default:
		return dataset.RawTable{}, core.NewParseError("json", "expected an array or an object")
	}

	table := dataset.RawTable{Headers: []string{}, Records: make([]dataset.Record, 0, len(items))}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return dataset.RawTable{}, err
		}
		if !item.IsObject() {
			continue
		}
		first := len(table.Records) == 0
		row := make(dataset.Record)
		item.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if _, dup := row[name]; first && !dup {
				table.Headers = append(table.Headers, name)
			}
			row[name] = jsonValue(value)
			return true
		})
		table.Records = append(table.Records, row)
	}

	if len(items) > 0 && len(table.Records) == 0 {
		return dataset.RawTable{}, core.NewParseError("json", "no object records")
	}
	return table, nil
}

func jsonValue(v gjson.Result) interface{} {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.Number:
		return v.Float()
	case gjson.String:
		return v.Str
	case gjson.True:
		return true
	case gjson.False:
		return false
	}
	return v.Value()
}
