package analytics

import (
	"context"
	"fmt"

	"opsdash/domain/core"
	"opsdash/domain/dataset"
)

// stubReader serves a fixed list of datasets
type stubReader struct {
	datasets []*dataset.Dataset
	err      error
}

func (r *stubReader) Get(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	for _, ds := range r.datasets {
		if ds.ID == id {
			return ds, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
}

func (r *stubReader) ListByDomain(ctx context.Context, domain dataset.OperationDomain) ([]*dataset.Dataset, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*dataset.Dataset
	for _, ds := range r.datasets {
		if ds.Domain == domain {
			out = append(out, ds)
		}
	}
	return out, nil
}

func (r *stubReader) List(ctx context.Context) ([]*dataset.Dataset, error) {
	return r.datasets, r.err
}

// tableDataset builds a dataset with explicit column types and rows
func tableDataset(domain dataset.OperationDomain, columns []dataset.Column, rows []dataset.Record) *dataset.Dataset {
	return &dataset.Dataset{
		ID:          core.NewID(),
		Name:        "fixture",
		Domain:      domain,
		RowCount:    len(rows),
		ColumnCount: len(columns),
		Columns:     columns,
		RawRecords:  rows,
	}
}

func col(name string, t dataset.ColumnType, samples ...interface{}) dataset.Column {
	return dataset.Column{Name: name, Type: t, SampleValues: samples}
}
