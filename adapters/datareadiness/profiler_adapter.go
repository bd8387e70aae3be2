package datareadiness

import (
	"context"
	"fmt"
	"math"
	"sort"

	"opsdash/adapters/datareadiness/coercer"
	"opsdash/domain/core"
	"opsdash/domain/dataset"
)

// MaxSampleValues bounds the distinct values kept per column
const MaxSampleValues = 5

// ProfilerAdapter implements ports.DatasetProfiler
type ProfilerAdapter struct {
	coercer *coercer.TypeCoercer
	clock   core.Clock
}

// NewProfilerAdapter creates a new profiler adapter
func NewProfilerAdapter(c *coercer.TypeCoercer) *ProfilerAdapter {
	if c == nil {
		c = coercer.NewTypeCoercer()
	}
	return &ProfilerAdapter{coercer: c, clock: core.SystemClock{}}
}

// WithClock overrides the upload timestamp source
func (p *ProfilerAdapter) WithClock(clock core.Clock) *ProfilerAdapter {
	p.clock = clock
	return p
}

// Profile turns a parsed table into a Dataset with per-column statistics and
// a quality summary. An empty table still profiles successfully.
func (p *ProfilerAdapter) Profile(ctx context.Context, name string, domain dataset.OperationDomain, table dataset.RawTable, byteSize int64) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !domain.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidDomain, domain)
	}

	records := table.Records
	if records == nil {
		records = []dataset.Record{}
	}

	columns := p.analyzeColumns(columnOrder(table), records)

	ds := &dataset.Dataset{
		ID:          core.NewID(),
		Name:        name,
		Domain:      domain,
		UploadedAt:  p.clock.Now(),
		ByteSize:    byteSize,
		RowCount:    len(records),
		ColumnCount: len(columns),
		Columns:     columns,
		RawRecords:  records,
	}

	completeness := math.Round(computeCompleteness(columns, len(records)))
	ds.Summary = dataset.Summary{
		Description:  fmt.Sprintf("%s operations dataset with %d records", domain, len(records)),
		KeyInsights:  generateInsights(domain, ds),
		DataQuality:  dataset.QualityFromCompleteness(completeness),
		Completeness: completeness,
	}

	return ds, nil
}

// analyzeColumns gathers each column's values across all records
func (p *ProfilerAdapter) analyzeColumns(names []string, records []dataset.Record) []dataset.Column {
	if len(records) == 0 {
		return []dataset.Column{}
	}

	columns := make([]dataset.Column, 0, len(names))
	for _, name := range names {
		values := make([]interface{}, len(records))
		for i, rec := range records {
			values[i] = rec[name]
		}
		columns = append(columns, p.profileColumn(name, values))
	}
	return columns
}

// profileColumn computes the type, counts and samples of a single column
func (p *ProfilerAdapter) profileColumn(name string, values []interface{}) dataset.Column {
	present := coercer.NonMissing(values)

	seen := make(map[string]struct{}, len(present))
	samples := make([]interface{}, 0, MaxSampleValues)
	for _, v := range present {
		key := distinctKey(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if len(samples) < MaxSampleValues {
			samples = append(samples, v)
		}
	}

	return dataset.Column{
		Name:         name,
		Type:         p.coercer.InferType(values),
		SampleValues: samples,
		NullCount:    len(values) - len(present),
		UniqueCount:  len(seen),
	}
}

// computeCompleteness is the percentage of non-missing cells
func computeCompleteness(columns []dataset.Column, rowCount int) float64 {
	if len(columns) == 0 || rowCount == 0 {
		return 0
	}
	present := 0
	for _, col := range columns {
		present += rowCount - col.NullCount
	}
	return float64(present) / float64(len(columns)*rowCount) * 100
}

// columnOrder prefers the parsed header order and falls back to the sorted
// keys of the first record.
func columnOrder(table dataset.RawTable) []string {
	if len(table.Headers) > 0 {
		return table.Headers
	}
	if len(table.Records) == 0 {
		return nil
	}
	keys := make([]string, 0, len(table.Records[0]))
	for k := range table.Records[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// distinctKey keeps "1" and 1 apart
func distinctKey(v interface{}) string {
	return fmt.Sprintf("%T|%s", v, coercer.FormatValue(v))
}
