package analytics

import (
	"context"
	"fmt"
	"strings"

	"opsdash/adapters/datareadiness/coercer"
	"opsdash/domain/analytics"
	"opsdash/domain/dataset"
	"opsdash/ports"
)

const (
	maxLinePoints     = 20
	maxBarCategories  = 6
	maxPieCategories  = 5
	barCategoryLength = 20
	pieCategoryLength = 15
	barTargetRatio    = 0.9
	lineEfficiency    = 0.8
)

// PiePalette is cycled by category index
var PiePalette = []string{"#0891b2", "#0ea5e9", "#06b6d4", "#14b8a6", "#10b981"}

// ChartAggregator builds chart-ready records from the first dataset of a domain
type ChartAggregator struct {
	datasets ports.DatasetReader
}

// NewChartAggregator creates an aggregator reading from datasets
func NewChartAggregator(datasets ports.DatasetReader) *ChartAggregator {
	return &ChartAggregator{datasets: datasets}
}

// Aggregate returns the records for one chart shape. It never returns an
// empty result: missing data resolves to the shape's default records.
func (a *ChartAggregator) Aggregate(ctx context.Context, domain dataset.OperationDomain, shape analytics.ChartShape) ([]analytics.ChartRecord, error) {
	list, err := a.datasets.ListByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return DefaultChart(shape), nil
	}
	return BuildChart(list[0], shape), nil
}

// BuildChart aggregates a dataset into records for shape. Axis columns are
// picked positionally: the first column of the required type wins.
func BuildChart(ds *dataset.Dataset, shape analytics.ChartShape) []analytics.ChartRecord {
	if len(ds.RawRecords) == 0 {
		return DefaultChart(shape)
	}

	var out []analytics.ChartRecord
	switch shape {
	case analytics.ShapeBar:
		out = barChart(ds)
	case analytics.ShapePie:
		out = pieChart(ds)
	default:
		out = lineChart(ds)
	}
	if len(out) == 0 {
		return DefaultChart(shape)
	}
	return out
}

// lineChart plots the first number column against the first date or
// time-named column, or against the row position when there is none.
func lineChart(ds *dataset.Dataset) []analytics.ChartRecord {
	numeric := ds.ColumnsOfType(dataset.TypeNumber)
	if len(numeric) == 0 {
		return nil
	}
	yField := numeric[0].Name

	xField, hasTime := "", false
	for _, col := range ds.Columns {
		if col.Type == dataset.TypeDate || strings.Contains(strings.ToLower(col.Name), "time") {
			xField, hasTime = col.Name, true
			break
		}
	}
	if !hasTime && len(ds.Columns) > 0 {
		xField = ds.Columns[0].Name
	}

	out := make([]analytics.ChartRecord, 0, maxLinePoints)
	for _, row := range ds.RawRecords {
		if len(out) == maxLinePoints {
			break
		}
		x := row[xField]
		y, ok := coercer.ToNumber(row[yField])
		if coercer.IsMissing(x) || coercer.IsMissing(row[yField]) || !ok {
			continue
		}

		name := fmt.Sprintf("Point %d", len(out)+1)
		if hasTime {
			name = formatAxisDate(x)
		}
		out = append(out, analytics.ChartRecord{
			"name":       name,
			"value":      y,
			"efficiency": roundTo(y*lineEfficiency, 0),
		})
	}
	return out
}

// barChart sums the first number column per category of the first string
// column, in order of first appearance.
func barChart(ds *dataset.Dataset) []analytics.ChartRecord {
	numeric := ds.ColumnsOfType(dataset.TypeNumber)
	categories := ds.ColumnsOfType(dataset.TypeString)
	if len(numeric) == 0 || len(categories) == 0 {
		return nil
	}
	categoryField, valueField := categories[0].Name, numeric[0].Name

	order, sums := groupRows(ds.RawRecords, categoryField, barCategoryLength, func(row dataset.Record) float64 {
		v, _ := coercer.ToNumber(row[valueField])
		return v
	})

	out := make([]analytics.ChartRecord, 0, min(len(order), maxBarCategories))
	for _, name := range order[:min(len(order), maxBarCategories)] {
		out = append(out, analytics.ChartRecord{
			"name":       name,
			"operations": sums[name],
			"target":     sums[name] * barTargetRatio,
		})
	}
	return out
}

// pieChart counts occurrences per value of the first string column as a
// share of all counted rows.
func pieChart(ds *dataset.Dataset) []analytics.ChartRecord {
	categories := ds.ColumnsOfType(dataset.TypeString)
	if len(categories) == 0 {
		return nil
	}

	order, counts := groupRows(ds.RawRecords, categories[0].Name, pieCategoryLength, func(dataset.Record) float64 { return 1 })
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return nil
	}

	out := make([]analytics.ChartRecord, 0, min(len(order), maxPieCategories))
	for i, name := range order[:min(len(order), maxPieCategories)] {
		out = append(out, analytics.ChartRecord{
			"name":  name,
			"value": roundTo(counts[name]/total*100, 0),
			"color": PiePalette[i%len(PiePalette)],
		})
	}
	return out
}

// groupRows accumulates value(row) per truncated category, keeping the order
// in which categories first appear. Rows with a missing category are skipped.
func groupRows(rows []dataset.Record, field string, maxLen int, value func(dataset.Record) float64) ([]string, map[string]float64) {
	var order []string
	totals := make(map[string]float64)
	for _, row := range rows {
		raw := row[field]
		if coercer.IsMissing(raw) {
			continue
		}
		name := truncateRunes(coercer.FormatValue(raw), maxLen)
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		totals[name] += value(row)
	}
	return order, totals
}

func formatAxisDate(v interface{}) string {
	t, ok := coercer.ParseDate(v)
	if !ok {
		return coercer.FormatValue(v)
	}
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// DefaultChart returns the fixed records shown when no data backs a shape
func DefaultChart(shape analytics.ChartShape) []analytics.ChartRecord {
	switch shape {
	case analytics.ShapeBar:
		return []analytics.ChartRecord{
			{"name": "Terminal A", "operations": 120.0, "target": 100.0},
			{"name": "Terminal B", "operations": 98.0, "target": 110.0},
			{"name": "Terminal C", "operations": 86.0, "target": 90.0},
			{"name": "Terminal D", "operations": 134.0, "target": 120.0},
		}
	case analytics.ShapePie:
		return []analytics.ChartRecord{
			{"name": "Completed", "value": 65.0, "color": PiePalette[0]},
			{"name": "In Progress", "value": 25.0, "color": PiePalette[1]},
			{"name": "Pending", "value": 10.0, "color": PiePalette[2]},
		}
	}
	return []analytics.ChartRecord{
		{"name": "Jan", "value": 4000.0, "efficiency": 85.0},
		{"name": "Feb", "value": 3000.0, "efficiency": 88.0},
		{"name": "Mar", "value": 2000.0, "efficiency": 92.0},
		{"name": "Apr", "value": 2780.0, "efficiency": 85.0},
		{"name": "May", "value": 1890.0, "efficiency": 90.0},
		{"name": "Jun", "value": 2390.0, "efficiency": 95.0},
	}
}

