package analytics

import (
	"context"
	"hash/fnv"

	"opsdash/adapters/datareadiness/coercer"
	"opsdash/domain/analytics"
	"opsdash/domain/core"
	"opsdash/domain/dataset"
	"opsdash/ports"
)

const (
	maxTimeSeriesPoints = 50
	defaultSeriesDays   = 31
	defaultSeriesBase   = 50
	defaultSeriesSpread = 100
)

// TimeSeriesBuilder builds a dated value series from the first dataset of a domain
type TimeSeriesBuilder struct {
	datasets ports.DatasetReader
	clock    core.Clock
}

// NewTimeSeriesBuilder creates a builder. The clock anchors the default series.
func NewTimeSeriesBuilder(datasets ports.DatasetReader, clock core.Clock) *TimeSeriesBuilder {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &TimeSeriesBuilder{datasets: datasets, clock: clock}
}

// Build returns up to 50 points of the first number column over the first
// date column, or the default series when either column is absent.
func (b *TimeSeriesBuilder) Build(ctx context.Context, domain dataset.OperationDomain) ([]analytics.TimePoint, error) {
	list, err := b.datasets.ListByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		if points := BuildTimeSeries(list[0], domain); len(points) > 0 {
			return points, nil
		}
	}
	return b.defaultSeries(domain), nil
}

// BuildTimeSeries extracts the dated series of a dataset. Rows lacking either
// value or with an unparseable date are skipped.
func BuildTimeSeries(ds *dataset.Dataset, domain dataset.OperationDomain) []analytics.TimePoint {
	dates := ds.ColumnsOfType(dataset.TypeDate)
	numeric := ds.ColumnsOfType(dataset.TypeNumber)
	if len(dates) == 0 || len(numeric) == 0 {
		return nil
	}
	dateField, valueField := dates[0].Name, numeric[0].Name

	var points []analytics.TimePoint
	for _, row := range ds.RawRecords {
		if len(points) == maxTimeSeriesPoints {
			break
		}
		t, ok := coercer.ParseDate(row[dateField])
		if !ok {
			continue
		}
		v, ok := coercer.ToNumber(row[valueField])
		if !ok || coercer.IsMissing(row[valueField]) {
			continue
		}
		points = append(points, analytics.TimePoint{
			Time:     core.FormatDay(t),
			Value:    v,
			Category: string(domain),
		})
	}
	return points
}

// defaultSeries is a deterministic 31-day series ending today
func (b *TimeSeriesBuilder) defaultSeries(domain dataset.OperationDomain) []analytics.TimePoint {
	h := fnv.New32a()
	h.Write([]byte(domain))
	seed := h.Sum32()

	now := b.clock.Now()
	points := make([]analytics.TimePoint, 0, defaultSeriesDays)
	for i := defaultSeriesDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		offset := (seed + uint32(i)*2654435761) % defaultSeriesSpread
		points = append(points, analytics.TimePoint{
			Time:     core.FormatDay(day),
			Value:    float64(defaultSeriesBase + offset),
			Category: string(domain),
		})
	}
	return points
}
