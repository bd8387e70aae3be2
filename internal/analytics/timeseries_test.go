package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdash/domain/core"
	"opsdash/domain/dataset"
)

var seriesClock = core.FixedClock(time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC))

func TestBuildTimeSeries(t *testing.T) {
	ds := tableDataset(dataset.DomainEnergy,
		[]dataset.Column{col("meter", dataset.TypeString), col("kwh", dataset.TypeNumber), col("read_on", dataset.TypeDate)},
		[]dataset.Record{
			{"meter": "m1", "kwh": 12.5, "read_on": "2024-06-01"},
			{"meter": "m1", "kwh": "", "read_on": "2024-06-02"},
			{"meter": "m1", "kwh": 14.0, "read_on": "not a date"},
			{"meter": "m1", "kwh": 9.0, "read_on": "06/03/2024"},
		})

	points := BuildTimeSeries(ds, dataset.DomainEnergy)

	require.Len(t, points, 2)
	assert.Equal(t, "2024-06-01", points[0].Time)
	assert.Equal(t, 12.5, points[0].Value)
	assert.Equal(t, "energy", points[0].Category)
	assert.Equal(t, "2024-06-03", points[1].Time)
}

func TestBuildTimeSeriesCapsPoints(t *testing.T) {
	var rows []dataset.Record
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 80; i++ {
		rows = append(rows, dataset.Record{"day": core.FormatDay(start.AddDate(0, 0, i)), "v": float64(i)})
	}
	ds := tableDataset(dataset.DomainTerminal, []dataset.Column{col("day", dataset.TypeDate), col("v", dataset.TypeNumber)}, rows)

	assert.Len(t, BuildTimeSeries(ds, dataset.DomainTerminal), 50)
}

func TestTimeSeriesBuilderDefaultSeries(t *testing.T) {
	builder := NewTimeSeriesBuilder(&stubReader{}, seriesClock)
	ctx := context.Background()

	points, err := builder.Build(ctx, dataset.DomainCourier)
	require.NoError(t, err)
	require.Len(t, points, 31)
	assert.Equal(t, "2024-05-31", points[0].Time)
	assert.Equal(t, "2024-06-30", points[30].Time)
	for _, p := range points {
		assert.Equal(t, "courier", p.Category)
		assert.GreaterOrEqual(t, p.Value, 50.0)
		assert.Less(t, p.Value, 150.0)
	}

	again, err := builder.Build(ctx, dataset.DomainCourier)
	require.NoError(t, err)
	assert.Equal(t, points, again)
}

func TestTimeSeriesBuilderUsesFirstDataset(t *testing.T) {
	dated := tableDataset(dataset.DomainWorkforce,
		[]dataset.Column{col("date", dataset.TypeDate), col("hours", dataset.TypeNumber)},
		[]dataset.Record{{"date": "2024-02-01", "hours": 8.0}})
	undated := tableDataset(dataset.DomainWorkforce, []dataset.Column{col("hours", dataset.TypeNumber)},
		[]dataset.Record{{"hours": 8.0}})

	points, err := NewTimeSeriesBuilder(&stubReader{datasets: []*dataset.Dataset{dated, undated}}, seriesClock).
		Build(context.Background(), dataset.DomainWorkforce)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "2024-02-01", points[0].Time)

	points, err = NewTimeSeriesBuilder(&stubReader{datasets: []*dataset.Dataset{undated, dated}}, seriesClock).
		Build(context.Background(), dataset.DomainWorkforce)
	require.NoError(t, err)
	assert.Len(t, points, 31)
}

func TestTimeSeriesBuilderPropagatesReaderErrors(t *testing.T) {
	boom := fmt.Errorf("backend offline")
	_, err := NewTimeSeriesBuilder(&stubReader{err: boom}, nil).Build(context.Background(), dataset.DomainEnergy)
	assert.True(t, errors.Is(err, boom))
}
