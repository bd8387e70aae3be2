package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() *Dataset {
	return &Dataset{
		ID:          "ds-1",
		Name:        "ops",
		Domain:      DomainTerminal,
		RowCount:    2,
		ColumnCount: 1,
		Columns:     []Column{{Name: "v", Type: TypeNumber, SampleValues: []interface{}{1.0, 2.0}}},
		RawRecords:  []Record{{"v": 1.0}, {"v": 2.0}},
		Summary:     Summary{KeyInsights: []string{"one", "two", "three"}},
	}
}

func TestMinimalInsightCap(t *testing.T) {
	tests := []struct {
		name string
		max  int
		want []string
	}{
		{"negative", -1, []string{}},
		{"zero", 0, []string{}},
		{"within", 2, []string{"one", "two"}},
		{"beyond", 10, []string{"one", "two", "three"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := sampleDataset().Minimal(tt.max)
			assert.Equal(t, tt.want, out.Summary.KeyInsights)
			assert.Empty(t, out.RawRecords)
			require.Len(t, out.Columns, 1)
			assert.Empty(t, out.Columns[0].SampleValues)
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ds := sampleDataset()
	clone := ds.Clone()

	clone.Columns[0].SampleValues[0] = 99.0
	clone.Summary.KeyInsights[0] = "changed"
	clone.RawRecords = append(clone.RawRecords, Record{"v": 3.0})

	assert.Equal(t, 1.0, ds.Columns[0].SampleValues[0])
	assert.Equal(t, "one", ds.Summary.KeyInsights[0])
	assert.Len(t, ds.RawRecords, 2)
	assert.Equal(t, ds.RowCount, clone.RowCount)
}
