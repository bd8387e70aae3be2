package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"opsdash/adapters/datareadiness/coercer"
	"opsdash/domain/core"
	"opsdash/domain/dataset"
)

func TestCSVReader(t *testing.T) {
	r := NewCSVReader(coercer.NewTypeCoercer())

	table, err := r.Read(context.Background(), []byte("name,\"efficiency\"\nA,80\nB,90\nbroken,1,2\n\"C\", 100 \n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "efficiency"}, table.Headers)
	require.Len(t, table.Records, 3)
	assert.Equal(t, dataset.Record{"name": "A", "efficiency": 80.0}, table.Records[0])
	assert.Equal(t, dataset.Record{"name": "C", "efficiency": 100.0}, table.Records[2])
}

func TestCSVReaderKeepsEmptyAndTextCells(t *testing.T) {
	r := NewCSVReader(coercer.NewTypeCoercer())

	table, err := r.Read(context.Background(), []byte("id,date,note\n1,2024-01-02,\n2,2024-01-03,ok"))
	require.NoError(t, err)

	require.Len(t, table.Records, 2)
	assert.Equal(t, "", table.Records[0]["note"])
	assert.Equal(t, "2024-01-02", table.Records[0]["date"])
	assert.Equal(t, 2.0, table.Records[1]["id"])
}

func TestCSVReaderHeaderOnly(t *testing.T) {
	r := NewCSVReader(coercer.NewTypeCoercer())

	table, err := r.Read(context.Background(), []byte("a,b\n"))
	require.NoError(t, err)
	assert.Empty(t, table.Records)
}

func TestJSONReaderShapes(t *testing.T) {
	r := NewJSONReader()

	tests := []struct {
		name    string
		input   string
		rows    int
		headers []string
	}{
		{"array", `[{"b":1,"a":"x"},{"b":2,"a":"y"}]`, 2, []string{"b", "a"}},
		{"later keys ignored", `[{"a":1},{"a":2,"b":"x"}]`, 2, []string{"a"}},
		{"leading scalar skipped", `[7,{"a":1,"b":2},{"c":3}]`, 2, []string{"a", "b"}},
		{"data wrapper", `{"meta":{},"data":[{"v":1}]}`, 1, []string{"v"}},
		{"single object", `{"v":1,"w":null}`, 1, []string{"v", "w"}},
		{"data not array", `{"data":5}`, 1, []string{"data"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := r.Read(context.Background(), []byte(tt.input))
			require.NoError(t, err)
			assert.Len(t, table.Records, tt.rows)
			assert.Equal(t, tt.headers, table.Headers)
		})
	}
}

func TestJSONReaderValues(t *testing.T) {
	table, err := NewJSONReader().Read(context.Background(), []byte(`[{"n":1.5,"s":"x","b":false,"z":null}]`))
	require.NoError(t, err)

	rec := table.Records[0]
	assert.Equal(t, 1.5, rec["n"])
	assert.Equal(t, "x", rec["s"])
	assert.Equal(t, false, rec["b"])
	assert.Nil(t, rec["z"])
}

func TestJSONReaderErrors(t *testing.T) {
	r := NewJSONReader()

	for _, input := range []string{`{"a":`, `42`, `"text"`, `[1,2,3]`} {
		_, err := r.Read(context.Background(), []byte(input))
		assert.ErrorIs(t, err, core.ErrParse, input)
	}
}

func TestXLSXReader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"terminal", "efficiency", "shift"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"T1", 80, "day"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]interface{}{"T2", 95}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := NewXLSXReader(coercer.NewTypeCoercer(), "").Read(context.Background(), buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, []string{"terminal", "efficiency", "shift"}, table.Headers)
	require.Len(t, table.Records, 2)
	assert.Equal(t, dataset.Record{"terminal": "T1", "efficiency": 80.0, "shift": "day"}, table.Records[0])
	assert.Equal(t, "", table.Records[1]["shift"])
}

func TestXLSXReaderRejectsGarbage(t *testing.T) {
	_, err := NewXLSXReader(coercer.NewTypeCoercer(), "").Read(context.Background(), []byte("not a zip"))
	assert.ErrorIs(t, err, core.ErrParse)
}

func TestDataReaderReadFile(t *testing.T) {
	r := NewDataReader(DefaultImportConfig())

	table, err := r.ReadFile(context.Background(), "ops.CSV", []byte("name,efficiency\nA,80"))
	require.NoError(t, err)
	assert.Len(t, table.Records, 1)

	_, err = r.ReadFile(context.Background(), "ops.csv", []byte("name,efficiency"))
	assert.ErrorIs(t, err, core.ErrNoData)

	_, err = r.ReadFile(context.Background(), "ops.json", []byte(`[]`))
	assert.ErrorIs(t, err, core.ErrNoData)

	_, err = r.ReadFile(context.Background(), "ops.txt", []byte("x"))
	assert.ErrorIs(t, err, core.ErrUnsupportedFmt)
}

func TestDatasetName(t *testing.T) {
	assert.Equal(t, "terminal_ops", DatasetName("/tmp/uploads/terminal_ops.csv"))
	assert.Equal(t, "report.v2", DatasetName("report.v2.json"))
}
