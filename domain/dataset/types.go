package dataset

import (
	"fmt"
	"strings"
	"time"

	"opsdash/domain/core"
)

// OperationDomain partitions datasets and default KPI sets
type OperationDomain string

const (
	DomainTerminal  OperationDomain = "terminal"
	DomainCourier   OperationDomain = "courier"
	DomainWorkforce OperationDomain = "workforce"
	DomainEnergy    OperationDomain = "energy"
)

// AllDomains returns the operation domains in display order
func AllDomains() []OperationDomain {
	return []OperationDomain{DomainTerminal, DomainCourier, DomainWorkforce, DomainEnergy}
}

// ParseDomain validates a raw domain string
func ParseDomain(s string) (OperationDomain, error) {
	d := OperationDomain(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidDomain, s)
	}
	return d, nil
}

// IsValid reports whether d is one of the known domains
func (d OperationDomain) IsValid() bool {
	switch d {
	case DomainTerminal, DomainCourier, DomainWorkforce, DomainEnergy:
		return true
	}
	return false
}

// Title returns the capitalized domain name
func (d OperationDomain) Title() string {
	if d == "" {
		return ""
	}
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ColumnType is the inferred type of a column
type ColumnType string

const (
	TypeString  ColumnType = "string"
	TypeNumber  ColumnType = "number"
	TypeDate    ColumnType = "date"
	TypeBoolean ColumnType = "boolean"
)

// DataQuality is the quality tier derived from completeness
type DataQuality string

const (
	QualityExcellent DataQuality = "excellent"
	QualityGood      DataQuality = "good"
	QualityFair      DataQuality = "fair"
	QualityPoor      DataQuality = "poor"
)

// QualityFromCompleteness buckets a completeness percentage
func QualityFromCompleteness(completeness float64) DataQuality {
	switch {
	case completeness > 90:
		return QualityExcellent
	case completeness > 70:
		return QualityGood
	case completeness > 50:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Record is one raw row keyed by column name
type Record map[string]interface{}

// RawTable is a parsed file before profiling. Headers carry the column order.
type RawTable struct {
	Headers []string
	Records []Record
}

// Column describes a single profiled column
type Column struct {
	Name         string        `json:"name"`
	Type         ColumnType    `json:"type"`
	SampleValues []interface{} `json:"sampleValues"`
	NullCount    int           `json:"nullCount"`
	UniqueCount  int           `json:"uniqueCount"` // over non-null values only
}

// Summary is the computed quality summary of a dataset
type Summary struct {
	Description  string      `json:"description"`
	KeyInsights  []string    `json:"keyInsights"`
	DataQuality  DataQuality `json:"dataQuality"`
	Completeness float64     `json:"completeness"` // 0-100
}

// Dataset is one imported, profiled table plus its summary.
// It is immutable once added to the store.
type Dataset struct {
	ID          core.ID         `json:"id"`
	Name        string          `json:"name"`
	Domain      OperationDomain `json:"operationDomain"`
	UploadedAt  time.Time       `json:"uploadedAt"`
	ByteSize    int64           `json:"byteSize"`
	RowCount    int             `json:"rowCount"`
	ColumnCount int             `json:"columnCount"`
	Columns     []Column        `json:"columns"`
	RawRecords  []Record        `json:"rawRecords"`
	Summary     Summary         `json:"summary"`
}

// Column returns the column with the given name
func (d *Dataset) Column(name string) (Column, bool) {
	for _, col := range d.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// ColumnsOfType returns the columns of type t in column order
func (d *Dataset) ColumnsOfType(t ColumnType) []Column {
	var cols []Column
	for _, col := range d.Columns {
		if col.Type == t {
			cols = append(cols, col)
		}
	}
	return cols
}

// HasColumnContaining reports whether any column name contains keyword (case-insensitive)
func (d *Dataset) HasColumnContaining(keyword string) bool {
	keyword = strings.ToLower(keyword)
	for _, col := range d.Columns {
		if strings.Contains(strings.ToLower(col.Name), keyword) {
			return true
		}
	}
	return false
}

// Truncated returns a copy keeping at most maxRows raw records and maxSamples
// sample values per column; a negative cap keeps everything. Counts and
// summary are preserved.
func (d *Dataset) Truncated(maxRows, maxSamples int) *Dataset {
	out := *d
	out.RawRecords = headRecords(d.RawRecords, maxRows)
	out.Columns = make([]Column, len(d.Columns))
	for i, col := range d.Columns {
		col.SampleValues = headValues(col.SampleValues, maxSamples)
		out.Columns[i] = col
	}
	out.Summary.KeyInsights = append([]string(nil), d.Summary.KeyInsights...)
	return &out
}

// Clone returns a copy whose slices can be changed without touching d
func (d *Dataset) Clone() *Dataset {
	return d.Truncated(-1, -1)
}

// MetadataOnly returns a copy without raw records or sample values
func (d *Dataset) MetadataOnly() *Dataset {
	return d.Truncated(0, 0)
}

// Minimal returns the smallest persisted form: identity, counts, summary with at
// most maxInsights insights, and column names/types only.
func (d *Dataset) Minimal(maxInsights int) *Dataset {
	maxInsights = max(0, min(maxInsights, len(d.Summary.KeyInsights)))
	out := &Dataset{
		ID:          d.ID,
		Name:        d.Name,
		Domain:      d.Domain,
		UploadedAt:  d.UploadedAt,
		ByteSize:    d.ByteSize,
		RowCount:    d.RowCount,
		ColumnCount: d.ColumnCount,
		Columns:     make([]Column, len(d.Columns)),
		RawRecords:  []Record{},
		Summary: Summary{
			Description:  d.Summary.Description,
			DataQuality:  d.Summary.DataQuality,
			Completeness: d.Summary.Completeness,
			KeyInsights:  append([]string{}, d.Summary.KeyInsights[:maxInsights]...),
		},
	}
	for i, col := range d.Columns {
		out.Columns[i] = Column{Name: col.Name, Type: col.Type, SampleValues: []interface{}{}}
	}
	return out
}

// Normalize replaces nil slices so that datasets read back from any persisted
// tier can be consumed without nil checks.
func (d *Dataset) Normalize() {
	if d.Columns == nil {
		d.Columns = []Column{}
	}
	if d.RawRecords == nil {
		d.RawRecords = []Record{}
	}
	if d.Summary.KeyInsights == nil {
		d.Summary.KeyInsights = []string{}
	}
	for i := range d.Columns {
		if d.Columns[i].SampleValues == nil {
			d.Columns[i].SampleValues = []interface{}{}
		}
	}
	if d.ColumnCount == 0 {
		d.ColumnCount = len(d.Columns)
	}
}

func headRecords(records []Record, n int) []Record {
	if n < 0 || n > len(records) {
		n = len(records)
	}
	return append([]Record{}, records[:n]...)
}

func headValues(values []interface{}, n int) []interface{} {
	if n < 0 || n > len(values) {
		n = len(values)
	}
	return append([]interface{}{}, values[:n]...)
}
