// Package analysis renders the human-readable analysis report of a stored
// dataset: overview, column breakdown, per-column completeness, numeric
// summaries and recommendations. Reports are markdown and can be rendered
// to HTML.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"opsdash/adapters/datareadiness/coercer"
	"opsdash/domain/core"
	"opsdash/domain/dataset"
	"opsdash/ports"
)

// Format selects the report rendering
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a report format. Empty means markdown.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: unknown report format %q", core.ErrInvalidInput, s)
}

// NumericSummary describes the values of one number column
type NumericSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Median float64 `json:"median"`
}

// Report is the analysis of one dataset
type Report struct {
	DatasetID       core.ID          `json:"datasetId"`
	Markdown        string           `json:"markdown"`
	Summaries       []NumericSummary `json:"numericSummaries"`
	Recommendations []string         `json:"recommendations"`
}

// HTML renders the markdown report
func (r *Report) HTML() string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(r.Markdown), p, renderer))
}

// Render returns the report in the requested format
func (r *Report) Render(format Format) string {
	if format == FormatHTML {
		return r.HTML()
	}
	return r.Markdown
}

// Reporter builds reports for stored datasets
type Reporter struct {
	datasets ports.DatasetReader
}

// NewReporter creates a reporter reading from datasets
func NewReporter(datasets ports.DatasetReader) *Reporter {
	return &Reporter{datasets: datasets}
}

// Analyze builds the report of the dataset with the given id
func (r *Reporter) Analyze(ctx context.Context, id core.ID) (*Report, error) {
	ds, err := r.datasets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildReport(ds), nil
}

var printer = message.NewPrinter(language.English)

// BuildReport renders the analysis of ds
func BuildReport(ds *dataset.Dataset) *Report {
	summaries := Summarize(ds)
	recs := Recommendations(ds)

	var b strings.Builder
	fmt.Fprintf(&b, "## Dataset Analysis: %s\n\n", ds.Name)

	b.WriteString("### Overview\n")
	fmt.Fprintf(&b, "- **Operation Type**: %s\n", ds.Domain.Title())
	b.WriteString(printer.Sprintf("- **Records**: %d rows\n", ds.RowCount))
	fmt.Fprintf(&b, "- **Columns**: %d fields\n", ds.ColumnCount)
	fmt.Fprintf(&b, "- **Data Quality**: %s\n", ds.Summary.DataQuality)
	fmt.Fprintf(&b, "- **Completeness**: %s%%\n\n", coercer.FormatValue(ds.Summary.Completeness))

	b.WriteString("### Column Breakdown\n")
	writeBreakdown(&b, "Numeric Fields", ds.ColumnsOfType(dataset.TypeNumber))
	writeBreakdown(&b, "Categorical Fields", ds.ColumnsOfType(dataset.TypeString))
	writeBreakdown(&b, "Date Fields", ds.ColumnsOfType(dataset.TypeDate))
	writeBreakdown(&b, "Boolean Fields", ds.ColumnsOfType(dataset.TypeBoolean))
	b.WriteString("\n")

	b.WriteString("### Key Insights\n")
	for _, insight := range ds.Summary.KeyInsights {
		fmt.Fprintf(&b, "- %s\n", insight)
	}
	b.WriteString("\n")

	b.WriteString("### Data Quality Assessment\n")
	for _, col := range ds.Columns {
		fmt.Fprintf(&b, "- **%s**: %.1f%% complete, %d unique values\n", col.Name, columnCompleteness(ds.RowCount, col), col.UniqueCount)
	}
	b.WriteString("\n")

	if len(summaries) > 0 {
		b.WriteString("### Numeric Summary\n\n")
		b.WriteString("| Column | Count | Min | Max | Mean | Std Dev | Median |\n")
		b.WriteString("|---|---|---|---|---|---|---|\n")
		for _, s := range summaries {
			fmt.Fprintf(&b, "| %s | %d | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
				s.Column, s.Count, s.Min, s.Max, s.Mean, s.StdDev, s.Median)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Recommendations\n")
	for _, rec := range recs {
		fmt.Fprintf(&b, "- %s\n", rec)
	}

	return &Report{
		DatasetID:       ds.ID,
		Markdown:        b.String(),
		Summaries:       summaries,
		Recommendations: recs,
	}
}

func writeBreakdown(b *strings.Builder, label string, cols []dataset.Column) {
	if len(cols) == 0 {
		fmt.Fprintf(b, "- **%s**: 0\n", label)
		return
	}
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	fmt.Fprintf(b, "- **%s**: %d (%s)\n", label, len(cols), strings.Join(names, ", "))
}

func columnCompleteness(rowCount int, col dataset.Column) float64 {
	if rowCount == 0 {
		return 0
	}
	return float64(rowCount-col.NullCount) / float64(rowCount) * 100
}

// Summarize computes summaries of every number column over the raw rows the
// dataset still carries, or over its sample values when the rows were dropped
// to fit storage.
func Summarize(ds *dataset.Dataset) []NumericSummary {
	var out []NumericSummary
	for _, col := range ds.ColumnsOfType(dataset.TypeNumber) {
		values := columnValues(ds, col)
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)
		mean, std := stat.MeanStdDev(values, nil)
		if len(values) == 1 {
			std = 0
		}
		out = append(out, NumericSummary{
			Column: col.Name,
			Count:  len(values),
			Min:    floats.Min(values),
			Max:    floats.Max(values),
			Mean:   mean,
			StdDev: std,
			Median: stat.Quantile(0.5, stat.Empirical, values, nil),
		})
	}
	return out
}

func columnValues(ds *dataset.Dataset, col dataset.Column) []float64 {
	raw := make([]interface{}, 0, len(ds.RawRecords))
	for _, row := range ds.RawRecords {
		raw = append(raw, row[col.Name])
	}
	if len(raw) == 0 {
		raw = col.SampleValues
	}

	var values []float64
	for _, v := range raw {
		if coercer.IsMissing(v) {
			continue
		}
		if f, ok := coercer.ToNumber(v); ok {
			values = append(values, f)
		}
	}
	return values
}
