package analytics

import (
	"fmt"
	"strings"

	"opsdash/domain/core"
)

// KPIRecord is the fixed set of operational KPIs for one domain
type KPIRecord struct {
	Efficiency        float64 `json:"efficiency"`
	ActiveUnits       float64 `json:"activeUnits"`
	Uptime            float64 `json:"uptime"`
	Alerts            float64 `json:"alerts"`
	Throughput        float64 `json:"throughput"`
	ErrorRate         float64 `json:"errorRate"`
	AvgProcessingTime float64 `json:"avgProcessingTime"`
	CostSavings       float64 `json:"costSavings"`
}

// KPIField names one field of a KPIRecord
type KPIField string

const (
	FieldEfficiency        KPIField = "efficiency"
	FieldActiveUnits       KPIField = "activeUnits"
	FieldUptime            KPIField = "uptime"
	FieldAlerts            KPIField = "alerts"
	FieldThroughput        KPIField = "throughput"
	FieldErrorRate         KPIField = "errorRate"
	FieldAvgProcessingTime KPIField = "avgProcessingTime"
	FieldCostSavings       KPIField = "costSavings"
)

// Get returns the value of field f
func (k KPIRecord) Get(f KPIField) float64 {
	switch f {
	case FieldEfficiency:
		return k.Efficiency
	case FieldActiveUnits:
		return k.ActiveUnits
	case FieldUptime:
		return k.Uptime
	case FieldAlerts:
		return k.Alerts
	case FieldThroughput:
		return k.Throughput
	case FieldErrorRate:
		return k.ErrorRate
	case FieldAvgProcessingTime:
		return k.AvgProcessingTime
	case FieldCostSavings:
		return k.CostSavings
	}
	return 0
}

// Set assigns v to field f
func (k *KPIRecord) Set(f KPIField, v float64) {
	switch f {
	case FieldEfficiency:
		k.Efficiency = v
	case FieldActiveUnits:
		k.ActiveUnits = v
	case FieldUptime:
		k.Uptime = v
	case FieldAlerts:
		k.Alerts = v
	case FieldThroughput:
		k.Throughput = v
	case FieldErrorRate:
		k.ErrorRate = v
	case FieldAvgProcessingTime:
		k.AvgProcessingTime = v
	case FieldCostSavings:
		k.CostSavings = v
	}
}

// ChartShape is one of the supported chart layouts
type ChartShape string

const (
	ShapeLine ChartShape = "line"
	ShapeBar  ChartShape = "bar"
	ShapePie  ChartShape = "pie"
	ShapeArea ChartShape = "area"
)

// ParseShape validates a raw chart shape
func ParseShape(s string) (ChartShape, error) {
	shape := ChartShape(strings.ToLower(strings.TrimSpace(s)))
	switch shape {
	case ShapeLine, ShapeBar, ShapePie, ShapeArea:
		return shape, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidShape, s)
}

// ChartRecord is one chart-ready point. Values are strings or numbers; every
// record in one result has the same key set.
type ChartRecord map[string]interface{}

// TimePoint is one point of a domain time series
type TimePoint struct {
	Time     string  `json:"time"`
	Value    float64 `json:"value"`
	Category string  `json:"category"`
}

// ElasticityClass determines how a metric responds to workforce changes
type ElasticityClass string

const (
	ElasticityProductivity ElasticityClass = "productivity"
	ElasticityDuration     ElasticityClass = "duration"
	ElasticityCost         ElasticityClass = "cost"
	ElasticityError        ElasticityClass = "error"
	ElasticityGeneral      ElasticityClass = "general"
)

// ScenarioResult is the outcome of a what-if projection
type ScenarioResult struct {
	DatasetID       core.ID         `json:"datasetId"`
	Metric          string          `json:"metric"`
	WorkforceLevel  float64         `json:"workforceLevel"`
	Class           ElasticityClass `json:"elasticityClass"`
	Impact          float64         `json:"impact"`
	CurrentAverage  float64         `json:"currentAverage"`
	ProjectedValue  float64         `json:"projectedValue"`
	ProjectedChange float64         `json:"projectedChange"` // percent
	Insights        []string        `json:"insights"`
	Recommendations []string        `json:"recommendations"`
}
