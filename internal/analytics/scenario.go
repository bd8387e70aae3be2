package analytics

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"opsdash/domain/analytics"
	"opsdash/domain/core"
	"opsdash/domain/dataset"
	"opsdash/ports"
)

// Workforce level bounds, in percent of baseline
const (
	MinWorkforceLevel      = 50.0
	MaxWorkforceLevel      = 150.0
	BaselineWorkforceLevel = 100.0
)

// significantChange is the projected swing, in percent, that triggers the
// stronger recommendations
const significantChange = 10.0

// elasticityRule classifies a metric by keywords in its name. Rules are
// checked in order; the last class is the catch-all.
type elasticityRule struct {
	Class    analytics.ElasticityClass
	Keywords []string
	Impact   func(factor float64) float64
}

var elasticityRules = []elasticityRule{
	{
		Class:    analytics.ElasticityProductivity,
		Keywords: []string{"productivity", "efficiency", "throughput"},
		Impact:   func(f float64) float64 { return math.Pow(f, 0.7) },
	},
	{
		Class:    analytics.ElasticityDuration,
		Keywords: []string{"time", "delay", "duration"},
		Impact:   func(f float64) float64 { return math.Pow(1/f, 0.5) },
	},
	{
		Class:    analytics.ElasticityCost,
		Keywords: []string{"cost", "expense"},
		Impact:   func(f float64) float64 { return 0.7 + 0.3*f },
	},
	{
		Class:    analytics.ElasticityError,
		Keywords: []string{"error", "defect"},
		Impact:   func(f float64) float64 { return math.Pow(1/f, 0.3) },
	},
}

var generalElasticity = elasticityRule{
	Class:  analytics.ElasticityGeneral,
	Impact: func(f float64) float64 { return math.Pow(f, 0.6) },
}

// MetricClass returns the elasticity class of a metric name
func MetricClass(metric string) analytics.ElasticityClass {
	return classifyMetric(metric).Class
}

func classifyMetric(metric string) elasticityRule {
	for _, rule := range elasticityRules {
		if containsAny(metric, rule.Keywords) {
			return rule
		}
	}
	return generalElasticity
}

// ScenarioProjector runs what-if projections against stored datasets
type ScenarioProjector struct {
	datasets ports.DatasetReader
}

// NewScenarioProjector creates a projector reading from datasets
func NewScenarioProjector(datasets ports.DatasetReader) *ScenarioProjector {
	return &ScenarioProjector{datasets: datasets}
}

// Run projects metric of the dataset with the given id at workforce level
func (p *ScenarioProjector) Run(ctx context.Context, id core.ID, metric string, level float64) (*analytics.ScenarioResult, error) {
	ds, err := p.datasets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Project(ds, metric, level)
}

// Metrics lists the columns a scenario can target
func (p *ScenarioProjector) Metrics(ctx context.Context, id core.ID) ([]dataset.Column, error) {
	ds, err := p.datasets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cols := ds.ColumnsOfType(dataset.TypeNumber)
	if cols == nil {
		cols = []dataset.Column{}
	}
	return cols, nil
}

// Project computes the projected value of a numeric column when the workforce
// moves to level percent of baseline. It is a pure function of its inputs.
func Project(ds *dataset.Dataset, metric string, level float64) (*analytics.ScenarioResult, error) {
	if math.IsNaN(level) || level < MinWorkforceLevel || level > MaxWorkforceLevel {
		return nil, fmt.Errorf("%w: %v not in [%v, %v]", core.ErrInvalidLevel, level, MinWorkforceLevel, MaxWorkforceLevel)
	}
	col, ok := ds.Column(metric)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrColumnNotFound, metric)
	}
	if col.Type != dataset.TypeNumber {
		return nil, fmt.Errorf("%w: %q is %s", core.ErrInvalidMetric, metric, col.Type)
	}

	current, err := stats.Mean(numericSamples(col.SampleValues, false))
	if err != nil {
		current = 0
	}

	rule := classifyMetric(metric)
	impact := 1.0
	if level != BaselineWorkforceLevel {
		impact = rule.Impact(level / BaselineWorkforceLevel)
	}

	projected := current * impact
	change := 0.0
	if current != 0 {
		change = (projected - current) / current * 100
	}

	return &analytics.ScenarioResult{
		DatasetID:       ds.ID,
		Metric:          metric,
		WorkforceLevel:  level,
		Class:           rule.Class,
		Impact:          impact,
		CurrentAverage:  current,
		ProjectedValue:  projected,
		ProjectedChange: change,
		Insights:        scenarioInsights(ds, metric, level, change),
		Recommendations: scenarioRecommendations(metric, level, change),
	}, nil
}

type direction int

const (
	directionDown direction = iota - 1
	directionFlat
	directionUp
)

func directionOf(v, pivot float64) direction {
	switch {
	case v > pivot:
		return directionUp
	case v < pivot:
		return directionDown
	}
	return directionFlat
}

// word picks the phrase for a direction
func (d direction) word(up, down, flat string) string {
	switch d {
	case directionUp:
		return up
	case directionDown:
		return down
	}
	return flat
}

func scenarioInsights(ds *dataset.Dataset, metric string, level, change float64) []string {
	staffing := directionOf(level, BaselineWorkforceLevel)
	outcome := directionOf(change, 0)
	levelText := strconv.FormatFloat(level, 'f', -1, 64)

	var insights []string
	if outcome == directionFlat {
		insights = append(insights, fmt.Sprintf("%s%% workforce level would keep %s stable", levelText, metric))
	} else {
		insights = append(insights, fmt.Sprintf("%s%% workforce level would %s %s by %.1f%%",
			levelText, outcome.word("improve", "decline", ""), metric, math.Abs(change)))
	}

	lower := strings.ToLower(metric)
	switch ds.Domain {
	case dataset.DomainTerminal:
		insights = append(insights, fmt.Sprintf("Terminal operations with %s staffing show %s performance metrics",
			staffing.word("increased", "decreased", "unchanged"), outcome.word("improved", "declining", "stable")))
		if strings.Contains(lower, "throughput") {
			insights = append(insights, "Container processing capacity directly correlates with workforce availability")
		}
	case dataset.DomainCourier:
		insights = append(insights, fmt.Sprintf("Delivery operations efficiency %s with %s workforce",
			outcome.word("improves", "declines", "remains stable"), staffing.word("an increased", "a reduced", "an unchanged")))
		if strings.Contains(lower, "time") || strings.Contains(lower, "delay") {
			insights = append(insights, "Route optimization becomes more effective with adequate staffing")
		}
	case dataset.DomainWorkforce:
		insights = append(insights, fmt.Sprintf("Staff utilization patterns show %s outcomes with %s workforce",
			outcome.word("improved", "declining", "stable"), staffing.word("increased", "decreased", "unchanged")))
	case dataset.DomainEnergy:
		insights = append(insights, fmt.Sprintf("Energy management efficiency %s with optimized workforce allocation",
			outcome.word("improves", "declines", "remains stable")))
	}

	insights = append(insights, fmt.Sprintf("Analysis based on %d records from %s dataset", ds.RowCount, ds.Name))
	return insights
}

func scenarioRecommendations(metric string, level, change float64) []string {
	var recs []string
	switch directionOf(level, BaselineWorkforceLevel) {
	case directionUp:
		switch {
		case change > significantChange:
			recs = append(recs,
				"Strong positive impact expected - consider implementing workforce increase",
				"Monitor productivity metrics to ensure optimal resource allocation")
		case change > 0:
			recs = append(recs, "Moderate improvement expected - evaluate cost-benefit of workforce increase")
		default:
			recs = append(recs, "Diminishing returns detected - reconsider workforce expansion strategy")
		}
	case directionDown:
		if change < -significantChange {
			recs = append(recs,
				"Significant performance decline expected - workforce reduction not recommended",
				"Consider alternative efficiency improvements before reducing staff")
		} else {
			recs = append(recs, "Monitor performance closely if implementing workforce reduction")
		}
	default:
		recs = append(recs,
			"Current workforce level appears optimal for this metric",
			"Focus on process improvements and training for additional gains")
	}

	lower := strings.ToLower(metric)
	switch {
	case strings.Contains(lower, "time") || strings.Contains(lower, "delay"):
		recs = append(recs, "Consider process automation to complement workforce optimization")
	case strings.Contains(lower, "cost"):
		recs = append(recs, "Balance workforce costs with productivity improvements")
	case strings.Contains(lower, "error") || strings.Contains(lower, "quality"):
		recs = append(recs, "Combine workforce adjustments with quality training programs")
	}
	return recs
}
