package datareadiness

import "opsdash/domain/dataset"

// insightRule emits Text when any column name contains Keyword
type insightRule struct {
	Keyword string
	Text    string
}

// domainInsights holds the keyword rules for one operation domain plus the
// line that is always emitted for it.
type domainInsights struct {
	Rules   []insightRule
	Generic string
}

// insightTable is a heuristic over column names, not a semantic reading of the data.
var insightTable = map[dataset.OperationDomain]domainInsights{
	dataset.DomainTerminal: {
		Rules: []insightRule{
			{Keyword: "container", Text: "Container operations data detected - suitable for throughput analysis"},
			{Keyword: "time", Text: "Temporal data available for processing time optimization"},
		},
		Generic: "Terminal efficiency metrics can be calculated from this dataset",
	},
	dataset.DomainCourier: {
		Rules: []insightRule{
			{Keyword: "delivery", Text: "Delivery performance data identified - route optimization possible"},
			{Keyword: "distance", Text: "Distance metrics available for fuel efficiency analysis"},
		},
		Generic: "Customer satisfaction metrics can be derived from delivery data",
	},
	dataset.DomainWorkforce: {
		Rules: []insightRule{
			{Keyword: "employee", Text: "Employee data detected - productivity analysis enabled"},
			{Keyword: "shift", Text: "Shift patterns available for workforce optimization"},
		},
		Generic: "Staff utilization and performance tracking possible",
	},
	dataset.DomainEnergy: {
		Rules: []insightRule{
			{Keyword: "consumption", Text: "Energy consumption data found - efficiency optimization possible"},
			{Keyword: "cost", Text: "Cost data available for savings analysis"},
		},
		Generic: "Carbon footprint and sustainability metrics can be calculated",
	},
}

// generateInsights scans column names against the domain's keyword rules
func generateInsights(domain dataset.OperationDomain, ds *dataset.Dataset) []string {
	entry, ok := insightTable[domain]
	if !ok {
		return []string{}
	}

	insights := make([]string, 0, len(entry.Rules)+1)
	for _, rule := range entry.Rules {
		if ds.HasColumnContaining(rule.Keyword) {
			insights = append(insights, rule.Text)
		}
	}
	return append(insights, entry.Generic)
}
