package analysis

import (
	"opsdash/domain/dataset"
)

const (
	completionThreshold   = 80.0
	correlationMinNumeric = 3
)

// Recommendations lists the follow-up analyses suggested for ds. A dataset
// that triggers none is reported as ready.
func Recommendations(ds *dataset.Dataset) []string {
	var recs []string

	if ds.Summary.DataQuality == dataset.QualityPoor {
		recs = append(recs, "**Data Cleaning**: Consider cleaning missing values and outliers before analysis")
	}
	if ds.Summary.Completeness < completionThreshold {
		recs = append(recs, "**Data Completion**: Address missing data to improve analysis accuracy")
	}
	if len(ds.ColumnsOfType(dataset.TypeNumber)) > correlationMinNumeric {
		recs = append(recs, "**Correlation Analysis**: Explore relationships between numeric variables")
	}
	if ds.Domain == dataset.DomainTerminal && ds.HasColumnContaining("time") {
		recs = append(recs, "**Time Series Analysis**: Consider time-based performance trends")
	}
	if ds.Domain == dataset.DomainCourier && ds.HasColumnContaining("route") {
		recs = append(recs, "**Route Optimization**: Analyze delivery patterns and route efficiency")
	}

	if len(recs) == 0 {
		recs = append(recs, "**Ready for Analysis**: Dataset appears well-structured for insights generation")
	}
	return recs
}
