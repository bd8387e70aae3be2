package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"opsdash/domain/analytics"
	"opsdash/domain/core"
	"opsdash/domain/dataset"
	"opsdash/internal"
	"opsdash/internal/analysis"
	derive "opsdash/internal/analytics"
	datasetstore "opsdash/internal/dataset"
)

// DomainOverview is the KPI record of one domain and whether it came from
// an imported dataset
type DomainOverview struct {
	Domain      dataset.OperationDomain `json:"domain"`
	KPIs        analytics.KPIRecord     `json:"kpis"`
	HasRealData bool                    `json:"hasRealData"`
}

// DashboardService is the query boundary of the engine. Every surface (HTTP,
// CLI) goes through one instance instead of sharing global state.
type DashboardService struct {
	store     *datasetstore.Store
	processor *datasetstore.Processor
	kpis      *derive.KPIDeriver
	charts    *derive.ChartAggregator
	series    *derive.TimeSeriesBuilder
	scenarios *derive.ScenarioProjector
	reporter  *analysis.Reporter
	logger    *internal.Logger
}

// NewDashboardService wires the derivation units over store
func NewDashboardService(store *datasetstore.Store, processor *datasetstore.Processor, clock core.Clock, logger *internal.Logger) *DashboardService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DashboardService{
		store:     store,
		processor: processor,
		kpis:      derive.NewKPIDeriver(store),
		charts:    derive.NewChartAggregator(store),
		series:    derive.NewTimeSeriesBuilder(store, clock),
		scenarios: derive.NewScenarioProjector(store),
		reporter:  analysis.NewReporter(store),
		logger:    logger,
	}
}

// ImportFile parses, profiles and stores an uploaded file
func (s *DashboardService) ImportFile(ctx context.Context, fileName string, domain dataset.OperationDomain, data []byte) (*datasetstore.ImportResult, error) {
	result, err := s.processor.ProcessUpload(ctx, datasetstore.Upload{Filename: fileName, Domain: domain, Data: data})
	if err != nil {
		return nil, err
	}
	if result.Persist.Degraded() {
		s.logger.Warn("[DashboardService] %s stored at %s fidelity: %s", result.Dataset.Name, result.Persist.Fidelity, result.Persist.Warning)
	}
	return result, nil
}

// AddDataset stores an already profiled dataset
func (s *DashboardService) AddDataset(ctx context.Context, ds *dataset.Dataset) (*datasetstore.ImportResult, error) {
	kept, outcome, err := s.store.Add(ctx, ds)
	if err != nil {
		return nil, err
	}
	return &datasetstore.ImportResult{Dataset: kept, Persist: outcome}, nil
}

// RemoveDataset deletes one dataset
func (s *DashboardService) RemoveDataset(ctx context.Context, id core.ID) (datasetstore.PersistOutcome, error) {
	return s.store.Remove(ctx, id)
}

// ClearDatasets deletes every dataset and the persisted mirror
func (s *DashboardService) ClearDatasets(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// GetDataset returns one dataset by id
func (s *DashboardService) GetDataset(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	return s.store.Get(ctx, id)
}

// ListByDomain returns the datasets of one domain in insertion order
func (s *DashboardService) ListByDomain(ctx context.Context, domain dataset.OperationDomain) ([]*dataset.Dataset, error) {
	return s.store.ListByDomain(ctx, domain)
}

// ListDatasets returns every dataset in insertion order
func (s *DashboardService) ListDatasets(ctx context.Context) ([]*dataset.Dataset, error) {
	return s.store.List(ctx)
}

// GetKPIs returns the KPI record of a domain and whether it is backed by data
func (s *DashboardService) GetKPIs(ctx context.Context, domain dataset.OperationDomain) (analytics.KPIRecord, bool, error) {
	if !domain.IsValid() {
		return analytics.KPIRecord{}, false, fmt.Errorf("%w: %q", core.ErrInvalidDomain, domain)
	}
	return s.kpis.Derive(ctx, domain)
}

// GetChartData returns chart records for one domain and shape
func (s *DashboardService) GetChartData(ctx context.Context, domain dataset.OperationDomain, shape analytics.ChartShape) ([]analytics.ChartRecord, error) {
	if !domain.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidDomain, domain)
	}
	return s.charts.Aggregate(ctx, domain, shape)
}

// GetTimeSeries returns the dated series of a domain
func (s *DashboardService) GetTimeSeries(ctx context.Context, domain dataset.OperationDomain) ([]analytics.TimePoint, error) {
	if !domain.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidDomain, domain)
	}
	return s.series.Build(ctx, domain)
}

// GetOverview derives the KPIs of every domain concurrently. Derivation only
// reads the store, so the domains do not contend beyond its read lock.
func (s *DashboardService) GetOverview(ctx context.Context) ([]DomainOverview, error) {
	domains := dataset.AllDomains()
	out := make([]DomainOverview, len(domains))

	g, gctx := errgroup.WithContext(ctx)
	for i, domain := range domains {
		g.Go(func() error {
			kpis, hasData, err := s.kpis.Derive(gctx, domain)
			if err != nil {
				return fmt.Errorf("derive %s kpis: %w", domain, err)
			}
			out[i] = DomainOverview{Domain: domain, KPIs: kpis, HasRealData: hasData}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RunScenario projects a numeric column of a dataset at a workforce level
func (s *DashboardService) RunScenario(ctx context.Context, id core.ID, metric string, level float64) (*analytics.ScenarioResult, error) {
	return s.scenarios.Run(ctx, id, metric, level)
}

// ScenarioMetrics lists the columns selectable for a scenario
func (s *DashboardService) ScenarioMetrics(ctx context.Context, id core.ID) ([]dataset.Column, error) {
	return s.scenarios.Metrics(ctx, id)
}

// AnalyzeDataset builds the analysis report of a dataset
func (s *DashboardService) AnalyzeDataset(ctx context.Context, id core.ID) (*analysis.Report, error) {
	return s.reporter.Analyze(ctx, id)
}
