// Package dataset holds the live set of profiled datasets and mirrors it to a
// size-constrained key-value store.
//
// The in-memory set is the source of truth for reads. Every mutation is
// followed by a write of the whole set through a fallback ladder: full
// fidelity with capped rows and samples, then metadata only, then a minimal
// record. A tier is abandoned only after it is known to fail, and storage
// quota errors never fail the mutation itself.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"opsdash/domain/core"
	"opsdash/domain/dataset"
	"opsdash/internal"
	"opsdash/ports"
)

// Store is the dataset store. It is safe for concurrent use; mutations hold an
// exclusive lock across the read-modify-persist sequence.
type Store struct {
	mu       sync.RWMutex
	kv       ports.KeyValueStore
	config   StoreConfig
	logger   *internal.Logger
	datasets []*dataset.Dataset // insertion order
}

var _ ports.DatasetReader = (*Store)(nil)

// NewStore creates a store and reloads any previously persisted mirror. An
// unreadable mirror is logged and the store starts empty.
func NewStore(ctx context.Context, kv ports.KeyValueStore, config StoreConfig, logger *internal.Logger) *Store {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	s := &Store{
		kv:       kv,
		config:   config,
		logger:   logger,
		datasets: []*dataset.Dataset{},
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	data, err := s.kv.Get(ctx, s.config.Key)
	if err != nil {
		if !core.IsNotFoundError(err) {
			s.logger.Error("[DatasetStore] failed to read persisted datasets: %v", err)
		}
		return
	}

	var loaded []*dataset.Dataset
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("[DatasetStore] discarding unreadable persisted datasets: %v", err)
		return
	}
	for _, ds := range loaded {
		if ds == nil {
			continue
		}
		ds.Normalize()
		s.datasets = append(s.datasets, ds)
	}
	s.logger.Info("[DatasetStore] restored %d datasets", len(s.datasets))
}

// Add stores ds, replacing any dataset with the same name and domain. If the
// serialized set would exceed the budget the kept copy has its raw records and
// samples truncated; counts are unchanged. The returned outcome describes the
// persisted mirror and carries a warning when it is degraded.
func (s *Store) Add(ctx context.Context, ds *dataset.Dataset) (*dataset.Dataset, PersistOutcome, error) {
	if ds == nil {
		return nil, PersistOutcome{}, fmt.Errorf("%w: nil dataset", core.ErrInvalidInput)
	}
	if !ds.Domain.IsValid() {
		return nil, PersistOutcome{}, fmt.Errorf("%w: %q", core.ErrInvalidDomain, ds.Domain)
	}
	ds = ds.Clone()
	if ds.ID.IsEmpty() {
		ds.ID = core.NewID()
	}
	ds.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]*dataset.Dataset, 0, len(s.datasets)+1)
	for _, existing := range s.datasets {
		if existing.Name == ds.Name && existing.Domain == ds.Domain {
			s.logger.Debug("[DatasetStore] replacing dataset %s (%s/%s)", existing.ID, existing.Name, existing.Domain)
			continue
		}
		next = append(next, existing)
	}

	kept := ds
	if size, err := estimateSize(append(next, ds)); err != nil || size > s.config.BudgetBytes {
		kept = ds.Truncated(s.config.AddMaxRows, s.config.AddMaxSamples)
		s.logger.Warn("[DatasetStore] dataset %s is %d bytes over budget %d; keeping %d rows in memory",
			ds.Name, size, s.config.BudgetBytes, len(kept.RawRecords))
	}

	s.datasets = append(next, kept)
	outcome := s.persistLocked(ctx)
	s.logger.Info("[DatasetStore] added dataset %s (%s, %d rows), persisted at %s", kept.ID, kept.Domain, kept.RowCount, outcome.Fidelity)
	return kept, outcome, nil
}

// Remove deletes the dataset with the given id and re-persists the rest
func (s *Store) Remove(ctx context.Context, id core.ID) (PersistOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, ds := range s.datasets {
		if ds.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return PersistOutcome{}, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
	}

	s.datasets = append(s.datasets[:idx:idx], s.datasets[idx+1:]...)
	return s.persistLocked(ctx), nil
}

// Clear empties the store and erases the persisted mirror
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasets = []*dataset.Dataset{}
	if err := s.kv.Delete(ctx, s.config.Key); err != nil {
		s.logger.Error("[DatasetStore] failed to erase persisted datasets: %v", err)
		return fmt.Errorf("failed to erase persisted datasets: %w", err)
	}
	return nil
}

// Get returns the dataset with the given id
func (s *Store) Get(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ds := range s.datasets {
		if ds.ID == id {
			return ds, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
}

// ListByDomain returns the datasets of one domain in insertion order
func (s *Store) ListByDomain(ctx context.Context, domain dataset.OperationDomain) ([]*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*dataset.Dataset{}
	for _, ds := range s.datasets {
		if ds.Domain == domain {
			out = append(out, ds)
		}
	}
	return out, nil
}

// List returns every dataset in insertion order
func (s *Store) List(ctx context.Context) ([]*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]*dataset.Dataset{}, s.datasets...), nil
}

// Len returns the number of live datasets
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.datasets)
}

// persistLocked writes the current set down the ladder. Callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context) PersistOutcome {
	if len(s.datasets) == 0 {
		if err := s.kv.Delete(ctx, s.config.Key); err != nil {
			s.logger.Error("[DatasetStore] failed to erase persisted datasets: %v", err)
			return PersistOutcome{Fidelity: FidelityNone, Warning: WarningFailed}
		}
		return PersistOutcome{Fidelity: FidelityFull}
	}

	for _, t := range s.config.ladder() {
		payload, err := marshalTier(s.datasets, t.project)
		if err != nil {
			s.logger.Error("[DatasetStore] failed to serialize datasets at %s fidelity: %v", t.fidelity, err)
			return PersistOutcome{Fidelity: FidelityNone, Warning: WarningFailed}
		}

		if t.budgeted && len(payload) > s.config.BudgetBytes {
			s.logger.Warn("[DatasetStore] %s payload is %d bytes, budget %d; degrading", t.fidelity, len(payload), s.config.BudgetBytes)
			continue
		}

		err = s.kv.Set(ctx, s.config.Key, payload)
		if err == nil {
			if t.fidelity != FidelityFull {
				s.logger.Warn("[DatasetStore] persisted %d datasets at %s fidelity (%d bytes)", len(s.datasets), t.fidelity, len(payload))
			}
			return PersistOutcome{Fidelity: t.fidelity, Bytes: len(payload), Warning: t.warning}
		}

		if !core.IsQuotaError(err) {
			s.logger.Error("[DatasetStore] failed to persist datasets: %v", err)
			return PersistOutcome{Fidelity: FidelityNone, Warning: WarningFailed}
		}
		s.logger.Warn("[DatasetStore] quota exceeded at %s fidelity: %v", t.fidelity, err)
	}

	s.logger.Warn("[DatasetStore] all persistence tiers failed; %d datasets kept for this session only", len(s.datasets))
	return PersistOutcome{Fidelity: FidelityNone, Warning: WarningNone}
}

func marshalTier(datasets []*dataset.Dataset, project func(*dataset.Dataset) *dataset.Dataset) ([]byte, error) {
	projected := make([]*dataset.Dataset, len(datasets))
	for i, ds := range datasets {
		projected[i] = project(ds)
	}
	return json.Marshal(projected)
}

func estimateSize(datasets []*dataset.Dataset) (int, error) {
	data, err := json.Marshal(datasets)
	return len(data), err
}
