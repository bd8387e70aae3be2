package ports

import (
	"context"

	"opsdash/domain/core"
	"opsdash/domain/dataset"
)

// DatasetReader is the read side of the dataset store. Derivation units only
// depend on this interface, so any number of them may read concurrently.
type DatasetReader interface {
	Get(ctx context.Context, id core.ID) (*dataset.Dataset, error)
	ListByDomain(ctx context.Context, domain dataset.OperationDomain) ([]*dataset.Dataset, error)
	List(ctx context.Context) ([]*dataset.Dataset, error)
}
