package ports

import (
	"context"

	"opsdash/domain/dataset"
)

// ProfilerPort turns a parsed table into a profiled dataset
type ProfilerPort interface {
	Profile(ctx context.Context, name string, domain dataset.OperationDomain, table dataset.RawTable, byteSize int64) (*dataset.Dataset, error)
}
