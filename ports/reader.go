package ports

import (
	"context"

	"opsdash/domain/dataset"
)

// TableReader parses one uploaded file format into an ordered raw table.
// Implementations return core.ErrParse-wrapped errors for malformed input.
type TableReader interface {
	Read(ctx context.Context, data []byte) (dataset.RawTable, error)
}
