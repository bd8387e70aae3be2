package dataset

import (
	"fmt"

	"opsdash/domain/dataset"
)

// Fidelity is the tier at which the store's mirror was last written
type Fidelity int

const (
	FidelityFull Fidelity = iota
	FidelityMetadata
	FidelityMinimal
	FidelityNone
)

var fidelityNames = map[Fidelity]string{
	FidelityFull:     "full",
	FidelityMetadata: "metadata",
	FidelityMinimal:  "minimal",
	FidelityNone:     "none",
}

func (f Fidelity) String() string {
	if name, ok := fidelityNames[f]; ok {
		return name
	}
	return fmt.Sprintf("fidelity(%d)", int(f))
}

// MarshalText renders the tier name in JSON
func (f Fidelity) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Warnings surfaced to callers per tier
const (
	WarningMetadata = "saved with reduced data to fit storage limits"
	WarningMinimal  = "saved with minimal data due to storage constraints"
	WarningNone     = "storage quota exceeded; kept for this session only"
	WarningFailed   = "could not persist datasets; kept for this session only"
)

// PersistOutcome reports how the mirror was written after a mutation
type PersistOutcome struct {
	Fidelity Fidelity `json:"fidelity"`
	Bytes    int      `json:"bytes"`
	Warning  string   `json:"warning,omitempty"`
}

// Degraded reports whether the mirror holds less than full fidelity
func (o PersistOutcome) Degraded() bool {
	return o.Fidelity != FidelityFull
}

// tier is one rung of the persistence ladder
type tier struct {
	fidelity Fidelity
	// budgeted tiers are skipped when the payload exceeds the byte budget;
	// the rest are only abandoned on a quota error from the store.
	budgeted bool
	project  func(*dataset.Dataset) *dataset.Dataset
	warning  string
}

// ladder returns the tiers in the order they are attempted
func (c StoreConfig) ladder() []tier {
	return []tier{
		{
			fidelity: FidelityFull,
			budgeted: true,
			project: func(d *dataset.Dataset) *dataset.Dataset {
				return d.Truncated(c.PersistMaxRows, c.PersistMaxSamples)
			},
		},
		{
			fidelity: FidelityMetadata,
			project:  (*dataset.Dataset).MetadataOnly,
			warning:  WarningMetadata,
		},
		{
			fidelity: FidelityMinimal,
			project: func(d *dataset.Dataset) *dataset.Dataset {
				return d.Minimal(c.MinimalInsights)
			},
			warning: WarningMinimal,
		},
	}
}
