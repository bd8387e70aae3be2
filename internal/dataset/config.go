package dataset

// StoreConfig holds the persistence budget and the truncation caps of each tier
type StoreConfig struct {
	Key         string // key of the persisted mirror
	BudgetBytes int    // serialized-size ceiling

	PersistMaxRows    int // full-fidelity tier caps
	PersistMaxSamples int
	AddMaxRows        int // caps applied in memory when an add exceeds the budget
	AddMaxSamples     int
	MinimalInsights   int // insights kept by the minimal tier
}

// DefaultStoreConfig returns the default budget of 4 MiB
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Key:               "opsdash_datasets",
		BudgetBytes:       4 * 1024 * 1024,
		PersistMaxRows:    100,
		PersistMaxSamples: 3,
		AddMaxRows:        50,
		AddMaxSamples:     2,
		MinimalInsights:   2,
	}
}
