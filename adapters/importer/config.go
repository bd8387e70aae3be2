package importer

// ImportConfig configures the upload readers
type ImportConfig struct {
	// SheetName selects the XLSX sheet; empty means the first sheet.
	SheetName string
	// MaxUploadBytes bounds accepted upload size.
	MaxUploadBytes int64
}

// DefaultImportConfig returns the default reader settings
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		MaxUploadBytes: 50 << 20,
	}
}
