package dataset

import (
	"context"
	"fmt"

	"opsdash/adapters/importer"
	"opsdash/domain/core"
	"opsdash/domain/dataset"
	"opsdash/internal"
	"opsdash/ports"
)

// Upload is one file handed to the processor
type Upload struct {
	Filename string
	Domain   dataset.OperationDomain
	Data     []byte
}

// ImportResult is a stored dataset plus how its mirror write went
type ImportResult struct {
	Dataset *dataset.Dataset `json:"dataset"`
	Persist PersistOutcome   `json:"persist"`
}

// Processor runs the import pipeline: parse, profile, store. A file that fails
// to parse never reaches the store.
type Processor struct {
	reader         *importer.DataReader
	profiler       ports.ProfilerPort
	store          *Store
	logger         *internal.Logger
	maxUploadBytes int64
}

// NewProcessor creates a new dataset processor
func NewProcessor(reader *importer.DataReader, profiler ports.ProfilerPort, store *Store, logger *internal.Logger, maxUploadBytes int64) *Processor {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Processor{
		reader:         reader,
		profiler:       profiler,
		store:          store,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// ProcessUpload parses, profiles and stores an uploaded file
func (p *Processor) ProcessUpload(ctx context.Context, upload Upload) (*ImportResult, error) {
	if err := p.validateUpload(upload); err != nil {
		return nil, fmt.Errorf("upload validation failed: %w", err)
	}

	table, err := p.reader.ReadFile(ctx, upload.Filename, upload.Data)
	if err != nil {
		p.logger.Info("[DatasetProcessor] rejected %s: %v", upload.Filename, err)
		return nil, err
	}

	ds, err := p.profiler.Profile(ctx, importer.DatasetName(upload.Filename), upload.Domain, table, int64(len(upload.Data)))
	if err != nil {
		return nil, fmt.Errorf("failed to profile %s: %w", upload.Filename, err)
	}

	stored, outcome, err := p.store.Add(ctx, ds)
	if err != nil {
		return nil, err
	}

	p.logger.Info("[DatasetProcessor] imported %s as %s: %d rows, %d columns, %s quality",
		upload.Filename, stored.ID, stored.RowCount, stored.ColumnCount, stored.Summary.DataQuality)
	return &ImportResult{Dataset: stored, Persist: outcome}, nil
}

func (p *Processor) validateUpload(upload Upload) error {
	if upload.Filename == "" {
		return fmt.Errorf("%w: no filename provided", core.ErrInvalidInput)
	}
	if !upload.Domain.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidDomain, upload.Domain)
	}
	if p.maxUploadBytes > 0 && int64(len(upload.Data)) > p.maxUploadBytes {
		return fmt.Errorf("%w: file size %d bytes exceeds maximum allowed size %d bytes",
			core.ErrInvalidInput, len(upload.Data), p.maxUploadBytes)
	}
	if _, err := importer.DetectFormat(upload.Filename); err != nil {
		return err
	}
	return nil
}
