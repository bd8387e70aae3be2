package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"opsdash/adapters/datareadiness"
	"opsdash/adapters/datareadiness/coercer"
	"opsdash/adapters/importer"
	"opsdash/adapters/kvstore"
	"opsdash/adapters/postgres"
	"opsdash/app"
	"opsdash/domain/core"
	"opsdash/internal"
	"opsdash/internal/config"
	datasetstore "opsdash/internal/dataset"
	"opsdash/internal/errors"
	"opsdash/internal/migration"
	"opsdash/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger
	Clock  core.Clock

	// Infrastructure
	DB *sqlx.DB
	KV ports.KeyValueStore

	// Dataset pipeline
	Store     *datasetstore.Store
	Processor *datasetstore.Processor

	// Query boundary
	Service *app.DashboardService
}

// New creates the container and initializes every component for the
// configured store backend
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		Clock:  core.SystemClock{},
	}

	kv, err := c.initKeyValueStore(ctx)
	if err != nil {
		c.Close()
		return nil, errors.Wrapf(err, "failed to initialize %s store backend", cfg.Store.Backend)
	}
	c.KV = kv
	c.initPipeline(ctx)

	logger.Info("[Container] initialized with %s store backend", cfg.Store.Backend)
	return c, nil
}

// NewWithKV builds the pipeline over an existing key-value store
func NewWithKV(ctx context.Context, cfg *config.Config, kv ports.KeyValueStore, logger *internal.Logger) *Container {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	c := &Container{Config: cfg, Logger: logger, Clock: core.SystemClock{}, KV: kv}
	c.initPipeline(ctx)
	return c
}

// initKeyValueStore selects the persistence backend
func (c *Container) initKeyValueStore(ctx context.Context) (ports.KeyValueStore, error) {
	store := c.Config.Store
	switch store.Backend {
	case config.BackendMemory:
		return kvstore.NewMemoryStore(int(store.QuotaBytes)), nil
	case config.BackendFile:
		return kvstore.NewFileStore(store.Dir, store.QuotaBytes)
	case config.BackendPostgres:
		db, err := Connect(ctx, c.Config.Database)
		if err != nil {
			return nil, err
		}
		c.DB = db
		if err := migration.NewRunner().Run(ctx, db); err != nil {
			return nil, err
		}
		return postgres.NewKVRepository(db, store.QuotaBytes), nil
	}
	return nil, errors.ConfigInvalid(fmt.Sprintf("unknown store backend %q", store.Backend))
}

// initPipeline wires the store, the import pipeline and the service
func (c *Container) initPipeline(ctx context.Context) {
	cfg := c.Config
	c.Store = datasetstore.NewStore(ctx, c.KV, datasetstore.StoreConfig{
		Key:               cfg.Store.Key,
		BudgetBytes:       cfg.Store.BudgetBytes,
		PersistMaxRows:    cfg.Store.PersistMaxRows,
		PersistMaxSamples: cfg.Store.PersistMaxSamples,
		AddMaxRows:        cfg.Store.AddMaxRows,
		AddMaxSamples:     cfg.Store.AddMaxSamples,
		MinimalInsights:   cfg.Store.MinimalInsights,
	}, c.Logger.Named("store"))

	reader := importer.NewDataReader(importer.ImportConfig{
		SheetName:      cfg.Import.SheetName,
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
	})
	profiler := datareadiness.NewProfilerAdapter(coercer.NewTypeCoercer()).WithClock(c.Clock)
	c.Processor = datasetstore.NewProcessor(reader, profiler, c.Store, c.Logger.Named("import"), cfg.Import.MaxUploadBytes)
	c.Service = app.NewDashboardService(c.Store, c.Processor, c.Clock, c.Logger)
}

// Connect opens and pings a postgres connection pool
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	return db, nil
}

// Close releases the database connection, if any
func (c *Container) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
