package container

import (
	"context"
	"fmt"

	"epidash/adapters/blob"
	"epidash/adapters/render"
	"epidash/adapters/sqlstore"
	"epidash/adapters/tabular"
	"epidash/app"
	"epidash/internal"
	"epidash/internal/config"
	"epidash/internal/errors"
	"epidash/internal/metrics"
	"epidash/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB      *sqlx.DB
	Metrics *metrics.Metrics

	// Adapters
	Source     ports.RecordSource
	Selections ports.SelectionStore
	Renderers  *render.Registry

	// Services
	Store     *app.RecordStore
	Dashboard *app.DashboardService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level)),
	}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New()
	}
	return c, nil
}

// Init wires the record source, the selection store and the dashboard service.
// The dataset is not loaded here; see LoadRecords.
func (c *Container) Init(ctx context.Context) error {
	readerConfig := tabular.DefaultConfig(c.Config.Data.Source)
	readerConfig.Timeout = c.Config.Data.Timeout
	c.Source = tabular.NewReader(readerConfig, c.Logger)

	selections, err := c.initSelectionStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize selection store: %w", err)
	}
	c.Selections = selections

	c.Renderers = render.Default()
	c.Store = app.NewRecordStore(c.Logger, c.Metrics)
	c.Dashboard = app.NewDashboardService(c.Store, c.Selections, c.Logger, c.Metrics)

	c.Logger.With("Container").Info("Initialized with source %s and state backend %s",
		c.Source.Describe(), c.Selections.Backend())
	return nil
}

// initSelectionStore opens the configured state backend
func (c *Container) initSelectionStore(ctx context.Context) (ports.SelectionStore, error) {
	switch c.Config.State.Backend {
	case config.StateBackendSQL:
		db, err := sqlstore.Open(ctx, c.Config.Database)
		if err != nil {
			return nil, err
		}
		c.DB = db
		return sqlstore.NewSelectionRepository(db, c.Config.State.Key)
	case config.StateBackendBlob:
		store, err := blob.Open(ctx, c.Config.Blob)
		if err != nil {
			return nil, err
		}
		return blob.NewSelectionStore(store, c.Config.State.Key, c.Logger)
	default:
		return nil, errors.ConfigInvalid("unknown STATE_BACKEND " + c.Config.State.Backend)
	}
}

// LoadRecords runs the one-time bulk load and restores the saved selection.
// A failed load leaves an empty dataset and is reported, not fatal.
func (c *Container) LoadRecords(ctx context.Context) error {
	if c.Dashboard == nil {
		return errors.InternalError("container not initialized")
	}

	loadCtx, cancel := context.WithTimeout(ctx, c.Config.Data.Timeout)
	defer cancel()

	loadErr := c.Store.Load(loadCtx, c.Source)
	c.Dashboard.Restore(ctx)
	return loadErr
}

// Shutdown releases held resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}
	return nil
}
