package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/TodoWidget/internal/config"
)

// PoolOptions configures a connection pool.
type PoolOptions struct {
	MaxOpenConns   int
	IdleTimeout    time.Duration
	ConnectTimeout time.Duration
}

var (
	// DefaultPoolOptions is used for the long-lived pool.
	DefaultPoolOptions = PoolOptions{
		MaxOpenConns:   20,
		IdleTimeout:    30 * time.Second,
		ConnectTimeout: 2 * time.Second,
	}

	// ProbeOptions is used for the throwaway pool of TestConnection.
	ProbeOptions = PoolOptions{
		MaxOpenConns:   1,
		ConnectTimeout: 5 * time.Second,
	}
)

// Opener creates a pool for a DSN. It must not connect eagerly.
type Opener func(dsn string) (*sqlx.DB, error)

func openPostgres(dsn string) (*sqlx.DB, error) {
	return sqlx.Open("postgres", dsn)
}

// Result is the outcome of a connection operation as shown to the user.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func failure(err error) Result {
	return Result{Success: false, Message: err.Error()}
}

// Manager owns the single live connection pool and the connection settings.
// At most one pool exists at any time; Reconnect swaps it under an exclusive
// lock so no caller sees a pool that disagrees with the current settings.
type Manager struct {
	store  *config.ConnectionStore
	logger *logrus.Logger
	open   Opener
	opts   PoolOptions

	mu sync.RWMutex
	db *sqlx.DB
}

// Option customises a Manager.
type Option func(*Manager)

// WithOpener replaces the function that creates pools.
func WithOpener(open Opener) Option {
	return func(m *Manager) { m.open = open }
}

// WithPoolOptions replaces DefaultPoolOptions.
func WithPoolOptions(opts PoolOptions) Option {
	return func(m *Manager) { m.opts = opts }
}

// NewManager creates a disconnected Manager.
func NewManager(store *config.ConnectionStore, logger *logrus.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: logger,
		open:   openPostgres,
		opts:   DefaultPoolOptions,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DB returns the live pool, or nil when disconnected.
func (m *Manager) DB() *sqlx.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

// CurrentConfig returns the active connection settings.
func (m *Manager) CurrentConfig() config.Connection {
	return m.store.Current()
}

// Configure merges p into the current settings and persists them. The live
// pool is left alone; use Reconnect to switch servers.
func (m *Manager) Configure(p config.ConnectionPatch) error {
	_, err := m.store.Merge(p)
	return err
}

// TestConnection probes cfg with a throwaway single-connection pool. It never
// touches the live pool and reports failures in the Result.
func (m *Manager) TestConnection(ctx context.Context, cfg config.Connection) Result {
	if err := cfg.Validate(); err != nil {
		return failure(err)
	}

	db, err := m.newPool(cfg, ProbeOptions)
	if err != nil {
		return failure(err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			m.logger.WithError(err).Debug("Failed to close probe pool")
		}
	}()

	var one int
	if err := db.GetContext(ctx, &one, "SELECT 1"); err != nil {
		return failure(err)
	}
	return Result{Success: true, Message: "connection succeeded"}
}

// Open returns the live pool, creating it if needed. When cfg is given and a
// pool already exists, the old pool is closed first and a new one is created
// from cfg.
func (m *Manager) Open(cfg *config.Connection) (*sqlx.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openLocked(cfg)
}

// Close drains and releases the live pool. It is safe to call when
// disconnected.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

// Connect opens the pool from the current settings and ensures the schema.
// On failure the manager stays disconnected.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := m.store.Current()
	db, err := m.openLocked(nil)
	if err != nil {
		return err
	}
	if err := m.verify(ctx, db); err != nil {
		m.closeLocked()
		return err
	}

	m.logger.WithField("server", cfg.String()).Info("Database connection established successfully")
	return nil
}

// Reconnect switches to cfg: the old pool is closed, cfg is persisted, and a
// new pool is opened, verified and migrated. On failure the manager is left
// disconnected and the Result carries the reason.
func (m *Manager) Reconnect(ctx context.Context, cfg config.Connection) Result {
	if err := cfg.Validate(); err != nil {
		return failure(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.closeLocked(); err != nil {
		m.logger.WithError(err).Warn("Failed to close previous pool cleanly")
	}

	if err := m.store.Save(cfg); err != nil {
		m.logger.WithError(err).Warn("Connection settings were not persisted")
		m.store.SetCurrent(cfg)
	}

	db, err := m.openLocked(&cfg)
	if err != nil {
		m.logger.WithError(err).Error("Failed to reconnect to database")
		return failure(err)
	}
	if err := m.verify(ctx, db); err != nil {
		m.logger.WithError(err).Error("Failed to reconnect to database")
		m.closeLocked()
		return failure(err)
	}

	m.logger.WithField("server", cfg.String()).Info("Database reconnected")
	return Result{Success: true, Message: "reconnected"}
}

// IsConnected runs a liveness query on the live pool. Any failure, including
// having no pool, reports false.
func (m *Manager) IsConnected(ctx context.Context) bool {
	db := m.DB()
	if db == nil {
		return false
	}
	if _, err := db.ExecContext(ctx, "SELECT 1"); err != nil {
		m.logger.WithError(err).Debug("Liveness probe failed")
		return false
	}
	return true
}

func (m *Manager) openLocked(cfg *config.Connection) (*sqlx.DB, error) {
	if cfg != nil && m.db != nil {
		if err := m.closeLocked(); err != nil {
			m.logger.WithError(err).Warn("Failed to close previous pool cleanly")
		}
	}
	if m.db != nil {
		return m.db, nil
	}

	settings := m.store.Current()
	if cfg != nil {
		settings = *cfg
	}

	db, err := m.newPool(settings, m.opts)
	if err != nil {
		return nil, err
	}
	m.db = db
	return db, nil
}

func (m *Manager) closeLocked() error {
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database pool: %w", err)
	}
	m.logger.Debug("Database pool closed")
	return nil
}

// verify checks out one connection, pings it and runs EnsureSchema on it.
func (m *Manager) verify(ctx context.Context, db *sqlx.DB) error {
	conn, err := db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return EnsureSchema(ctx, conn, m.logger)
}

func (m *Manager) newPool(cfg config.Connection, opts PoolOptions) (*sqlx.DB, error) {
	db, err := m.open(cfg.DSN(opts.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxOpenConns)
	if opts.IdleTimeout > 0 {
		db.SetConnMaxIdleTime(opts.IdleTimeout)
	}
	return db, nil
}
