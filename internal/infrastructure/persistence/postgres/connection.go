// Package postgres implements the PostgreSQL record store of the tutoring
// report. The store is read-only: it never writes and owns no schema.
package postgres

import (
	"context"
	stderrors "errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/coderva/tutoring-reports/internal/domain/shared"
	"github.com/coderva/tutoring-reports/pkg/logger"
	"github.com/coderva/tutoring-reports/pkg/retry"
)

const domain = "postgres"

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// ErrConnectionClosed indicates the connection pool is closed.
var ErrConnectionClosed = stderrors.New("postgres: connection pool is closed")

// ══════════════════════════════════════════════════════════════════════════════
// CONNECTION POOL
// ══════════════════════════════════════════════════════════════════════════════

// Config holds PostgreSQL connection configuration.
type Config struct {
	// URL is the database location (postgres://, postgresql:// or
	// jdbc:postgresql://).
	URL string

	// User and Password override the credentials embedded in URL when set.
	User     string
	Password string

	// SSLMode is applied when URL carries no sslmode parameter.
	SSLMode string

	// MaxConns is the maximum number of connections in the pool.
	MaxConns int32

	// ConnectTimeout is the timeout for establishing a connection.
	ConnectTimeout time.Duration

	// ConnectAttempts is how many times an unreachable server is tried
	// before giving up. One means fail on the first error. Authentication
	// failures are never retried.
	ConnectAttempts int

	// ConnectBackoff is the wait before the second attempt. It doubles
	// with every further attempt.
	ConnectBackoff time.Duration

	// QueryTimeout bounds one snapshot load. Zero means no limit.
	QueryTimeout time.Duration
}

// DefaultConfig returns the defaults used by the report command.
func DefaultConfig() Config {
	return Config{
		SSLMode:         DefaultSSLMode,
		MaxConns:        2,
		ConnectTimeout:  10 * time.Second,
		ConnectAttempts: 1,
		ConnectBackoff:  500 * time.Millisecond,
		QueryTimeout:    30 * time.Second,
	}
}

// PoolConfig returns pgxpool configuration.
func (c Config) PoolConfig() (*pgxpool.Config, error) {
	dsn, err := NormalizeURL(c.URL, c.User, c.Password, c.SSLMode)
	if err != nil {
		return nil, err
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, shared.WrapError(domain, "PoolConfig", shared.ErrInvalidInput, "failed to parse connection string", err)
	}

	if c.MaxConns > 0 {
		config.MaxConns = c.MaxConns
	}
	config.MinConns = 0
	if c.ConnectTimeout > 0 {
		config.ConnConfig.ConnectTimeout = c.ConnectTimeout
	}

	return config, nil
}

// Connection represents a PostgreSQL connection pool.
type Connection struct {
	pool   *pgxpool.Pool
	config Config
	closed bool
	mu     sync.RWMutex
}

// NewConnection creates the pool and verifies the server is reachable.
// Connectivity and authentication failures are reported as
// shared.ErrUnavailable.
func NewConnection(ctx context.Context, cfg Config) (*Connection, error) {
	poolConfig, err := cfg.PoolConfig()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, unavailable("Connect", "failed to create connection pool", err)
	}

	log := logger.FromContext(ctx)
	err = retry.Do(ctx, verify(pool.Ping),
		retry.WithMaxAttempts(cfg.ConnectAttempts),
		retry.WithInitialDelay(cfg.ConnectBackoff),
		retry.WithRetryIf(IsConnectivity),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("database not reachable, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		}),
	)
	if err != nil {
		pool.Close()
		return nil, unavailable("Connect", "failed to reach database", err)
	}

	return &Connection{pool: pool, config: cfg}, nil
}

// Close closes the connection pool.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.pool.Close()
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSACTION SUPPORT
// ══════════════════════════════════════════════════════════════════════════════

// TxOptions holds transaction options.
type TxOptions struct {
	IsoLevel   pgx.TxIsoLevel
	AccessMode pgx.TxAccessMode
}

// SnapshotTxOptions returns options for a read-only transaction in which
// every statement sees the same snapshot.
func SnapshotTxOptions() TxOptions {
	return TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}
}

// BeginTx starts a new transaction with the given options.
func (c *Connection) BeginTx(ctx context.Context, opts TxOptions) (pgx.Tx, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, unavailable("BeginTx", "pool closed", ErrConnectionClosed)
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: opts.IsoLevel, AccessMode: opts.AccessMode})
	if err != nil {
		return nil, classify("BeginTx", "failed to begin transaction", err)
	}

	return tx, nil
}

// WithTx executes fn within a transaction. The transaction is committed if
// fn returns nil and rolled back otherwise.
func (c *Connection) WithTx(ctx context.Context, opts TxOptions, fn func(pgx.Tx) error) error {
	tx, err := c.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !stderrors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Wrapf(err, "rollback also failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("Commit", "failed to commit transaction", err)
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERY HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// Querier is implemented by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// IsConnectivity reports whether err means the server could not be reached
// or refused the session: dial and TLS failures, connection exceptions
// (SQLSTATE class 08) and authorization failures (class 28).
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	var connErr *pgconn.ConnectError
	if stderrors.As(err, &connErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "28")
	}
	var netErr net.Error
	return stderrors.As(err, &netErr)
}

// isAuthFailure reports a rejected login (SQLSTATE class 28).
func isAuthFailure(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "28")
}

// verify wraps a ping so that rejected credentials end the retry loop on
// the first attempt.
func verify(ping func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		err := ping(ctx)
		if isAuthFailure(err) {
			return retry.Permanent(err)
		}
		return err
	}
}

func unavailable(op, msg string, err error) error {
	return errors.WithStack(shared.WrapError(domain, op, shared.ErrUnavailable, msg, err))
}

func queryFailed(op, msg string, err error) error {
	return errors.WithStack(shared.WrapError(domain, op, shared.ErrQuery, msg, err))
}

// classify maps a driver error to ErrUnavailable or ErrQuery.
func classify(op, msg string, err error) error {
	if IsConnectivity(err) {
		return unavailable(op, msg, err)
	}
	return queryFailed(op, msg, err)
}
