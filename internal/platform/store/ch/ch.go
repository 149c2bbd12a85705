// Package ch provides a small clickhouse client over clickhouse-go
package ch

import (
	"context"
	"strings"
	"time"

	perr "swifthub/internal/platform/errors"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures the clickhouse client
type Config struct {
	DSN         string
	Role        string
	DialTimeout time.Duration
}

// Batch is the subset of driver.Batch used for inserts
type Batch interface {
	Append(v ...any) error
	Send() error
	Abort() error
}

// Conn is the subset of the driver connection used here
type Conn interface {
	Exec(ctx context.Context, query string, args ...any) error
	Ping(ctx context.Context) error
	Close() error
	Prepare(ctx context.Context, query string) (Batch, error)
}

// driverConn adapts driver.Conn to Conn
type driverConn struct{ driver.Conn }

func (d driverConn) Prepare(ctx context.Context, query string) (Batch, error) {
	return d.PrepareBatch(ctx, query)
}

// CH is a clickhouse client
type CH struct{ conn Conn }

// openConn is a seam over clickhouse.Open for tests
var openConn = func(opts *clickhouse.Options) (Conn, error) {
	c, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}
	return driverConn{c}, nil
}

// Open parses the DSN, connects and pings
func Open(ctx context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeConfig, "clickhouse dsn")
	}
	opts.ClientInfo = BuildClientInfo(cfg.Role)
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	conn, err := openConn(opts)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "clickhouse open")
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "clickhouse ping")
	}
	return &CH{conn: conn}, nil
}

// New wraps an existing connection
func New(conn Conn) *CH { return &CH{conn: conn} }

// Exec runs a statement without results
func (c *CH) Exec(ctx context.Context, query string, args ...any) error {
	if err := c.conn.Exec(ctx, query, args...); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "clickhouse exec")
	}
	return nil
}

// Insert appends rows to table in a single batch. Each row is ordered like columns
func (c *CH) Insert(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	q := "INSERT INTO " + table
	if len(columns) > 0 {
		q += " (" + strings.Join(columns, ", ") + ")"
	}
	b, err := c.conn.Prepare(ctx, q)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "clickhouse prepare batch")
	}
	for _, row := range rows {
		if err := b.Append(row...); err != nil {
			_ = b.Abort()
			return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "clickhouse append")
		}
	}
	if err := b.Send(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "clickhouse send batch")
	}
	return nil
}

// Ping verifies connectivity
func (c *CH) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }

// Close closes the connection
func (c *CH) Close() error { return c.conn.Close() }
