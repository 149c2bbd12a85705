// Package telemetry holds the analytics sinks a session reports to. Every
// sink is best-effort: failures are logged and never reach the caller
package telemetry

import (
	"context"
	"time"

	"swifthub/internal/platform/config"
	"swifthub/internal/platform/logger"
	"swifthub/internal/platform/store/ch"
)

// Config selects and configures the sink
type Config struct {
	// DSN enables the ClickHouse sink, empty selects the log sink
	DSN   string
	Table string
}

// LoadConfig reads TELEMETRY_CH_DSN and TELEMETRY_CH_TABLE under cfg
func LoadConfig(cfg config.Conf) Config {
	c := cfg.Prefix("TELEMETRY_CH_")
	return Config{
		DSN:   c.MayString("DSN", ""),
		Table: c.MayString("TABLE", "telemetry_events"),
	}
}

// Log writes telemetry as structured log lines
type Log struct{}

// NewLog returns the log sink
func NewLog() Log { return Log{} }

func (Log) log(ctx context.Context) *logger.Logger {
	l := logger.C(ctx).With().Str("component", "telemetry").Logger()
	return &l
}

// Identify logs the signed in user
func (s Log) Identify(ctx context.Context, userID string, traits map[string]string) {
	s.log(ctx).Info().Str("user_id", userID).Interface("traits", traits).Msg("identify")
}

// Set logs a user attribute change
func (s Log) Set(ctx context.Context, key string, value any) {
	s.log(ctx).Info().Str("key", key).Interface("value", value).Msg("attribute")
}

// Event logs a named event
func (s Log) Event(ctx context.Context, name string, props map[string]any) {
	s.log(ctx).Info().Str("event", name).Interface("props", props).Msg("event")
}

// Sink is the method set shared by every sink
type Sink interface {
	Identify(ctx context.Context, userID string, traits map[string]string)
	Set(ctx context.Context, key string, value any)
	Event(ctx context.Context, name string, props map[string]any)
}

var (
	_ Sink = Log{}
	_ Sink = (*ClickHouse)(nil)
)

// openCH is a seam over ch.Open for tests
var openCH = func(ctx context.Context, dsn string) (chStore, error) {
	return ch.Open(ctx, ch.Config{DSN: dsn, Role: "telemetry", DialTimeout: 5 * time.Second})
}

type chStore interface {
	Store
	Close() error
}

// Open returns the ClickHouse sink when a DSN is configured and reachable and
// the log sink otherwise. closer releases the connection
func Open(ctx context.Context, c Config) (sink Sink, closer func() error) {
	noop := func() error { return nil }
	if c.DSN == "" {
		return NewLog(), noop
	}
	store, err := openCH(ctx, c.DSN)
	if err != nil {
		logger.Named("telemetry").Warn().Err(err).Msg("clickhouse unavailable; telemetry goes to the log")
		return NewLog(), noop
	}
	s := NewClickHouse(store, c.Table)
	if err := s.EnsureTable(ctx); err != nil {
		logger.Named("telemetry").Warn().Err(err).Str("table", s.table).Msg("telemetry table not ensured")
	}
	return s, func() error {
		s.Close()
		return store.Close()
	}
}
