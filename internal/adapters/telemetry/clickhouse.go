package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"swifthub/internal/platform/logger"
	"swifthub/internal/platform/store/ch"

	"github.com/google/uuid"
)

// Store is the subset of the ClickHouse client the sink writes through
type Store interface {
	Exec(ctx context.Context, query string, args ...any) error
	Insert(ctx context.Context, table string, columns []string, rows [][]any) error
}

var _ Store = (*ch.CH)(nil)

var columns = []string{"event_id", "session_id", "ts", "kind", "name", "user_id", "payload"}

const (
	writeTimeout = 5 * time.Second
	queueSize    = 256
	batchSize    = 64
)

// ClickHouse writes one row per identify, attribute or event call. Calls
// only enqueue; a background writer batches rows into the table. Rows that
// find the queue full are dropped and counted
type ClickHouse struct {
	store Store
	table string
	log   *logger.Logger
	now   func() time.Time
	newID func() string

	mu      sync.RWMutex
	closed  bool
	queue   chan []any
	done    chan struct{}
	dropped atomic.Int64
}

// NewClickHouse builds the sink over store and starts its writer. Close
// flushes and stops it
func NewClickHouse(store Store, table string) *ClickHouse {
	if table == "" {
		table = "telemetry_events"
	}
	s := &ClickHouse{
		store: store,
		table: table,
		log:   logger.Named("telemetry"),
		now:   time.Now,
		newID: uuid.NewString,
		queue: make(chan []any, queueSize),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

// Dropped counts rows discarded because the queue was full or the sink closed
func (s *ClickHouse) Dropped() int64 { return s.dropped.Load() }

// Close writes what is queued and stops the writer. Later calls are dropped
func (s *ClickHouse) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
}

// EnsureTable creates the events table when missing
func (s *ClickHouse) EnsureTable(ctx context.Context) error {
	return s.store.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	event_id   UUID,
	session_id String,
	ts         DateTime64(3, 'UTC'),
	kind       LowCardinality(String),
	name       String,
	user_id    String,
	payload    String
) ENGINE = MergeTree ORDER BY (session_id, ts)`, s.table))
}

// Identify records the signed in user
func (s *ClickHouse) Identify(ctx context.Context, userID string, traits map[string]string) {
	s.write(ctx, "identify", "identify", userID, traits)
}

// Set records a user attribute change
func (s *ClickHouse) Set(ctx context.Context, key string, value any) {
	s.write(ctx, "attribute", key, "", map[string]any{"value": value})
}

// Event records a named event
func (s *ClickHouse) Event(ctx context.Context, name string, props map[string]any) {
	s.write(ctx, "event", name, "", props)
}

func (s *ClickHouse) write(ctx context.Context, kind, name, userID string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn().Err(err).Str("kind", kind).Str("name", name).Msg("telemetry payload dropped")
		return
	}
	row := []any{s.newID(), logger.SessionID(ctx), s.now().UTC(), kind, name, userID, string(body)}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	select {
	case s.queue <- row:
	default:
		n := s.dropped.Add(1)
		s.log.Warn().Str("kind", kind).Str("name", name).Int64("dropped", n).Msg("telemetry queue full")
	}
}

func (s *ClickHouse) run() {
	defer close(s.done)
	for row := range s.queue {
		batch := [][]any{row}
	fill:
		for len(batch) < batchSize {
			select {
			case r, ok := <-s.queue:
				if !ok {
					break fill
				}
				batch = append(batch, r)
			default:
				break fill
			}
		}
		s.flush(batch)
	}
}

func (s *ClickHouse) flush(rows [][]any) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.store.Insert(ctx, s.table, columns, rows); err != nil {
		s.log.Warn().Err(err).Int("rows", len(rows)).Msg("telemetry write failed")
	}
}
