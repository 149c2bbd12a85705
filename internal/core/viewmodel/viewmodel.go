// Package viewmodel is the base every screen-level presentation model embeds.
//
// A screen is a Type: it turns an Input of user intents into an Output of
// observable results. Base supplies the busy signals, the error stream wired
// through the error taxonomy, the page cursor and the cancellation scope, so
// concrete screens only add their own transforms.
package viewmodel

import (
	"context"
	"sync/atomic"

	"swifthub/internal/core/activity"
	"swifthub/internal/core/apierr"
	"swifthub/internal/core/errtrack"
	"swifthub/internal/core/provider"
	"swifthub/internal/core/signal"
	"swifthub/internal/platform/logger"
)

// Type is the presentation contract: given well-typed Input, produce Output
type Type[I, O any] interface {
	Transform(in I) O
}

// Base holds the state shared by every presentation model
type Base struct {
	// Loading is the global busy tracker
	Loading *activity.Tracker
	// HeaderLoading tracks pull-to-refresh work
	HeaderLoading *activity.Tracker
	// FooterLoading tracks next-page work
	FooterLoading *activity.Tracker
	// Error collects raw failures of tracked operations
	Error *errtrack.Tracker
	// ServerError republishes every raw failure
	ServerError *signal.Subject[error]
	// ParsedError is the structured error stream
	ParsedError *signal.Subject[apierr.ApiError]

	name     string
	log      *logger.Logger
	parser   apierr.Parser
	strategy provider.Strategy
	page     atomic.Int64
	scope    *Scope
}

// Option configures a Base
type Option func(*Base)

// WithName sets the name used in log lines
func WithName(name string) Option { return func(b *Base) { b.name = name } }

// WithParser replaces the default (drop unclassifiable) parser
func WithParser(p apierr.Parser) Option { return func(b *Base) { b.parser = p } }

// WithContext sets the parent of the cancellation scope
func WithContext(ctx context.Context) Option {
	return func(b *Base) { b.scope = NewScope(ctx) }
}

// New builds a Base around strategy, which is held but not owned, and wires
// Error -> ServerError -> parser -> ParsedError -> error log
func New(strategy provider.Strategy, opts ...Option) *Base {
	b := &Base{
		Loading:       activity.New(),
		HeaderLoading: activity.New(),
		FooterLoading: activity.New(),
		Error:         errtrack.New(),
		ServerError:   signal.NewSubject[error](),
		ParsedError:   signal.NewSubject[apierr.ApiError](),
		name:          "viewmodel",
		strategy:      strategy,
	}
	for _, o := range opts {
		o(b)
	}
	if b.scope == nil {
		b.scope = NewScope(context.Background())
	}
	b.log = logger.Named("viewmodel")
	b.page.Store(1)

	b.scope.Bind(b.Error.Errors().Subscribe(b.ServerError.Emit))
	b.scope.Bind(b.ServerError.Subscribe(func(err error) {
		if e, ok := b.parser.Parse(err); ok {
			b.ParsedError.Emit(e)
		}
	}))
	b.scope.Bind(b.ParsedError.Subscribe(func(e apierr.ApiError) {
		b.log.Error().Str("model", b.name).Str("kind", e.Kind.String()).
			Str("code", string(e.Code)).Int("status", e.Status).Msg(e.Error())
	}))
	return b
}

// Name returns the model name
func (b *Base) Name() string { return b.name }

// Strategy returns the backend strategy the model was built with
func (b *Base) Strategy() provider.Strategy { return b.strategy }

// Context is cancelled on Close
func (b *Base) Context() context.Context { return b.scope.Context() }

// Go runs fn bound to the model's scope
func (b *Base) Go(fn func(ctx context.Context)) bool { return b.scope.Go(fn) }

// Bind ties a release func to the model's lifetime
func (b *Base) Bind(release func()) { b.scope.Bind(release) }

// Page returns the 1-based page cursor
func (b *Base) Page() int { return int(b.page.Load()) }

// ResetPage moves the cursor back to 1. Header refreshes do not call it
func (b *Base) ResetPage() { b.page.Store(1) }

// Close cancels in-flight work and releases every subscription. Idempotent
func (b *Base) Close() {
	if b.scope.Closed() {
		return
	}
	b.scope.Close()
	b.log.Debug().Str("model", b.name).Msg("deinited")
}

// Fetch runs op under the global busy tracker and routes its failure to the
// error stream. ok is false when op failed
func Fetch[T any](ctx context.Context, b *Base, op func(context.Context) (T, error)) (T, bool) {
	return tracked(ctx, b, b.Loading, op)
}

// Header runs a refresh under HeaderLoading. The page cursor is left alone
func Header[T any](ctx context.Context, b *Base, op func(context.Context) (T, error)) (T, bool) {
	return tracked(ctx, b, b.HeaderLoading, op)
}

// Footer loads the page after the cursor under FooterLoading and advances the
// cursor only when the load succeeds
func Footer[T any](ctx context.Context, b *Base, op func(ctx context.Context, page int) (T, error)) (T, bool) {
	cur := b.page.Load()
	next := cur + 1
	v, ok := tracked(ctx, b, b.FooterLoading, func(ctx context.Context) (T, error) {
		return op(ctx, int(next))
	})
	if ok {
		b.page.CompareAndSwap(cur, next)
	}
	return v, ok
}

func tracked[T any](ctx context.Context, b *Base, t *activity.Tracker, op func(context.Context) (T, error)) (T, bool) {
	return errtrack.Track(ctx, b.Error, func(ctx context.Context) (T, error) {
		return activity.Track(ctx, t, op)
	})
}
