// Package session bootstraps a client session: it derives the active backend
// strategy from the environment and the stored credential, keeps it current and
// presents the initial screen.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"swifthub/internal/core/auth"
	"swifthub/internal/core/provider"
	"swifthub/internal/core/signal"
	"swifthub/internal/platform/logger"
	"swifthub/internal/services/home"
	"swifthub/internal/services/repos"

	"github.com/google/uuid"
)

const (
	// DefaultStartupDelay is the pause before the initial screen is presented
	DefaultStartupDelay = 500 * time.Millisecond
	// NoStartupDelay presents the initial screen on the next dispatcher turn
	NoStartupDelay time.Duration = -1
)

// Deps are the explicit collaborators of an App
type Deps struct {
	Selector     provider.Selector
	Env          provider.Environment
	Credentials  auth.Store
	Users        auth.UserStore
	Navigator    Navigator
	Telemetry    Telemetry
	Dispatcher   Dispatcher
	StartupDelay time.Duration
	Banners      bool
}

type strategyRef struct{ s provider.Strategy }

// App is one client session
type App struct {
	deps    Deps
	id      string
	log     *logger.Logger
	ctx     context.Context
	banners *signal.Relay[bool]

	writeMu  sync.Mutex
	strategy atomic.Pointer[strategyRef]

	closeOnce sync.Once
	release   func()
}

// New builds a session. No strategy exists until UpdateProvider or
// PresentInitialScreen runs
func New(d Deps) *App {
	switch {
	case d.StartupDelay == 0:
		d.StartupDelay = DefaultStartupDelay
	case d.StartupDelay < 0:
		d.StartupDelay = 0
	}
	id := uuid.NewString()
	a := &App{
		deps:    d,
		id:      id,
		log:     logger.Named("session"),
		ctx:     logger.WithSession(context.Background(), id),
		banners: signal.NewRelay(d.Banners),
	}

	first := true
	a.release = a.banners.Subscribe(func(on bool) {
		if first {
			first = false
			return
		}
		if a.deps.Telemetry != nil {
			a.deps.Telemetry.Set(a.ctx, "ads_enabled", on)
		}
	})
	return a
}

// ID returns the session id
func (a *App) ID() string { return a.id }

// Context carries the session id for logging and telemetry
func (a *App) Context() context.Context { return a.ctx }

// Banners is the banner toggle. Changes are reported to telemetry
func (a *App) Banners() *signal.Relay[bool] { return a.banners }

// Strategy returns the active strategy, nil before the first derivation
func (a *App) Strategy() provider.Strategy {
	if r := a.strategy.Load(); r != nil {
		return r.s
	}
	return nil
}

// UpdateProvider re-derives the active strategy from the stored credential.
// Call it after every change to the authentication state
func (a *App) UpdateProvider() provider.Strategy {
	cred := auth.None()
	if a.deps.Credentials != nil {
		cred = a.deps.Credentials.Current()
	}
	return a.apply(cred)
}

func (a *App) apply(cred auth.Credential) provider.Strategy {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	s := a.deps.Selector.Select(a.deps.Env, cred)
	a.strategy.Store(&strategyRef{s: s})
	logger.C(a.ctx).Info().Str("credential", cred.Kind().String()).
		Str("capability", s.Capability().String()).Msg("strategy derived")
	return s
}

// PresentInitialScreen re-derives the strategy and, after the startup delay,
// presents the home tab bar as the root of window. Nothing happens when window
// is nil or no strategy could be derived
func (a *App) PresentInitialScreen(window Window) {
	a.UpdateProvider()
	strategy := a.Strategy()
	if window == nil || strategy == nil || a.deps.Navigator == nil {
		a.log.Debug().Bool("window", window != nil).Bool("strategy", strategy != nil).
			Msg("initial screen skipped")
		return
	}

	dispatch := a.deps.Dispatcher
	if dispatch == nil {
		dispatch = timerDispatcher{}
	}
	dispatch.After(a.deps.StartupDelay, func() {
		a.identify()
		authorized := a.deps.Credentials != nil && a.deps.Credentials.IsValid()
		vm := home.NewTabBarViewModel(authorized, strategy)
		if err := a.deps.Navigator.Show(SceneTabs, vm, Root(window)); err != nil {
			logger.C(a.ctx).Error().Err(err).Str("scene", SceneTabs.String()).Msg("present failed")
			vm.Close()
			return
		}
		a.presented(SceneTabs, strategy)
	})
}

func (a *App) presented(scene Scene, strategy provider.Strategy) {
	if a.deps.Telemetry == nil {
		return
	}
	a.deps.Telemetry.Event(a.ctx, "screen_presented", map[string]any{
		"scene":      scene.String(),
		"capability": strategy.Capability().String(),
	})
}

// PresentTestScreen presents a user's profile with the current strategy,
// without re-deriving it
func (a *App) PresentTestScreen(window Window, login string) {
	strategy := a.Strategy()
	if window == nil || strategy == nil || a.deps.Navigator == nil {
		return
	}
	vm := repos.NewUserRepositories(strategy, login)
	if err := a.deps.Navigator.Show(SceneUserDetails, vm, Root(window)); err != nil {
		logger.C(a.ctx).Error().Err(err).Str("scene", SceneUserDetails.String()).Msg("present failed")
		vm.Close()
		return
	}
	a.presented(SceneUserDetails, strategy)
}

// WatchCredentials re-derives the strategy on every credential change until
// ctx is done or the feed closes
func (a *App) WatchCredentials(ctx context.Context, w auth.Watcher) error {
	ch, err := w.Changes(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case cred, ok := <-ch:
			if !ok {
				return nil
			}
			a.apply(cred)
		}
	}
}

// Close releases the session subscriptions. Idempotent
func (a *App) Close() { a.closeOnce.Do(a.release) }

func (a *App) identify() {
	if a.deps.Telemetry == nil || a.deps.Users == nil {
		return
	}
	u, ok := a.deps.Users.CurrentUser()
	if !ok || u.Login == "" {
		return
	}
	a.deps.Telemetry.Identify(a.ctx, u.Login, map[string]string{"name": u.Name, "email": u.Email})
}

type timerDispatcher struct{}

func (timerDispatcher) After(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
