package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"swifthub/internal/core/auth"
	"swifthub/internal/core/provider"
	"swifthub/internal/platform/config"
	kit "swifthub/internal/platform/testkit"
	"swifthub/internal/services/home"
	"swifthub/internal/services/repos"
)

type window struct{}

func (window) ID() string { return "test" }

type shown struct {
	scene Scene
	vm    any
	t     Transition
}

type fakeNavigator struct {
	mu    sync.Mutex
	calls []shown
	err   error
}

func (n *fakeNavigator) Show(scene Scene, vm any, t Transition) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, shown{scene, vm, t})
	return n.err
}

func (n *fakeNavigator) all() []shown {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.calls)
}

type fakeDispatcher struct {
	delays []time.Duration
	fns    []func()
}

func (d *fakeDispatcher) After(delay time.Duration, fn func()) {
	d.delays = append(d.delays, delay)
	d.fns = append(d.fns, fn)
}

func (d *fakeDispatcher) flush() {
	fns := d.fns
	d.fns = nil
	for _, fn := range fns {
		fn()
	}
}

type fakeStore struct {
	cred auth.Credential
	user auth.User
}

func (s *fakeStore) Current() auth.Credential { return s.cred }
func (s *fakeStore) IsValid() bool            { return s.cred.Valid() }
func (s *fakeStore) CurrentUser() (auth.User, bool) {
	return s.user, s.user.Login != ""
}

type fakeTelemetry struct {
	mu         sync.Mutex
	identified []string
	traits     []map[string]string
	attrs      map[string]any
	sessions   []string
	events     []string
}

func (f *fakeTelemetry) Identify(ctx context.Context, id string, traits map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identified = append(f.identified, id)
	f.traits = append(f.traits, traits)
}

func (f *fakeTelemetry) Set(_ context.Context, key string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attrs == nil {
		f.attrs = map[string]any{}
	}
	f.attrs[key] = value
}

func (f *fakeTelemetry) Event(_ context.Context, name string, props map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, fmt.Sprintf("%s:%v:%v", name, props["scene"], props["capability"]))
}

func newApp(store *fakeStore, nav *fakeNavigator, disp *fakeDispatcher, tel *fakeTelemetry) *App {
	d := Deps{
		Env:        provider.Environment{GitHubBaseURL: "https://api.example", TrendingBaseURL: "https://trending.example"},
		Navigator:  nav,
		Dispatcher: disp,
	}
	if store != nil {
		d.Credentials = store
		d.Users = store
	}
	if tel != nil {
		d.Telemetry = tel
	}
	return New(d)
}

func TestPresentInitialScreen_MissingWindowIsNoop(t *testing.T) {
	t.Parallel()
	nav := &fakeNavigator{}
	disp := &fakeDispatcher{}
	app := newApp(nil, nav, disp, nil)
	t.Cleanup(app.Close)

	kit.MustNotPanic(t, func() { app.PresentInitialScreen(nil) })
	disp.flush()
	if len(nav.all()) != 0 || len(disp.delays) != 0 {
		t.Fatalf("navigation happened without a window")
	}
	if app.Strategy() == nil {
		t.Fatalf("strategy should still be derived")
	}
}

func TestPresentInitialScreen_Anonymous(t *testing.T) {
	t.Parallel()
	nav := &fakeNavigator{}
	disp := &fakeDispatcher{}
	app := newApp(nil, nav, disp, nil)
	t.Cleanup(app.Close)

	app.PresentInitialScreen(window{})
	if len(nav.all()) != 0 {
		t.Fatalf("presented before the startup delay")
	}
	if len(disp.delays) != 1 || disp.delays[0] != 500*time.Millisecond {
		t.Fatalf("delays = %v", disp.delays)
	}
	disp.flush()

	calls := nav.all()
	if len(calls) != 1 || calls[0].scene != SceneTabs || calls[0].t.Kind != TransitionRoot {
		t.Fatalf("calls = %+v", calls)
	}
	vm, ok := calls[0].vm.(*home.TabBarViewModel)
	if !ok {
		t.Fatalf("vm = %T", calls[0].vm)
	}
	t.Cleanup(vm.Close)
	if vm.Authorized() || vm.Strategy().Capability() != provider.Baseline {
		t.Fatalf("anonymous session: authorized=%v capability=%v", vm.Authorized(), vm.Strategy().Capability())
	}
}

func TestPresentInitialScreen_SignedIn(t *testing.T) {
	t.Parallel()
	nav := &fakeNavigator{}
	disp := &fakeDispatcher{}
	tel := &fakeTelemetry{}
	store := &fakeStore{
		cred: auth.Personal("abc").WithValid(true),
		user: auth.User{Login: "octocat", Name: "The Octocat", Email: "octo@example.com"},
	}
	app := newApp(store, nav, disp, tel)
	t.Cleanup(app.Close)

	app.PresentInitialScreen(window{})
	if app.Strategy().Capability() != provider.Enhanced {
		t.Fatalf("personal token should derive Enhanced")
	}
	disp.flush()

	vm := nav.all()[0].vm.(*home.TabBarViewModel)
	t.Cleanup(vm.Close)
	if !vm.Authorized() {
		t.Fatalf("valid credential should be authorized")
	}
	if len(tel.identified) != 1 || tel.identified[0] != "octocat" || tel.traits[0]["email"] != "octo@example.com" {
		t.Fatalf("identify = %v %v", tel.identified, tel.traits)
	}
}

func TestPresentInitialScreen_NavigatorFailureIsLogged(t *testing.T) {
	t.Parallel()
	nav := &fakeNavigator{err: errors.New("no surface")}
	disp := &fakeDispatcher{}
	app := newApp(nil, nav, disp, nil)
	t.Cleanup(app.Close)
	app.PresentInitialScreen(window{})
	kit.MustNotPanic(t, disp.flush)
	vm := nav.all()[0].vm.(*home.TabBarViewModel)
	if vm.Go(func(context.Context) {}) {
		t.Fatalf("model of a failed presentation should be closed")
	}
}

func TestUpdateProvider_FollowsCredential(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	app := newApp(store, &fakeNavigator{}, &fakeDispatcher{}, nil)
	t.Cleanup(app.Close)

	if app.Strategy() != nil {
		t.Fatalf("strategy before first derivation")
	}
	first := app.UpdateProvider()
	if first.Capability() != provider.Baseline {
		t.Fatalf("anonymous = %v", first.Capability())
	}
	store.cred = auth.OAuth("gho_abc")
	second := app.UpdateProvider()
	if second.Capability() != provider.Enhanced || app.Strategy() != second {
		t.Fatalf("after login = %v", second.Capability())
	}
}

func TestPresentTestScreen(t *testing.T) {
	t.Parallel()
	nav := &fakeNavigator{}
	app := newApp(nil, nav, &fakeDispatcher{}, nil)
	t.Cleanup(app.Close)

	app.PresentTestScreen(window{}, "octocat")
	if len(nav.all()) != 0 {
		t.Fatalf("presented without a strategy")
	}
	app.UpdateProvider()
	app.PresentTestScreen(window{}, "octocat")
	calls := nav.all()
	if len(calls) != 1 || calls[0].scene != SceneUserDetails {
		t.Fatalf("calls = %+v", calls)
	}
	vm := calls[0].vm.(*repos.ViewModel)
	t.Cleanup(vm.Close)
	if vm.Login() != "octocat" {
		t.Fatalf("login = %q", vm.Login())
	}
}

type fakeWatcher struct{ ch chan auth.Credential }

func (w fakeWatcher) Changes(context.Context) (<-chan auth.Credential, error) { return w.ch, nil }

func TestWatchCredentials_Rederives(t *testing.T) {
	t.Parallel()
	app := newApp(nil, &fakeNavigator{}, &fakeDispatcher{}, nil)
	t.Cleanup(app.Close)
	app.UpdateProvider()

	ch := make(chan auth.Credential)
	done := make(chan error, 1)
	go func() { done <- app.WatchCredentials(context.Background(), fakeWatcher{ch}) }()

	ch <- auth.Personal("ghp_abc")
	kit.Eventually(t, time.Second, func() bool {
		return app.Strategy().Capability() == provider.Enhanced
	}, "login not picked up")

	ch <- auth.None()
	kit.Eventually(t, time.Second, func() bool {
		return app.Strategy().Capability() == provider.Baseline
	}, "logout not picked up")

	close(ch)
	if err := <-done; err != nil {
		t.Fatalf("WatchCredentials = %v", err)
	}
}

func TestBanners_ReportChangesOnly(t *testing.T) {
	t.Parallel()
	tel := &fakeTelemetry{}
	app := New(Deps{Telemetry: tel, Banners: true})

	if len(tel.attrs) != 0 {
		t.Fatalf("initial value must not be reported")
	}
	app.Banners().Accept(false)
	if v, ok := tel.attrs["ads_enabled"]; !ok || v != false {
		t.Fatalf("attrs = %v", tel.attrs)
	}
	app.Close()
	app.Close()
	if app.Banners().Subscribers() != 0 {
		t.Fatalf("Close kept the banner subscription")
	}
}

func TestLoop_RunsInOrder(t *testing.T) {
	t.Parallel()
	l := NewLoop()
	t.Cleanup(l.Stop)

	var (
		mu  sync.Mutex
		got []int
	)
	for i := range 3 {
		l.After(time.Duration(i)*5*time.Millisecond, func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	l.After(0, func() { panic("boom") })
	kit.Eventually(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, "callbacks did not run")
	if !slices.Equal(got, []int{0, 1, 2}) {
		t.Fatalf("order = %v", got)
	}
	kit.MustNotPanic(t, l.Stop)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SH_SESSION_STARTUP_DELAY", "1s")
	t.Setenv("SH_BANNERS_ENABLED", "false")
	c := LoadConfig(config.New().Prefix("SH_"))
	if c.StartupDelay != time.Second || c.BannersEnabled || c.AuthFile == "" {
		t.Fatalf("config = %+v", c)
	}
}

func TestLoadConfig_ZeroDelayPresentsImmediately(t *testing.T) {
	t.Setenv("SH_SESSION_STARTUP_DELAY", "0")
	c := LoadConfig(config.New().Prefix("SH_"))
	if c.StartupDelay != NoStartupDelay {
		t.Fatalf("StartupDelay = %v", c.StartupDelay)
	}

	nav, disp := &fakeNavigator{}, &fakeDispatcher{}
	app := New(Deps{
		Env:          provider.Environment{GitHubBaseURL: "https://api.example", TrendingBaseURL: "https://trending.example"},
		Navigator:    nav,
		Dispatcher:   disp,
		StartupDelay: c.StartupDelay,
	})
	t.Cleanup(app.Close)
	app.PresentInitialScreen(window{})
	if len(disp.delays) != 1 || disp.delays[0] != 0 {
		t.Fatalf("delays = %v", disp.delays)
	}
}

func TestPresentInitialScreen_ReportsPresentedScene(t *testing.T) {
	t.Parallel()
	nav, disp, tel := &fakeNavigator{}, &fakeDispatcher{}, &fakeTelemetry{}
	app := newApp(&fakeStore{}, nav, disp, tel)
	t.Cleanup(app.Close)

	app.PresentInitialScreen(window{})
	disp.flush()
	tel.mu.Lock()
	defer tel.mu.Unlock()
	if len(tel.events) != 1 || tel.events[0] != "screen_presented:tabs:baseline" {
		t.Fatalf("events = %v", tel.events)
	}
}

func TestNewSessionIDs(t *testing.T) {
	t.Parallel()
	a, b := New(Deps{}), New(Deps{})
	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("session ids %q %q", a.ID(), b.ID())
	}
}
