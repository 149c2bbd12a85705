// Package login contains the personal access token sign in model
package login

import (
	"context"
	"strings"
	"sync"

	"swifthub/internal/core/apierr"
	"swifthub/internal/core/auth"
	"swifthub/internal/core/model"
	"swifthub/internal/core/provider"
	"swifthub/internal/core/signal"
	"swifthub/internal/core/viewmodel"
	perr "swifthub/internal/platform/errors"
	"swifthub/internal/platform/net/http/bind"
)

// Deps are the collaborators of the sign in flow
type Deps struct {
	Env      provider.Environment
	Selector provider.Selector
	Writer   auth.Writer
	// Reevaluate re-derives the session strategy after the credential changed
	Reevaluate func()
}

// Input is the sign in intents
type Input struct {
	PersonalToken <-chan string
	LoginTap      <-chan struct{}
}

// Output is the sign in state
type Output struct {
	LoginEnabled *signal.Relay[bool]
	LoggedIn     *signal.Subject[model.User]
	Loading      *signal.Relay[bool]
	Errors       *signal.Subject[apierr.ApiError]
}

// ViewModel signs in with a personal access token
type ViewModel struct {
	*viewmodel.Base
	deps     Deps
	enabled  *signal.Relay[bool]
	loggedIn *signal.Subject[model.User]

	mu    sync.Mutex
	token string
}

var _ viewmodel.Type[Input, Output] = (*ViewModel)(nil)

type form struct {
	Token string `json:"token" validate:"required,ghtoken"`
}

// New builds the sign in model. Unclassifiable failures (bad token shape,
// network errors) are surfaced on the structured error stream
func New(strategy provider.Strategy, deps Deps, opts ...viewmodel.Option) *ViewModel {
	opts = append([]viewmodel.Option{
		viewmodel.WithName("login"),
		viewmodel.WithParser(apierr.Parser{FallbackUnknown: true}),
	}, opts...)
	return &ViewModel{
		Base:     viewmodel.New(strategy, opts...),
		deps:     deps,
		enabled:  signal.NewRelay(false),
		loggedIn: signal.NewSubject[model.User](),
	}
}

// SetToken stores the candidate token and updates LoginEnabled
func (vm *ViewModel) SetToken(token string) {
	token = strings.TrimSpace(token)
	vm.mu.Lock()
	vm.token = token
	vm.mu.Unlock()
	vm.enabled.Accept(bind.Struct(form{Token: token}) == nil)
}

// Token returns the candidate token
func (vm *ViewModel) Token() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.token
}

// Transform runs the sign in intents on the model's scope
func (vm *ViewModel) Transform(in Input) Output {
	out := Output{
		LoginEnabled: vm.enabled,
		LoggedIn:     vm.loggedIn,
		Loading:      vm.Loading.Busy(),
		Errors:       vm.ParsedError,
	}
	tokens, taps := in.PersonalToken, in.LoginTap
	vm.Go(func(ctx context.Context) {
		for tokens != nil || taps != nil {
			select {
			case <-ctx.Done():
				return
			case tok, ok := <-tokens:
				if !ok {
					tokens = nil
					continue
				}
				vm.SetToken(tok)
			case _, ok := <-taps:
				if !ok {
					taps = nil
					continue
				}
				_, _ = vm.Login(ctx)
			}
		}
	})
	return out
}

// Login checks the candidate token against the viewer endpoint, persists it and
// asks the session to re-derive its strategy. ok is false on any failure; the
// failure itself goes to the error stream
func (vm *ViewModel) Login(ctx context.Context) (model.User, bool) {
	token := vm.Token()
	if err := bind.Struct(form{Token: token}); err != nil {
		vm.Error.Observe(err)
		return model.User{}, false
	}

	cred := auth.Personal(token)
	candidate := vm.deps.Selector.Select(vm.deps.Env, cred)
	user, ok := viewmodel.Fetch(ctx, vm.Base, func(ctx context.Context) (model.User, error) {
		u, err := candidate.Viewer(ctx)
		if err != nil {
			return u, err
		}
		if vm.deps.Writer == nil {
			return u, perr.Configf("no credential writer")
		}
		err = vm.deps.Writer.Save(ctx, cred.WithValid(true), auth.User{Login: u.Login, Name: u.Name, Email: u.Email})
		return u, perr.WrapIf(err, perr.ErrorCodeUnavailable, "save credential")
	})
	if !ok {
		return model.User{}, false
	}

	if vm.deps.Reevaluate != nil {
		vm.deps.Reevaluate()
	}
	vm.loggedIn.Emit(user)
	return user, true
}
