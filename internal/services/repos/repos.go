// Package repos contains the repository list presentation model used for
// search results and a user's repositories
package repos

import (
	"context"
	"sync"

	"swifthub/internal/core/apierr"
	"swifthub/internal/core/model"
	"swifthub/internal/core/provider"
	"swifthub/internal/core/signal"
	"swifthub/internal/core/viewmodel"
)

// Mode selects what the list shows
type Mode uint8

const (
	// ModeSearch lists repository search hits for a keyword
	ModeSearch Mode = iota
	// ModeUser lists the repositories of one user
	ModeUser
)

// Input is the list intents
type Input struct {
	HeaderRefresh <-chan struct{}
	FooterRefresh <-chan struct{}
	// Keyword replaces the search query and refreshes. Ignored in ModeUser
	Keyword <-chan string
}

// Output is the list state
type Output struct {
	Items         *signal.Relay[[]model.Repository]
	HasMore       *signal.Relay[bool]
	HeaderLoading *signal.Relay[bool]
	FooterLoading *signal.Relay[bool]
	Errors        *signal.Subject[apierr.ApiError]
}

// ViewModel is the repository list model
type ViewModel struct {
	*viewmodel.Base
	mode  Mode
	items *signal.Relay[[]model.Repository]
	more  *signal.Relay[bool]

	mu    sync.Mutex
	query string
	login string
}

var _ viewmodel.Type[Input, Output] = (*ViewModel)(nil)

// NewSearch builds a list of search hits for query
func NewSearch(strategy provider.Strategy, query string, opts ...viewmodel.Option) *ViewModel {
	vm := newViewModel(strategy, ModeSearch, "repos.search", opts)
	vm.query = query
	return vm
}

// NewUserRepositories builds a list of login's repositories
func NewUserRepositories(strategy provider.Strategy, login string, opts ...viewmodel.Option) *ViewModel {
	vm := newViewModel(strategy, ModeUser, "repos.user", opts)
	vm.login = login
	return vm
}

func newViewModel(strategy provider.Strategy, mode Mode, name string, opts []viewmodel.Option) *ViewModel {
	opts = append([]viewmodel.Option{viewmodel.WithName(name)}, opts...)
	return &ViewModel{
		Base:  viewmodel.New(strategy, opts...),
		mode:  mode,
		items: signal.NewRelay[[]model.Repository](nil),
		more:  signal.NewRelay(false),
	}
}

// Mode returns the list mode
func (vm *ViewModel) Mode() Mode { return vm.mode }

// Query returns the current search keyword
func (vm *ViewModel) Query() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.query
}

// Login returns the user whose repositories are listed
func (vm *ViewModel) Login() string { return vm.login }

// Items returns the list contents
func (vm *ViewModel) Items() *signal.Relay[[]model.Repository] { return vm.items }

// Transform runs the list intents on the model's scope
func (vm *ViewModel) Transform(in Input) Output {
	out := Output{
		Items:         vm.items,
		HasMore:       vm.more,
		HeaderLoading: vm.HeaderLoading.Busy(),
		FooterLoading: vm.FooterLoading.Busy(),
		Errors:        vm.ParsedError,
	}
	header, footer, keyword := in.HeaderRefresh, in.FooterRefresh, in.Keyword
	vm.Go(func(ctx context.Context) {
		for header != nil || footer != nil || keyword != nil {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-header:
				if !ok {
					header = nil
					continue
				}
				vm.Refresh(ctx)
			case _, ok := <-footer:
				if !ok {
					footer = nil
					continue
				}
				vm.LoadMore(ctx)
			case q, ok := <-keyword:
				if !ok {
					keyword = nil
					continue
				}
				if vm.mode != ModeSearch {
					continue
				}
				vm.mu.Lock()
				vm.query = q
				vm.mu.Unlock()
				vm.Refresh(ctx)
			}
		}
	})
	return out
}

// Refresh resets the cursor and replaces the items with the first page
func (vm *ViewModel) Refresh(ctx context.Context) bool {
	vm.ResetPage()
	pg, ok := viewmodel.Header(ctx, vm.Base, func(ctx context.Context) (page, error) {
		return vm.fetch(ctx, vm.Page())
	})
	if !ok {
		return false
	}
	vm.items.Accept(pg.items)
	vm.more.Accept(pg.hasMore(0))
	return true
}

// LoadMore appends the next page; the cursor advances only on success
func (vm *ViewModel) LoadMore(ctx context.Context) bool {
	if vm.mode == ModeSearch && vm.Query() == "" {
		return false
	}
	pg, ok := viewmodel.Footer(ctx, vm.Base, vm.fetch)
	if !ok {
		return false
	}
	cur := vm.items.Value()
	next := make([]model.Repository, 0, len(cur)+len(pg.items))
	next = append(append(next, cur...), pg.items...)
	vm.items.Accept(next)
	vm.more.Accept(pg.hasMore(len(cur)))
	return true
}

// page is one list answer. total is -1 when the endpoint reports no count,
// in which case only a full page promises another one
type page struct {
	items []model.Repository
	total int
	size  int
}

// hasMore reports whether another page exists after prior items and this page
func (p page) hasMore(prior int) bool {
	if p.total >= 0 {
		return prior+len(p.items) < p.total
	}
	if p.size > 0 {
		return len(p.items) >= p.size
	}
	return len(p.items) > 0
}

func (vm *ViewModel) fetch(ctx context.Context, n int) (page, error) {
	s := vm.Strategy()
	switch vm.mode {
	case ModeSearch:
		q := vm.Query()
		if q == "" {
			return page{total: 0}, nil
		}
		res, err := s.SearchRepositories(ctx, q, n)
		if err != nil {
			return page{}, err
		}
		return page{items: res.Items, total: res.TotalCount}, nil
	case ModeUser:
		items, err := s.UserRepositories(ctx, vm.login, n)
		if err != nil {
			return page{}, err
		}
		return page{items: items, total: -1, size: s.PageSize()}, nil
	}
	return page{total: 0}, nil
}
