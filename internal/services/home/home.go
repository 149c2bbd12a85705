// Package home contains the tab bar presentation model shown as the initial screen
package home

import (
	"context"
	"slices"

	"swifthub/internal/core/provider"
	"swifthub/internal/core/signal"
	"swifthub/internal/core/viewmodel"
)

// TabItem is one entry of the home tab bar
type TabItem uint8

const (
	// TabNews is the activity feed of the signed in account
	TabNews TabItem = iota
	// TabSearch is repository and user search
	TabSearch
	// TabNotifications is the notifications inbox
	TabNotifications
	// TabSettings is the settings screen
	TabSettings
	// TabLogin is the sign in screen
	TabLogin
)

func (t TabItem) String() string {
	switch t {
	case TabNews:
		return "News"
	case TabSearch:
		return "Search"
	case TabNotifications:
		return "Notifications"
	case TabSettings:
		return "Settings"
	case TabLogin:
		return "Login"
	default:
		return "Unknown"
	}
}

var (
	authorizedTabs = []TabItem{TabNews, TabSearch, TabNotifications, TabSettings}
	anonymousTabs  = []TabItem{TabSearch, TabLogin, TabSettings}
)

// Tabs returns the tab set for the authorization state
func Tabs(authorized bool) []TabItem {
	if authorized {
		return slices.Clone(authorizedTabs)
	}
	return slices.Clone(anonymousTabs)
}

// Input is the tab bar intents
type Input struct {
	// Trigger asks for the tab items, usually once when the screen appears
	Trigger <-chan struct{}
}

// Output is the tab bar state
type Output struct {
	TabBarItems *signal.Relay[[]TabItem]
}

// TabBarViewModel decides which tabs are shown
type TabBarViewModel struct {
	*viewmodel.Base
	authorized bool
}

var _ viewmodel.Type[Input, Output] = (*TabBarViewModel)(nil)

// NewTabBarViewModel builds the tab bar model for the authorization state
func NewTabBarViewModel(authorized bool, strategy provider.Strategy, opts ...viewmodel.Option) *TabBarViewModel {
	opts = append([]viewmodel.Option{viewmodel.WithName("home")}, opts...)
	return &TabBarViewModel{Base: viewmodel.New(strategy, opts...), authorized: authorized}
}

// Authorized reports the authorization state the model was built with
func (vm *TabBarViewModel) Authorized() bool { return vm.authorized }

// Transform emits the tab items on every trigger until the trigger closes or
// the model is closed
func (vm *TabBarViewModel) Transform(in Input) Output {
	out := Output{TabBarItems: signal.NewRelay[[]TabItem](nil)}
	if in.Trigger == nil {
		return out
	}
	vm.Go(func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-in.Trigger:
				if !ok {
					return
				}
				out.TabBarItems.Accept(Tabs(vm.authorized))
			}
		}
	})
	return out
}
