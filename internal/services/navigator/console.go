// Package navigator presents scenes on a terminal
package navigator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"swifthub/internal/core/apierr"
	"swifthub/internal/core/model"
	"swifthub/internal/core/session"
	perr "swifthub/internal/platform/errors"
	"swifthub/internal/services/home"
	"swifthub/internal/services/repos"
)

type closer interface{ Close() }

// Console is a Window and a Navigator writing to one terminal
type Console struct {
	mu   sync.Mutex
	out  io.Writer
	root closer
}

var (
	_ session.Window    = (*Console)(nil)
	_ session.Navigator = (*Console)(nil)
)

// NewConsole writes scenes to out
func NewConsole(out io.Writer) *Console { return &Console{out: out} }

// ID names the window
func (c *Console) ID() string { return "console" }

// Show renders vm. A root transition closes the previous root model
func (c *Console) Show(scene session.Scene, vm any, t session.Transition) error {
	var (
		own closer
		err error
	)
	switch m := vm.(type) {
	case *home.TabBarViewModel:
		own, err = m, c.showTabs(m)
	case *repos.ViewModel:
		own, err = m, c.showRepositories(m)
	default:
		return perr.InvalidArgf("scene %s: unsupported view model %T", scene, vm)
	}
	if err != nil {
		return err
	}

	if t.Kind == session.TransitionRoot {
		c.mu.Lock()
		prev := c.root
		c.root = own
		c.mu.Unlock()
		if prev != nil {
			prev.Close()
		}
	}
	return nil
}

// Close tears down the root model
func (c *Console) Close() {
	c.mu.Lock()
	prev := c.root
	c.root = nil
	c.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}

func (c *Console) printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, format, a...)
}

func (c *Console) showTabs(vm *home.TabBarViewModel) error {
	trigger := make(chan struct{}, 1)
	out := vm.Transform(home.Input{Trigger: trigger})
	vm.Bind(out.TabBarItems.Subscribe(func(items []home.TabItem) {
		if items == nil {
			return
		}
		names := make([]string, 0, len(items))
		for _, it := range items {
			names = append(names, it.String())
		}
		capability := "none"
		if s := vm.Strategy(); s != nil {
			capability = s.Capability().String()
		}
		c.printf("[%s] %s\n", capability, strings.Join(names, " | "))
	}))
	c.bindErrors(vm.Bind, vm.ParsedError.Subscribe)
	trigger <- struct{}{}
	close(trigger)
	return nil
}

func (c *Console) showRepositories(vm *repos.ViewModel) error {
	header := make(chan struct{}, 1)
	out := vm.Transform(repos.Input{HeaderRefresh: header})
	vm.Bind(out.Items.Subscribe(func(items []model.Repository) {
		if items == nil {
			return
		}
		for _, r := range items {
			c.printf("%-40s ★ %-6d %s\n", r.FullName, r.Stargazers, r.Language)
		}
	}))
	c.bindErrors(vm.Bind, out.Errors.Subscribe)
	header <- struct{}{}
	close(header)
	return nil
}

func (c *Console) bindErrors(bind func(func()), subscribe func(func(apierr.ApiError)) func()) {
	bind(subscribe(func(e apierr.ApiError) {
		c.printf("error: %s: %s\n", e.Title(), e.Description())
	}))
}

// Wait blocks until ctx is done and then closes the root model
func (c *Console) Wait(ctx context.Context) {
	<-ctx.Done()
	c.Close()
}
