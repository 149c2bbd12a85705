package session

import (
	"context"
	"time"
)

// Scene names a screen the navigator can present
type Scene uint8

const (
	// SceneTabs is the home tab bar
	SceneTabs Scene = iota
	// SceneUserDetails is a user's profile with its repositories
	SceneUserDetails
)

func (s Scene) String() string {
	switch s {
	case SceneTabs:
		return "tabs"
	case SceneUserDetails:
		return "user_details"
	default:
		return "unknown"
	}
}

// TransitionKind is how a scene is presented
type TransitionKind uint8

const (
	// TransitionRoot replaces the root of a window
	TransitionRoot TransitionKind = iota
	// TransitionPush pushes onto the current stack
	TransitionPush
	// TransitionModal presents over the current scene
	TransitionModal
)

// Transition describes where and how a scene is presented
type Transition struct {
	Kind   TransitionKind
	Window Window
}

// Root presents a scene as the root of w
func Root(w Window) Transition { return Transition{Kind: TransitionRoot, Window: w} }

// Window is the display surface scenes are presented on
type Window interface {
	ID() string
}

// Navigator presents scenes
type Navigator interface {
	Show(scene Scene, vm any, t Transition) error
}

// Telemetry receives identify calls, attribute updates and events.
// Implementations are best-effort and never fail the caller
type Telemetry interface {
	Identify(ctx context.Context, userID string, traits map[string]string)
	Set(ctx context.Context, key string, value any)
	Event(ctx context.Context, name string, props map[string]any)
}

// Dispatcher runs work on the context that owns presentation
type Dispatcher interface {
	After(d time.Duration, fn func())
}
