// Package components provides the fixture components rendered inside owner
// instances. They differ only in how they treat the listener they subscribe to
// the process-wide event bus: LeakingComponent never removes it, so its owner
// stays reachable after teardown; CleanComponent removes it on destroy.
package components

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"leakctl/internal/app"
	"leakctl/internal/events"
)

// Component is something rendered into an owner.
type Component interface {
	Name() string
	Destroy()
}

// Constructor renders a component into owner.
type Constructor func(owner *app.Instance, bus *events.Bus) Component

// ErrUnknownComponent is returned by Render for unregistered names.
var ErrUnknownComponent = errors.New("unknown component")

var (
	mu           sync.RWMutex
	constructors = map[string]Constructor{
		LeakingName: newLeaking,
		CleanName:   newClean,
		StaticName:  newStatic,
	}
)

// Register makes a constructor available to Render under name.
func Register(name string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	constructors[name] = ctor
}

// Names lists the registered component names.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render instantiates the named component inside owner, registers it on the
// owner and ties its teardown to the owner's destruction.
func Render(owner *app.Instance, name string) (Component, error) {
	return RenderOn(owner, events.Default, name)
}

// RenderOn is Render with an explicit event bus.
func RenderOn(owner *app.Instance, bus *events.Bus, name string) (Component, error) {
	if owner == nil {
		return nil, fmt.Errorf("render %q: nil owner", name)
	}
	mu.RLock()
	ctor, ok := constructors[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}

	c := ctor(owner, bus)
	owner.Register("component:"+name, c)
	owner.OnDestroy(c.Destroy)

	bus.Publish(events.NewEvent(events.EventTypeComponentRendered, name))
	return c, nil
}
