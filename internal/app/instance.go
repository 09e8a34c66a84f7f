package app

import (
	"sync"

	"leakctl/internal/events"
	"leakctl/pkg/logging"
)

// Kind discriminates the two owner types the framework builds.
type Kind string

const (
	// KindApplication is a top-level application instance.
	KindApplication Kind = "application"
	// KindEngine is an engine instance mounted under an application.
	KindEngine Kind = "engine"
)

// Instance is an owner: the root of a subtree of services, components and
// listeners. Components register teardown functions on their owner; Destroy
// runs them in reverse order.
type Instance struct {
	kind       Kind
	name       string
	mountPoint string
	parent     *Instance

	mu            sync.Mutex
	registrations map[string]interface{}
	children      []*Instance
	teardown      []func()
	destroyed     bool
}

// Kind reports whether this is an application or an engine instance.
func (i *Instance) Kind() Kind { return i.kind }

// Name is the application or engine name the instance was built from.
func (i *Instance) Name() string { return i.name }

// MountPoint is the path an engine instance is mounted at; empty for
// applications.
func (i *Instance) MountPoint() string { return i.mountPoint }

// Parent returns the owning application of a mounted engine. The link is
// cut when the engine is destroyed.
func (i *Instance) Parent() *Instance {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.parent
}

// Register stores a service or component under name, replacing any previous
// registration.
func (i *Instance) Register(name string, v interface{}) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.registrations == nil {
		i.registrations = make(map[string]interface{})
	}
	i.registrations[name] = v
}

// Lookup returns the registration stored under name.
func (i *Instance) Lookup(name string) (interface{}, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	v, ok := i.registrations[name]
	return v, ok
}

// OnDestroy registers fn to run when the instance is destroyed.
func (i *Instance) OnDestroy(fn func()) {
	if fn == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return
	}
	i.teardown = append(i.teardown, fn)
}

// Children returns the engine instances mounted under this instance.
func (i *Instance) Children() []*Instance {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]*Instance, len(i.children))
	copy(out, i.children)
	return out
}

func (i *Instance) adopt(child *Instance) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.children = append(i.children, child)
}

// IsDestroyed reports whether Destroy has run.
func (i *Instance) IsDestroyed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.destroyed
}

// Destroy tears down mounted engines first, then runs this instance's teardown
// functions in reverse registration order and drops every registration.
// Destroying twice is a no-op.
func (i *Instance) Destroy() {
	i.mu.Lock()
	if i.destroyed {
		i.mu.Unlock()
		return
	}
	i.destroyed = true
	children := i.children
	teardown := i.teardown
	i.children = nil
	i.teardown = nil
	i.registrations = nil
	i.parent = nil
	i.mu.Unlock()

	for _, child := range children {
		child.Destroy()
	}
	for idx := len(teardown) - 1; idx >= 0; idx-- {
		runTeardown(i, teardown[idx])
	}

	events.Default.Publish(events.NewEvent(events.EventTypeOwnerDestroyed, i.name).
		WithPayload("kind", string(i.kind)).
		WithPayload("mountPoint", i.mountPoint))
}

func runTeardown(i *Instance, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("App", "teardown for %s %q panicked: %v", i.kind, i.name, r)
		}
	}()
	fn()
}
