package app

import (
	"sync"
)

// BuildOptions are the inputs to an owner factory.
type BuildOptions struct {
	// Name of the application or engine being instantiated.
	Name string
	// MountPoint is the path an engine is mounted at. Defaults to Name for
	// engines and is ignored for applications.
	MountPoint string
	// Parent is the application instance an engine is mounted under.
	Parent *Instance
}

// BuildFunc constructs a new owner instance.
type BuildFunc func(BuildOptions) *Instance

// Hook observes every instance a Factory builds. Hooks run after the
// instance is fully constructed and before it is returned to the caller.
// Implementations must be comparable (typically pointer types) because
// AddHook deduplicates by value.
type Hook interface {
	Observe(*Instance)
}

// Factory is one of the framework's owner-construction entry points.
type Factory struct {
	kind  Kind
	build BuildFunc

	mu    sync.RWMutex
	hooks []Hook
}

// NewFactory creates a factory of the given kind around build.
func NewFactory(kind Kind, build BuildFunc) *Factory {
	return &Factory{kind: kind, build: build}
}

// Applications builds top-level application instances.
var Applications = NewFactory(KindApplication, buildApplication)

// Engines builds mounted engine instances.
var Engines = NewFactory(KindEngine, buildEngine)

// Kind returns the kind of instance this factory builds.
func (f *Factory) Kind() Kind { return f.kind }

// BuildInstance runs the factory's build logic, notifies every hook and
// returns the instance unchanged.
func (f *Factory) BuildInstance(opts BuildOptions) *Instance {
	inst := f.build(opts)

	f.mu.RLock()
	hooks := make([]Hook, len(f.hooks))
	copy(hooks, f.hooks)
	f.mu.RUnlock()

	for _, h := range hooks {
		h.Observe(inst)
	}
	return inst
}

// AddHook registers h. It returns false, leaving the factory unchanged, when h
// is nil or already registered.
func (f *Factory) AddHook(h Hook) bool {
	if h == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.hooks {
		if existing == h {
			return false
		}
	}
	f.hooks = append(f.hooks, h)
	return true
}

// RemoveHook unregisters h and reports whether it was registered.
func (f *Factory) RemoveHook(h Hook) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for idx, existing := range f.hooks {
		if existing == h {
			f.hooks = append(f.hooks[:idx], f.hooks[idx+1:]...)
			return true
		}
	}
	return false
}

// HookCount returns the number of registered hooks.
func (f *Factory) HookCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.hooks)
}

func buildApplication(opts BuildOptions) *Instance {
	name := opts.Name
	if name == "" {
		name = "application"
	}
	return &Instance{
		kind:          KindApplication,
		name:          name,
		registrations: make(map[string]interface{}),
	}
}

func buildEngine(opts BuildOptions) *Instance {
	mountPoint := opts.MountPoint
	if mountPoint == "" {
		mountPoint = opts.Name
	}
	inst := &Instance{
		kind:          KindEngine,
		name:          opts.Name,
		mountPoint:    mountPoint,
		parent:        opts.Parent,
		registrations: make(map[string]interface{}),
	}
	if opts.Parent != nil {
		opts.Parent.adopt(inst)
	}
	return inst
}
