package app

import (
	"fmt"
	"strings"
)

// Mount is one engine mounted by the router map.
type Mount struct {
	// Engine is the engine name.
	Engine string
	// Path is the mount point, without leading slash.
	Path string
}

// Router holds the route map of an application.
type Router struct {
	mounts []Mount
}

// MountOption customizes a Mount.
type MountOption func(*Mount)

// As mounts the engine under a different path than its name.
func As(path string) MountOption {
	return func(m *Mount) {
		m.Path = path
	}
}

// NewRouter creates an empty route map.
func NewRouter() *Router {
	return &Router{}
}

// Mount adds an engine to the route map. The mount point defaults to the
// engine name.
func (r *Router) Mount(engine string, opts ...MountOption) *Router {
	m := Mount{Engine: engine, Path: engine}
	for _, opt := range opts {
		opt(&m)
	}
	m.Path = strings.Trim(m.Path, "/")
	r.mounts = append(r.mounts, m)
	return r
}

// Mounts returns the mounted engines in declaration order.
func (r *Router) Mounts() []Mount {
	out := make([]Mount, len(r.mounts))
	copy(out, r.mounts)
	return out
}

// Validate rejects empty engine names and duplicate mount points.
func (r *Router) Validate() error {
	seen := make(map[string]string, len(r.mounts))
	for _, m := range r.mounts {
		if m.Engine == "" {
			return fmt.Errorf("router: mount with empty engine name")
		}
		if prev, ok := seen[m.Path]; ok {
			return fmt.Errorf("router: engines %q and %q both mounted at /%s", prev, m.Engine, m.Path)
		}
		seen[m.Path] = m.Engine
	}
	return nil
}
