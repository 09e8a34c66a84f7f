package app

import (
	"fmt"

	"leakctl/internal/events"
	"leakctl/pkg/logging"
)

// Application is an application definition. Each Boot produces a fresh owner
// instance through the Applications factory and one engine instance per
// mounted engine through the Engines factory.
type Application struct {
	config *Config
	router *Router
}

// NewApplication creates an application from its configuration.
func NewApplication(cfg *Config) (*Application, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	router := NewRouter()
	if cfg.Routes != nil {
		cfg.Routes(router)
	}
	if err := router.Validate(); err != nil {
		return nil, fmt.Errorf("invalid route map for %q: %w", cfg.Name, err)
	}
	return &Application{config: cfg, router: router}, nil
}

// Name returns the application name.
func (a *Application) Name() string { return a.config.Name }

// Router returns the application's route map.
func (a *Application) Router() *Router { return a.router }

// Boot builds an application instance and mounts every engine of the route
// map under it.
func (a *Application) Boot() *Instance {
	inst := Applications.BuildInstance(BuildOptions{Name: a.config.Name})

	for _, m := range a.router.Mounts() {
		a.MountEngine(inst, m.Engine, m.Path)
	}

	logging.Debug("App", "booted %q with %d engine(s)", inst.Name(), len(inst.Children()))
	events.Default.Publish(events.NewEvent(events.EventTypeOwnerBooted, inst.Name()))
	return inst
}

// MountEngine builds an engine instance under parent at path.
func (a *Application) MountEngine(parent *Instance, engine, path string) *Instance {
	return Engines.BuildInstance(BuildOptions{
		Name:       engine,
		MountPoint: path,
		Parent:     parent,
	})
}
