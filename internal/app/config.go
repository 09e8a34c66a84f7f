package app

// Config holds the application definition used to boot instances.
type Config struct {
	// Name of the application.
	Name string

	// Routes builds the route map; engines mounted here are instantiated
	// on every boot.
	Routes func(r *Router)
}

// NewConfig creates an application configuration with the given route map.
func NewConfig(name string, routes func(r *Router)) *Config {
	return &Config{
		Name:   name,
		Routes: routes,
	}
}
