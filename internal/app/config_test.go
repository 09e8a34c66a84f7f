package app

import (
	"testing"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name       string
		appName    string
		routes     func(r *Router)
		wantMounts int
	}{
		{
			name:       "no routes",
			appName:    "mem-leak-app",
			routes:     nil,
			wantMounts: 0,
		},
		{
			name:    "single engine",
			appName: "mem-leak-app",
			routes: func(r *Router) {
				r.Mount("whatever")
			},
			wantMounts: 1,
		},
		{
			name:    "two engines",
			appName: "dashboard",
			routes: func(r *Router) {
				r.Mount("billing").Mount("admin", As("/settings/"))
			},
			wantMounts: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(tt.appName, tt.routes)

			if cfg.Name != tt.appName {
				t.Errorf("Name = %v, want %v", cfg.Name, tt.appName)
			}

			application, err := NewApplication(cfg)
			if err != nil {
				t.Fatalf("NewApplication() error = %v", err)
			}
			if got := len(application.Router().Mounts()); got != tt.wantMounts {
				t.Errorf("mounts = %d, want %d", got, tt.wantMounts)
			}
		})
	}
}

func TestNewApplication_NilConfig(t *testing.T) {
	application, err := NewApplication(nil)
	if err != nil {
		t.Fatalf("NewApplication(nil) error = %v", err)
	}
	if application.Name() != "" {
		t.Errorf("Name() = %q, want empty", application.Name())
	}
}
