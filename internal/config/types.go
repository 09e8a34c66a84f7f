package config

import (
	"errors"
	"fmt"
	"slices"

	"leakctl/internal/leakcheck"
)

var (
	// ErrInvalidStrategy is returned for an unknown leak detection strategy.
	ErrInvalidStrategy = errors.New("invalid leak detection strategy")
	// ErrInvalidOutput is returned for an unknown output format.
	ErrInvalidOutput = errors.New("invalid output format")
)

// Output formats understood by `leakctl run`.
const (
	OutputText  = "text"
	OutputQuiet = "quiet"
	OutputJSON  = "json"
)

// LeakctlConfig is the top-level configuration structure for leakctl.
type LeakctlConfig struct {
	// Strategy is one of per-test, per-module or after-all.
	Strategy string `yaml:"strategy,omitempty"`
	// GCPasses is the number of forced collections per checkpoint (minimum 3).
	GCPasses int `yaml:"gcPasses,omitempty"`
	// Disabled turns owner leak detection off.
	Disabled bool `yaml:"disabled,omitempty"`
	// Output is text, quiet or json.
	Output string `yaml:"output,omitempty"`
	// ReportPath is a directory detailed JSON reports are written to.
	ReportPath string `yaml:"reportPath,omitempty"`
	// MetricsFile receives detector metrics in Prometheus text format.
	MetricsFile string `yaml:"metricsFile,omitempty"`
	// FailFast stops the run after the first failing test.
	FailFast bool `yaml:"failFast,omitempty"`
	// Verbose enables detailed reporter output.
	Verbose bool `yaml:"verbose,omitempty"`
	// RequireAssertions fails tests that run no assertion.
	RequireAssertions bool `yaml:"requireAssertions,omitempty"`
	// Suites lists suite files run when none is given on the command line.
	Suites []string `yaml:"suites,omitempty"`
}

// ParseStrategy converts s into a leakcheck strategy.
func ParseStrategy(s string) (leakcheck.Strategy, error) {
	strategy := leakcheck.Strategy(s)
	if !slices.Contains(leakcheck.Strategies(), strategy) {
		return "", fmt.Errorf("%w: %q (expected one of %v)", ErrInvalidStrategy, s, leakcheck.Strategies())
	}
	return strategy, nil
}

// Validate checks the merged configuration.
func (c LeakctlConfig) Validate() error {
	if _, err := ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if c.GCPasses < 0 || c.GCPasses > leakcheck.MaxPasses {
		return fmt.Errorf("gcPasses must be between 0 and %d, got %d", leakcheck.MaxPasses, c.GCPasses)
	}
	switch c.Output {
	case OutputText, OutputQuiet, OutputJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutput, c.Output)
	}
	return nil
}
