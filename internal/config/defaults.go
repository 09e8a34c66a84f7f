package config

import (
	"leakctl/internal/leakcheck"
)

// GetDefaultConfig returns the built-in configuration.
func GetDefaultConfig() LeakctlConfig {
	return LeakctlConfig{
		Strategy: string(leakcheck.StrategyPerTest),
		GCPasses: leakcheck.MinPasses,
		Output:   OutputText,
	}
}
