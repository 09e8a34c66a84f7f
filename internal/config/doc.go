// Package config provides configuration management for leakctl.
//
// This package implements a layered configuration system. Configuration is
// loaded from multiple sources and merged in a specific order, with later
// sources overriding earlier ones.
//
// # Configuration Layers
//
//  1. Default Configuration (GetDefaultConfig)
//     - per-test strategy, three collection passes, text output
//
//  2. User Configuration (~/.config/leakctl/config.yaml)
//     - personal preferences that apply to every project
//
//  3. Project Configuration (./.leakctl/config.yaml)
//     - settings shared by a team through version control
//
// A layer only overrides the keys it sets; unknown keys are rejected.
// Command line flags of `leakctl run` override the merged result.
//
// # Configuration Structure
//
//	strategy: per-module      # per-test, per-module or after-all
//	gcPasses: 5               # forced collections per checkpoint, minimum 3
//	disabled: false           # turn owner leak detection off
//	output: text              # text, quiet or json
//	reportPath: ./reports     # detailed JSON reports
//	metricsFile: leakctl.prom # Prometheus textfile export
//	failFast: false
//	verbose: false
//	requireAssertions: false
//	suites:
//	  - ./leak-suites/rendering.yaml
package config
