package suite

import (
	"context"
	"fmt"
	"sync"

	"leakctl/internal/events"
	"leakctl/internal/harness"
	"leakctl/internal/leakcheck"
	"leakctl/pkg/logging"
)

// RunOptions configures Run.
type RunOptions struct {
	Strategy leakcheck.Strategy
	GCPasses int
	// Disabled runs the suites without leak detection.
	Disabled bool

	Harness  harness.Configuration
	Reporter harness.Reporter
	Metrics  *leakcheck.Metrics
	// Collector overrides host detection; mostly for tests.
	Collector leakcheck.Collector
	// Listeners, when set, is called with the runner before it starts so
	// callers can subscribe to test and module events.
	Listeners func(*harness.Runner)
}

// Owners are built through the process-wide factories, so only one run may
// be instrumented at a time.
var runMu sync.Mutex

// Run registers suites on a fresh runner, sets up leak detection with the
// chosen strategy and runs everything.
func Run(ctx context.Context, suites []*Suite, opts RunOptions) (*harness.SuiteResult, error) {
	if len(suites) == 0 {
		return nil, ErrNoTests
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = leakcheck.StrategyPerTest
	}

	runMu.Lock()
	defer runMu.Unlock()

	runner := harness.NewRunner(opts.Harness, opts.Reporter)
	for _, s := range suites {
		Register(runner, s)
	}
	if opts.Listeners != nil {
		opts.Listeners(runner)
	}

	detector := leakcheck.New(leakcheck.Options{
		Collector: opts.Collector,
		Disabled:  opts.Disabled,
		Passes:    opts.GCPasses,
		Metrics:   opts.Metrics,
	})
	defer func() {
		detector.Uninstall()
		if n := ReleaseRetained(); n > 0 {
			logging.Debug("Suite", "Released %d owner(s) retained by the run", n)
		}
		// Leaking fixtures leave listeners on the shared bus.
		events.Default.Reset()
	}()

	if !detector.Setup(leakcheck.ForRunner(runner), strategy) {
		return nil, fmt.Errorf("unknown leak detection strategy %q", strategy)
	}
	logging.Info("Suite", "Running %d suite(s) with %s leak detection (enabled=%t)", len(suites), strategy, detector.Enabled())

	return runner.Run(ctx)
}
