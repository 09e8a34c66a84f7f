package leakcheck

import (
	"sync"

	"leakctl/internal/app"
	"leakctl/pkg/logging"
)

// Strategy selects when checkpoints run.
type Strategy string

const (
	// StrategyPerTest checks after every test and fails the test itself.
	StrategyPerTest Strategy = "per-test"
	// StrategyPerModule checks after every module.
	StrategyPerModule Strategy = "per-module"
	// StrategyAfterAll checks once, after the last module.
	StrategyAfterAll Strategy = "after-all"
)

// Strategies lists the supported strategies.
func Strategies() []Strategy {
	return []Strategy{StrategyPerTest, StrategyPerModule, StrategyAfterAll}
}

// Options configures a Detector.
type Options struct {
	// Collector forces collection. When nil DetectHost is used.
	Collector Collector
	// Disabled turns the detector into a no-op regardless of the host.
	Disabled bool
	// Passes is the number of collection cycles per checkpoint, at least
	// MinPasses.
	Passes int
	// Registry defaults to a new registry.
	Registry *Registry
	// Factories are instrumented on setup; defaults to app.Applications and
	// app.Engines.
	Factories []*app.Factory
	// Metrics is optional.
	Metrics *Metrics
}

type setupKey struct {
	fw       Framework
	strategy Strategy
}

// Detector wires a registry, a trigger and a tracker hook to a framework.
type Detector struct {
	registry  *Registry
	trigger   *Trigger
	tracker   *tracker
	factories []*app.Factory
	metrics   *Metrics

	mu         sync.Mutex
	source     Framework
	setups     map[setupKey]bool
	warnedOnce sync.Once
}

// New creates a detector.
func New(opts Options) *Detector {
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	collector := opts.Collector
	if collector == nil {
		collector = DetectHost()
	}
	if opts.Disabled {
		collector = nil
	}
	factories := opts.Factories
	if factories == nil {
		factories = []*app.Factory{app.Applications, app.Engines}
	}

	d := &Detector{
		registry: registry,
		trigger: &Trigger{
			Collector: collector,
			Registry:  registry,
			Passes:    opts.Passes,
			Metrics:   opts.Metrics,
		},
		factories: factories,
		metrics:   opts.Metrics,
		setups:    make(map[setupKey]bool),
	}
	d.tracker = &tracker{detector: d}
	return d
}

// Enabled reports whether the host can force collection.
func (d *Detector) Enabled() bool {
	return d.trigger.Collector != nil
}

// Registry returns the registry the tracker records into.
func (d *Detector) Registry() *Registry { return d.registry }

// Trigger returns the detector's collection trigger.
func (d *Detector) Trigger() *Trigger { return d.trigger }

// Installed reports whether the tracker hook is registered on the factories.
func (d *Detector) Installed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tracker.installed
}

// SetupPerTestLeakDetection checks for leaks when each test finishes and
// reports them as failures of that test.
func (d *Detector) SetupPerTestLeakDetection(fw Framework) {
	if !d.setup(fw, StrategyPerTest) {
		return
	}
	fw.OnTestStart(func(t Test) {
		t.WrapFinish(func(next func()) func() {
			return func() {
				t.ReleaseEnvironment()
				leaks := d.trigger.CollectAndScan()
				d.metrics.observeCheck(StrategyPerTest, leaks)
				ReportToTest(t, leaks)
				next()
			}
		})
	})
}

// SetupPerModuleLeakDetection checks for leaks when each module ends and
// reports them in a synthesized module.
func (d *Detector) SetupPerModuleLeakDetection(fw Framework) {
	if !d.setup(fw, StrategyPerModule) {
		return
	}
	fw.OnTestStart(releaseOnFinish)
	fw.OnModuleEnd(func(string) {
		leaks := d.trigger.CollectAndScan()
		d.metrics.observeCheck(StrategyPerModule, leaks)
		ReportAsModule(fw, leaks)
	})
}

// SetupAfterAllTestsOwnerLeakDetection checks for leaks once, when the last
// queued module ends, and reports them in a synthesized module. The check
// runs at module end rather than run end because results can no longer be
// added once the run is over.
func (d *Detector) SetupAfterAllTestsOwnerLeakDetection(fw Framework) {
	if !d.setup(fw, StrategyAfterAll) {
		return
	}
	fw.OnTestStart(releaseOnFinish)
	fw.OnModuleEnd(func(string) {
		if fw.QueueLength() != 0 {
			return
		}
		leaks := d.trigger.CollectAndScan()
		d.metrics.observeCheck(StrategyAfterAll, leaks)
		ReportAsModule(fw, leaks)
	})
}

// Setup dispatches to the setup function of strategy.
func (d *Detector) Setup(fw Framework, strategy Strategy) bool {
	switch strategy {
	case StrategyPerTest:
		d.SetupPerTestLeakDetection(fw)
	case StrategyPerModule:
		d.SetupPerModuleLeakDetection(fw)
	case StrategyAfterAll:
		d.SetupAfterAllTestsOwnerLeakDetection(fw)
	default:
		return false
	}
	return true
}

// Check forces collection and drains the registry outside of any strategy.
func (d *Detector) Check() Leaks {
	return d.trigger.CollectAndScan()
}

// Uninstall removes the tracker hook from the factories and forgets every
// setup. Listeners already registered on frameworks stay in place.
func (d *Detector) Uninstall() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tracker.installed {
		for _, f := range d.factories {
			f.RemoveHook(d.tracker)
		}
		d.tracker.installed = false
	}
	d.source = nil
	d.setups = make(map[setupKey]bool)
	d.registry.ScanAndDrain()
}

// setup instruments the factories and reports whether strategy still needs
// its listeners on fw.
func (d *Detector) setup(fw Framework, strategy Strategy) bool {
	if !d.Enabled() {
		d.warnedOnce.Do(func() {
			logging.Debug("LeakCheck", "Manual garbage collection unavailable, owner leak detection disabled")
		})
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.source = fw
	if !d.tracker.installed {
		for _, f := range d.factories {
			f.AddHook(d.tracker)
		}
		d.tracker.installed = true
	}

	key := setupKey{fw: fw, strategy: strategy}
	if d.setups[key] {
		return false
	}
	d.setups[key] = true
	logging.Debug("LeakCheck", "Owner leak detection set up (%s, %d collection passes)",
		strategy, d.trigger.EffectivePasses())
	return true
}

func (d *Detector) currentTestID() string {
	d.mu.Lock()
	fw := d.source
	d.mu.Unlock()
	if fw == nil {
		return ""
	}
	return fw.CurrentTestID()
}

func releaseOnFinish(t Test) {
	t.WrapFinish(func(next func()) func() {
		return func() {
			t.ReleaseEnvironment()
			next()
		}
	})
}

// tracker is the hook observing owner construction.
type tracker struct {
	detector  *Detector
	installed bool
}

func (tr *tracker) Observe(owner *app.Instance) {
	tr.detector.registry.Record(owner, tr.detector.currentTestID())
	tr.detector.metrics.observeTracked(kindOf(owner))
}

var (
	defaultOnce     sync.Once
	defaultDetector *Detector
)

// Default returns the process-wide detector, created on first use with the
// host collector and the app factories.
func Default() *Detector {
	defaultOnce.Do(func() {
		defaultDetector = New(Options{})
	})
	return defaultDetector
}

// SetupPerTestLeakDetection sets up per-test detection on the default
// detector.
func SetupPerTestLeakDetection(fw Framework) {
	Default().SetupPerTestLeakDetection(fw)
}

// SetupPerModuleLeakDetection sets up per-module detection on the default
// detector.
func SetupPerModuleLeakDetection(fw Framework) {
	Default().SetupPerModuleLeakDetection(fw)
}

// SetupAfterAllTestsOwnerLeakDetection sets up end-of-run detection on the
// default detector.
func SetupAfterAllTestsOwnerLeakDetection(fw Framework) {
	Default().SetupAfterAllTestsOwnerLeakDetection(fw)
}
