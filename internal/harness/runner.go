package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"leakctl/pkg/logging"

	"github.com/google/uuid"
)

// ModuleBuilder collects the hooks and tests of a module.
type ModuleBuilder struct {
	module *module
	tests  []*Test
}

// Before registers a hook that runs once, before the module's first test.
func (b *ModuleBuilder) Before(fn HookFunc) { b.module.before = append(b.module.before, fn) }

// BeforeEach registers a hook that runs before every test of the module.
func (b *ModuleBuilder) BeforeEach(fn HookFunc) {
	b.module.beforeEach = append(b.module.beforeEach, fn)
}

// AfterEach registers a hook that runs after every test of the module.
func (b *ModuleBuilder) AfterEach(fn HookFunc) {
	b.module.afterEach = append(b.module.afterEach, fn)
}

// After registers a hook that runs once, after the module's last test.
func (b *ModuleBuilder) After(fn HookFunc) { b.module.after = append(b.module.after, fn) }

// IgnoreFailFast lets the module's tests run after a failure stopped the
// run. Cancellation still skips them.
func (b *ModuleBuilder) IgnoreFailFast() { b.module.ignoreFailFast = true }

// Test adds a test to the module.
func (b *ModuleBuilder) Test(name string, fn TestFunc) {
	b.tests = append(b.tests, &Test{module: b.module, name: name, fn: fn})
}

type module struct {
	name string

	before     []HookFunc
	beforeEach []HookFunc
	afterEach  []HookFunc
	after      []HookFunc

	ignoreFailFast bool

	remaining int
	started   bool
	startTime time.Time
	result    ModuleResult
}

// Runner executes queued tests one at a time.
type Runner struct {
	config   Configuration
	reporter Reporter

	mu      sync.Mutex
	queue   []*Test
	current *Test
	running bool

	result  *SuiteResult
	stopped bool

	testStart   []func(*Test)
	testEnd     []func(TestRunResult)
	moduleStart []func(string)
	moduleEnd   []func(ModuleResult)
	runEnd      []func(*SuiteResult)
}

// NewRunner creates a runner. A nil reporter discards all output.
func NewRunner(config Configuration, reporter Reporter) *Runner {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Runner{config: config, reporter: reporter}
}

// Config returns the runner configuration.
func (r *Runner) Config() Configuration { return r.config }

// Module defines a module and appends its tests to the queue. It may be
// called while the runner is running, including from OnModuleEnd listeners;
// the new tests run before OnRunEnd fires.
func (r *Runner) Module(name string, define func(m *ModuleBuilder)) {
	b := &ModuleBuilder{module: &module{name: name, result: ModuleResult{Name: name}}}
	if define != nil {
		define(b)
	}
	if len(b.tests) == 0 {
		logging.Debug("Harness", "Module %q has no tests, skipping", name)
		return
	}
	b.module.remaining = len(b.tests)

	r.mu.Lock()
	r.queue = append(r.queue, b.tests...)
	r.mu.Unlock()
}

// QueueLength returns the number of tests that have not started yet.
func (r *Runner) QueueLength() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Current returns the running test, or nil between tests.
func (r *Runner) Current() *Test {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// CurrentTestID returns the id of the running test, or "" between tests.
func (r *Runner) CurrentTestID() string {
	if t := r.Current(); t != nil {
		return t.ID()
	}
	return ""
}

// OnTestStart registers fn to be called when a test starts, before any of
// its hooks. fn may wrap the test's finish step.
func (r *Runner) OnTestStart(fn func(*Test)) { r.testStart = append(r.testStart, fn) }

// OnTestEnd registers fn to be called with every recorded test result.
func (r *Runner) OnTestEnd(fn func(TestRunResult)) { r.testEnd = append(r.testEnd, fn) }

// OnModuleStart registers fn to be called before a module's first test.
func (r *Runner) OnModuleStart(fn func(string)) { r.moduleStart = append(r.moduleStart, fn) }

// OnModuleEnd registers fn to be called after a module's last test was
// recorded, whether it ran or was skipped.
func (r *Runner) OnModuleEnd(fn func(ModuleResult)) { r.moduleEnd = append(r.moduleEnd, fn) }

// OnRunEnd registers fn to be called once the queue is exhausted.
func (r *Runner) OnRunEnd(fn func(*SuiteResult)) { r.runEnd = append(r.runEnd, fn) }

// Run drains the queue. It returns the context error when ctx is cancelled;
// the remaining tests are then reported as skipped.
func (r *Runner) Run(ctx context.Context) (*SuiteResult, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrRunInProgress
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	result := &SuiteResult{
		RunID:         uuid.NewString(),
		StartTime:     time.Now(),
		Modules:       make([]ModuleResult, 0),
		Configuration: r.config,
	}
	r.result = result
	r.stopped = false

	logging.Debug("Harness", "Starting run %s with %d queued tests", result.RunID, r.QueueLength())
	r.reporter.ReportStart(r.config)

	var runErr error
	for {
		t := r.dequeue()
		if t == nil {
			break
		}
		if runErr == nil {
			runErr = ctx.Err()
		}
		if runErr != nil || (r.stopped && !t.module.ignoreFailFast) {
			r.skipTest(t)
			continue
		}
		r.runTest(t)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	for _, fn := range r.runEnd {
		fn(result)
	}
	r.reporter.ReportSuiteResult(*result)

	if runErr != nil {
		return result, fmt.Errorf("run %s interrupted: %w", result.RunID, runErr)
	}
	return result, nil
}

func (r *Runner) dequeue() *Test {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return nil
	}
	t := r.queue[0]
	r.queue[0] = nil
	r.queue = r.queue[1:]
	return t
}

func (r *Runner) runTest(t *Test) {
	mod := t.module

	r.mu.Lock()
	r.current = t
	r.mu.Unlock()

	t.env = newEnv()
	t.finish = func() { r.completeTest(t) }
	t.result = TestRunResult{
		ID:        t.ID(),
		Module:    mod.name,
		Name:      t.name,
		StartTime: time.Now(),
	}

	first := !mod.started
	if first {
		mod.started = true
		mod.startTime = t.result.StartTime
		r.reporter.ReportModuleStart(mod.name)
		for _, fn := range r.moduleStart {
			fn(mod.name)
		}
	}

	for _, fn := range r.testStart {
		r.guard(t, "testStart", func() { fn(t) })
	}
	if first {
		r.runHooks(t, "before", mod.before)
	}
	r.runHooks(t, "beforeEach", mod.beforeEach)
	if t.result.Error == "" {
		assert := &Assert{test: t}
		r.guard(t, "test", func() { t.fn(assert, t.env) })
	}
	r.runHooks(t, "afterEach", mod.afterEach)
	if mod.remaining == 1 {
		r.runHooks(t, "after", mod.after)
	}

	r.guard(t, "finish", t.finish)
	if !t.completed {
		r.completeTest(t)
	}
}

func (r *Runner) runHooks(t *Test, stage string, hooks []HookFunc) {
	for _, hook := range hooks {
		r.guard(t, stage, func() { hook(t.env) })
	}
}

// guard runs fn and turns a panic into a failed assertion on t.
func (r *Runner) guard(t *Test, stage string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			msg := fmt.Sprintf("%v", rec)
			if t.result.Error == "" {
				t.result.Error = msg
			}
			if stage == "test" {
				t.PushResult(false, fmt.Sprintf("Died on test %q: %s", t.name, msg))
			} else {
				t.PushResult(false, fmt.Sprintf("%s failed on %q: %s", stage, t.name, msg))
			}
			logging.Warn("Harness", "%s of %s panicked: %s", stage, t.ID(), msg)
		}
	}()
	fn()
}

// completeTest is the innermost step of the finish chain.
func (r *Runner) completeTest(t *Test) {
	if t.completed {
		return
	}
	t.completed = true
	r.verifyExpectations(t)

	res := t.result
	res.EndTime = time.Now()
	res.Duration = res.EndTime.Sub(res.StartTime)
	res.Expected = t.expected
	res.Assertions = t.Assertions()
	switch {
	case res.Error != "":
		res.Result = ResultError
	case len(res.Failures()) > 0:
		res.Result = ResultFailed
	default:
		res.Result = ResultPassed
	}

	r.mu.Lock()
	r.current = nil
	r.mu.Unlock()
	t.ReleaseEnvironment()
	t.fn = nil

	r.record(t.module, res)
	if r.config.FailFast && res.Result != ResultPassed {
		logging.Info("Harness", "Stopping after %s: fail-fast is enabled", res.ID)
		r.stopped = true
	}
	r.finishModule(t.module)
}

func (r *Runner) verifyExpectations(t *Test) {
	n := len(t.assertions)
	switch {
	case t.expectDeclared && n != t.expected:
		t.PushResult(false, fmt.Sprintf("Expected %d assertions, but %d were run", t.expected, n))
	case !t.expectDeclared && n == 0 && r.config.RequireAssertions:
		t.PushResult(false, "Expected at least one assertion, but none were run - call Expect(0) to accept zero assertions.")
	}
}

func (r *Runner) skipTest(t *Test) {
	now := time.Now()
	res := TestRunResult{
		ID:        t.ID(),
		Module:    t.module.name,
		Name:      t.name,
		Result:    ResultSkipped,
		StartTime: now,
		EndTime:   now,
	}
	t.fn = nil
	r.record(t.module, res)
	r.finishModule(t.module)
}

func (r *Runner) record(mod *module, res TestRunResult) {
	mod.result.Tests = append(mod.result.Tests, res)

	r.result.TotalTests++
	switch res.Result {
	case ResultPassed:
		r.result.PassedTests++
		mod.result.Passed++
	case ResultFailed:
		r.result.FailedTests++
		mod.result.Failed++
	case ResultError:
		r.result.ErrorTests++
		mod.result.Failed++
	case ResultSkipped:
		r.result.SkippedTests++
	}

	r.reporter.ReportTestResult(res)
	for _, fn := range r.testEnd {
		fn(res)
	}
}

func (r *Runner) finishModule(mod *module) {
	mod.remaining--
	if mod.remaining > 0 {
		return
	}
	if mod.started {
		mod.result.Duration = time.Since(mod.startTime)
	}
	r.result.Modules = append(r.result.Modules, mod.result)
	r.reporter.ReportModuleResult(mod.result)

	// Fired for fully skipped modules too.
	for _, fn := range r.moduleEnd {
		fn(mod.result)
	}
}

type nopReporter struct{}

func (nopReporter) ReportStart(Configuration) {}

func (nopReporter) ReportModuleStart(string) {}

func (nopReporter) ReportTestResult(TestRunResult) {}

func (nopReporter) ReportModuleResult(ModuleResult) {}

func (nopReporter) ReportSuiteResult(SuiteResult) {}
