package harness

import (
	"fmt"
	"sync"

	"github.com/stretchr/testify/assert"
)

// TestFunc is the body of a test.
type TestFunc func(assert *Assert, env *Env)

// HookFunc is a module hook. It receives the environment of the test it runs
// for; "before" and "after" hooks receive the environment of the module's
// first and last test respectively.
type HookFunc func(env *Env)

// Env is the per-test context. Hooks and the test body share it.
type Env struct {
	mu     sync.RWMutex
	values map[string]interface{}
}

func newEnv() *Env {
	return &Env{values: make(map[string]interface{})}
}

// Set stores value under key.
func (e *Env) Set(key string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values[key] = value
}

// Get returns the value stored under key.
func (e *Env) Get(key string) (interface{}, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.values[key]
	return v, ok
}

// Delete removes key.
func (e *Env) Delete(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.values, key)
}

// Len returns the number of stored values.
func (e *Env) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.values)
}

// Test is a single queued test. Listeners registered with
// Runner.OnTestStart receive it before its hooks run.
type Test struct {
	module *module
	name   string
	fn     TestFunc

	env *Env

	assertions     []AssertionResult
	expected       int
	expectDeclared bool

	// finish is the head of the finish chain, see WrapFinish.
	finish    func()
	completed bool
	result    TestRunResult
}

// ID returns "<module>: <test>".
func (t *Test) ID() string {
	return fmt.Sprintf("%s: %s", t.module.name, t.name)
}

// Name returns the test name.
func (t *Test) Name() string { return t.name }

// ModuleName returns the name of the module the test belongs to.
func (t *Test) ModuleName() string { return t.module.name }

// Env returns the test environment, nil once released.
func (t *Test) Env() *Env { return t.env }

// ReleaseEnvironment drops the runner's reference to the test environment.
// Env returns nil afterwards.
func (t *Test) ReleaseEnvironment() {
	t.env = nil
}

// AddExpected raises the expected assertion count by n. It does not declare
// an expectation on its own: a test that never called Expect is still
// checked only for running at least one assertion, when required.
func (t *Test) AddExpected(n int) {
	t.expected += n
}

// Expected returns the current expected assertion count.
func (t *Test) Expected() int { return t.expected }

// PushResult records an assertion.
func (t *Test) PushResult(passed bool, message string) {
	t.assertions = append(t.assertions, AssertionResult{Passed: passed, Message: message})
}

// Assertions returns a copy of the recorded assertions.
func (t *Test) Assertions() []AssertionResult {
	out := make([]AssertionResult, len(t.assertions))
	copy(out, t.assertions)
	return out
}

// WrapFinish installs wrap around the test's finish step. The function
// returned by wrap runs in place of the previous finish step and must call
// next exactly once for the test to be recorded. Wrappers installed later run
// first.
func (t *Test) WrapFinish(wrap func(next func()) func()) {
	if wrap == nil {
		return
	}
	t.finish = wrap(t.finish)
}

// Assert is handed to test bodies.
type Assert struct {
	test *Test
}

// Expect declares how many assertions the test will run.
func (a *Assert) Expect(n int) {
	a.test.expected = n
	a.test.expectDeclared = true
}

// PushResult records a raw assertion result.
func (a *Assert) PushResult(passed bool, message string) {
	a.test.PushResult(passed, message)
}

// Ok asserts that cond holds.
func (a *Assert) Ok(cond bool, message string) {
	a.test.PushResult(cond, message)
}

// NotOk asserts that cond does not hold.
func (a *Assert) NotOk(cond bool, message string) {
	a.test.PushResult(!cond, message)
}

// Equal asserts that actual equals expected, with testify's notion of
// object equality.
func (a *Assert) Equal(actual, expected interface{}, message string) {
	if assert.ObjectsAreEqual(expected, actual) {
		a.test.PushResult(true, message)
		return
	}
	a.test.PushResult(false, fmt.Sprintf("%s: expected %v, got %v", message, expected, actual))
}
