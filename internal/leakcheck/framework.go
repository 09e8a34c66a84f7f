package leakcheck

// Test is the view of a running test the detector needs.
type Test interface {
	ID() string
	AddExpected(n int)
	PushResult(passed bool, message string)
	// ReleaseEnvironment drops the framework's reference to the per-test
	// context so owners stored there become collectable.
	ReleaseEnvironment()
	// WrapFinish installs a step that runs when the test finishes, before
	// its result is recorded.
	WrapFinish(wrap func(next func()) func())
}

// Assert is handed to synthesized tests.
type Assert interface {
	Expect(n int)
	PushResult(passed bool, message string)
}

// SyntheticTest is a test enqueued by the detector to carry leak failures.
type SyntheticTest struct {
	Name string
	Run  func(assert Assert)
}

// Framework is the test framework the detector plugs into. Implementations
// must be comparable; setups are idempotent per framework value.
type Framework interface {
	OnTestStart(fn func(Test))
	OnModuleEnd(fn func(moduleName string))
	// QueueLength returns the number of tests that have not started yet.
	QueueLength() int
	// CurrentTestID returns the id of the running test, or "".
	CurrentTestID() string
	// AddModule enqueues a module. It must be accepted from an OnModuleEnd
	// listener and run before the run ends, even when fail-fast stopped the
	// run. OnModuleEnd must also fire for modules that were skipped.
	AddModule(name string, tests []SyntheticTest)
}
