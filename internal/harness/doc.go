// Package harness is a small, single-threaded test framework in the style of
// QUnit. It exists so the owner leak detector has a real test lifecycle to
// plug into.
//
// ## Model
//
// Tests are grouped into modules and kept in a FIFO queue. The runner pops one
// test at a time and drives it through:
//
//  1. OnModuleStart (first test of a module only)
//  2. OnTestStart listeners, which may wrap the test's finish step
//  3. module "before" hooks (first test only), "beforeEach" hooks, the test
//     body, "afterEach" hooks and module "after" hooks (last test only)
//  4. the finish chain: wrappers first, then expectation checks and
//     result recording, then OnTestEnd
//  5. OnModuleEnd once the module's last test was recorded, including
//     modules skipped after fail-fast stopped the run
//
// Listeners of OnModuleEnd may enqueue new modules with Runner.Module; they run
// before OnRunEnd fires. QueueLength reports how many tests are still pending,
// which lets a listener recognize the last module of a run while new results
// can still be added. Modules marked with ModuleBuilder.IgnoreFailFast keep
// running after fail-fast stopped the run.
//
// ## Assertions
//
// Every test gets an Assert and an Env. Assert records results and the
// expected assertion count; Env is the per-test context (QUnit's `this`) that
// helpers use to hold state such as the owner under test. The environment is
// dropped with Test.ReleaseEnvironment.
//
// ## Reporting
//
// A Reporter receives start, per-test, per-module and suite notifications.
// NewConsoleReporter renders human output, NewQuietReporter only failures and
// NewJSONReporter a machine-readable document.
package harness
