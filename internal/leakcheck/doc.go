// Package leakcheck detects owner instances (applications and mounted
// engines) that are still reachable after the tests that created them have
// finished.
//
// A tracker hook registered on app.Applications and app.Engines records a
// weak pointer to every instance together with the id of the test that was
// running when it was built. At a checkpoint the detector forces the garbage
// collector to run several times and scans the registry: every weak pointer
// that still resolves is a leak.
//
// Three checkpoint strategies are available. Pick one per run:
//
//	leakcheck.SetupPerTestLeakDetection(fw)            // fail the leaking test itself
//	leakcheck.SetupPerModuleLeakDetection(fw)          // one report per module
//	leakcheck.SetupAfterAllTestsOwnerLeakDetection(fw) // one report for the whole run
//
// The coarse strategies report through a synthesized "[OWNER LEAK DETECTED]"
// module enqueued on the framework, with one failing test per originating
// test id.
//
// Detection needs a manual collection hook. Builds with the noleakcheck tag,
// or processes with LEAKCTL_DISABLE_GC set, get a detector that installs
// nothing and reports nothing.
package leakcheck
