package leakcheck

import (
	"time"

	"leakctl/pkg/logging"
)

// MinPasses is the smallest number of collection cycles run before a scan.
// Weak pointers only clear once the collector has seen the object
// unreachable, and objects freed in one cycle can release others in the next.
const MinPasses = 3

// MaxPasses bounds the collection cycles of a single checkpoint.
const MaxPasses = 100

// Trigger forces collection and scans a registry.
type Trigger struct {
	Collector Collector
	Registry  *Registry
	// Passes is clamped to [MinPasses, MaxPasses].
	Passes  int
	Metrics *Metrics
}

// EffectivePasses returns the number of collection cycles CollectAndScan
// runs.
func (t *Trigger) EffectivePasses() int {
	return min(max(t.Passes, MinPasses), MaxPasses)
}

// CollectAndScan runs the collector EffectivePasses times and drains the
// registry. Without a collector it drains nothing and returns no leaks.
func (t *Trigger) CollectAndScan() Leaks {
	if t.Collector == nil {
		return nil
	}

	start := time.Now()
	passes := t.EffectivePasses()
	for i := 0; i < passes; i++ {
		t.Collector.Collect()
	}
	leaks := t.Registry.ScanAndDrain()
	elapsed := time.Since(start)

	t.Metrics.observeCollection(elapsed)
	logging.Debug("LeakCheck", "Ran %d collection passes in %v, %d owners still reachable",
		passes, elapsed, leaks.Count())
	return leaks
}
