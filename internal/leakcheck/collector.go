package leakcheck

import (
	"os"
	"runtime"
	"strconv"
)

// DisableGCEnv disables leak detection when set to a true value.
const DisableGCEnv = "LEAKCTL_DISABLE_GC"

// Collector forces a garbage collection cycle.
type Collector interface {
	Collect()
}

// CollectorFunc adapts a function to Collector.
type CollectorFunc func()

// Collect calls f.
func (f CollectorFunc) Collect() { f() }

type runtimeCollector struct{}

func (runtimeCollector) Collect() { runtime.GC() }

// DetectHost returns the collector of the running process, or nil when
// manual collection is unavailable.
func DetectHost() Collector {
	if disabled, err := strconv.ParseBool(os.Getenv(DisableGCEnv)); err == nil && disabled {
		return nil
	}
	return hostCollector()
}
