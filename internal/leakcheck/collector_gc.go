//go:build !noleakcheck

package leakcheck

func hostCollector() Collector {
	return runtimeCollector{}
}
