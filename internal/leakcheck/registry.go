package leakcheck

import (
	"sync"
	"weak"

	"leakctl/internal/app"
)

// NoActiveTest is recorded for owners built while no test was running.
const NoActiveTest = "(no active test)"

type handle struct {
	ptr    weak.Pointer[app.Instance]
	testID string
}

// Leak groups the owners that survived a checkpoint by originating test.
type Leak struct {
	TestID string
	Owners []*app.Instance
}

// Leaks is ordered by the first time each test id was recorded.
type Leaks []Leak

// Count returns the total number of leaked owners.
func (l Leaks) Count() int {
	n := 0
	for _, leak := range l {
		n += len(leak.Owners)
	}
	return n
}

// Registry holds weak handles to tracked owners until the next scan.
type Registry struct {
	mu      sync.Mutex
	handles []handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Record tracks owner without keeping it alive.
func (r *Registry) Record(owner *app.Instance, testID string) {
	if owner == nil {
		return
	}
	if testID == "" {
		testID = NoActiveTest
	}
	h := handle{ptr: weak.Make(owner), testID: testID}

	r.mu.Lock()
	r.handles = append(r.handles, h)
	r.mu.Unlock()
}

// Len returns the number of handles recorded since the last scan.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// ScanAndDrain resolves every handle and empties the registry. Owners that
// are still reachable are returned grouped by test id.
func (r *Registry) ScanAndDrain() Leaks {
	r.mu.Lock()
	handles := r.handles
	r.handles = nil
	r.mu.Unlock()

	var leaks Leaks
	index := make(map[string]int)
	for _, h := range handles {
		owner := h.ptr.Value()
		if owner == nil {
			continue
		}
		i, ok := index[h.testID]
		if !ok {
			i = len(leaks)
			index[h.testID] = i
			leaks = append(leaks, Leak{TestID: h.testID})
		}
		leaks[i].Owners = append(leaks[i].Owners, owner)
	}
	return leaks
}
