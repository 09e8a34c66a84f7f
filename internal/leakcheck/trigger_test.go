package leakcheck

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCollector struct {
	mock.Mock
}

func (m *mockCollector) Collect() {
	m.Called()
	runtime.GC()
}

func TestTrigger_RunsAtLeastMinPasses(t *testing.T) {
	tests := []struct {
		name   string
		passes int
		want   int
	}{
		{name: "zero", passes: 0, want: MinPasses},
		{name: "below minimum", passes: 1, want: MinPasses},
		{name: "minimum", passes: 3, want: 3},
		{name: "above minimum", passes: 5, want: 5},
		{name: "above maximum", passes: MaxPasses + 1, want: MaxPasses},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &mockCollector{}
			c.On("Collect").Return()

			trig := &Trigger{Collector: c, Registry: NewRegistry(), Passes: tt.passes}
			leaks := trig.CollectAndScan()

			assert.Empty(t, leaks)
			assert.Equal(t, tt.want, trig.EffectivePasses())
			c.AssertNumberOfCalls(t, "Collect", tt.want)
		})
	}
}

func TestTrigger_CollectsBeforeScanning(t *testing.T) {
	r := NewRegistry()
	recordTransient(r, "m: t")

	c := &mockCollector{}
	c.On("Collect").Return()

	trig := &Trigger{Collector: c, Registry: r}
	leaks := trig.CollectAndScan()

	assert.Empty(t, leaks)
	assert.Equal(t, 0, r.Len())
	c.AssertExpectations(t)
}

func TestTrigger_NilCollectorIsNoop(t *testing.T) {
	r := NewRegistry()
	kept := buildOwner("kept")
	r.Record(kept, "m: t")

	trig := &Trigger{Registry: r}
	assert.Empty(t, trig.CollectAndScan())
	require.Equal(t, 1, r.Len(), "registry is left untouched without a collector")
	runtime.KeepAlive(kept)
}

func TestCollectorFunc(t *testing.T) {
	calls := 0
	CollectorFunc(func() { calls++ }).Collect()
	assert.Equal(t, 1, calls)
}

func TestDetectHost_DisabledByEnv(t *testing.T) {
	t.Setenv(DisableGCEnv, "true")
	assert.Nil(t, DetectHost())
}

func TestDetectHost_Default(t *testing.T) {
	t.Setenv(DisableGCEnv, "")
	assert.NotNil(t, DetectHost())
}

func TestDetectHost_IgnoresFalseValue(t *testing.T) {
	t.Setenv(DisableGCEnv, "0")
	assert.NotNil(t, DetectHost())
}
