package leakcheck

import (
	"leakctl/internal/harness"
)

// harnessFramework binds a *harness.Runner to Framework. It is a value type
// so two bindings of the same runner compare equal.
type harnessFramework struct {
	runner *harness.Runner
}

// ForRunner returns the Framework view of r.
func ForRunner(r *harness.Runner) Framework {
	return harnessFramework{runner: r}
}

func (h harnessFramework) OnTestStart(fn func(Test)) {
	h.runner.OnTestStart(func(t *harness.Test) { fn(t) })
}

func (h harnessFramework) OnModuleEnd(fn func(string)) {
	h.runner.OnModuleEnd(func(m harness.ModuleResult) { fn(m.Name) })
}

func (h harnessFramework) QueueLength() int { return h.runner.QueueLength() }

func (h harnessFramework) CurrentTestID() string { return h.runner.CurrentTestID() }

func (h harnessFramework) AddModule(name string, tests []SyntheticTest) {
	h.runner.Module(name, func(m *harness.ModuleBuilder) {
		m.IgnoreFailFast()
		for _, st := range tests {
			m.Test(st.Name, func(a *harness.Assert, _ *harness.Env) { st.Run(a) })
		}
	})
}
