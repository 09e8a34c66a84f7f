package suite

import (
	"leakctl/internal/harness"
)

// Register defines every module of s on r.
func Register(r *harness.Runner, s *Suite) {
	for _, m := range s.Modules {
		r.Module(m.Name, func(b *harness.ModuleBuilder) {
			if len(m.Before) > 0 {
				b.Before(hook(m.Before))
			}
			if len(m.BeforeEach) > 0 {
				b.BeforeEach(hook(m.BeforeEach))
			}
			if len(m.AfterEach) > 0 {
				b.AfterEach(hook(m.AfterEach))
			}
			if len(m.After) > 0 {
				b.After(hook(m.After))
			}
			for _, tc := range m.Tests {
				b.Test(tc.Name, body(tc))
			}
		})
	}
}

// hook turns steps into a module hook. A failing step panics, which the
// runner records as a hook failure of the current test.
func hook(steps []Step) harness.HookFunc {
	return func(env *harness.Env) {
		if err := runSteps(steps, env, nil); err != nil {
			panic(err)
		}
	}
}

func body(tc TestCase) harness.TestFunc {
	return func(a *harness.Assert, env *harness.Env) {
		if tc.Expect != nil {
			a.Expect(*tc.Expect)
		}
		if err := runSteps(tc.Steps, env, a); err != nil {
			a.PushResult(false, err.Error())
		}
	}
}
