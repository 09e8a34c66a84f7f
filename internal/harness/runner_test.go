package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_RunsHooksInOrder(t *testing.T) {
	var calls []string
	r := NewRunner(Configuration{}, nil)
	r.Module("ordering", func(m *ModuleBuilder) {
		m.Before(func(*Env) { calls = append(calls, "before") })
		m.BeforeEach(func(*Env) { calls = append(calls, "beforeEach") })
		m.AfterEach(func(*Env) { calls = append(calls, "afterEach") })
		m.After(func(*Env) { calls = append(calls, "after") })
		m.Test("one", func(a *Assert, _ *Env) {
			calls = append(calls, "one")
			a.Ok(true, "ran")
		})
		m.Test("two", func(a *Assert, _ *Env) {
			calls = append(calls, "two")
			a.Ok(true, "ran")
		})
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"before", "beforeEach", "one", "afterEach",
		"beforeEach", "two", "afterEach", "after",
	}, calls)
	assert.Equal(t, 2, result.PassedTests)
	assert.True(t, result.OK())
	assert.NotEmpty(t, result.RunID)
}

func TestRunner_EnvSharedBetweenHooksAndBody(t *testing.T) {
	r := NewRunner(Configuration{}, nil)
	r.Module("env", func(m *ModuleBuilder) {
		m.BeforeEach(func(env *Env) { env.Set("owner", "app") })
		m.Test("reads env", func(a *Assert, env *Env) {
			v, ok := env.Get("owner")
			a.Ok(ok, "value present")
			a.Equal(v, "app", "value")
		})
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.PassedTests)
}

func TestRunner_TestIDAndCurrent(t *testing.T) {
	r := NewRunner(Configuration{}, nil)
	var seen string
	r.Module("mod", func(m *ModuleBuilder) {
		m.Test("name", func(a *Assert, _ *Env) {
			seen = r.CurrentTestID()
			a.Ok(true, "ok")
		})
	})

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mod: name", seen)
	assert.Equal(t, "", r.CurrentTestID())
	assert.Nil(t, r.Current())
}

func TestRunner_ExpectMismatchFails(t *testing.T) {
	r := NewRunner(Configuration{}, nil)
	r.Module("expect", func(m *ModuleBuilder) {
		m.Test("declares two", func(a *Assert, _ *Env) {
			a.Expect(2)
			a.Ok(true, "only one")
		})
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	tr := result.Tests()[0]
	assert.Equal(t, ResultFailed, tr.Result)
	assert.Contains(t, tr.Failures(), "Expected 2 assertions, but 1 were run")
}

func TestRunner_AddExpectedRaisesCount(t *testing.T) {
	r := NewRunner(Configuration{}, nil)
	r.OnTestStart(func(test *Test) {
		test.WrapFinish(func(next func()) func() {
			return func() {
				test.AddExpected(1)
				test.PushResult(true, "from wrapper")
				next()
			}
		})
	})
	r.Module("expect", func(m *ModuleBuilder) {
		m.Test("declares one", func(a *Assert, _ *Env) {
			a.Expect(1)
			a.Ok(true, "body")
		})
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	tr := result.Tests()[0]
	assert.Equal(t, ResultPassed, tr.Result)
	assert.Equal(t, 2, tr.Expected)
	assert.Len(t, tr.Assertions, 2)
}

func TestRunner_RequireAssertions(t *testing.T) {
	tests := []struct {
		name    string
		require bool
		expect  TestResult
	}{
		{name: "not required", require: false, expect: ResultPassed},
		{name: "required", require: true, expect: ResultFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(Configuration{RequireAssertions: tt.require}, nil)
			r.Module("empty", func(m *ModuleBuilder) {
				m.Test("asserts nothing", func(*Assert, *Env) {})
			})

			result, err := r.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expect, result.Tests()[0].Result)
		})
	}
}

func TestRunner_PanicBecomesError(t *testing.T) {
	r := NewRunner(Configuration{}, nil)
	r.Module("panics", func(m *ModuleBuilder) {
		m.Test("dies", func(*Assert, *Env) { panic("boom") })
		m.Test("still runs", func(a *Assert, _ *Env) { a.Ok(true, "ok") })
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	tests := result.Tests()
	require.Len(t, tests, 2)
	assert.Equal(t, ResultError, tests[0].Result)
	assert.Equal(t, "boom", tests[0].Error)
	assert.Equal(t, ResultPassed, tests[1].Result)
	assert.Equal(t, 1, result.ErrorTests)
	assert.False(t, result.OK())
}

func TestRunner_BeforeEachPanicSkipsBody(t *testing.T) {
	bodyRan := false
	r := NewRunner(Configuration{}, nil)
	r.Module("hooks", func(m *ModuleBuilder) {
		m.BeforeEach(func(*Env) { panic("setup") })
		m.Test("body", func(*Assert, *Env) { bodyRan = true })
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, bodyRan)
	assert.Contains(t, result.Tests()[0].Failures()[0], "beforeEach failed")
}

func TestRunner_PanickingFinishWrapperStillRecords(t *testing.T) {
	r := NewRunner(Configuration{}, nil)
	r.OnTestStart(func(test *Test) {
		test.WrapFinish(func(func()) func() {
			return func() { panic("wrapper") }
		})
	})
	r.Module("wrap", func(m *ModuleBuilder) {
		m.Test("t", func(a *Assert, _ *Env) { a.Ok(true, "ok") })
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalTests)
	assert.Equal(t, ResultError, result.Tests()[0].Result)
}

func TestRunner_WrapFinishOrder(t *testing.T) {
	var order []string
	r := NewRunner(Configuration{}, nil)
	r.OnTestStart(func(test *Test) {
		test.WrapFinish(func(next func()) func() {
			return func() { order = append(order, "first"); next() }
		})
		test.WrapFinish(func(next func()) func() {
			return func() { order = append(order, "second"); next() }
		})
	})
	r.OnTestEnd(func(TestRunResult) { order = append(order, "end") })
	r.Module("wrap", func(m *ModuleBuilder) {
		m.Test("t", func(a *Assert, _ *Env) { a.Ok(true, "ok") })
	})

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first", "end"}, order)
}

func TestRunner_ReleaseEnvironment(t *testing.T) {
	var envAtFinish *Env
	var captured *Test
	r := NewRunner(Configuration{}, nil)
	r.OnTestStart(func(test *Test) {
		captured = test
		test.WrapFinish(func(next func()) func() {
			return func() {
				test.ReleaseEnvironment()
				envAtFinish = test.Env()
				next()
			}
		})
	})
	r.Module("env", func(m *ModuleBuilder) {
		m.Test("t", func(a *Assert, env *Env) {
			a.Ok(env != nil, "env during body")
		})
	})

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, envAtFinish)
	assert.Nil(t, captured.Env())
}

func TestRunner_ModuleEndCanEnqueue(t *testing.T) {
	r := NewRunner(Configuration{}, nil)
	var queueAtEnd []int
	var ended []string
	r.OnModuleEnd(func(m ModuleResult) {
		ended = append(ended, m.Name)
		queueAtEnd = append(queueAtEnd, r.QueueLength())
		if m.Name == "first" {
			r.Module("synthesized", func(b *ModuleBuilder) {
				b.Test("added later", func(a *Assert, _ *Env) {
					a.Expect(1)
					a.PushResult(false, "reported late")
				})
			})
		}
	})
	r.Module("first", func(m *ModuleBuilder) {
		m.Test("t", func(a *Assert, _ *Env) { a.Ok(true, "ok") })
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "synthesized"}, ended)
	assert.Equal(t, []int{0, 0}, queueAtEnd)
	assert.Equal(t, 2, result.TotalTests)
	assert.Equal(t, 1, result.FailedTests)
	require.Len(t, result.Modules, 2)
	assert.Equal(t, "synthesized", result.Modules[1].Name)
}

func TestRunner_QueueLengthAtModuleEnd(t *testing.T) {
	r := NewRunner(Configuration{}, nil)
	lengths := map[string]int{}
	r.OnModuleEnd(func(m ModuleResult) { lengths[m.Name] = r.QueueLength() })
	for _, name := range []string{"a", "b"} {
		r.Module(name, func(m *ModuleBuilder) {
			m.Test("1", func(a *Assert, _ *Env) { a.Ok(true, "ok") })
			m.Test("2", func(a *Assert, _ *Env) { a.Ok(true, "ok") })
		})
	}

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2, "b": 0}, lengths)
}

func TestRunner_FailFastSkipsRemaining(t *testing.T) {
	r := NewRunner(Configuration{FailFast: true}, nil)
	r.Module("ff", func(m *ModuleBuilder) {
		m.Test("fails", func(a *Assert, _ *Env) { a.Ok(false, "nope") })
		m.Test("skipped", func(a *Assert, _ *Env) { a.Ok(true, "ok") })
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.FailedTests)
	assert.Equal(t, 1, result.SkippedTests)
}

func TestRunner_FailFastStillEndsSkippedModules(t *testing.T) {
	r := NewRunner(Configuration{FailFast: true}, nil)
	var ended []string
	r.OnModuleEnd(func(m ModuleResult) {
		ended = append(ended, m.Name)
		if m.Name == "skipped" {
			r.Module("late", func(b *ModuleBuilder) {
				b.IgnoreFailFast()
				b.Test("reported", func(a *Assert, _ *Env) { a.PushResult(false, "late failure") })
			})
		}
	})
	r.Module("fails", func(m *ModuleBuilder) {
		m.Test("t", func(a *Assert, _ *Env) { a.Ok(false, "nope") })
	})
	r.Module("skipped", func(m *ModuleBuilder) {
		m.Test("t", func(a *Assert, _ *Env) { a.Ok(true, "ok") })
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"fails", "skipped", "late"}, ended)
	require.Len(t, result.Modules, 3)
	assert.Equal(t, ResultSkipped, result.Modules[1].Tests[0].Result)
	assert.Equal(t, ResultFailed, result.Modules[2].Tests[0].Result)
	assert.Equal(t, []string{"late failure"}, result.Modules[2].Tests[0].Failures())
}

func TestRunner_CancelSkipsIgnoreFailFastModules(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(Configuration{FailFast: true}, nil)
	r.Module("exempt", func(m *ModuleBuilder) {
		m.IgnoreFailFast()
		m.Test("never", func(a *Assert, _ *Env) { a.Ok(true, "ok") })
	})

	result, err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.SkippedTests)
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(Configuration{}, nil)
	r.Module("cancelled", func(m *ModuleBuilder) {
		m.Test("never", func(a *Assert, _ *Env) { a.Ok(true, "ok") })
	})

	result, err := r.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.SkippedTests)
}

func TestRunner_EmptyModuleIgnored(t *testing.T) {
	r := NewRunner(Configuration{}, nil)
	r.Module("empty", nil)
	assert.Equal(t, 0, r.QueueLength())

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalTests)
	assert.Empty(t, result.Modules)
}

func TestRunner_RunEnd(t *testing.T) {
	r := NewRunner(Configuration{}, nil)
	var got *SuiteResult
	r.OnRunEnd(func(s *SuiteResult) { got = s })
	r.Module("m", func(m *ModuleBuilder) {
		m.Test("t", func(a *Assert, _ *Env) { a.Ok(true, "ok") })
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Same(t, result, got)
}

func TestAssert_Equal(t *testing.T) {
	r := NewRunner(Configuration{}, nil)
	r.Module("equal", func(m *ModuleBuilder) {
		m.Test("values", func(a *Assert, _ *Env) {
			a.Equal([]byte("owner"), []byte("owner"), "bytes")
			a.Equal(map[string]int{"engines": 1}, map[string]int{"engines": 1}, "maps")
			a.Equal(nil, nil, "nil")
			a.Equal(2, 1, "children")
			a.Equal(int64(1), 1, "types differ")
		})
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalTests)
	assert.Equal(t, []string{
		"children: expected 1, got 2",
		"types differ: expected 1, got 1",
	}, result.Tests()[0].Failures())
}
