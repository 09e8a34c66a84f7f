package suite

import (
	"fmt"
	"slices"
	"sync"

	"leakctl/internal/app"
	"leakctl/internal/components"
	"leakctl/internal/harness"
	"leakctl/pkg/logging"
)

const (
	ownerKey  = "owner"
	targetApp = "application"
)

func engineKey(name string) string { return "engine:" + name }

// retainStore is the process-wide list the retain action stores owners in.
// Anything in it outlives the test that put it there.
type retainStore struct {
	mu     sync.Mutex
	owners []*app.Instance
}

var retained retainStore

func (s *retainStore) add(inst *app.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners = append(s.owners, inst)
}

func (s *retainStore) remove(inst *app.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners = slices.DeleteFunc(s.owners, func(o *app.Instance) bool { return o == inst })
}

func (s *retainStore) releaseAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.owners)
	clear(s.owners)
	s.owners = nil
	return n
}

func (s *retainStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.owners)
}

// Retained returns the number of owners currently held by retain steps.
func Retained() int { return retained.len() }

// ReleaseRetained drops every owner held by retain steps and returns how
// many there were.
func ReleaseRetained() int { return retained.releaseAll() }

// runSteps executes steps in order and stops at the first error. a is nil
// for hooks.
func runSteps(steps []Step, env *harness.Env, a *harness.Assert) error {
	for i, st := range steps {
		if err := runStep(st, env, a); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, st.Action, err)
		}
	}
	return nil
}

func runStep(st Step, env *harness.Env, a *harness.Assert) error {
	switch st.Action {
	case ActionBoot:
		return boot(st, env)
	case ActionMount:
		owner, err := resolve(env, "")
		if err != nil {
			return err
		}
		engine := app.Engines.BuildInstance(app.BuildOptions{
			Name:       st.Engine,
			MountPoint: st.As,
			Parent:     owner,
		})
		env.Set(engineKey(st.Engine), engine)
		return nil
	case ActionRender:
		target, err := resolve(env, st.Target)
		if err != nil {
			return err
		}
		_, err = components.Render(target, st.Component)
		return err
	case ActionRetain:
		target, err := resolve(env, st.Target)
		if err != nil {
			return err
		}
		retained.add(target)
		return nil
	case ActionRelease:
		if st.Target == "" {
			n := retained.releaseAll()
			logging.Debug("Suite", "Released %d retained owner(s)", n)
			return nil
		}
		target, err := resolve(env, st.Target)
		if err != nil {
			return err
		}
		retained.remove(target)
		return nil
	case ActionTeardown:
		target, err := resolve(env, st.Target)
		if err != nil {
			return err
		}
		target.Destroy()
		return nil
	case ActionAssert:
		if a == nil {
			return fmt.Errorf("%w: assert outside of a test", ErrInvalidStep)
		}
		return check(st, env, a)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, st.Action)
	}
}

func boot(st Step, env *harness.Env) error {
	name := st.Name
	if name == "" {
		name = "fixture"
	}
	application, err := app.NewApplication(app.NewConfig(name, func(r *app.Router) {
		for _, m := range st.Mounts {
			if m.As != "" {
				r.Mount(m.Engine, app.As(m.As))
			} else {
				r.Mount(m.Engine)
			}
		}
	}))
	if err != nil {
		return err
	}

	owner := application.Boot()
	env.Set(ownerKey, owner)
	for _, child := range owner.Children() {
		env.Set(engineKey(child.Name()), child)
	}
	return nil
}

func resolve(env *harness.Env, target string) (*app.Instance, error) {
	key := ownerKey
	if target != "" && target != targetApp {
		key = engineKey(target)
	}
	v, ok := env.Get(key)
	if !ok {
		if target == "" {
			target = targetApp
		}
		return nil, fmt.Errorf("%w: %q (boot first)", ErrUnknownTarget, target)
	}
	inst, ok := v.(*app.Instance)
	if !ok || inst == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
	return inst, nil
}

func check(st Step, env *harness.Env, a *harness.Assert) error {
	target, err := resolve(env, st.Target)
	if err != nil {
		return err
	}
	label := st.Target
	if label == "" {
		label = targetApp
	}

	switch st.Check {
	case CheckAlive:
		a.Ok(!target.IsDestroyed(), message(st, "%s is alive", label))
	case CheckDestroyed:
		a.Ok(target.IsDestroyed(), message(st, "%s is destroyed", label))
	case CheckRendered:
		_, ok := target.Lookup("component:" + st.Component)
		a.Ok(ok, message(st, "%s rendered into %s", st.Component, label))
	case CheckChildren:
		a.Equal(len(target.Children()), st.Count, message(st, "%s has %d mounted engine(s)", label, st.Count))
	}
	return nil
}

func message(st Step, format string, args ...interface{}) string {
	if st.Message != "" {
		return st.Message
	}
	return fmt.Sprintf(format, args...)
}
