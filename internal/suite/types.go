package suite

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAction is returned for a step whose action is not supported.
	ErrUnknownAction = errors.New("unknown action")
	// ErrNoTests is returned when a suite, or a filtered set of suites,
	// contains no test.
	ErrNoTests = errors.New("no tests")
	// ErrInvalidStep is returned for a step missing a required field.
	ErrInvalidStep = errors.New("invalid step")
	// ErrUnknownTarget is returned when a step refers to an owner that does
	// not exist in the test environment.
	ErrUnknownTarget = errors.New("unknown target")
)

// Action names a step.
type Action string

const (
	// ActionBoot boots the fixture application and its mounts.
	ActionBoot Action = "boot"
	// ActionMount mounts an additional engine into the application.
	ActionMount Action = "mount"
	// ActionRender renders a component into the target owner.
	ActionRender Action = "render"
	// ActionRetain stores the target in a process-wide list, keeping it alive
	// after the test.
	ActionRetain Action = "retain"
	// ActionRelease removes the target (or everything) from that list.
	ActionRelease Action = "release"
	// ActionTeardown destroys the target owner.
	ActionTeardown Action = "teardown"
	// ActionAssert checks a property of the target.
	ActionAssert Action = "assert"
)

// Checks understood by ActionAssert.
const (
	CheckAlive     = "alive"
	CheckDestroyed = "destroyed"
	CheckRendered  = "rendered"
	CheckChildren  = "children"
)

// Suite is a named collection of modules loaded from YAML.
type Suite struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Modules     []Module `yaml:"modules" json:"modules"`

	// Source is the file the suite was loaded from.
	Source string `yaml:"-" json:"source,omitempty"`
}

// Module groups tests that share hooks.
type Module struct {
	Name       string     `yaml:"name" json:"name"`
	Before     []Step     `yaml:"before,omitempty" json:"before,omitempty"`
	BeforeEach []Step     `yaml:"beforeEach,omitempty" json:"beforeEach,omitempty"`
	AfterEach  []Step     `yaml:"afterEach,omitempty" json:"afterEach,omitempty"`
	After      []Step     `yaml:"after,omitempty" json:"after,omitempty"`
	Tests      []TestCase `yaml:"tests" json:"tests"`
}

// TestCase is a single test.
type TestCase struct {
	Name string `yaml:"name" json:"name"`
	// Expect, when set, declares the number of assertions the test runs.
	Expect *int     `yaml:"expect,omitempty" json:"expect,omitempty"`
	Tags   []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Steps  []Step   `yaml:"steps" json:"steps"`
}

// Mount describes an engine mounted at boot.
type Mount struct {
	Engine string `yaml:"engine" json:"engine"`
	As     string `yaml:"as,omitempty" json:"as,omitempty"`
}

// Step is one action of a hook or test.
type Step struct {
	Action Action `yaml:"action" json:"action"`
	// Target selects the owner: empty or "application" for the application,
	// otherwise the name of a mounted engine.
	Target string `yaml:"target,omitempty" json:"target,omitempty"`

	// boot
	Name   string  `yaml:"name,omitempty" json:"name,omitempty"`
	Mounts []Mount `yaml:"mounts,omitempty" json:"mounts,omitempty"`

	// mount
	Engine string `yaml:"engine,omitempty" json:"engine,omitempty"`
	As     string `yaml:"as,omitempty" json:"as,omitempty"`

	// render, assert rendered
	Component string `yaml:"component,omitempty" json:"component,omitempty"`

	// assert
	Check   string `yaml:"check,omitempty" json:"check,omitempty"`
	Count   int    `yaml:"count,omitempty" json:"count,omitempty"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

// TestInfo describes a test for listings.
type TestInfo struct {
	Suite  string   `json:"suite"`
	Module string   `json:"module"`
	Name   string   `json:"name"`
	ID     string   `json:"id"`
	Steps  int      `json:"steps"`
	Tags   []string `json:"tags,omitempty"`
}

// TestID returns the id the harness assigns to a test.
func TestID(module, test string) string {
	return fmt.Sprintf("%s: %s", module, test)
}

// List flattens suites into test descriptions.
func List(suites []*Suite) []TestInfo {
	var out []TestInfo
	for _, s := range suites {
		for _, m := range s.Modules {
			for _, tc := range m.Tests {
				out = append(out, TestInfo{
					Suite:  s.Name,
					Module: m.Name,
					Name:   tc.Name,
					ID:     TestID(m.Name, tc.Name),
					Steps:  len(tc.Steps),
					Tags:   tc.Tags,
				})
			}
		}
	}
	return out
}
