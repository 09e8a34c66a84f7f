package suite

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"leakctl/pkg/logging"

	"gopkg.in/yaml.v3"
)

//go:embed suites/default.yaml
var defaultSuite []byte

// Default returns the built-in suite.
func Default() *Suite {
	s, err := Parse(defaultSuite, "builtin:default")
	if err != nil {
		// The embedded suite is covered by tests.
		panic(fmt.Sprintf("built-in suite is invalid: %v", err))
	}
	return s
}

// Load reads and validates the suite file at path.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite %s: %w", path, err)
	}
	s, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	logging.Debug("Suite", "Loaded suite %q from %s (%d modules)", s.Name, path, len(s.Modules))
	return s, nil
}

// LoadAll loads every path. Directories contribute their *.yaml and *.yml
// files in lexical order.
func LoadAll(paths []string) ([]*Suite, error) {
	var suites []*Suite
	for _, p := range paths {
		files, err := expand(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			s, err := Load(f)
			if err != nil {
				return nil, err
			}
			suites = append(suites, s)
		}
	}
	return suites, nil
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite directory %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	return files, nil
}

// Parse decodes and validates a suite. source names it in errors.
func Parse(data []byte, source string) (*Suite, error) {
	var s Suite
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse suite %s: %w", source, err)
	}
	s.Source = source
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite %s: %w", source, err)
	}
	return &s, nil
}

// Validate checks module, test and step structure.
func (s *Suite) Validate() error {
	tests := 0
	for _, m := range s.Modules {
		if m.Name == "" {
			return fmt.Errorf("%w: module without name", ErrInvalidStep)
		}
		hooks := []struct {
			stage string
			steps []Step
		}{
			{"before", m.Before},
			{"beforeEach", m.BeforeEach},
			{"afterEach", m.AfterEach},
			{"after", m.After},
		}
		for _, hook := range hooks {
			stage := hook.stage
			for i, st := range hook.steps {
				if st.Action == ActionAssert {
					return fmt.Errorf("module %q %s step %d: %w: assert is only allowed in tests", m.Name, stage, i+1, ErrInvalidStep)
				}
				if err := st.validate(); err != nil {
					return fmt.Errorf("module %q %s step %d: %w", m.Name, stage, i+1, err)
				}
			}
		}
		for _, tc := range m.Tests {
			if tc.Name == "" {
				return fmt.Errorf("module %q: test without name", m.Name)
			}
			for i, st := range tc.Steps {
				if err := st.validate(); err != nil {
					return fmt.Errorf("test %q step %d: %w", TestID(m.Name, tc.Name), i+1, err)
				}
			}
			tests++
		}
	}
	if tests == 0 {
		return ErrNoTests
	}
	return nil
}

func (st Step) validate() error {
	switch st.Action {
	case ActionBoot, ActionRetain, ActionRelease, ActionTeardown:
		for _, m := range st.Mounts {
			if m.Engine == "" {
				return fmt.Errorf("%w: mount without engine", ErrInvalidStep)
			}
		}
	case ActionMount:
		if st.Engine == "" {
			return fmt.Errorf("%w: mount requires engine", ErrInvalidStep)
		}
	case ActionRender:
		if st.Component == "" {
			return fmt.Errorf("%w: render requires component", ErrInvalidStep)
		}
	case ActionAssert:
		switch st.Check {
		case CheckAlive, CheckDestroyed, CheckChildren:
		case CheckRendered:
			if st.Component == "" {
				return fmt.Errorf("%w: rendered check requires component", ErrInvalidStep)
			}
		default:
			return fmt.Errorf("%w: unknown check %q", ErrInvalidStep, st.Check)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, st.Action)
	}
	return nil
}

// Filter keeps the modules whose name contains module and, within them, the
// tests whose name contains test. Empty filters match everything. Suites
// left without tests are dropped; ErrNoTests is returned when nothing
// matches.
func Filter(suites []*Suite, module, test string) ([]*Suite, error) {
	var out []*Suite
	for _, s := range suites {
		filtered := &Suite{Name: s.Name, Description: s.Description, Source: s.Source}
		for _, m := range s.Modules {
			if module != "" && !strings.Contains(m.Name, module) {
				continue
			}
			fm := m
			fm.Tests = slices.DeleteFunc(slices.Clone(m.Tests), func(tc TestCase) bool {
				return test != "" && !strings.Contains(tc.Name, test)
			})
			if len(fm.Tests) > 0 {
				filtered.Modules = append(filtered.Modules, fm)
			}
		}
		if len(filtered.Modules) > 0 {
			out = append(out, filtered)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w match module %q and test %q", ErrNoTests, module, test)
	}
	return out, nil
}
