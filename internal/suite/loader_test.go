package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSuite(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalSuite = `
modules:
  - name: rendering
    tests:
      - name: it renders
        steps:
          - action: boot
          - action: render
            component: static-component
          - action: assert
            check: rendered
            component: static-component
`

func TestDefault(t *testing.T) {
	s := Default()
	require.NotNil(t, s)
	assert.Equal(t, "default", s.Name)
	require.Len(t, s.Modules, 2)
	assert.Equal(t, "Integration | Component | leaking-component", s.Modules[0].Name)

	tests := List([]*Suite{s})
	require.Len(t, tests, 3)
	assert.Equal(t, "Integration | Component | leaking-component: it renders", tests[0].ID)
	assert.Equal(t, []string{"engines"}, tests[2].Tags)
}

func TestLoad_NameDefaultsToFileBase(t *testing.T) {
	path := writeSuite(t, t.TempDir(), "rendering.yaml", minimalSuite)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rendering", s.Name)
	assert.Equal(t, path, s.Source)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read suite")
}

func TestLoadAll_Directory(t *testing.T) {
	dir := t.TempDir()
	writeSuite(t, dir, "b.yml", minimalSuite)
	writeSuite(t, dir, "a.yaml", minimalSuite)
	writeSuite(t, dir, "notes.txt", "not a suite")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0755))

	suites, err := LoadAll([]string{dir})
	require.NoError(t, err)
	require.Len(t, suites, 2)
	assert.Equal(t, "a", suites[0].Name)
	assert.Equal(t, "b", suites[1].Name)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		wantMsg string
	}{
		{
			name:    "malformed",
			content: "modules: [",
			wantMsg: "failed to parse suite",
		},
		{
			name:    "unknown field",
			content: "modules:\n  - name: m\n    testz: []\n",
			wantMsg: "failed to parse suite",
		},
		{
			name:    "no tests",
			content: "modules:\n  - name: m\n",
			wantErr: ErrNoTests,
		},
		{
			name:    "unknown action",
			content: "modules:\n  - name: m\n    tests:\n      - name: t\n        steps:\n          - action: explode\n",
			wantErr: ErrUnknownAction,
		},
		{
			name:    "render without component",
			content: "modules:\n  - name: m\n    tests:\n      - name: t\n        steps:\n          - action: render\n",
			wantErr: ErrInvalidStep,
		},
		{
			name:    "mount without engine",
			content: "modules:\n  - name: m\n    tests:\n      - name: t\n        steps:\n          - action: mount\n",
			wantErr: ErrInvalidStep,
		},
		{
			name:    "unknown check",
			content: "modules:\n  - name: m\n    tests:\n      - name: t\n        steps:\n          - action: assert\n            check: shiny\n",
			wantErr: ErrInvalidStep,
		},
		{
			name:    "assert in hook",
			content: "modules:\n  - name: m\n    afterEach:\n      - action: assert\n        check: alive\n    tests:\n      - name: t\n        steps: []\n",
			wantErr: ErrInvalidStep,
			wantMsg: "afterEach step 1",
		},
		{
			name:    "module without name",
			content: "modules:\n  - tests:\n      - name: t\n        steps: []\n",
			wantErr: ErrInvalidStep,
		},
		{
			name:    "test without name",
			content: "modules:\n  - name: m\n    tests:\n      - steps: []\n",
			wantMsg: "test without name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), "inline.yaml")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	suites := []*Suite{Default()}

	filtered, err := Filter(suites, "clean-component", "")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Len(t, filtered[0].Modules, 1)
	assert.Len(t, filtered[0].Modules[0].Tests, 2)

	filtered, err = Filter(suites, "", "second engine")
	require.NoError(t, err)
	tests := List(filtered)
	require.Len(t, tests, 1)
	assert.Equal(t, "it mounts a second engine", tests[0].Name)

	// The input is left untouched.
	assert.Len(t, List(suites), 3)

	_, err = Filter(suites, "nothing", "")
	assert.ErrorIs(t, err, ErrNoTests)

	all, err := Filter(suites, "", "")
	require.NoError(t, err)
	assert.Len(t, List(all), 3)
}
