// Package manifest handles schwasm.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/chazu/schwasm/asm"
)

// FileName is the project file Load and FindAndLoad look for.
const FileName = "schwasm.toml"

// Manifest represents a schwasm.toml project configuration.
type Manifest struct {
	Project   Project            `toml:"project"`
	Program   Program            `toml:"program"`
	Libraries map[string]Library `toml:"libraries"`
	Tests     []TestCase         `toml:"tests"`

	// Dir is the directory containing the schwasm.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Program is the compiled program module and its entry point.
type Program struct {
	Path  string `toml:"path"`
	Entry string `toml:"entry"`
}

// Library is a module published under Namespace before the program runs.
type Library struct {
	Path      string   `toml:"path"`
	Namespace string   `toml:"namespace"`
	After     []string `toml:"after"` // libraries that must be published first
}

// TestCase is one expected result of a library test suite.
type TestCase struct {
	Suite string `toml:"suite"`
	Func  string `toml:"func"`
	Want  int32  `toml:"want"`
}

// Suite groups the test cases that share a suite module.
type Suite struct {
	Path  string // absolute
	Cases []TestCase
}

// Load parses a schwasm.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Program.Entry == "" {
		m.Program.Entry = asm.EntryPoint
	}
	for i, tc := range m.Tests {
		if tc.Suite == "" || tc.Func == "" {
			return nil, fmt.Errorf("%s: tests[%d] needs suite and func", path, i)
		}
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a schwasm.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Abs resolves p relative to the manifest directory.
func (m *Manifest) Abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// ProgramPath returns the absolute path of the program module, or "" when
// the manifest names none.
func (m *Manifest) ProgramPath() string {
	if m.Program.Path == "" {
		return ""
	}
	return m.Abs(m.Program.Path)
}

// Suites groups Tests by suite module, in order of first appearance.
func (m *Manifest) Suites() []Suite {
	var out []Suite
	index := make(map[string]int)
	for _, tc := range m.Tests {
		path := m.Abs(tc.Suite)
		i, ok := index[path]
		if !ok {
			i = len(out)
			index[path] = i
			out = append(out, Suite{Path: path})
		}
		out[i].Cases = append(out[i].Cases, tc)
	}
	return out
}
