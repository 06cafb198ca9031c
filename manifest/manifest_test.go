package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "hello"
version = "0.1.0"

[program]
path = "build/compiled.wasm"
entry = "main"

[libraries.asm-x86]
path = "build/asm_x86.wasm"

[libraries.ordering]
path = "build/ordering.wasm"
namespace = "ord"
after = ["asm-x86"]

[[tests]]
suite = "build/tests.wasm"
func = "test_sall"
want = 1024

[[tests]]
suite = "build/tests.wasm"
func = "test_cmpl_lt"
want = -1
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "hello" {
		t.Errorf("project name = %q, want hello", m.Project.Name)
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("project version = %q, want 0.1.0", m.Project.Version)
	}
	if m.Program.Path != "build/compiled.wasm" {
		t.Errorf("program path = %q", m.Program.Path)
	}
	if m.Program.Entry != "main" {
		t.Errorf("program entry = %q, want main", m.Program.Entry)
	}
	if len(m.Libraries) != 2 {
		t.Errorf("libraries count = %d, want 2", len(m.Libraries))
	}
	if lib := m.Libraries["ordering"]; lib.Namespace != "ord" || len(lib.After) != 1 || lib.After[0] != "asm-x86" {
		t.Errorf("ordering library = %+v", lib)
	}
	if len(m.Tests) != 2 {
		t.Fatalf("tests count = %d, want 2", len(m.Tests))
	}
	if m.Tests[1].Want != -1 {
		t.Errorf("tests[1].want = %d, want -1", m.Tests[1].Want)
	}
	if got, want := m.ProgramPath(), filepath.Join(m.Dir, "build", "compiled.wasm"); got != want {
		t.Errorf("ProgramPath() = %q, want %q", got, want)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "minimal"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Program.Entry != "scheme_entry" {
		t.Errorf("default entry = %q, want scheme_entry", m.Program.Entry)
	}
	if m.ProgramPath() != "" {
		t.Errorf("ProgramPath() = %q, want empty", m.ProgramPath())
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[project\nname = 1"},
		{"test without func", "[[tests]]\nsuite = \"t.wasm\"\n"},
		{"want out of range", "[[tests]]\nsuite = \"t.wasm\"\nfunc = \"f\"\nwant = 4294967296\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tc.content)
			if _, err := Load(dir); err == nil {
				t.Error("Load succeeded")
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load of empty directory succeeded")
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, dir, `[project]
name = "found-project"
`)

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no schwasm.toml exists")
	}
}

func TestSuites(t *testing.T) {
	m := &Manifest{
		Dir: "/app",
		Tests: []TestCase{
			{Suite: "a.wasm", Func: "f", Want: 1},
			{Suite: "/abs/b.wasm", Func: "g", Want: 2},
			{Suite: "a.wasm", Func: "h", Want: 3},
		},
	}

	suites := m.Suites()
	if len(suites) != 2 {
		t.Fatalf("expected 2 suites, got %d", len(suites))
	}
	if suites[0].Path != "/app/a.wasm" || len(suites[0].Cases) != 2 {
		t.Errorf("suites[0] = %+v", suites[0])
	}
	if suites[1].Path != "/abs/b.wasm" || len(suites[1].Cases) != 1 {
		t.Errorf("suites[1] = %+v", suites[1])
	}
	if suites[0].Cases[1].Func != "h" {
		t.Errorf("suites[0] cases out of order: %+v", suites[0].Cases)
	}
}
