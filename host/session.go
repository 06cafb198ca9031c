// Package host loads WebAssembly modules, links one module's exports into
// another's imports under a caller-chosen namespace, and invokes entry
// points.
//
// The sandbox itself is wazero. This package adds the linkage contract on
// top of it:
//
//	s, _ := host.NewSession(ctx)
//	defer s.Close(ctx)
//
//	lib, _ := s.Load(ctx, "asm_x86.wasm")
//	libInst, _ := s.Instantiate(ctx, lib, nil)
//
//	env := host.NewEnv()
//	env.Publish(libInst, "asm_x86")
//
//	prog, _ := s.Load(ctx, "compiled.wasm")
//	progInst, _ := s.Instantiate(ctx, prog, env)
//	word, _ := progInst.Invoke(ctx, "scheme_entry")
//
// Every import is resolved against the Env before the dependent module is
// instantiated; nothing is linked lazily. A Session is single-threaded.
package host

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tetratelabs/wabin/leb128"
	wabin "github.com/tetratelabs/wabin/wasm"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("schwasm.host")

type config struct {
	interpreter bool
	cacheDir    string
}

// Option configures a Session.
type Option func(*config)

// WithInterpreter selects wazero's interpreter instead of its compiler.
func WithInterpreter() Option {
	return func(c *config) { c.interpreter = true }
}

// WithCompilationCacheDir persists wazero's compiled code under dir.
func WithCompilationCacheDir(dir string) Option {
	return func(c *config) { c.cacheDir = dir }
}

// Session owns one sandbox runtime and everything instantiated in it.
type Session struct {
	runtime wazero.Runtime
	store   *ContentStore
	hosts   map[string]*hostModule
	nextID  uint64
}

// NewSession creates a session.
func NewSession(ctx context.Context, opts ...Option) (*Session, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	rc := wazero.NewRuntimeConfig()
	if cfg.interpreter {
		rc = wazero.NewRuntimeConfigInterpreter()
	}
	if cfg.cacheDir != "" {
		cache, err := wazero.NewCompilationCacheWithDir(cfg.cacheDir)
		if err != nil {
			return nil, fmt.Errorf("compilation cache %s: %w", cfg.cacheDir, err)
		}
		rc = rc.WithCompilationCache(cache)
	}

	return &Session{
		runtime: wazero.NewRuntimeWithConfig(ctx, rc),
		store:   NewContentStore(),
		hosts:   make(map[string]*hostModule),
	}, nil
}

// Close releases every module and instance created by the session.
func (s *Session) Close(ctx context.Context) error {
	return s.runtime.Close(ctx)
}

// Module is a compiled, not yet instantiated, module.
type Module struct {
	Name     string // path or caller-supplied label
	Digest   [32]byte
	compiled wazero.CompiledModule
	start    bool // declares a start function
}

// Import describes one function a module imports.
type Import struct {
	Namespace string
	Name      string
	Params    []api.ValueType
	Results   []api.ValueType
}

// Imports lists the module's function imports in declaration order.
func (m *Module) Imports() []Import {
	defs := m.compiled.ImportedFunctions()
	out := make([]Import, 0, len(defs))
	for _, def := range defs {
		ns, name, _ := def.Import()
		out = append(out, Import{
			Namespace: ns,
			Name:      name,
			Params:    def.ParamTypes(),
			Results:   def.ResultTypes(),
		})
	}
	return out
}

// Exports lists the module's exported function names, sorted.
func (m *Module) Exports() []string {
	var names []string
	for name := range m.compiled.ExportedFunctions() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Load reads and compiles the module at path.
func (s *Session) Load(ctx context.Context, path string) (*Module, error) {
	bin, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return s.LoadBytes(ctx, path, bin)
}

// LoadBytes compiles an in-memory module. name labels it in errors and
// instance names.
func (s *Session) LoadBytes(ctx context.Context, name string, bin []byte) (*Module, error) {
	digest := Digest(bin)
	if cm := s.store.Lookup(digest); cm != nil {
		log.Debugf("reusing compiled module %s (%x)", name, digest[:6])
		return &Module{Name: name, Digest: digest, compiled: cm, start: hasStartSection(bin)}, nil
	}

	cm, err := s.runtime.CompileModule(ctx, bin)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	s.store.Index(digest, cm)
	log.Debugf("compiled %s (%d bytes, %x)", name, len(bin), digest[:6])
	return &Module{Name: name, Digest: digest, compiled: cm, start: hasStartSection(bin)}, nil
}

// hasStartSection reports whether bin declares a start function. Only
// section headers are read; bin has already been compiled.
func hasStartSection(bin []byte) bool {
	r := bytes.NewReader(bin)
	if _, err := r.Seek(8, io.SeekStart); err != nil {
		return false
	}
	for {
		id, err := r.ReadByte()
		if err != nil {
			return false
		}
		if id == wabin.SectionIDStart {
			return true
		}
		size, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return false
		}
		if _, err := r.Seek(int64(size), io.SeekCurrent); err != nil {
			return false
		}
	}
}

// instanceName gives each instance a unique runtime name, so namespaces
// chosen by callers never collide with instantiated modules.
func (s *Session) instanceName(label string) string {
	s.nextID++
	base := strings.TrimSuffix(filepath.Base(label), filepath.Ext(label))
	if base == "" || base == "." {
		base = "module"
	}
	return fmt.Sprintf("%s#%d", base, s.nextID)
}
