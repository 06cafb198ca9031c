package host

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/tetratelabs/wazero/api"
)

// Binding is one callable published under (Namespace, Name).
type Binding struct {
	Namespace string
	Name      string
	Params    []api.ValueType
	Results   []api.ValueType
	Source    string // instance that exported it

	fn api.Function
}

// namespace is the set of bindings one Publish call created. Its identity
// tells the session whether a materialized host module is still current.
type namespace struct {
	name     string
	bindings map[string]Binding
}

// Env maps (namespace, name) to callables. It is built before the module
// that consumes it is instantiated and is read only at instantiation time.
type Env struct {
	namespaces map[string]*namespace
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{namespaces: make(map[string]*namespace)}
}

// Publish exposes every exported function of inst under ns. Publishing to a
// namespace that already exists replaces it entirely; the last registration
// wins and no uniqueness is enforced.
func (e *Env) Publish(inst *Instance, ns string) {
	table := &namespace{name: ns, bindings: make(map[string]Binding)}
	for name, def := range inst.mod.ExportedFunctionDefinitions() {
		table.bindings[name] = Binding{
			Namespace: ns,
			Name:      name,
			Params:    def.ParamTypes(),
			Results:   def.ResultTypes(),
			Source:    inst.Name,
			fn:        inst.mod.ExportedFunction(name),
		}
	}
	if _, ok := e.namespaces[ns]; ok {
		log.Debugf("namespace %q republished from %s", ns, inst.Name)
	}
	e.namespaces[ns] = table
	log.Infof("published %d exports of %s as %q", len(table.bindings), inst.Name, ns)
}

// Lookup returns the binding for (ns, name).
func (e *Env) Lookup(ns, name string) (Binding, bool) {
	table, ok := e.namespaces[ns]
	if !ok {
		return Binding{}, false
	}
	b, ok := table.bindings[name]
	return b, ok
}

// Namespaces returns the published namespace names, sorted.
func (e *Env) Namespaces() []string {
	return slices.Sorted(maps.Keys(e.namespaces))
}

// ---------------------------------------------------------------------------
// Materialized namespaces
// ---------------------------------------------------------------------------

// hostModule is a namespace turned into a runtime module so that wazero's
// import resolution can find it by name.
type hostModule struct {
	table *namespace
	mod   api.Module
}

// bind makes table resolvable under its name in the runtime. A namespace
// that was republished since it was last materialized is rebuilt.
func (s *Session) bind(ctx context.Context, table *namespace) error {
	if h, ok := s.hosts[table.name]; ok {
		if h.table == table {
			return nil
		}
		if err := h.mod.Close(ctx); err != nil {
			return fmt.Errorf("closing namespace %q: %w", table.name, err)
		}
		delete(s.hosts, table.name)
	}

	b := s.runtime.NewHostModuleBuilder(table.name)
	for _, name := range slices.Sorted(maps.Keys(table.bindings)) {
		binding := table.bindings[name]
		b.NewFunctionBuilder().
			WithGoModuleFunction(forward(binding.fn), binding.Params, binding.Results).
			Export(name)
	}
	mod, err := b.Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("materializing namespace %q: %w", table.name, err)
	}
	s.hosts[table.name] = &hostModule{table: table, mod: mod}
	return nil
}

// forward calls fn with the caller's stack. A fault inside fn aborts the
// calling module's invocation too.
func forward(fn api.Function) api.GoModuleFunc {
	return func(ctx context.Context, _ api.Module, stack []uint64) {
		if err := fn.CallWithStack(ctx, stack); err != nil {
			panic(err)
		}
	}
}
