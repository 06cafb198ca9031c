package host

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
)

// Instance is a live module.
type Instance struct {
	Name   string
	Module *Module
	mod    api.Module
}

// Instantiate links mod against env and creates an instance. Every function
// import is checked first; the first import env cannot satisfy is reported
// as a *LinkError and no code in mod runs. Once linked, a fault in mod's
// start function is reported as a *TrapError with Function "start". A nil
// env links a module that has no imports.
func (s *Session) Instantiate(ctx context.Context, mod *Module, env *Env) (*Instance, error) {
	if env == nil {
		env = NewEnv()
	}

	if mems := mod.compiled.ImportedMemories(); len(mems) > 0 {
		ns, name, _ := mems[0].Import()
		return nil, &LinkError{Module: mod.Name, Namespace: ns, Name: name,
			Reason: "memory imports are not supported"}
	}

	var needed []*namespace
	for _, imp := range mod.Imports() {
		b, ok := env.Lookup(imp.Namespace, imp.Name)
		if !ok {
			return nil, &LinkError{Module: mod.Name, Namespace: imp.Namespace, Name: imp.Name,
				Reason: "unresolved import"}
		}
		if !slices.Equal(b.Params, imp.Params) || !slices.Equal(b.Results, imp.Results) {
			return nil, &LinkError{Module: mod.Name, Namespace: imp.Namespace, Name: imp.Name,
				Reason: fmt.Sprintf("signature mismatch: imported as %s, %s exports %s",
					signature(imp.Params, imp.Results), b.Source, signature(b.Params, b.Results))}
		}
		if table := env.namespaces[imp.Namespace]; !slices.Contains(needed, table) {
			needed = append(needed, table)
		}
	}

	for _, table := range needed {
		if err := s.bind(ctx, table); err != nil {
			return nil, &LinkError{Module: mod.Name, Namespace: table.name, Reason: err.Error(), Err: err}
		}
	}

	name := s.instanceName(mod.Name)
	cfg := wazero.NewModuleConfig().WithName(name).WithStartFunctions()
	m, err := s.runtime.InstantiateModule(ctx, mod.compiled, cfg)
	if err != nil {
		var exit *sys.ExitError
		if mod.start || errors.As(err, &exit) {
			return nil, &TrapError{Module: name, Function: "start", Err: err}
		}
		return nil, &LinkError{Module: mod.Name, Reason: err.Error(), Err: err}
	}
	log.Debugf("instantiated %s as %s", mod.Name, name)
	return &Instance{Name: name, Module: mod, mod: m}, nil
}

// Exports lists the instance's exported function names, sorted.
func (i *Instance) Exports() []string {
	return i.Module.Exports()
}

// Invoke calls the exported function name with i32 arguments and returns
// its single i32 result. The export must take exactly len(args) i32
// parameters and return one i32, otherwise a *CallSignatureError is
// returned. A fault during the call is a *TrapError; the instance and the
// session stay usable.
func (i *Instance) Invoke(ctx context.Context, name string, args ...int32) (int32, error) {
	fn := i.mod.ExportedFunction(name)
	if fn == nil {
		return 0, &CallSignatureError{Module: i.Name, Function: name, Reason: "no such exported function"}
	}

	def := fn.Definition()
	want := make([]api.ValueType, len(args))
	for j := range want {
		want[j] = api.ValueTypeI32
	}
	if !slices.Equal(def.ParamTypes(), want) || !slices.Equal(def.ResultTypes(), []api.ValueType{api.ValueTypeI32}) {
		return 0, &CallSignatureError{Module: i.Name, Function: name,
			Reason: fmt.Sprintf("export is %s, called as %s",
				signature(def.ParamTypes(), def.ResultTypes()),
				signature(want, []api.ValueType{api.ValueTypeI32}))}
	}

	params := make([]uint64, len(args))
	for j, a := range args {
		params[j] = api.EncodeI32(a)
	}
	res, err := fn.Call(ctx, params...)
	if err != nil {
		return 0, &TrapError{Module: i.Name, Function: name, Err: err}
	}
	return api.DecodeI32(res[0]), nil
}

// Close releases the instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.mod.Close(ctx)
}

func signature(params, results []api.ValueType) string {
	names := func(ts []api.ValueType) string {
		s := make([]string, len(ts))
		for i, t := range ts {
			s[i] = api.ValueTypeName(t)
		}
		return "(" + strings.Join(s, ", ") + ")"
	}
	return names(params) + " -> " + names(results)
}
