// Package wasm builds small WebAssembly modules for the runtime library and
// its test fixtures.
//
// Modules are described with function imports, integer functions, one
// optional linear memory, and exports, then lowered onto a wabin module and
// encoded in the binary format. The output is handed to the sandbox host like
// any other compiled artifact.
package wasm

import (
	"fmt"
	"slices"

	"github.com/tetratelabs/wabin/binary"
	wabin "github.com/tetratelabs/wabin/wasm"
)

// ValType is a value type in the binary encoding.
type ValType = wabin.ValueType

const (
	ValI32 = wabin.ValueTypeI32
	ValI64 = wabin.ValueTypeI64
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (t FuncType) equal(o FuncType) bool {
	return slices.Equal(t.Params, o.Params) && slices.Equal(t.Results, o.Results)
}

func (t FuncType) String() string {
	names := func(ts []ValType) []string {
		out := make([]string, len(ts))
		for i, v := range ts {
			out[i] = wabin.ValueTypeName(v)
		}
		return out
	}
	return fmt.Sprintf("%v -> %v", names(t.Params), names(t.Results))
}

// Import is an imported function.
type Import struct {
	Module string
	Name   string
	Type   FuncType
}

// Func is a function defined by the module. Export is the export name, or
// empty to keep the function private.
type Func struct {
	Export string
	Type   FuncType
	Locals []ValType
	Body   []byte
}

// Memory declares the module's linear memory in 64 KiB pages.
type Memory struct {
	MinPages uint32
	Export   string
}

// Module is an in-memory module description.
type Module struct {
	Name    string // emitted in the name section when set
	Imports []Import
	Funcs   []Func
	Memory  *Memory
	Start   *uint32 // function index run at instantiation
}

// ImportFunc declares a function import and returns its function index.
// Imports occupy the front of the function index space, so ImportFunc panics
// once a function has been added.
func (m *Module) ImportFunc(module, name string, t FuncType) uint32 {
	if len(m.Funcs) > 0 {
		panic(fmt.Sprintf("wasm: import %s.%s declared after %d functions", module, name, len(m.Funcs)))
	}
	m.Imports = append(m.Imports, Import{Module: module, Name: name, Type: t})
	return uint32(len(m.Imports) - 1)
}

// AddFunc appends a function and returns its function index.
func (m *Module) AddFunc(f Func) uint32 {
	m.Funcs = append(m.Funcs, f)
	return uint32(len(m.Imports) + len(m.Funcs) - 1)
}

// FuncIndex returns the function index of the import (module, name).
func (m *Module) FuncIndex(module, name string) (uint32, bool) {
	for i, imp := range m.Imports {
		if imp.Module == module && imp.Name == name {
			return uint32(i), true
		}
	}
	return 0, false
}

// Encode returns the module in the binary format.
func (m *Module) Encode() []byte {
	return binary.EncodeModule(m.lower())
}

// lower translates m into wabin's section-oriented representation.
func (m *Module) lower() *wabin.Module {
	out := &wabin.Module{}
	types := m.collectTypes()
	for _, t := range types {
		out.TypeSection = append(out.TypeSection, &wabin.FunctionType{Params: t.Params, Results: t.Results})
	}
	typeIndex := func(t FuncType) wabin.Index {
		return wabin.Index(slices.IndexFunc(types, t.equal))
	}

	for _, imp := range m.Imports {
		out.ImportSection = append(out.ImportSection, &wabin.Import{
			Type:     wabin.ExternTypeFunc,
			Module:   imp.Module,
			Name:     imp.Name,
			DescFunc: typeIndex(imp.Type),
		})
	}

	for i, f := range m.Funcs {
		out.FunctionSection = append(out.FunctionSection, typeIndex(f.Type))
		body := append(slices.Clone(f.Body), wabin.OpcodeEnd)
		out.CodeSection = append(out.CodeSection, &wabin.Code{LocalTypes: f.Locals, Body: body})
		if f.Export != "" {
			out.ExportSection = append(out.ExportSection, &wabin.Export{
				Type:  wabin.ExternTypeFunc,
				Name:  f.Export,
				Index: wabin.Index(len(m.Imports) + i),
			})
		}
	}

	if m.Memory != nil {
		out.MemorySection = &wabin.Memory{Min: m.Memory.MinPages}
		if m.Memory.Export != "" {
			out.ExportSection = append(out.ExportSection, &wabin.Export{
				Type: wabin.ExternTypeMemory,
				Name: m.Memory.Export,
			})
		}
	}

	if m.Start != nil {
		start := *m.Start
		out.StartSection = &start
	}

	if m.Name != "" {
		out.NameSection = &wabin.NameSection{ModuleName: m.Name}
	}
	return out
}

// collectTypes returns the distinct signatures in first-use order.
func (m *Module) collectTypes() []FuncType {
	var types []FuncType
	add := func(t FuncType) {
		if !slices.ContainsFunc(types, t.equal) {
			types = append(types, t)
		}
	}
	for _, imp := range m.Imports {
		add(imp.Type)
	}
	for _, f := range m.Funcs {
		add(f.Type)
	}
	return types
}

// I32Func is shorthand for a signature of n i32 parameters and one i32
// result.
func I32Func(n int) FuncType {
	params := make([]ValType, n)
	for i := range params {
		params[i] = ValI32
	}
	return FuncType{Params: params, Results: []ValType{ValI32}}
}
