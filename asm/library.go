package asm

import (
	"slices"

	"github.com/chazu/schwasm/wasm"
)

// Primitive is one entry of the library table.
type Primitive struct {
	Name  string
	Arity int
	Eval  func(a, b int32) int32 // reference semantics
	emit  func(c *wasm.Code)
}

// Code returns the primitive's wasm function body.
func (p Primitive) Code() []byte {
	var c wasm.Code
	p.emit(&c)
	return c.Bytes()
}

// Type returns the primitive's wasm signature.
func (p Primitive) Type() wasm.FuncType {
	return wasm.I32Func(p.Arity)
}

var library = []Primitive{
	{
		Name:  NameSete,
		Arity: 2,
		Eval:  Sete,
		emit: func(c *wasm.Code) {
			c.I32Const(SeteTrue).I32Const(SeteFalse).LocalGet(0).Select()
		},
	},
	{
		Name:  NameSall,
		Arity: 2,
		Eval:  Sall,
		emit: func(c *wasm.Code) {
			c.LocalGet(0).LocalGet(1).I32Shl()
		},
	},
	{
		Name:  NameCmpl,
		Arity: 2,
		Eval:  Cmpl,
		emit: func(c *wasm.Code) {
			// (a > b) - (a < b)
			c.LocalGet(0).LocalGet(1).I32GtS()
			c.LocalGet(0).LocalGet(1).I32LtS()
			c.I32Sub()
		},
	},
}

// Library returns the primitive table in export order.
func Library() []Primitive {
	return slices.Clone(library)
}

// Lookup finds a primitive by export name.
func Lookup(name string) (Primitive, bool) {
	i := slices.IndexFunc(library, func(p Primitive) bool { return p.Name == name })
	if i < 0 {
		return Primitive{}, false
	}
	return library[i], true
}

// Module encodes the library as a standalone wasm module. It has no imports
// and exports one function per primitive.
func Module() []byte {
	m := wasm.Module{Name: Namespace}
	for _, p := range library {
		m.AddFunc(wasm.Func{Export: p.Name, Type: p.Type(), Body: p.Code()})
	}
	return m.Encode()
}
