package asm

import (
	"github.com/chazu/schwasm/value"
	"github.com/chazu/schwasm/wasm"
)

// Expectation pairs a test-suite export with the word it must return.
type Expectation struct {
	Func string
	Want int32
}

// SuiteExpectations lists every export of TestSuite with its expected result.
var SuiteExpectations = []Expectation{
	{"test_sete_eq", 255},
	// 99 is carried over verbatim from the captured fixture of the native
	// library. It is a marker for "sete reported not-equal", not a tagged
	// value, and was not re-derived from the tag scheme.
	{"test_sete_ne", 99},
	{"test_sall", 4 << 8},
	{"test_cmpl_lt", -1},
	{"test_cmpl_eq", 0},
	{"test_cmpl_gt", 1},
	{"test_emit_is_equal_to", int32(value.EncodeBool(true))},
	{"test_emit_is_not_equal_to", int32(value.EncodeBool(false))},
}

// imports holds the function indices of the library primitives inside a
// dependent module.
type imports struct {
	sete, sall, cmpl uint32
}

// importLibrary declares every primitive as a Namespace import on m.
func importLibrary(m *wasm.Module) imports {
	var ix imports
	for _, p := range library {
		idx := m.ImportFunc(Namespace, p.Name, p.Type())
		switch p.Name {
		case NameSete:
			ix.sete = idx
		case NameSall:
			ix.sall = idx
		case NameCmpl:
			ix.cmpl = idx
		}
	}
	return ix
}

// emitIsEqualTo writes the code the compiler emits for (= a b) on two
// fixnum words: compare, set the equal byte, then move its low bit into the
// boolean payload position and add the boolean tag.
func emitIsEqualTo(c *wasm.Code, ix imports, a, b value.Word) {
	l := value.DefaultLayout()
	c.I32Const(int32(a)).I32Const(int32(b)).Call(ix.cmpl)
	c.I32Eqz()
	c.I32Const(0).Call(ix.sete)
	c.I32Const(1).I32And()
	c.I32Const(int32(l.Bool.Shift)).Call(ix.sall)
	c.I32Const(int32(l.Bool.Value)).I32Or()
}

// TestSuite builds the library test module. Every export takes no arguments
// and exercises one or more primitives through the Namespace imports.
func TestSuite() []byte {
	m := wasm.Module{Name: "tests"}
	ix := importLibrary(&m)

	add := func(name string, emit func(c *wasm.Code)) {
		var c wasm.Code
		emit(&c)
		m.AddFunc(wasm.Func{Export: name, Type: wasm.I32Func(0), Body: c.Bytes()})
	}

	add("test_sete_eq", func(c *wasm.Code) {
		c.I32Const(4).I32Const(4).Call(ix.cmpl).I32Eqz()
		c.I32Const(20).Call(ix.sete)
	})
	add("test_sete_ne", func(c *wasm.Code) {
		c.I32Const(4).I32Const(8).Call(ix.cmpl).I32Eqz()
		c.I32Const(20).Call(ix.sete)
		c.I32Eqz().If(wasm.ValI32).I32Const(99).Else().I32Const(0).End()
	})
	add("test_sall", func(c *wasm.Code) {
		c.I32Const(4).I32Const(8).Call(ix.sall)
	})
	add("test_cmpl_lt", func(c *wasm.Code) {
		c.I32Const(4).I32Const(8).Call(ix.cmpl)
	})
	add("test_cmpl_eq", func(c *wasm.Code) {
		c.I32Const(4).I32Const(4).Call(ix.cmpl)
	})
	add("test_cmpl_gt", func(c *wasm.Code) {
		c.I32Const(8).I32Const(4).Call(ix.cmpl)
	})
	add("test_emit_is_equal_to", func(c *wasm.Code) {
		emitIsEqualTo(c, ix, value.EncodeFixnum(3), value.EncodeFixnum(3))
	})
	add("test_emit_is_not_equal_to", func(c *wasm.Code) {
		emitIsEqualTo(c, ix, value.EncodeFixnum(3), value.EncodeFixnum(4))
	})

	return m.Encode()
}

// Program builds a compiled-program module whose entry point returns w.
// It imports nothing.
func Program(w value.Word) []byte {
	var c wasm.Code
	c.I32Const(int32(w))

	m := wasm.Module{Name: "compiled"}
	m.AddFunc(wasm.Func{Export: EntryPoint, Type: wasm.I32Func(0), Body: c.Bytes()})
	return m.Encode()
}

// EqualProgram builds a compiled-program module for (= a b). Its entry
// point returns a boolean word computed through the library imports.
func EqualProgram(a, b int32) []byte {
	m := wasm.Module{Name: "compiled"}
	ix := importLibrary(&m)

	var c wasm.Code
	emitIsEqualTo(&c, ix, value.EncodeFixnum(a), value.EncodeFixnum(b))
	m.AddFunc(wasm.Func{Export: EntryPoint, Type: wasm.I32Func(0), Body: c.Bytes()})
	return m.Encode()
}
