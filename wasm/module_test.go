package wasm

import (
	"bytes"
	"testing"

	"github.com/tetratelabs/wabin/binary"
	wabin "github.com/tetratelabs/wabin/wasm"
)

func TestI32ConstImmediates(t *testing.T) {
	tests := []struct {
		v    int32
		want []byte
	}{
		{0, []byte{0x41, 0x00}},
		{42, []byte{0x41, 0x2A}},
		{-1, []byte{0x41, 0x7F}},
		{64, []byte{0x41, 0xC0, 0x00}},
		{-65, []byte{0x41, 0xBF, 0x7F}},
		{255, []byte{0x41, 0xFF, 0x01}},
		{1024, []byte{0x41, 0x80, 0x08}},
		{-2147483648, []byte{0x41, 0x80, 0x80, 0x80, 0x80, 0x78}},
	}
	for _, tt := range tests {
		var c Code
		if got := c.I32Const(tt.v).Bytes(); !bytes.Equal(got, tt.want) {
			t.Errorf("I32Const(%d) = % x, want % x", tt.v, got, tt.want)
		}
	}
}

func TestEncodeEmptyModule(t *testing.T) {
	var m Module
	want := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	if got := m.Encode(); !bytes.Equal(got, want) {
		t.Errorf("Encode() = % x, want % x", got, want)
	}
}

func TestEncodeConstantFunction(t *testing.T) {
	var c Code
	c.I32Const(42)

	var m Module
	m.AddFunc(Func{Export: "f", Type: I32Func(0), Body: c.Bytes()})

	want := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7F, // type
		0x03, 0x02, 0x01, 0x00, // function
		0x07, 0x05, 0x01, 0x01, 'f', 0x00, 0x00, // export
		0x0A, 0x06, 0x01, 0x04, 0x00, 0x41, 0x2A, 0x0B, // code
	}
	if got := m.Encode(); !bytes.Equal(got, want) {
		t.Errorf("Encode() =\n% x\nwant\n% x", got, want)
	}
}

func TestEncodeImportsShareTypes(t *testing.T) {
	var m Module
	a := m.ImportFunc("lib", "a", I32Func(2))
	b := m.ImportFunc("lib", "b", I32Func(2))
	if a != 0 || b != 1 {
		t.Fatalf("import indices = %d, %d, want 0, 1", a, b)
	}

	var c Code
	c.I32Const(1).I32Const(2).Call(b)
	f := m.AddFunc(Func{Export: "g", Type: I32Func(0), Body: c.Bytes()})
	if f != 2 {
		t.Errorf("AddFunc index = %d, want 2", f)
	}

	if got := m.collectTypes(); len(got) != 2 {
		t.Errorf("collectTypes() = %v, want 2 distinct types", got)
	}
	if idx, ok := m.FuncIndex("lib", "b"); !ok || idx != 1 {
		t.Errorf("FuncIndex(lib, b) = %d, %v", idx, ok)
	}
	if _, ok := m.FuncIndex("lib", "missing"); ok {
		t.Error("FuncIndex(lib, missing) found an import")
	}

	out := m.Encode()
	if !bytes.Contains(out, []byte("\x03lib\x01a\x00\x00")) {
		t.Error("import lib.a not encoded with type 0")
	}
}

func TestImportAfterFuncPanics(t *testing.T) {
	var m Module
	m.AddFunc(Func{Type: I32Func(0), Body: new(Code).I32Const(0).Bytes()})

	defer func() {
		if recover() == nil {
			t.Error("ImportFunc after AddFunc did not panic")
		}
		if len(m.Imports) != 0 {
			t.Errorf("imports = %v, want none", m.Imports)
		}
	}()
	m.ImportFunc("lib", "late", I32Func(1))
}

func TestEncodeGroupsLocals(t *testing.T) {
	m := Module{}
	m.AddFunc(Func{Type: FuncType{}, Locals: []ValType{ValI32, ValI32, ValI64, ValI32}})
	want := []byte{0x03, 0x02, 0x7F, 0x01, 0x7E, 0x01, 0x7F, 0x0B}
	if out := m.Encode(); !bytes.HasSuffix(out, want) {
		t.Errorf("code entry = % x, want suffix % x", out, want)
	}
}

func TestEncodeNameSection(t *testing.T) {
	m := Module{Name: "asm_x86"}
	out := m.Encode()
	want := append([]byte{0x00, 0x0F, 0x04}, "name\x00\x08\x07asm_x86"...)
	if !bytes.HasSuffix(out, want) {
		t.Errorf("name section = % x, want suffix % x", out[8:], want)
	}
}

func TestEncodeMemoryExport(t *testing.T) {
	m := Module{Memory: &Memory{MinPages: 1, Export: "memory"}}
	out := m.Encode()
	if !bytes.Contains(out, []byte{wabin.SectionIDMemory, 0x03, 0x01, 0x00, 0x01}) {
		t.Errorf("memory section missing in % x", out)
	}
	if !bytes.Contains(out, []byte("\x06memory\x02\x00")) {
		t.Errorf("memory export missing in % x", out)
	}
}

func TestEncodeDecodes(t *testing.T) {
	m := Module{Name: "mixed", Memory: &Memory{MinPages: 1}}
	callee := m.ImportFunc("lib", "f", I32Func(2))
	var c Code
	c.LocalGet(0).I32Const(3).Call(callee)
	m.AddFunc(Func{Export: "g", Type: I32Func(1), Body: c.Bytes()})
	m.AddFunc(Func{Type: FuncType{}})

	got, err := binary.DecodeModule(m.Encode(), wabin.CoreFeaturesV2)
	if err != nil {
		t.Fatalf("DecodeModule: %v", err)
	}
	if len(got.TypeSection) != 3 {
		t.Errorf("types = %d, want 3", len(got.TypeSection))
	}
	if len(got.ImportSection) != 1 || got.ImportSection[0].Name != "f" {
		t.Errorf("imports = %v", got.ImportSection)
	}
	if len(got.ExportSection) != 1 || got.ExportSection[0].Index != 1 {
		t.Errorf("exports = %v", got.ExportSection)
	}
	if got.MemorySection == nil || got.MemorySection.Min != 1 {
		t.Errorf("memory = %+v", got.MemorySection)
	}
	if got.NameSection == nil || got.NameSection.ModuleName != "mixed" {
		t.Errorf("name section = %+v", got.NameSection)
	}
}

func TestEncodeStartSection(t *testing.T) {
	var m Module
	start := m.AddFunc(Func{Type: FuncType{}})
	m.Start = &start

	got, err := binary.DecodeModule(m.Encode(), wabin.CoreFeaturesV2)
	if err != nil {
		t.Fatalf("DecodeModule: %v", err)
	}
	if got.StartSection == nil || *got.StartSection != start {
		t.Errorf("start section = %v, want %d", got.StartSection, start)
	}
}

func TestCodeChaining(t *testing.T) {
	var c Code
	c.LocalGet(0).LocalGet(1).I32GtS().LocalGet(0).LocalGet(1).I32LtS().I32Sub()
	want := []byte{0x20, 0x00, 0x20, 0x01, 0x4A, 0x20, 0x00, 0x20, 0x01, 0x48, 0x6B}
	if !bytes.Equal(c.Bytes(), want) {
		t.Errorf("Bytes() = % x, want % x", c.Bytes(), want)
	}
}

func TestFuncTypeString(t *testing.T) {
	if got := I32Func(2).String(); got != "[i32 i32] -> [i32]" {
		t.Errorf("String() = %q", got)
	}
}
