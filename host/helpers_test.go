package host

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/schwasm/asm"
	"github.com/chazu/schwasm/wasm"
)

func newSession(t *testing.T) (context.Context, *Session) {
	t.Helper()
	ctx := context.Background()
	s, err := NewSession(ctx, WithInterpreter())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() { s.Close(ctx) })
	return ctx, s
}

func writeModule(t *testing.T, dir, name string, bin []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, bin, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func mustLoadBytes(t *testing.T, ctx context.Context, s *Session, name string, bin []byte) *Module {
	t.Helper()
	m, err := s.LoadBytes(ctx, name, bin)
	if err != nil {
		t.Fatalf("LoadBytes(%s): %v", name, err)
	}
	return m
}

func mustInstantiate(t *testing.T, ctx context.Context, s *Session, m *Module, env *Env) *Instance {
	t.Helper()
	inst, err := s.Instantiate(ctx, m, env)
	if err != nil {
		t.Fatalf("Instantiate(%s): %v", m.Name, err)
	}
	return inst
}

// libraryEnv instantiates the primitive library and publishes it under
// asm.Namespace.
func libraryEnv(t *testing.T, ctx context.Context, s *Session) *Env {
	t.Helper()
	lib := mustLoadBytes(t, ctx, s, "asm_x86.wasm", asm.Module())
	env := NewEnv()
	env.Publish(mustInstantiate(t, ctx, s, lib, nil), asm.Namespace)
	return env
}

// faultModule exports functions that trap or have unusual signatures.
func faultModule() []byte {
	m := wasm.Module{Name: "faults", Memory: &wasm.Memory{MinPages: 1}}

	var boom wasm.Code
	boom.Unreachable()
	m.AddFunc(wasm.Func{Export: "boom", Type: wasm.I32Func(0), Body: boom.Bytes()})

	var oob wasm.Code
	oob.I32Const(65536).I32Load(0)
	m.AddFunc(wasm.Func{Export: "oob", Type: wasm.I32Func(0), Body: oob.Bytes()})

	var ok wasm.Code
	ok.I32Const(7)
	m.AddFunc(wasm.Func{Export: "ok", Type: wasm.I32Func(0), Body: ok.Bytes()})

	var add wasm.Code
	add.LocalGet(0).LocalGet(1).I32Add()
	m.AddFunc(wasm.Func{Export: "add", Type: wasm.I32Func(2), Body: add.Bytes()})

	var wide wasm.Code
	wide.I32Const(1)
	m.AddFunc(wasm.Func{Export: "wide",
		Type: wasm.FuncType{Params: []wasm.ValType{wasm.ValI64}, Results: []wasm.ValType{wasm.ValI32}},
		Body: wide.Bytes()})

	var void wasm.Code
	m.AddFunc(wasm.Func{Export: "void", Type: wasm.FuncType{}, Body: void.Bytes()})

	return m.Encode()
}

// startModule runs a start function when instantiated; it traps when trap
// is set. Its ok export returns 7.
func startModule(trap bool) []byte {
	m := wasm.Module{Name: "starter"}
	var start wasm.Code
	if trap {
		start.Unreachable()
	}
	idx := m.AddFunc(wasm.Func{Type: wasm.FuncType{}, Body: start.Bytes()})
	m.Start = &idx

	var ok wasm.Code
	ok.I32Const(7)
	m.AddFunc(wasm.Func{Export: "ok", Type: wasm.I32Func(0), Body: ok.Bytes()})
	return m.Encode()
}

// stubLibrary is a library whose sete always returns result.
func stubLibrary(result int32) []byte {
	m := wasm.Module{Name: "stub"}
	for _, p := range asm.Library() {
		body := p.Code()
		if p.Name == asm.NameSete {
			var c wasm.Code
			c.I32Const(result)
			body = c.Bytes()
		}
		m.AddFunc(wasm.Func{Export: p.Name, Type: p.Type(), Body: body})
	}
	return m.Encode()
}

// narrowLibrary exports sete with one parameter instead of two.
func narrowLibrary() []byte {
	m := wasm.Module{Name: "narrow"}
	var c wasm.Code
	c.LocalGet(0)
	m.AddFunc(wasm.Func{Export: asm.NameSete, Type: wasm.I32Func(1), Body: c.Bytes()})
	return m.Encode()
}

// trappingLibrary exports a sete that traps.
func trappingLibrary() []byte {
	m := wasm.Module{Name: "trapping"}
	for _, p := range asm.Library() {
		body := p.Code()
		if p.Name == asm.NameSete {
			var c wasm.Code
			c.Unreachable()
			body = c.Bytes()
		}
		m.AddFunc(wasm.Func{Export: p.Name, Type: p.Type(), Body: body})
	}
	return m.Encode()
}
