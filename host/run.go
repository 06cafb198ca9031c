package host

import (
	"context"
	"fmt"

	"github.com/chazu/schwasm/asm"
	"github.com/chazu/schwasm/value"
)

// Library is a module to publish under Namespace before the program runs.
type Library struct {
	Module    *Module
	Namespace string
}

// Plan describes one program run: libraries in load order, then the
// program and its entry point.
type Plan struct {
	Libraries []Library
	Program   *Module
	Entry     string // defaults to asm.EntryPoint
}

// Execute runs plan. Each library is instantiated against the namespaces
// published before it, then published itself. The program is instantiated
// against all of them and its entry point is invoked with no arguments.
func (s *Session) Execute(ctx context.Context, plan Plan) (value.Word, error) {
	if plan.Program == nil {
		return 0, fmt.Errorf("plan has no program")
	}
	entry := plan.Entry
	if entry == "" {
		entry = asm.EntryPoint
	}

	env := NewEnv()
	for _, lib := range plan.Libraries {
		inst, err := s.Instantiate(ctx, lib.Module, env)
		if err != nil {
			return 0, err
		}
		env.Publish(inst, lib.Namespace)
	}

	prog, err := s.Instantiate(ctx, plan.Program, env)
	if err != nil {
		return 0, err
	}
	w, err := prog.Invoke(ctx, entry)
	if err != nil {
		return 0, err
	}
	log.Debugf("%s.%s returned %#x", prog.Name, entry, uint32(w))
	return value.Word(w), nil
}

// Run performs the standard program sequence: load the library at libPath,
// instantiate it with no imports, publish it as asm.Namespace, load and
// instantiate the program at progPath, and invoke asm.EntryPoint.
func (s *Session) Run(ctx context.Context, libPath, progPath string) (value.Word, error) {
	lib, err := s.Load(ctx, libPath)
	if err != nil {
		return 0, err
	}
	libInst, err := s.Instantiate(ctx, lib, nil)
	if err != nil {
		return 0, err
	}
	env := NewEnv()
	env.Publish(libInst, asm.Namespace)

	prog, err := s.Load(ctx, progPath)
	if err != nil {
		return 0, err
	}
	progInst, err := s.Instantiate(ctx, prog, env)
	if err != nil {
		return 0, err
	}
	w, err := progInst.Invoke(ctx, asm.EntryPoint)
	if err != nil {
		return 0, err
	}
	return value.Word(w), nil
}
