package bundle

import (
	"context"
	"fmt"

	"github.com/chazu/schwasm/host"
	"github.com/chazu/schwasm/value"
)

// Plan loads every chunk of b into s and returns the matching host plan.
func Plan(ctx context.Context, s *host.Session, b *Bundle) (host.Plan, error) {
	plan := host.Plan{Entry: b.Entry}
	for _, c := range b.Libraries() {
		m, err := s.LoadBytes(ctx, c.Name, c.Content)
		if err != nil {
			return host.Plan{}, err
		}
		plan.Libraries = append(plan.Libraries, host.Library{Module: m, Namespace: c.Namespace})
	}
	prog, ok := b.Program()
	if !ok {
		return host.Plan{}, fmt.Errorf("bundle: no program chunk")
	}
	m, err := s.LoadBytes(ctx, prog.Name, prog.Content)
	if err != nil {
		return host.Plan{}, err
	}
	plan.Program = m
	return plan, nil
}

// Run executes b in s and returns the word its entry point produced.
func Run(ctx context.Context, s *host.Session, b *Bundle) (value.Word, error) {
	plan, err := Plan(ctx, s, b)
	if err != nil {
		return 0, err
	}
	return s.Execute(ctx, plan)
}
