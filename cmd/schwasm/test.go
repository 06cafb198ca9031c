package main

import (
	"context"
	"fmt"

	"github.com/chazu/schwasm/asm"
	"github.com/chazu/schwasm/harness"
	"github.com/chazu/schwasm/host"
	"github.com/chazu/schwasm/manifest"
	"github.com/spf13/cobra"
)

func newTestCmd() *cobra.Command {
	var (
		builtin    bool
		ledgerPath string
	)
	cmd := &cobra.Command{
		Use:   "test [LIB SUITE]",
		Short: "Run a library test suite",
		Long: `Test links SUITE against LIB and checks every test export against its
expected result. With LIB and SUITE the built-in expectations are used.
With --builtin and no arguments the generated library and suite are tested.
Otherwise the [[tests]] of schwasm.toml are run against its asm_x86 library.`,
		Args: cobra.MatchAll(cobra.RangeArgs(0, 2), func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return fmt.Errorf("test takes both LIB and SUITE, or neither")
			}
			return nil
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			var reports []*harness.Report
			switch {
			case len(args) == 2:
				r, err := testPaths(ctx, s, args[0], args[1])
				if err != nil {
					return err
				}
				reports = append(reports, r)
			case builtin:
				r, err := testBuiltin(ctx, s)
				if err != nil {
					return err
				}
				reports = append(reports, r)
			default:
				if reports, err = testManifest(ctx, s); err != nil {
					return err
				}
			}

			var ledger *harness.Ledger
			if ledgerPath != "" {
				if ledger, err = harness.OpenLedger(ledgerPath); err != nil {
					return err
				}
				defer ledger.Close()
			}

			failed := 0
			for _, r := range reports {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", r.Suite, r)
				failed += r.Failed()
			}
			if ledger != nil {
				if _, err := ledger.Record(reports...); err != nil {
					return err
				}
				regressed, err := ledger.Regressions()
				if err != nil {
					return err
				}
				for _, reg := range regressed {
					fmt.Fprintf(cmd.OutOrStdout(), "regressed: %s\n", reg)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d test(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&builtin, "builtin", false, "Test the generated library and suite")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "Record results in this SQLite file")
	return cmd
}

func testPaths(ctx context.Context, s *host.Session, libPath, suitePath string) (*harness.Report, error) {
	lib, err := s.Load(ctx, libPath)
	if err != nil {
		return nil, err
	}
	suite, err := s.Load(ctx, suitePath)
	if err != nil {
		return nil, err
	}
	return harness.Run(ctx, s, lib, suite, harness.BuiltinCases())
}

func testBuiltin(ctx context.Context, s *host.Session) (*harness.Report, error) {
	lib, err := s.LoadBytes(ctx, "asm_x86.wasm", asm.Module())
	if err != nil {
		return nil, err
	}
	suite, err := s.LoadBytes(ctx, "tests.wasm", asm.TestSuite())
	if err != nil {
		return nil, err
	}
	return harness.Run(ctx, s, lib, suite, harness.BuiltinCases())
}

func testManifest(ctx context.Context, s *host.Session) ([]*harness.Report, error) {
	m, err := loadManifest()
	if err != nil {
		return nil, err
	}
	suites := m.Suites()
	if len(suites) == 0 {
		return nil, fmt.Errorf("%s: no [[tests]]", manifest.FileName)
	}

	libs, err := manifestLibraries(ctx, s, m)
	if err != nil {
		return nil, err
	}
	var lib *host.Module
	for _, l := range libs {
		if l.Namespace == asm.Namespace {
			lib = l.Module
		}
	}
	if lib == nil {
		return nil, fmt.Errorf("%s: no library publishes %s", manifest.FileName, asm.Namespace)
	}

	var reports []*harness.Report
	for _, suite := range suites {
		mod, err := s.Load(ctx, suite.Path)
		if err != nil {
			return nil, err
		}
		cases := make([]harness.Case, len(suite.Cases))
		for i, tc := range suite.Cases {
			cases[i] = harness.Case{Func: tc.Func, Want: tc.Want}
		}
		r, err := harness.Run(ctx, s, lib, mod, cases)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}
