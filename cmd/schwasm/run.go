package main

import (
	"context"
	"fmt"
	"os"

	"github.com/chazu/schwasm/asm"
	"github.com/chazu/schwasm/host"
	"github.com/chazu/schwasm/manifest"
	"github.com/chazu/schwasm/value"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		entry     string
		namespace string
	)
	cmd := &cobra.Command{
		Use:   "run [LIB PROG]",
		Short: "Run a compiled program and print its result",
		Long: `Run loads LIB, publishes it under the library namespace, links PROG
against it and prints the value its entry point returns.

Without arguments the libraries and program of the schwasm.toml found from
the current directory are used.`,
		Args: cobra.MatchAll(cobra.RangeArgs(0, 2), func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return fmt.Errorf("run takes both LIB and PROG, or neither")
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

			var w value.Word
			switch {
			case len(args) == 0:
				w, err = runManifest(ctx, s, entry)
			case entry == asm.EntryPoint && namespace == asm.Namespace:
				w, err = s.Run(ctx, args[0], args[1])
			default:
				w, err = runPaths(ctx, s, args[0], args[1], namespace, entry)
			}
			if err != nil {
				return err
			}

			text, err := value.Render(w)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&entry, "entry", asm.EntryPoint, "Entry point to invoke")
	cmd.Flags().StringVar(&namespace, "namespace", asm.Namespace, "Namespace the library is published under")
	return cmd
}

func runPaths(ctx context.Context, s *host.Session, libPath, progPath, namespace, entry string) (value.Word, error) {
	lib, err := s.Load(ctx, libPath)
	if err != nil {
		return 0, err
	}
	prog, err := s.Load(ctx, progPath)
	if err != nil {
		return 0, err
	}
	return s.Execute(ctx, host.Plan{
		Libraries: []host.Library{{Module: lib, Namespace: namespace}},
		Program:   prog,
		Entry:     entry,
	})
}

// loadManifest finds the project file from the working directory.
func loadManifest() (*manifest.Manifest, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, err := manifest.FindAndLoad(cwd)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("no %s found in %s or any parent directory", manifest.FileName, cwd)
	}
	return m, nil
}

// manifestLibraries loads every library of m in load order.
func manifestLibraries(ctx context.Context, s *host.Session, m *manifest.Manifest) ([]host.Library, error) {
	resolved, err := manifest.NewResolver(m).Resolve()
	if err != nil {
		return nil, err
	}
	var libs []host.Library
	for _, rl := range resolved {
		mod, err := s.Load(ctx, rl.Path)
		if err != nil {
			return nil, err
		}
		libs = append(libs, host.Library{Module: mod, Namespace: rl.Namespace})
	}
	return libs, nil
}

func runManifest(ctx context.Context, s *host.Session, entry string) (value.Word, error) {
	m, err := loadManifest()
	if err != nil {
		return 0, err
	}
	if m.ProgramPath() == "" {
		return 0, fmt.Errorf("%s: no [program] path", manifest.FileName)
	}
	libs, err := manifestLibraries(ctx, s, m)
	if err != nil {
		return 0, err
	}
	prog, err := s.Load(ctx, m.ProgramPath())
	if err != nil {
		return 0, err
	}
	if entry == asm.EntryPoint {
		entry = m.Program.Entry
	}
	return s.Execute(ctx, host.Plan{Libraries: libs, Program: prog, Entry: entry})
}
