package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/schwasm/asm"
	"github.com/chazu/schwasm/bundle"
	"github.com/chazu/schwasm/value"
	"github.com/spf13/cobra"
)

func newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Pack programs into single verified files and run them",
	}

	var (
		output    string
		namespace string
		entry     string
	)
	packCmd := &cobra.Command{
		Use:   "pack LIB PROG",
		Short: "Pack a library and a program into a bundle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			prog, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			b := bundle.Pack(
				[]bundle.Source{{Name: filepath.Base(args[0]), Namespace: namespace, Content: lib}},
				bundle.Source{Name: filepath.Base(args[1]), Content: prog},
				entry,
			)
			return bundle.Write(output, b)
		},
	}
	packCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (required)")
	packCmd.Flags().StringVar(&namespace, "namespace", asm.Namespace, "Namespace the library is published under")
	packCmd.Flags().StringVar(&entry, "entry", asm.EntryPoint, "Entry point to invoke")
	packCmd.MarkFlagRequired("output")

	runCmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a bundle and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := bundle.Read(args[0])
			if err != nil {
				return err
			}
			s, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			w, err := bundle.Run(ctx, s, b)
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

	cmd.AddCommand(packCmd, runCmd)
	return cmd
}
