package main

import (
	"fmt"
	"os"

	"github.com/chazu/schwasm/asm"
	"github.com/chazu/schwasm/value"
	"github.com/spf13/cobra"
)

func newEmitCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Write generated WebAssembly modules",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output file (required)")
	cmd.MarkPersistentFlagRequired("output")

	write := func(bin []byte) error {
		return os.WriteFile(output, bin, 0644)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "lib",
		Short: "Write the primitive library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return write(asm.Module())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "tests",
		Short: "Write the library test suite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return write(asm.TestSuite())
		},
	})

	var (
		fixnum  int32
		char    string
		boolean bool
	)
	programCmd := &cobra.Command{
		Use:   "program",
		Short: "Write a program whose entry point returns a constant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var w value.Word
			switch {
			case cmd.Flags().Changed("fixnum"):
				if fixnum > value.FixnumMax || fixnum < value.FixnumMin {
					return fmt.Errorf("fixnum %d out of range [%d, %d]", fixnum, value.FixnumMin, value.FixnumMax)
				}
				w = value.EncodeFixnum(fixnum)
			case cmd.Flags().Changed("char"):
				if len(char) != 1 {
					return fmt.Errorf("--char takes a single byte, got %q", char)
				}
				w = value.EncodeChar(char[0])
			case cmd.Flags().Changed("bool"):
				w = value.EncodeBool(boolean)
			}
			return write(asm.Program(w))
		},
	}
	programCmd.Flags().Int32Var(&fixnum, "fixnum", 0, "Return this integer")
	programCmd.Flags().StringVar(&char, "char", "", "Return this character")
	programCmd.Flags().BoolVar(&boolean, "bool", false, "Return this boolean")
	programCmd.MarkFlagsMutuallyExclusive("fixnum", "char", "bool")
	cmd.AddCommand(programCmd)

	return cmd
}
