// Command schwasm runs compiled Scheme programs and their primitive
// library in a WebAssembly sandbox.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/chazu/schwasm/host"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var (
	verbose     int
	cacheDir    string
	interpreter bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "schwasm",
		Short: "Run compiled Scheme programs on WebAssembly",
		Long: `schwasm loads a compiled Scheme program and the primitive library it
imports, links them under the asm_x86 namespace, runs the entry point and
prints the result as a Scheme value.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbose, nil)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "Verbose output (repeat for debug)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache", "", "Directory for the compiled-code cache")
	rootCmd.PersistentFlags().BoolVar(&interpreter, "interpreter", false, "Use the interpreter instead of the compiler")

	rootCmd.AddCommand(newRunCmd(), newTestCmd(), newEmitCmd(), newBundleCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newSession opens a session configured from the global flags.
func newSession(ctx context.Context) (*host.Session, error) {
	var opts []host.Option
	if interpreter {
		opts = append(opts, host.WithInterpreter())
	}
	if cacheDir != "" {
		opts = append(opts, host.WithCompilationCacheDir(cacheDir))
	}
	return host.NewSession(ctx, opts...)
}
