package commands

import (
	"fmt"
	"os"

	"github.com/atomb/lean-auto/trace"
	"github.com/spf13/cobra"
)

var traceFilePath string

var rootCmd = &cobra.Command{
	Use:   "lamcheck",
	Short: "lamcheck replays, minimizes and certifies typed derivation traces",
	Long: `lamcheck consumes JSON traces of monomorphic lambda derivations:
an atom sort table, an instruction stream of assertions and checking
steps, and goal positions. It can replay a trace into a fact table,
minimize the table to what the goals need, and certify goals with
independent verification strategies.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&traceFilePath, "trace", "f", "", "Path to the JSON trace file (required by all commands)")
}

// AddCommand allows adding subcommands from other files.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

func loadTrace() *trace.Trace {
	if traceFilePath == "" {
		fmt.Fprintln(os.Stderr, "Error: trace file path must be specified with -f or --trace.")
		os.Exit(1)
	}
	data, err := os.ReadFile(traceFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", traceFilePath, err)
		os.Exit(1)
	}
	t, err := trace.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding %s: %v\n", traceFilePath, err)
		os.Exit(1)
	}
	return t
}
