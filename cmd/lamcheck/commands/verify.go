package commands

import (
	"fmt"
	"os"

	"github.com/atomb/lean-auto/checker"
	"github.com/atomb/lean-auto/trace"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Certifies every goal of a trace with all verification strategies",
	Long: `Replays the trace, then hands each goal entry together with the
instruction stream to the independent verification strategies. A goal
passes only when every strategy certifies it; strategy disagreement is
reported as an error rather than a failure.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tr := loadTrace()
		names, _ := cmd.Flags().GetStringSlice("strategy")
		strategies, err := pickStrategies(names)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		s, err := trace.Run(tr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error replaying %s: %v\n", traceFilePath, err)
			os.Exit(1)
		}
		goals, err := trace.GoalEntries(s, tr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving goals: %v\n", err)
			os.Exit(1)
		}
		if len(goals) == 0 {
			fmt.Fprintln(os.Stderr, "Error: trace declares no goal positions; nothing to verify.")
			os.Exit(1)
		}

		pass := color.New(color.FgGreen).SprintFunc()
		fail := color.New(color.FgRed).SprintFunc()
		failed := false
		for i, goal := range goals {
			in := &checker.CertInput{
				AtomSorts:   tr.AtomSorts,
				ImportSorts: tr.ImportSorts,
				Instrs:      tr.Instrs,
				Goal:        goal,
			}
			if err := checker.CertifyAll(in, strategies...); err != nil {
				failed = true
				fmt.Printf("%s goal %d (%s): %v\n", fail("FAIL"), tr.Goals[i], goal, err)
			} else {
				fmt.Printf("%s goal %d (%s)\n", pass("PASS"), tr.Goals[i], goal)
			}
		}
		if failed {
			os.Exit(1)
		}
	},
}

// pickStrategies resolves strategy names; an empty list means all.
func pickStrategies(names []string) ([]checker.Strategy, error) {
	if len(names) == 0 {
		return checker.DefaultStrategies(), nil
	}
	out := make([]checker.Strategy, len(names))
	for i, name := range names {
		switch name {
		case "direct":
			out[i] = checker.DirectStrategy{}
		case "indirect":
			out[i] = checker.IndirectStrategy{}
		case "compiled":
			out[i] = checker.CompiledStrategy{}
		default:
			return nil, fmt.Errorf("unknown strategy %q (want direct, indirect or compiled)", name)
		}
	}
	return out, nil
}

func init() {
	verifyCmd.Flags().StringSlice("strategy", nil, "Verification strategies to run (default: all)")
	AddCommand(verifyCmd)
}
