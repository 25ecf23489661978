package commands

import (
	"fmt"
	"os"

	"github.com/atomb/lean-auto/checker"
	"github.com/atomb/lean-auto/trace"
	"github.com/spf13/cobra"
)

var minimizeCmd = &cobra.Command{
	Use:   "minimize",
	Short: "Shrinks a replayed table to what its goals depend on",
	Long: `Replays the trace, then rebuilds the table keeping only the entries
the goal positions transitively depend on, with sort atoms, term atoms
and chosen elements renumbered densely in first-use order. With
--table, the minimized table is written as a JSON snapshot.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tr := loadTrace()
		tableOut, _ := cmd.Flags().GetString("table")
		if goals, _ := cmd.Flags().GetIntSlice("goals"); len(goals) > 0 {
			tr.Goals = goals
		}

		if len(tr.Goals) == 0 {
			fmt.Fprintln(os.Stderr, "Error: trace declares no goal positions; nothing to minimize against.")
			os.Exit(1)
		}
		s, err := trace.Run(tr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error replaying %s: %v\n", traceFilePath, err)
			os.Exit(1)
		}
		min, goalMap, err := checker.Minimize(s, tr.Goals)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error minimizing: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("entries: %d -> %d\n", s.Len(), min.Len())
		fmt.Printf("assertions: %d -> %d\n", len(s.Assertions()), len(min.Assertions()))
		fmt.Printf("chosen elements: %d -> %d\n", s.EtomCount(), min.EtomCount())
		for _, g := range tr.Goals {
			fmt.Printf("goal %d -> %d\n", g, goalMap[g])
		}
		for pos := 0; pos < min.Len(); pos++ {
			e, _ := min.Entry(pos)
			fmt.Printf("  %4d  %s\n", pos, e)
		}

		if tableOut != "" {
			data, err := trace.EncodeTable(min)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error encoding table: %v\n", err)
				os.Exit(1)
			}
			if err := os.WriteFile(tableOut, data, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", tableOut, err)
				os.Exit(1)
			}
			fmt.Println("minimized table written to", tableOut)
		}
	},
}

func init() {
	minimizeCmd.Flags().IntSlice("goals", nil, "Goal positions to keep (default: the trace's own goals)")
	minimizeCmd.Flags().String("table", "", "Write the minimized table snapshot to this file")
	AddCommand(minimizeCmd)
}
