package commands

import (
	"fmt"
	"os"

	"github.com/atomb/lean-auto/trace"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replays a trace and prints the resulting fact table",
	Long: `Replays every instruction of the trace into a fresh session. Each
table entry is printed at its position; goal positions are marked.
With --table, the finished table is also written as a JSON snapshot.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tr := loadTrace()
		tableOut, _ := cmd.Flags().GetString("table")

		s, err := trace.Run(tr)
		if err != nil {
			color.New(color.FgRed).Fprintln(os.Stderr, "FAIL")
			fmt.Fprintf(os.Stderr, "Error replaying %s: %v\n", traceFilePath, err)
			os.Exit(1)
		}

		goals := make(map[int]bool, len(tr.Goals))
		for _, g := range tr.Goals {
			goals[g] = true
		}
		for pos := 0; pos < s.Len(); pos++ {
			e, _ := s.Entry(pos)
			mark := " "
			if goals[pos] {
				mark = "*"
			}
			fmt.Printf("%s %4d  %s\n", mark, pos, e)
		}
		fmt.Printf("%d entries, %d assertions, %d chosen elements\n",
			s.Len(), len(s.Assertions()), s.EtomCount())

		if tableOut != "" {
			data, err := trace.EncodeTable(s)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error encoding table: %v\n", err)
				os.Exit(1)
			}
			if err := os.WriteFile(tableOut, data, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", tableOut, err)
				os.Exit(1)
			}
			fmt.Println("table written to", tableOut)
		}
		color.New(color.FgGreen).Println("PASS")
	},
}

func init() {
	replayCmd.Flags().String("table", "", "Write the finished table snapshot to this file")
	AddCommand(replayCmd)
}
