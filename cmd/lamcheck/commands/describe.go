package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/atomb/lean-auto/trace"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <position>",
	Short: "Shows detailed information about one table entry",
	Long: `Replays the trace and prints the entry at the given table position.
With --dump, the entry's full structure is printed instead of its
rendered form, which is useful when the rendering is ambiguous.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tr := loadTrace()
		dump, _ := cmd.Flags().GetBool("dump")

		pos, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: position must be an integer, got %q.\n", args[0])
			os.Exit(1)
		}
		s, err := trace.Run(tr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error replaying %s: %v\n", traceFilePath, err)
			os.Exit(1)
		}
		e, err := s.Entry(pos)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v (table has %d entries).\n", err, s.Len())
			os.Exit(1)
		}

		fmt.Printf("Entry %d of %d:\n", pos, s.Len())
		if dump {
			litter.Dump(e)
		} else {
			fmt.Printf("  %s\n", e)
		}
	},
}

func init() {
	describeCmd.Flags().Bool("dump", false, "Print the entry's full structure")
	AddCommand(describeCmd)
}
