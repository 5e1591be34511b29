package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history <project>",
	Short: "List the archived simulation runs of a project, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := service.History(args[0])
		if err != nil {
			return err
		}
		if historyJSON {
			return writeJSON(cmd.OutOrStdout(), runs)
		}
		if len(runs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No simulations archived for %s\n", args[0])
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tAT\tBY\tTRIALS\tEXPECTED DAYS\tP90 DAYS\tEXPECTED COST")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.0f\t%.1f\t%.0f\n",
				r.ID, r.RunAt.Format("2006-01-02 15:04"), r.RunBy, r.Iterations, r.ExpectedDuration, r.P90Duration, r.ExpectedCost)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print the run summaries as JSON")
}
