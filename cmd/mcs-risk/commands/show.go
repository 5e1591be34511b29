package commands

import (
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var showOpts struct {
	asJSON bool
	report string
	open   bool
}

var showCmd = &cobra.Command{
	Use:   "show <project> [run-id]",
	Short: "Show an archived simulation run (the latest when run-id is omitted)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if showOpts.open && showOpts.report == "" {
			return errOpenWithoutReport
		}
		runID := ""
		if len(args) == 2 {
			runID = args[1]
		}
		rec, err := service.Record(args[0], runID)
		if err != nil {
			return err
		}

		if showOpts.asJSON {
			if err := writeJSON(cmd.OutOrStdout(), rec); err != nil {
				return err
			}
		} else {
			printRecord(cmd.OutOrStdout(), rec)
		}

		if showOpts.report == "" {
			return nil
		}
		if err := writeReportFile(showOpts.report, rec); err != nil {
			return err
		}
		if showOpts.open {
			return browser.OpenFile(showOpts.report)
		}
		return nil
	},
}

func init() {
	f := showCmd.Flags()
	f.BoolVar(&showOpts.asJSON, "json", false, "print the archived record as JSON")
	f.StringVar(&showOpts.report, "report", "", "write an HTML report to this file")
	f.BoolVar(&showOpts.open, "open", false, "open the HTML report in the default browser")
}
