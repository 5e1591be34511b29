package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"os/user"

	"mcs-risk/internal/archive"
	"mcs-risk/internal/forecast"
	"mcs-risk/internal/visuals"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var errOpenWithoutReport = errors.New("--open requires --report")

var runOpts struct {
	iterations int
	confidence float64
	seed       int64
	user       string
	asJSON     bool
	report     string
	open       bool
}

var runCmd = &cobra.Command{
	Use:   "run <project>",
	Short: "Run a risk simulation for a project and archive the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if runOpts.open && runOpts.report == "" {
			return errOpenWithoutReport
		}
		var iterations *int
		if cmd.Flags().Changed("iterations") {
			iterations = &runOpts.iterations
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		rec, err := service.Run(ctx, forecast.Request{
			ProjectID:       args[0],
			RequestedBy:     requester(runOpts.user),
			Iterations:      iterations,
			ConfidenceLevel: runOpts.confidence,
			Seed:            runOpts.seed,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if runOpts.asJSON {
			if err := writeJSON(out, rec); err != nil {
				return err
			}
		} else {
			printRecord(out, rec)
		}

		if runOpts.report == "" {
			return nil
		}
		if err := writeReportFile(runOpts.report, rec); err != nil {
			return err
		}
		if runOpts.open {
			return browser.OpenFile(runOpts.report)
		}
		return nil
	},
}

func init() {
	f := runCmd.Flags()
	f.IntVarP(&runOpts.iterations, "iterations", "n", 0, "number of trials (default from SIM_ITERATIONS)")
	f.Float64VarP(&runOpts.confidence, "confidence", "c", 0, "confidence level in (0, 1) (default from SIM_CONFIDENCE_LEVEL)")
	f.Int64Var(&runOpts.seed, "seed", 0, "fixed random seed for a reproducible run")
	f.StringVar(&runOpts.user, "user", "", "name recorded as the requester (default: current OS user)")
	f.BoolVar(&runOpts.asJSON, "json", false, "print the archived record as JSON")
	f.StringVar(&runOpts.report, "report", "", "write an HTML report to this file")
	f.BoolVar(&runOpts.open, "open", false, "open the HTML report in the default browser")
}

func requester(flag string) string {
	if flag != "" {
		return flag
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeReportFile(path string, rec archive.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := visuals.WriteReport(f, rec); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printRecord(w io.Writer, rec archive.Record) {
	res := rec.Result
	fmt.Fprintf(w, "Project:     %s (%s)\n", rec.ProjectName, rec.ProjectID)
	fmt.Fprintf(w, "Run:         %s by %s at %s\n", rec.ID, rec.RunBy, rec.RunAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Trials:      %d (seed %d, materialization %s)\n\n", res.Trials, rec.Seed, rec.Materialization)

	fmt.Fprintf(w, "%-16s %10s %10s %10s %10s\n", "", "Expected", "Min", "Max", "StdDev")
	fmt.Fprintf(w, "%-16s %10.0f %10.0f %10.0f %10.0f\n", "Duration (days)", res.ExpectedDuration, res.MinDuration, res.MaxDuration, res.StdDevDuration)
	fmt.Fprintf(w, "%-16s %10.0f %10.0f %10.0f %10.0f\n\n", "Cost", res.ExpectedCost, res.MinCost, res.MaxCost, res.StdDevCost)

	p, c := res.Percentiles, res.CostPercentiles
	fmt.Fprintf(w, "%-16s %10s %10s %10s %10s %10s %10s %10s\n", "", "P10", "P25", "P50", "P75", "P90", "P95", "P99")
	fmt.Fprintf(w, "%-16s %10.1f %10.1f %10.1f %10.1f %10.1f %10.1f %10.1f\n", "Duration (days)", p.P10, p.P25, p.P50, p.P75, p.P90, p.P95, p.P99)
	fmt.Fprintf(w, "%-16s %10.0f %10.0f %10.0f %10.0f %10.0f %10.0f %10.0f\n", "Cost", c.P10, c.P25, c.P50, c.P75, c.P90, c.P95, c.P99)

	if ac := res.AtConfidence; ac != nil {
		fmt.Fprintf(w, "\nAt %.0f%% confidence: complete by %s (%.1f days), cost within %.0f\n", ac.Level*100, ac.CompletionDate, ac.DurationDays, ac.Cost)
	}

	if ranked := visuals.RankCriticality(res.Criticality); len(ranked) > 0 {
		fmt.Fprintln(w, "\nCriticality:")
		for _, e := range ranked {
			fmt.Fprintf(w, "  %-32s %5.1f%%\n", e.Name, e.Frequency*100)
		}
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "\nWARNING: %s", warning)
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(w)
	}
}
