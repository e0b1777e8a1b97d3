package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
	"github.com/maureliano/hvdc-simulator-sub000/internal/replay"
)

func (a *app) replayCmd() *cobra.Command {
	var fixturePath string
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a fixture through a fresh engine and report mismatches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			validator, err := measurement.NewValidator()
			if err != nil {
				return err
			}
			f, err := replay.LoadFixture(fixturePath, validator)
			if err != nil {
				return err
			}

			results, summary := replay.Replay(f, a.cfg.Engine)
			printReplay(cmd.OutOrStdout(), results, summary)
			a.logger.Info("replay finished",
				zap.String("fixture", fixturePath),
				zap.Int("cycles", summary.TotalCycles),
				zap.Int("mismatched", summary.Mismatched),
				zap.Int("errors", summary.Errors),
			)

			if summary.Mismatched > 0 || summary.Errors > 0 {
				return fmt.Errorf("%d of %d cycles mismatched, %d failed",
					summary.Mismatched, summary.TotalCycles, summary.Errors)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "fixture JSON file")
	_ = cmd.MarkFlagRequired("fixture")
	return cmd
}

func printReplay(w io.Writer, results []replay.ReplayResult, s replay.ReplaySummary) {
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "%-24s ERROR     %v\n", r.CycleID, r.Err)
		case r.Matched():
			fmt.Fprintf(w, "%-24s ok        %s (%s, %.2f)\n", r.CycleID, r.Report.Decision.Action, r.Report.Trust, r.Report.Score)
		default:
			fmt.Fprintf(w, "%-24s MISMATCH  %s (%s, %.2f)\n", r.CycleID, r.Report.Decision.Action, r.Report.Trust, r.Report.Score)
		}
	}
	fmt.Fprintf(w, "\n%d cycles: %d matched, %d mismatched, %d errors\n",
		s.TotalCycles, s.Matched, s.Mismatched, s.Errors)
	fmt.Fprintf(w, "final: average score %.2f, %s\n", s.Final.AverageScore, s.Final.TrendDescription)
}
