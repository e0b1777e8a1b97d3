package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/maureliano/hvdc-simulator-sub000/internal/orchestrator"
	"github.com/maureliano/hvdc-simulator-sub000/internal/rpc"
)

func (a *app) historyCmd() *cobra.Command {
	var (
		limit  int
		remote string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent trust reports with the score trend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				reports []orchestrator.Report
				summary orchestrator.Summary
				err     error
			)
			if remote != "" {
				reports, summary, err = historyRemote(cmd, remote, limit)
			} else {
				reports, summary, err = a.historyLocal(limit)
			}
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), rpc.HistoryResponse{Empty: len(reports) == 0, Reports: reports})
			}
			return printHistory(cmd.OutOrStdout(), reports, summary)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of most recent reports (0 for all)")
	cmd.Flags().StringVar(&remote, "remote", "", "address of a running fidelity service")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print reports as JSON")
	return cmd
}

// historyLocal answers the way a freshly started service would: the summary
// covers the restored history, while --limit only trims the listed rows.
func (a *app) historyLocal(limit int) ([]orchestrator.Report, orchestrator.Summary, error) {
	st, orch, err := a.openEngine()
	if err != nil {
		return nil, orchestrator.Summary{}, err
	}
	defer st.Close()

	return orch.History(limit).Reports(), orch.Summary(), nil
}

func historyRemote(cmd *cobra.Command, addr string, limit int) ([]orchestrator.Report, orchestrator.Summary, error) {
	client, err := rpc.NewClient(addr)
	if err != nil {
		return nil, orchestrator.Summary{}, err
	}
	defer client.Close()

	reports, err := client.History(cmd.Context(), limit)
	if err != nil {
		return nil, orchestrator.Summary{}, err
	}
	summary, err := client.Summary(cmd.Context())
	if err != nil {
		return nil, orchestrator.Summary{}, err
	}
	return reports, summary, nil
}

func printHistory(w io.Writer, reports []orchestrator.Report, summary orchestrator.Summary) error {
	if len(reports) == 0 {
		_, err := fmt.Fprintln(w, "no evaluations recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tOPERATION\tCONDITION\tDFI\tACTION\tSCORE\tTRUST")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\t%.2f\t%s\n",
			r.ID, r.Timestamp.Format(time.RFC3339), r.OperationType, r.Condition,
			r.Fidelity.Index, r.Decision.Action, r.Score, r.Trust)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d reports, average score %.2f, %s\n",
		summary.Count, summary.AverageScore, summary.TrendDescription)
	return err
}
