package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maureliano/hvdc-simulator-sub000/internal/hil"
	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
	"github.com/maureliano/hvdc-simulator-sub000/internal/orchestrator"
	"github.com/maureliano/hvdc-simulator-sub000/internal/rpc"
)

func (a *app) evaluateCmd() *cobra.Command {
	var inputPath, seriesPath, remote string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one digital/real snapshot pair and print the trust report",
		Long: `evaluate reads an evaluation request (digital and real snapshots, optional
HIL outcomes, operation type) as JSON, validates it, runs one cycle and prints
the report. Locally the report is stored; with --remote it is sent to a
running service instead.

--hil-series adds HIL outcomes derived from raw hardware/digital recordings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(inputPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if seriesPath != "" {
				derived, err := readSeries(seriesPath)
				if err != nil {
					return err
				}
				in.HILOutcomes = append(in.HILOutcomes, derived...)
			}

			var rep orchestrator.Report
			if remote != "" {
				rep, err = a.evaluateRemote(cmd, remote, in)
			} else {
				rep, err = a.evaluateLocal(in)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "evaluation request JSON (- for stdin)")
	cmd.Flags().StringVar(&seriesPath, "hil-series", "", "JSON array of hardware/digital series to pair into HIL outcomes")
	cmd.Flags().StringVar(&remote, "remote", "", "address of a running fidelity service")
	return cmd
}

func (a *app) evaluateLocal(in orchestrator.Input) (orchestrator.Report, error) {
	st, orch, err := a.openEngine()
	if err != nil {
		return orchestrator.Report{}, err
	}
	defer st.Close()

	rep, err := orch.EvaluateInputWith(in, func(r orchestrator.Report) error {
		return st.SaveReport(r, a.cfg.Engine.Gate)
	})
	if err != nil {
		return orchestrator.Report{}, err
	}
	a.logger.Info("cycle evaluated",
		zap.String("report_id", rep.ID),
		zap.String("action", string(rep.Decision.Action)),
		zap.Float64("score", rep.Score),
	)
	return rep, nil
}

func (a *app) evaluateRemote(cmd *cobra.Command, addr string, in orchestrator.Input) (orchestrator.Report, error) {
	client, err := rpc.NewClient(addr)
	if err != nil {
		return orchestrator.Report{}, err
	}
	defer client.Close()
	return client.Evaluate(cmd.Context(), in)
}

// readInput loads and validates an evaluation request.
func readInput(path string, stdin io.Reader) (orchestrator.Input, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return orchestrator.Input{}, fmt.Errorf("read input: %w", err)
	}

	validator, err := measurement.NewValidator()
	if err != nil {
		return orchestrator.Input{}, err
	}
	if err := validator.ValidateEvaluation(raw); err != nil {
		return orchestrator.Input{}, err
	}
	var in orchestrator.Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return orchestrator.Input{}, fmt.Errorf("decode input: %w", err)
	}
	return in, nil
}

func readSeries(path string) ([]hil.Outcome, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hil series: %w", err)
	}
	var series []hil.Series
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, fmt.Errorf("decode hil series: %w", err)
	}
	var out []hil.Outcome
	for _, s := range series {
		out = append(out, s.Outcomes()...)
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
