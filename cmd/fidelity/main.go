package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maureliano/hvdc-simulator-sub000/internal/config"
	"github.com/maureliano/hvdc-simulator-sub000/internal/logging"
	"github.com/maureliano/hvdc-simulator-sub000/internal/orchestrator"
	"github.com/maureliano/hvdc-simulator-sub000/internal/store"
)

// #region main

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// #endregion main

// #region root

// app carries the state shared by every subcommand once the persistent
// pre-run has loaded configuration.
type app struct {
	configPath string
	dbPath     string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "fidelity",
		Short: "Physical fidelity scoring and decision gating for HVDC digital twins",
		Long: `fidelity compares digital-twin snapshots with field measurements, scores
the twin's dynamic fidelity, propagates measurement uncertainty, folds in
hardware-in-the-loop evidence and decides whether the twin may be trusted for
measurement, prediction, control or optimization.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.dbPath != "" {
				cfg.DatabasePath = a.dbPath
			}
			logger, err := logging.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to YAML config (defaults and env when empty)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite report store (overrides database_path)")

	root.AddCommand(
		a.serveCmd(),
		a.evaluateCmd(),
		a.historyCmd(),
		a.replayCmd(),
		a.exportCmd(),
	)
	return root
}

// #endregion root

// #region helpers

// openEngine opens the report store and an orchestrator seeded with the most
// recent stored history.
func (a *app) openEngine() (*store.Store, *orchestrator.Orchestrator, error) {
	st, err := store.NewStore(a.cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", a.cfg.DatabasePath, err)
	}
	orch := orchestrator.New(a.cfg.Engine)
	n, err := st.LoadHistory(orch, a.cfg.RestoreLimit)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("restore history: %w", err)
	}
	a.logger.Debug("history restored", zap.Int("reports", n), zap.String("db", a.cfg.DatabasePath))
	return st, orch, nil
}

// #endregion helpers
