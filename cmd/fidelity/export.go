package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maureliano/hvdc-simulator-sub000/internal/replay"
	"github.com/maureliano/hvdc-simulator-sub000/internal/store"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		outPath     string
		limit       int
		description string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored reports as a replay fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewStore(a.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer st.Close()

			reports, err := st.ListReports(limit)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				return fmt.Errorf("no reports stored in %s", a.cfg.DatabasePath)
			}

			f := replay.ExportFixture(description, reports)
			if err := replay.WriteFixture(outPath, f); err != nil {
				return err
			}
			a.logger.Info("fixture exported", zap.String("path", outPath), zap.Int("cycles", len(f.Cycles)))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d cycles to %s\n", len(f.Cycles), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "fixture.json", "output fixture path")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of most recent reports (0 for all)")
	cmd.Flags().StringVar(&description, "description", "exported from report store", "fixture description")
	return cmd
}
