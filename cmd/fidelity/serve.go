package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
	"github.com/maureliano/hvdc-simulator-sub000/internal/rpc"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC fidelity service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	st, orch, err := a.openEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	validator, err := measurement.NewValidator()
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", a.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.ListenAddr, err)
	}

	a.logger.Info("starting fidelity service",
		zap.String("db", a.cfg.DatabasePath),
		zap.Int("restored", orch.Len()),
	)
	srv := rpc.NewServer(orch, st, validator, a.logger)
	if err := srv.Serve(ctx, lis); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	a.logger.Info("fidelity service stopped")
	return nil
}
