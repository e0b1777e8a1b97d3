package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/maureliano/hvdc-simulator-sub000/internal/gate"
	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
	"github.com/maureliano/hvdc-simulator-sub000/internal/orchestrator"
)

// #region types
// Recorder persists finished reports. *store.Store satisfies it.
type Recorder interface {
	SaveReport(r orchestrator.Report, gateCfg gate.Config) error
}

// HistoryResponse is the History payload. Reports are oldest first.
type HistoryResponse struct {
	Empty   bool                  `json:"empty"`
	Reports []orchestrator.Report `json:"reports"`
}

// Server exposes an Orchestrator over gRPC.
type Server struct {
	orch      *orchestrator.Orchestrator
	recorder  Recorder
	validator *measurement.Validator
	logger    *zap.Logger
}
// #endregion types

// #region constructor
// NewServer wires the service. recorder may be nil, in which case reports
// live only in the orchestrator's history.
func NewServer(orch *orchestrator.Orchestrator, recorder Recorder, validator *measurement.Validator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{orch: orch, recorder: recorder, validator: validator, logger: logger}
}
// #endregion constructor

// #region serve
// Serve accepts connections on lis until ctx is cancelled, then drains
// in-flight calls.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(UnaryLoggingInterceptor(s.logger)))
	RegisterFidelityServiceServer(gs, s)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("fidelity service listening", zap.String("addr", lis.Addr().String()))
		return gs.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		gs.GracefulStop()
		return nil
	})
	return g.Wait()
}
// #endregion serve

// #region evaluate
// Evaluate validates the request document, runs one cycle and records it.
func (s *Server) Evaluate(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw, err := structJSON(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.validator.ValidateEvaluation(raw); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	var in orchestrator.Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode evaluation: %v", err)
	}

	var persistErr error
	rep, err := s.orch.EvaluateInputWith(in, func(r orchestrator.Report) error {
		if s.recorder == nil {
			return nil
		}
		if persistErr = s.recorder.SaveReport(r, s.orch.Config().Gate); persistErr != nil {
			s.logger.Error("persist report", zap.String("report_id", r.ID), zap.Error(persistErr))
		}
		return persistErr
	})
	switch {
	case persistErr != nil:
		return nil, status.Errorf(codes.Internal, "persist report: %v", persistErr)
	case errors.Is(err, measurement.ErrInvalidSnapshot), errors.Is(err, gate.ErrInvalidContext):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case err != nil:
		return nil, status.Error(codes.Internal, err.Error())
	}

	s.logger.Info("cycle evaluated",
		zap.String("report_id", rep.ID),
		zap.String("operation_type", string(rep.OperationType)),
		zap.String("action", string(rep.Decision.Action)),
		zap.Float64("score", rep.Score),
		zap.String("trust", string(rep.Trust)),
	)
	return s.respond(rep)
}
// #endregion evaluate

// #region queries
// History returns the most recent reports. The request may carry a numeric
// "limit"; zero or absent returns the whole history.
func (s *Server) History(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit, err := historyLimit(req)
	if err != nil {
		return nil, err
	}
	h := s.orch.History(limit)
	return s.respond(HistoryResponse{Empty: h.Empty(), Reports: h.Reports()})
}

// Trend returns the direction and rate of the recent score.
func (s *Server) Trend(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return s.respond(s.orch.Trend())
}

// Summary returns the aggregate view over the history.
func (s *Server) Summary(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return s.respond(s.orch.Summary())
}

// historyLimit reads the optional "limit" field. It must be a whole number
// between 0 and math.MaxInt32.
func historyLimit(req *structpb.Struct) (int, error) {
	v, ok := req.GetFields()["limit"]
	if !ok {
		return 0, nil
	}
	if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
		return 0, status.Error(codes.InvalidArgument, "limit must be a number")
	}
	n := v.GetNumberValue()
	if n < 0 || n > math.MaxInt32 || n != math.Trunc(n) {
		return 0, status.Errorf(codes.InvalidArgument, "limit must be a whole number in [0, %d], got %v", math.MaxInt32, n)
	}
	return int(n), nil
}

func (s *Server) respond(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
// #endregion queries
