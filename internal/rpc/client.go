package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/maureliano/hvdc-simulator-sub000/internal/orchestrator"
)

// #region client-struct
// Client wraps the gRPC connection to a fidelity service.
type Client struct {
	conn   *grpc.ClientConn
	client FidelityServiceClient
}
// #endregion client-struct

// #region constructor
// NewClient connects to a fidelity service. Extra options are applied after
// the default insecure transport credentials.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		client: NewFidelityServiceClient(conn),
	}, nil
}

// NewClientWithService creates a Client with an injected service implementation.
// Used for testing without a real gRPC connection.
func NewClientWithService(svc FidelityServiceClient) *Client {
	return &Client{client: svc}
}
// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region calls
// Evaluate submits one evaluation cycle.
func (c *Client) Evaluate(ctx context.Context, in orchestrator.Input) (orchestrator.Report, error) {
	req, err := toStruct(in)
	if err != nil {
		return orchestrator.Report{}, err
	}
	resp, err := c.client.Evaluate(ctx, req)
	if err != nil {
		return orchestrator.Report{}, fmt.Errorf("evaluate rpc: %w", err)
	}
	var rep orchestrator.Report
	if err := fromStruct(resp, &rep); err != nil {
		return orchestrator.Report{}, err
	}
	return rep, nil
}

// History fetches up to limit reports, oldest first. It returns nil when the
// service has recorded nothing.
func (c *Client) History(ctx context.Context, limit int) ([]orchestrator.Report, error) {
	req, err := structpb.NewStruct(map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("history request: %w", err)
	}
	resp, err := c.client.History(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("history rpc: %w", err)
	}
	var h HistoryResponse
	if err := fromStruct(resp, &h); err != nil {
		return nil, err
	}
	if h.Empty {
		return nil, nil
	}
	return h.Reports, nil
}

// Trend fetches the recent score trend.
func (c *Client) Trend(ctx context.Context) (orchestrator.Trend, error) {
	resp, err := c.client.Trend(ctx, &structpb.Struct{})
	if err != nil {
		return orchestrator.Trend{}, fmt.Errorf("trend rpc: %w", err)
	}
	var tr orchestrator.Trend
	if err := fromStruct(resp, &tr); err != nil {
		return orchestrator.Trend{}, err
	}
	return tr, nil
}

// Summary fetches the history summary.
func (c *Client) Summary(ctx context.Context) (orchestrator.Summary, error) {
	resp, err := c.client.Summary(ctx, &structpb.Struct{})
	if err != nil {
		return orchestrator.Summary{}, fmt.Errorf("summary rpc: %w", err)
	}
	var sum orchestrator.Summary
	if err := fromStruct(resp, &sum); err != nil {
		return orchestrator.Summary{}, err
	}
	return sum, nil
}
// #endregion calls
