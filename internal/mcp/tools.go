package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/loupe/internal/history"
)

func pickTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		return DefaultPickTimeout
	}
	d := time.Duration(seconds) * time.Second
	if d > MaxPickTimeout {
		return MaxPickTimeout
	}
	return d
}

func recordOutput(rec history.Record) ColorOutput {
	out := ColorOutput{Hex: rec.Hex, X: rec.X, Y: rec.Y}
	if !rec.PickedAt.IsZero() {
		out.PickedAt = rec.PickedAt.Format(time.RFC3339)
	}
	return out
}

func (s *Server) handlePickColor(ctx context.Context, _ *mcpsdk.CallToolRequest, args PickColorInput) (*mcpsdk.CallToolResult, ColorOutput, error) {
	timeout := pickTimeout(args.TimeoutSeconds)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rec, err := s.picker.Pick(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ColorOutput{}, fmt.Errorf("no color picked within %s", timeout)
		}
		return nil, ColorOutput{}, fmt.Errorf("pick failed: %w", err)
	}
	return nil, recordOutput(rec), nil
}

func (s *Server) handleSamplePixel(_ context.Context, _ *mcpsdk.CallToolRequest, args SamplePixelInput) (*mcpsdk.CallToolResult, ColorOutput, error) {
	c, err := s.picker.Sample(args.X, args.Y)
	if err != nil {
		return nil, ColorOutput{}, fmt.Errorf("sample failed: %w", err)
	}
	return nil, ColorOutput{Hex: c.Hex(), X: args.X, Y: args.Y}, nil
}

func (s *Server) handleLastColor(_ context.Context, _ *mcpsdk.CallToolRequest, _ LastColorInput) (*mcpsdk.CallToolResult, ColorOutput, error) {
	rec, err := s.picker.Last()
	if err != nil {
		return nil, ColorOutput{}, err
	}
	return nil, recordOutput(rec), nil
}
