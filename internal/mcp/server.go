// Package mcp exposes the color picker to MCP clients over stdio.
package mcp

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/loupe/internal/history"
	"github.com/1broseidon/loupe/internal/pixel"
)

const (
	ServerName    = "loupe"
	ServerVersion = "0.1.0"

	DefaultPickTimeout = 60 * time.Second
	MaxPickTimeout     = 600 * time.Second
)

// Picker is the subset of app.Service the tools need.
type Picker interface {
	Pick(ctx context.Context) (history.Record, error)
	Sample(x, y int) (pixel.Pixel, error)
	Last() (history.Record, error)
}

// Server is the MCP server for interactive color picking.
type Server struct {
	mcpServer *mcpsdk.Server
	picker    Picker
}

// NewServer creates a server whose tools run against p.
func NewServer(p Picker) *Server {
	s := &Server{picker: p}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pick_color",
		Description: "Show a magnifier that follows the mouse and wait for the user to click. Returns the clicked pixel as #RRGGBB with its screen coordinates. Fails if the user does not click within timeout_seconds (default 60).",
	}, s.handlePickColor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "sample_pixel",
		Description: "Read the color of the screen pixel at (x, y) without user interaction. Returns #RRGGBB.",
	}, s.handleSamplePixel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "last_color",
		Description: "Return the most recently picked color, whether it was picked from the CLI or through pick_color.",
	}, s.handleLastColor)
}
