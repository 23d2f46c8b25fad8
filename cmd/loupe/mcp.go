package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/loupe/internal/app"
	"github.com/1broseidon/loupe/internal/config"
	"github.com/1broseidon/loupe/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: loupe mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'loupe mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(stdout, "Usage: loupe mcp serve")
		fmt.Fprintln(stdout, "")
		fmt.Fprintln(stdout, "Start the MCP server on stdio. Exposes pick_color, sample_pixel and")
		fmt.Fprintln(stdout, "last_color to MCP clients.")
		fmt.Fprintln(stdout, "")
		fmt.Fprintln(stdout, "Example:")
		fmt.Fprintln(stdout, "  claude mcp add loupe -- loupe mcp serve")
		return 0
	}
	if len(args) > 0 {
		fmt.Fprintln(stderr, "mcp serve takes no arguments")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// stdout carries the protocol; diagnostics stay on stderr.
	svc := app.NewService(cfg, newLogger(cfg, false), app.WithDisplayDetection())
	server := mcp.NewServer(svc)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}
