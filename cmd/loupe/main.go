package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/1broseidon/loupe/internal/app"
	"github.com/1broseidon/loupe/internal/clipboard"
	"github.com/1broseidon/loupe/internal/config"
	"github.com/1broseidon/loupe/internal/history"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	// newService is replaced in tests.
	newService = func(cfg *config.Config, logger *slog.Logger) *app.Service {
		return app.NewService(cfg, logger)
	}
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runPick(nil)
	}

	switch args[0] {
	case "pick":
		return runPick(args[1:])
	case "sample":
		return runSample(args[1:])
	case "last":
		return runLast(args[1:])
	case "config":
		return runConfig(args[1:])
	case "mcp":
		return runMCP(args[1:])
	case "help", "-h", "--help":
		printMainUsage(stdout)
		return 0
	default:
		if strings.HasPrefix(args[0], "-") {
			return runPick(args)
		}
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printMainUsage(stderr)
		return 2
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: loupe [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  pick                Magnify the screen under the cursor and print the clicked color (default)")
	fmt.Fprintln(w, "  sample <x> <y>      Print the color of one screen pixel")
	fmt.Fprintln(w, "  last                Print the most recently picked color")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'loupe <command> --help' for command-specific options.")
}

// newLogger writes leveled diagnostics to stderr.
func newLogger(cfg *config.Config, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func runPick(args []string) int {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	fs.SetOutput(stderr)
	zoom := fs.Int("zoom", 0, "Zoom factor (default from config)")
	size := fs.Int("size", 0, "Magnifier size in pixels (default from config)")
	copyHex := fs.Bool("copy", false, "Copy the picked color to the clipboard")
	label := fs.Bool("label", false, "Show the hex value of the center pixel in the magnifier")
	display := fs.String("display", "", "X display to use (default: config, then $DISPLAY)")
	configPath := fs.String("config", "", "Config file path (default: ~/.config/loupe/config.yaml)")
	verbose := fs.Bool("verbose", false, "Log debug output to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: loupe pick [--zoom N] [--size N] [--copy] [--label] [--display D] [--verbose]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Show a magnifier that follows the mouse. Click to print the color under")
		fmt.Fprintln(stderr, "the cursor as #RRGGBB.")
		fmt.Fprintln(stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "pick takes no arguments, got %q\n", fs.Args())
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *zoom != 0 {
		cfg.Zoom = *zoom
	}
	if *size != 0 {
		cfg.MagnifierSize = *size
	}
	if *copyHex {
		cfg.Copy = true
	}
	if *label {
		cfg.ShowLabel = true
	}
	if *display != "" {
		cfg.Display = *display
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := newLogger(cfg, *verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, err := newService(cfg, logger).Pick(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "pick cancelled")
		} else {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}

	fmt.Fprintln(stdout, rec.Hex)
	if cfg.Swatch && isTerminal(stderr) {
		if c, err := rec.Color(); err == nil {
			writeSwatch(stderr, c)
		}
	}
	if cfg.Copy {
		if cfg.CopyHold > 0 {
			logger.Info("holding clipboard", "timeout", cfg.CopyHold)
		}
		if err := clipboard.New().Copy(ctx, rec.Hex, cfg.CopyHold); err != nil {
			logger.Warn("failed to copy color", "error", err)
		}
	}
	return 0
}

func runSample(args []string) int {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	fs.SetOutput(stderr)
	display := fs.String("display", "", "X display to use (default: config, then $DISPLAY)")
	configPath := fs.String("config", "", "Config file path (default: ~/.config/loupe/config.yaml)")
	verbose := fs.Bool("verbose", false, "Log debug output to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: loupe sample [--display D] <x> <y>")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Print the color of the screen pixel at (x, y) as #RRGGBB.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	x, errX := strconv.Atoi(fs.Arg(0))
	y, errY := strconv.Atoi(fs.Arg(1))
	if errX != nil || errY != nil {
		fmt.Fprintf(stderr, "invalid coordinates %q %q: want integers\n", fs.Arg(0), fs.Arg(1))
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *display != "" {
		cfg.Display = *display
	}

	c, err := newService(cfg, newLogger(cfg, *verbose)).Sample(x, y)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, c.Hex())
	return 0
}

func runLast(args []string) int {
	fs := flag.NewFlagSet("last", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "Print the full record as JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: loupe last [--json]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Print the most recently picked color.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return 2
	}

	rec, err := history.LoadLast()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}
	fmt.Fprintln(stdout, rec.Hex)
	return 0
}
