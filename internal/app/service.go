// Package app wires configuration, the display backend and the picker into
// the operations exposed by the CLI and the MCP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/loupe/internal/capture"
	"github.com/1broseidon/loupe/internal/config"
	"github.com/1broseidon/loupe/internal/history"
	"github.com/1broseidon/loupe/internal/magnify"
	"github.com/1broseidon/loupe/internal/picker"
	"github.com/1broseidon/loupe/internal/pixel"
	"github.com/1broseidon/loupe/internal/platform"
)

// ErrPickInProgress is returned when a second pick starts while the pointer
// is already grabbed by this process.
var ErrPickInProgress = errors.New("a pick is already in progress")

// OpenFunc connects to display and returns a ready backend.
type OpenFunc func(cfg *config.Config, display string) (platform.Backend, error)

// Service runs picks and samples against the configured display.
type Service struct {
	cfg           *config.Config
	logger        *slog.Logger
	open          OpenFunc
	getenv        func(string) string
	now           func() time.Time
	clock         picker.Clock
	saveLast      func(history.Record) error
	loadLast      func() (history.Record, error)
	detectDisplay bool

	mu sync.Mutex
}

// Option customizes a Service.
type Option func(*Service)

// WithOpen replaces the function used to open the display backend.
func WithOpen(open OpenFunc) Option {
	return func(s *Service) {
		s.open = open
	}
}

// WithClock sets the clock used between magnifier frames.
func WithClock(c picker.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithHistory replaces where the last pick is stored.
func WithHistory(save func(history.Record) error, load func() (history.Record, error)) Option {
	return func(s *Service) {
		s.saveLast = save
		s.loadLast = load
	}
}

// WithEnv replaces the environment lookup used for session checks.
func WithEnv(getenv func(string) string) Option {
	return func(s *Service) {
		s.getenv = getenv
	}
}

// WithDisplayDetection makes the service look for a display when neither the
// config nor the environment names one.
func WithDisplayDetection() Option {
	return func(s *Service) {
		s.detectDisplay = true
	}
}

// NewService creates a service for cfg. A nil logger discards output.
func NewService(cfg *config.Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{
		cfg:      cfg,
		logger:   logger,
		open:     OpenBackend,
		getenv:   os.Getenv,
		now:      time.Now,
		saveLast: history.SaveLast,
		loadLast: history.LoadLast,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// PickerOptions converts the configuration into loop options.
func PickerOptions(cfg *config.Config) picker.Options {
	return picker.Options{
		Options: magnify.Options{
			Size:       cfg.MagnifierSize,
			Zoom:       cfg.Zoom,
			DotSize:    cfg.DotSize,
			DotColor:   cfg.DotPixel(),
			DotOpacity: cfg.DotOpacity,
			Label:      cfg.ShowLabel,
		},
		Offset:   cfg.Offset,
		Interval: cfg.Interval,
	}
}

// OpenBackend opens the X11 backend, swapping in the screenshot reader when
// capture_backend asks for it.
func OpenBackend(cfg *config.Config, display string) (platform.Backend, error) {
	var opts []platform.Option
	if cfg.CaptureBackend == config.CaptureBackendScreenshot {
		opts = append(opts, platform.WithRegionReader(capture.NewScreenshot()))
	}
	backend, err := platform.NewLinuxBackendFromDisplay(display, opts...)
	if err != nil {
		return nil, err
	}
	return backend, nil
}

// Pick shows the magnifier until the user clicks, then records and returns
// the picked color. It returns ctx.Err() if ctx ends first.
func (s *Service) Pick(ctx context.Context) (history.Record, error) {
	if !s.mu.TryLock() {
		return history.Record{}, ErrPickInProgress
	}
	defer s.mu.Unlock()

	backend, err := s.connect()
	if err != nil {
		return history.Record{}, err
	}
	defer backend.Close()

	opts := []picker.Option{picker.WithLogger(s.logger)}
	if s.clock != nil {
		opts = append(opts, picker.WithClock(s.clock))
	}
	p := picker.New(backend, PickerOptions(s.cfg), opts...)
	defer p.Close()

	res, err := p.Run(ctx)
	if err != nil {
		return history.Record{}, err
	}

	rec := history.NewRecord(res.Color, res.At.X, res.At.Y, s.now())
	if err := s.saveLast(rec); err != nil {
		s.logger.Warn("failed to save last pick", "error", err)
	}
	s.logger.Info("picked color", "hex", rec.Hex, "x", rec.X, "y", rec.Y)
	return rec, nil
}

// Sample reads the pixel at (x, y) without showing the magnifier.
func (s *Service) Sample(x, y int) (pixel.Pixel, error) {
	backend, err := s.connect()
	if err != nil {
		return 0, err
	}
	defer backend.Close()

	at := platform.Point{X: x, Y: y}
	if !backend.ScreenBounds().Contains(at) {
		return 0, fmt.Errorf("(%d,%d): %w", x, y, picker.ErrOutsideScreen)
	}
	img, err := backend.ReadRegion(platform.Rect{X: x, Y: y, Width: 1, Height: 1})
	if err != nil {
		return 0, fmt.Errorf("failed to read pixel: %w", err)
	}
	if img.Empty() {
		return 0, fmt.Errorf("failed to read pixel: empty image")
	}
	return img.PixelAt(0, 0), nil
}

// Last returns the most recent pick.
func (s *Service) Last() (history.Record, error) {
	return s.loadLast()
}

func (s *Service) connect() (platform.Backend, error) {
	display := s.cfg.Display
	if s.detectDisplay {
		detected, err := EnsureDisplayEnv(display)
		if err != nil {
			s.logger.Debug("display detection failed", "error", err)
		} else {
			display = detected
		}
	}

	if err := platform.CheckSession(display, s.getenv); err != nil {
		return nil, err
	}
	backend, err := s.open(s.cfg, display)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("connected to display", "display", display, "capture_backend", s.cfg.CaptureBackend)
	return backend, nil
}
