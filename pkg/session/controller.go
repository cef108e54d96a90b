package session

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/menta2k/virtual-tryon/internal/utils"
	"github.com/menta2k/virtual-tryon/pkg/asset"
	"github.com/menta2k/virtual-tryon/pkg/compositor"
	"github.com/menta2k/virtual-tryon/pkg/types"
)

var (
	// ErrFrameUnavailable ends a session when the frame source has no more frames
	ErrFrameUnavailable = errors.New("frame unavailable")
	// ErrCaptureOpen is returned when the capture device cannot be opened
	ErrCaptureOpen = errors.New("capture device unavailable")
)

// State is the controller lifecycle state
type State int

const (
	StateRunning State = iota
	StateTerminated
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "terminated"
}

// Config holds the interactive scale policy and snapshot naming
type Config struct {
	InitialScale   float64
	MinScale       float64
	MaxScale       float64
	GrowFactor     float64
	ShrinkFactor   float64
	SnapshotPrefix string
	SnapshotFormat string
}

// DefaultConfig returns the standard try-on controls
func DefaultConfig() Config {
	return Config{
		InitialScale:   0.3,
		MinScale:       0.05,
		MaxScale:       2.5,
		GrowFactor:     1.1,
		ShrinkFactor:   0.9,
		SnapshotPrefix: "snapshot_",
		SnapshotFormat: "png",
	}
}

// IO bundles the collaborators a session talks to
type IO struct {
	Source  FrameSource
	Sink    FrameSink
	Input   InputSource
	Storage Storage
}

// Stats counts what happened during a session
type Stats struct {
	FramesRendered  uint64
	SnapshotsSaved  uint64
	SnapshotsFailed uint64
	KeysHandled     uint64
}

// Controller drives one try-on session: acquire, compose, display, poll, apply.
type Controller struct {
	id      uuid.UUID
	product *asset.Product
	io      IO
	config  Config
	clock   clockwork.Clock
	logger  zerolog.Logger

	state State
	scale float64
	stats Stats
}

// New creates a Controller with the default configuration
func New(product *asset.Product, io IO) *Controller {
	return NewWithConfig(product, io, DefaultConfig())
}

// NewWithConfig creates a Controller with a custom configuration
func NewWithConfig(product *asset.Product, io IO, config Config) *Controller {
	id := uuid.New()
	return &Controller{
		id:      id,
		product: product,
		io:      io,
		config:  config,
		clock:   clockwork.NewRealClock(),
		logger:  zerolog.Nop(),
		state:   StateRunning,
		scale:   clampScale(config.InitialScale, config.MinScale, config.MaxScale),
	}
}

// SetClock replaces the clock used for snapshot names
func (c *Controller) SetClock(clock clockwork.Clock) {
	c.clock = clock
}

// SetLogger replaces the session logger
func (c *Controller) SetLogger(logger zerolog.Logger) {
	c.logger = logger.With().Str("session", c.id.String()).Logger()
}

// ID returns the session identifier
func (c *Controller) ID() uuid.UUID { return c.id }

// Scale returns the current overlay scale
func (c *Controller) Scale() float64 { return c.scale }

// State returns the lifecycle state
func (c *Controller) State() State { return c.state }

// Stats returns a copy of the session counters
func (c *Controller) Stats() Stats { return c.stats }

// Label formats the on-screen scale label
func Label(scale float64) string {
	return fmt.Sprintf("Scale:%.2f", scale)
}

// Run iterates until the session terminates. It returns nil after a quit
// command and ErrFrameUnavailable when the source runs dry.
func (c *Controller) Run() error {
	c.logger.Info().
		Int("product_width", c.product.Width()).
		Int("product_height", c.product.Height()).
		Str("layout", c.product.Layout().String()).
		Float64("scale", c.scale).
		Msg("session started")

	var err error
	for c.state == StateRunning {
		if err = c.Step(); err != nil {
			break
		}
	}

	event := c.logger.Info()
	reason := "quit"
	if err != nil {
		event = c.logger.Warn().Err(err)
		reason = "frame_unavailable"
	}
	event.
		Str("reason", reason).
		Uint64("frames", c.stats.FramesRendered).
		Uint64("snapshots", c.stats.SnapshotsSaved).
		Uint64("snapshot_failures", c.stats.SnapshotsFailed).
		Msg("session stopped")
	return err
}

// Step runs a single iteration. It is a no-op once the session has terminated.
func (c *Controller) Step() error {
	if c.state != StateRunning {
		return nil
	}

	frame, ok := c.io.Source.AcquireFrame()
	if !ok {
		c.state = StateTerminated
		return ErrFrameUnavailable
	}

	display, _ := compositor.Compose(frame, c.product.Overlay(), c.scale)
	c.stats.FramesRendered++

	if c.io.Sink != nil {
		c.io.Sink.Display(display, Label(c.scale))
	}

	if c.io.Input == nil {
		return nil
	}
	key, ok := c.io.Input.PollKey()
	if !ok {
		return nil
	}
	c.apply(ParseKey(key), display)
	return nil
}

func (c *Controller) apply(cmd Command, display types.Frame) {
	if cmd == CommandNone {
		return
	}
	c.stats.KeysHandled++

	switch cmd {
	case CommandQuit:
		c.state = StateTerminated
	case CommandIncreaseScale:
		c.scale = math.Min(c.config.MaxScale, c.scale*c.config.GrowFactor)
		c.logger.Debug().Float64("scale", c.scale).Msg("scale increased")
	case CommandDecreaseScale:
		c.scale = math.Max(c.config.MinScale, c.scale*c.config.ShrinkFactor)
		c.logger.Debug().Float64("scale", c.scale).Msg("scale decreased")
	case CommandSnapshot:
		c.snapshot(display)
	}
}

// SnapshotName returns the file name for a snapshot taken now
func (c *Controller) SnapshotName() string {
	return utils.SnapshotFilename(c.config.SnapshotPrefix, c.clock.Now(), c.config.SnapshotFormat)
}

func (c *Controller) snapshot(display types.Frame) {
	name := c.SnapshotName()
	if c.io.Storage == nil {
		c.stats.SnapshotsFailed++
		c.logger.Warn().Str("file", name).Msg("snapshot skipped: no storage configured")
		return
	}
	if err := c.io.Storage.Save(display, name); err != nil {
		c.stats.SnapshotsFailed++
		c.logger.Warn().Err(err).Str("file", name).Msg("snapshot failed")
		return
	}
	c.stats.SnapshotsSaved++
	c.logger.Info().Str("file", name).Msg("snapshot saved")
}

func clampScale(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
