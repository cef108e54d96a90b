package session

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/menta2k/virtual-tryon/pkg/asset"
)

// Opener acquires a capture device
type Opener func() (CaptureDevice, error)

// ProductLoader produces the product for a session
type ProductLoader func() (*asset.Product, error)

// Options configures Start
type Options struct {
	Config Config
	Sink   FrameSink
	Input  InputSource
	// Storage receives snapshots; nil disables them
	Storage Storage
	// Logger defaults to a no-op logger
	Logger *zerolog.Logger
	Clock  clockwork.Clock
}

// Start opens the capture device, loads the product and runs a session. The
// device is closed on every return path, including a failed product load.
func Start(open Opener, load ProductLoader, opts Options) error {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.Config == (Config{}) {
		opts.Config = DefaultConfig()
	}

	device, err := open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCaptureOpen, err)
	}
	defer func() {
		if cerr := device.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("failed to release capture device")
		}
	}()

	product, err := load()
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return fmt.Errorf("failed to load product: %w: no product returned", asset.ErrAssetLoad)
	}

	ctrl := NewWithConfig(product, IO{
		Source:  device,
		Sink:    opts.Sink,
		Input:   opts.Input,
		Storage: opts.Storage,
	}, opts.Config)
	ctrl.SetLogger(logger)
	if opts.Clock != nil {
		ctrl.SetClock(opts.Clock)
	}
	return ctrl.Run()
}
