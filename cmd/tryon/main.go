package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/menta2k/virtual-tryon/internal/config"
	"github.com/menta2k/virtual-tryon/internal/logging"
	"github.com/menta2k/virtual-tryon/internal/utils"
	"github.com/menta2k/virtual-tryon/pkg/asset"
	"github.com/menta2k/virtual-tryon/pkg/camera"
	"github.com/menta2k/virtual-tryon/pkg/replay"
	"github.com/menta2k/virtual-tryon/pkg/session"
	"github.com/menta2k/virtual-tryon/pkg/storage"
)

const controls = "Controls: '+' / '-' scale, 'p' snapshot, 'q' or ESC quit"

type options struct {
	product    string
	cam        int
	configPath string
	outDir     string
	framesDir  string
	keys       string
	headless   bool
	logLevel   string
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	flag.StringVar(&opts.product, "product", "painting.png", "product image path or URL")
	flag.StringVar(&opts.product, "p", "painting.png", "shorthand for -product")
	flag.IntVar(&opts.cam, "cam", 0, "camera index")
	flag.StringVar(&opts.configPath, "config", "", "JSON config file")
	flag.StringVar(&opts.outDir, "out", "", "snapshot directory (overrides config)")
	flag.StringVar(&opts.framesDir, "frames", "", "replay frames from a directory instead of the camera")
	flag.StringVar(&opts.keys, "keys", "", "key script for replay, e.g. \"++p.q\" ('.' idle, 'E' ESC)")
	flag.BoolVar(&opts.headless, "headless", false, "do not open a window (requires -frames)")
	flag.StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")
	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if set["cam"] {
		cfg.Camera.Index = opts.cam
	}
	if opts.outDir != "" {
		cfg.Snapshot.Dir = opts.outDir
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logger := logging.Init("tryon", cfg.Log.Level, cfg.Log.Format)

	if !asset.IsRemote(opts.product) && !utils.FileExists(opts.product) {
		logger.Error().Str("product", opts.product).Msg("product image not found")
		return 1
	}
	if opts.framesDir != "" && !utils.DirExists(opts.framesDir) {
		logger.Error().Str("frames", opts.framesDir).Msg("frames directory not found")
		return 1
	}
	if opts.headless && opts.framesDir == "" {
		logger.Error().Msg("-headless requires -frames")
		return 1
	}

	loader := asset.NewWithConfig(asset.Config{
		KeyThreshold:    uint8(cfg.Asset.KeyThreshold),
		DownloadTimeout: cfg.Asset.DownloadTimeout.Std(),
		UserAgent:       asset.DefaultConfig().UserAgent,
	})
	disk := storage.NewWithConfig(storage.Config{
		Dir:      cfg.Snapshot.Dir,
		Quality:  cfg.Snapshot.Quality,
		Lossless: cfg.Snapshot.Lossless,
	})

	sessionOpts := session.Options{
		Config:  sessionConfig(cfg),
		Storage: disk,
		Logger:  &logger,
	}

	var open session.Opener
	if opts.framesDir != "" {
		open = func() (session.CaptureDevice, error) {
			return replay.FromDir(opts.framesDir)
		}
		if opts.keys != "" {
			sessionOpts.Input = replay.ParseKeys(opts.keys)
		}
	} else {
		open = func() (session.CaptureDevice, error) {
			return camera.Open(camera.Config{
				Index:  cfg.Camera.Index,
				Width:  cfg.Camera.Width,
				Height: cfg.Camera.Height,
			})
		}
	}

	if opts.headless {
		sessionOpts.Sink = replay.NewLogSink(logger)
	} else {
		window := camera.NewWindow(cfg.Camera.WindowTitle)
		defer window.Close()
		sessionOpts.Sink = window
		if sessionOpts.Input == nil {
			sessionOpts.Input = window
		}
	}

	fmt.Println(controls)
	logger.Info().
		Str("product", opts.product).
		Str("snapshot_dir", absDir(cfg.Snapshot.Dir)).
		Msg("starting try-on")

	err = session.Start(open, func() (*asset.Product, error) {
		return loader.LoadSmart(opts.product)
	}, sessionOpts)
	return exitCode(logger, err)
}

func sessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		InitialScale:   cfg.Session.InitialScale,
		MinScale:       cfg.Session.MinScale,
		MaxScale:       cfg.Session.MaxScale,
		GrowFactor:     cfg.Session.GrowFactor,
		ShrinkFactor:   cfg.Session.ShrinkFactor,
		SnapshotPrefix: cfg.Snapshot.Prefix,
		SnapshotFormat: cfg.Snapshot.Format,
	}
}

// exitCode maps a session result to a process exit status. Running out of
// frames ends the session normally.
func exitCode(logger zerolog.Logger, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, session.ErrFrameUnavailable):
		logger.Warn().Msg("frame not received; stopping")
		return 0
	default:
		logger.Error().Err(err).Msg("try-on failed")
		return 1
	}
}

func absDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
