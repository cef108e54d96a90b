package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/menta2k/virtual-tryon/internal/utils"
	"github.com/menta2k/virtual-tryon/pkg/types"
)

// ErrUnsupportedFormat is returned for snapshot extensions without an encoder
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

// Disk writes snapshots into a directory
type Disk struct {
	config Config
}

// Config holds configuration for snapshot encoding
type Config struct {
	Dir      string
	Quality  int
	Lossless bool
}

// New creates a Disk storage writing to the current directory
func New() *Disk {
	return &Disk{config: Config{Dir: ".", Quality: 90}}
}

// NewWithConfig creates a Disk storage with custom configuration
func NewWithConfig(config Config) *Disk {
	if config.Dir == "" {
		config.Dir = "."
	}
	return &Disk{config: config}
}

// Dir returns the snapshot directory
func (d *Disk) Dir() string { return d.config.Dir }

// Save encodes the frame by the file extension (png, jpg/jpeg, webp)
func (d *Disk) Save(frame types.Frame, filename string) error {
	if err := frame.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot frame: %w", err)
	}
	if err := utils.EnsureDir(d.config.Dir); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	path := filepath.Join(d.config.Dir, utils.SanitizeFilename(filename))
	img := frame.ToNRGBA()

	switch ext := utils.GetFileExtension(path); ext {
	case "webp":
		opts := &webp.Options{Lossless: d.config.Lossless, Quality: float32(d.config.Quality)}
		return writeFile(path, func(w io.Writer) error {
			if err := webp.Encode(w, img, opts); err != nil {
				return fmt.Errorf("failed to encode webp snapshot: %w", err)
			}
			return nil
		})
	case "png":
		return imaging.Save(img, path)
	case "jpg", "jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(d.config.Quality))
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, strings.ToLower(ext))
	}
}

// writeFile creates path and runs encode on it. On any encode or close
// failure the partial file is removed.
func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	if err := encode(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// Memory keeps snapshots in memory, keyed by file name
type Memory struct {
	mu    sync.Mutex
	files map[string]types.Frame
	order []string
	// Err, when set, is returned by every Save
	Err error
}

// NewMemory creates an empty in-memory storage
func NewMemory() *Memory {
	return &Memory{files: make(map[string]types.Frame)}
}

// Save stores a copy of the frame
func (m *Memory) Save(frame types.Frame, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.files[filename]; !ok {
		m.order = append(m.order, filename)
	}
	m.files[filename] = frame.Clone()
	return nil
}

// Get returns a stored snapshot
func (m *Memory) Get(filename string) (types.Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[filename]
	return f, ok
}

// Names returns stored file names in save order
func (m *Memory) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}
