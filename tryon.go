// Package tryon composites a product image over live camera frames.
//
// A product (a painting, a garment, a frame) is loaded once and turned into a
// color plane plus an alpha mask. Every camera frame then gets a scaled copy
// of the product alpha-blended at its center. Scale changes and snapshots are
// driven by single key presses.
//
// Basic usage:
//
//	t := tryon.New()
//	product, err := t.LoadProduct("painting.png")
//	if err != nil {
//		log.Fatal(err)
//	}
//	frame := types.FrameFromImage(img)
//	out := t.Compose(frame, product, 0.3)
//	if err := t.SaveSnapshot(out, "snapshot.png"); err != nil {
//		log.Fatal(err)
//	}
//
// The package consists of these components:
//
//  1. Asset (pkg/asset): decodes product images and derives the alpha mask
//  2. Compositor (pkg/compositor): scales, centers, clips and blends
//  3. Session (pkg/session): the frame loop and key handling
//  4. Camera (pkg/camera): OpenCV capture and display
//  5. Storage (pkg/storage): snapshot encoding
package tryon

import (
	"fmt"
	"image"

	"github.com/menta2k/virtual-tryon/pkg/asset"
	"github.com/menta2k/virtual-tryon/pkg/compositor"
	"github.com/menta2k/virtual-tryon/pkg/storage"
	"github.com/menta2k/virtual-tryon/pkg/types"
)

// Version of the try-on library
const Version = "1.0.0"

// TryOn provides a high-level interface over loading, compositing and saving
type TryOn struct {
	loader  *asset.Loader
	storage *storage.Disk
}

// New creates a TryOn with default configuration
func New() *TryOn {
	return &TryOn{
		loader:  asset.New(),
		storage: storage.New(),
	}
}

// NewWithConfig creates a TryOn with custom configuration
func NewWithConfig(assetConfig asset.Config, storageConfig storage.Config) *TryOn {
	return &TryOn{
		loader:  asset.NewWithConfig(assetConfig),
		storage: storage.NewWithConfig(storageConfig),
	}
}

// LoadProduct loads a product from a file path or an http(s) URL
func (t *TryOn) LoadProduct(source string) (*asset.Product, error) {
	return t.loader.LoadSmart(source)
}

// ProductFromImage builds a product from an already decoded image
func (t *TryOn) ProductFromImage(img image.Image) (*asset.Product, error) {
	return t.loader.FromImage(img)
}

// Compose returns a copy of frame with the product centered at scale
func (t *TryOn) Compose(frame types.Frame, product *asset.Product, scale float64) types.Frame {
	out, _ := compositor.Compose(frame, product.Overlay(), scale)
	return out
}

// ComposeImage is Compose for arbitrary images
func (t *TryOn) ComposeImage(img image.Image, product *asset.Product, scale float64) image.Image {
	return t.Compose(types.FrameFromImage(img), product, scale).ToNRGBA()
}

// SaveSnapshot writes a frame into the snapshot directory
func (t *TryOn) SaveSnapshot(frame types.Frame, filename string) error {
	if err := t.storage.Save(frame, filename); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
