package asset

import (
	"fmt"
	"image"
	"image/color"

	"github.com/menta2k/virtual-tryon/pkg/types"
)

// Layout is the channel layout of a decoded product image
type Layout int

const (
	LayoutUnknown    Layout = 0
	LayoutGray       Layout = 1
	LayoutColor      Layout = 3
	LayoutColorAlpha Layout = 4
)

// Channels returns the number of channels in the layout
func (l Layout) Channels() int {
	return int(l)
}

func (l Layout) String() string {
	switch l {
	case LayoutGray:
		return "gray"
	case LayoutColor:
		return "color"
	case LayoutColorAlpha:
		return "color+alpha"
	default:
		return "unknown"
	}
}

// Classify maps a decoded image onto the 4/3/1 channel layouts.
func Classify(img image.Image) (Layout, error) {
	switch m := img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.NYCbCrA:
		return LayoutColorAlpha, nil
	case *image.RGBA:
		if m.Opaque() {
			return LayoutColor, nil
		}
		return LayoutColorAlpha, nil
	case *image.RGBA64:
		if m.Opaque() {
			return LayoutColor, nil
		}
		return LayoutColorAlpha, nil
	case *image.Paletted:
		if paletteHasAlpha(m.Palette) {
			return LayoutColorAlpha, nil
		}
		return LayoutColor, nil
	case *image.YCbCr, *image.CMYK:
		return LayoutColor, nil
	case *image.Gray, *image.Gray16:
		return LayoutGray, nil
	case nil:
		return LayoutUnknown, fmt.Errorf("%w: nil image", ErrUnsupportedFormat)
	default:
		return LayoutUnknown, fmt.Errorf("%w: %T", ErrUnsupportedFormat, img)
	}
}

func paletteHasAlpha(p color.Palette) bool {
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return true
		}
	}
	return false
}

// Product is the decoded product image: a BGR color plane plus an alpha plane.
// It is immutable after construction.
type Product struct {
	width  int
	height int
	layout Layout
	color  []byte
	alpha  []byte
}

// Width returns the base width in pixels
func (p *Product) Width() int { return p.width }

// Height returns the base height in pixels
func (p *Product) Height() int { return p.height }

// Layout returns the channel layout the product was decoded from
func (p *Product) Layout() Layout { return p.layout }

// Overlay returns a read-only view of the product planes. The returned
// slices are shared with the Product and must not be written to.
func (p *Product) Overlay() types.Overlay {
	return types.Overlay{
		Width:  p.width,
		Height: p.height,
		Color:  p.color,
		Alpha:  p.alpha,
	}
}

// AlphaAt returns the alpha value at x, y
func (p *Product) AlphaAt(x, y int) uint8 {
	return p.alpha[y*p.width+x]
}

// ColorAt returns the B, G, R values at x, y
func (p *Product) ColorAt(x, y int) (b, g, r uint8) {
	i := (y*p.width + x) * 3
	return p.color[i], p.color[i+1], p.color[i+2]
}

// Coverage returns the fraction of pixels that are not fully transparent
func (p *Product) Coverage() float64 {
	if len(p.alpha) == 0 {
		return 0
	}
	visible := 0
	for _, a := range p.alpha {
		if a > 0 {
			visible++
		}
	}
	return float64(visible) / float64(len(p.alpha))
}
