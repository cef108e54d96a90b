package types

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// BytesPerPixel is the number of bytes per pixel in a Frame (B, G, R)
const BytesPerPixel = 3

// Frame is a packed BGR image buffer with stride Width*3.
//
// Frames returned by a frame source are owned by that source. Code that
// composites onto a frame works on a Clone.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// NewFrame allocates a zeroed (black) frame
func NewFrame(width, height int) Frame {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return Frame{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// Clone returns a deep copy of the frame
func (f Frame) Clone() Frame {
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	return Frame{Width: f.Width, Height: f.Height, Pix: pix}
}

// Bounds returns the frame rectangle anchored at the origin
func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Empty reports whether the frame holds no pixels
func (f Frame) Empty() bool {
	return f.Width <= 0 || f.Height <= 0
}

// Validate checks that the buffer length matches the dimensions
func (f Frame) Validate() error {
	if want := f.Width * f.Height * BytesPerPixel; len(f.Pix) != want {
		return fmt.Errorf("frame buffer size mismatch: %dx%d needs %d bytes, got %d",
			f.Width, f.Height, want, len(f.Pix))
	}
	return nil
}

// At returns the B, G, R values at x, y
func (f Frame) At(x, y int) (b, g, r uint8) {
	i := (y*f.Width + x) * BytesPerPixel
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Set writes the B, G, R values at x, y
func (f Frame) Set(x, y int, b, g, r uint8) {
	i := (y*f.Width + x) * BytesPerPixel
	f.Pix[i] = b
	f.Pix[i+1] = g
	f.Pix[i+2] = r
}

// Fill paints every pixel with the same BGR value
func (f Frame) Fill(b, g, r uint8) {
	for i := 0; i+2 < len(f.Pix); i += BytesPerPixel {
		f.Pix[i] = b
		f.Pix[i+1] = g
		f.Pix[i+2] = r
	}
}

// ToNRGBA converts the frame to an opaque *image.NRGBA for encoding
func (f Frame) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(f.Bounds())
	j := 0
	for i := 0; i+2 < len(f.Pix); i += BytesPerPixel {
		img.Pix[j+0] = f.Pix[i+2]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i]
		img.Pix[j+3] = 255
		j += 4
	}
	return img
}

// FrameFromImage converts any image into a BGR frame, dropping alpha
func FrameFromImage(img image.Image) Frame {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	f := NewFrame(b.Dx(), b.Dy())
	j := 0
	for i := 0; i+3 < len(nrgba.Pix); i += 4 {
		f.Pix[j] = nrgba.Pix[i+2]
		f.Pix[j+1] = nrgba.Pix[i+1]
		f.Pix[j+2] = nrgba.Pix[i]
		j += BytesPerPixel
	}
	return f
}

// Overlay is a color plane (BGR) and an alpha plane of identical dimensions
type Overlay struct {
	Width  int
	Height int
	Color  []byte // Width*Height*3, BGR
	Alpha  []byte // Width*Height, 0 transparent .. 255 opaque
}

// NewOverlay allocates zeroed planes
func NewOverlay(width, height int) Overlay {
	return Overlay{
		Width:  width,
		Height: height,
		Color:  make([]byte, width*height*BytesPerPixel),
		Alpha:  make([]byte, width*height),
	}
}

// Empty reports whether the overlay has no pixels
func (o Overlay) Empty() bool {
	return o.Width <= 0 || o.Height <= 0
}

// Validate checks plane sizes against the dimensions
func (o Overlay) Validate() error {
	n := o.Width * o.Height
	if len(o.Color) != n*BytesPerPixel {
		return fmt.Errorf("color plane size mismatch: %dx%d needs %d bytes, got %d",
			o.Width, o.Height, n*BytesPerPixel, len(o.Color))
	}
	if len(o.Alpha) != n {
		return fmt.Errorf("alpha plane size mismatch: %dx%d needs %d bytes, got %d",
			o.Width, o.Height, n, len(o.Alpha))
	}
	return nil
}

// ColorImage returns the color plane as an opaque NRGBA image
func (o Overlay) ColorImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, o.Width, o.Height))
	j := 0
	for i := 0; i+2 < len(o.Color); i += BytesPerPixel {
		img.Pix[j+0] = o.Color[i+2]
		img.Pix[j+1] = o.Color[i+1]
		img.Pix[j+2] = o.Color[i]
		img.Pix[j+3] = 255
		j += 4
	}
	return img
}

// AlphaImage returns the alpha plane as a grayscale image
func (o Overlay) AlphaImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, o.Width, o.Height))
	copy(img.Pix, o.Alpha)
	return img
}

// Preview renders the overlay as a straight-alpha NRGBA image
func (o Overlay) Preview() *image.NRGBA {
	img := o.ColorImage()
	for i, a := range o.Alpha {
		img.Pix[i*4+3] = a
	}
	return img
}
