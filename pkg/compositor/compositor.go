// Package compositor places a product overlay on camera frames.
//
// All functions are pure with respect to their inputs except Place and
// PlaceAt, which write into the frame they are given. Callers pass a working
// copy (see Compose) so the frame returned by a capture device is never
// modified.
package compositor

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/virtual-tryon/pkg/types"
)

// Filter is the resampling filter applied to both planes. Box averages the
// source area covered by each destination pixel.
var Filter = imaging.Box

// ScaledSize returns the overlay dimensions at the given scale, at least 1x1.
func ScaledSize(width, height int, scale float64) (int, int) {
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Resize returns fresh color and alpha planes resized to ScaledSize. The
// source overlay is never written to.
func Resize(src types.Overlay, scale float64) types.Overlay {
	if src.Empty() {
		return types.Overlay{}
	}

	w, h := ScaledSize(src.Width, src.Height, scale)
	if w == src.Width && h == src.Height {
		dst := types.NewOverlay(w, h)
		copy(dst.Color, src.Color)
		copy(dst.Alpha, src.Alpha)
		return dst
	}

	colorImg := imaging.Resize(src.ColorImage(), w, h, Filter)
	alphaImg := imaging.Resize(src.AlphaImage(), w, h, Filter)

	dst := types.NewOverlay(w, h)
	for p := 0; p < w*h; p++ {
		dst.Color[p*3] = colorImg.Pix[p*4+2]
		dst.Color[p*3+1] = colorImg.Pix[p*4+1]
		dst.Color[p*3+2] = colorImg.Pix[p*4]
		dst.Alpha[p] = alphaImg.Pix[p*4]
	}
	return dst
}

// Origin returns the top-left corner that centers an overlay on a frame.
// Odd size differences round toward the top-left.
func Origin(frameW, frameH, overlayW, overlayH int) image.Point {
	return image.Point{
		X: floorDiv(frameW, 2) - floorDiv(overlayW, 2),
		Y: floorDiv(frameH, 2) - floorDiv(overlayH, 2),
	}
}

// Clip intersects an overlay placed at origin with the frame bounds. It
// returns the destination rectangle in frame coordinates and the matching
// top-left corner inside the overlay. dst is empty when nothing overlaps.
func Clip(frame image.Rectangle, overlayW, overlayH int, origin image.Point) (dst image.Rectangle, src image.Point) {
	placed := image.Rect(origin.X, origin.Y, origin.X+overlayW, origin.Y+overlayH)
	dst = placed.Intersect(frame)
	if dst.Empty() {
		return image.Rectangle{}, image.Point{}
	}
	return dst, dst.Min.Sub(origin)
}

// Place centers the overlay on the frame and blends it in place. It returns
// the blended region, which is empty when the overlay misses the frame.
func Place(frame *types.Frame, overlay types.Overlay) image.Rectangle {
	return PlaceAt(frame, overlay, Origin(frame.Width, frame.Height, overlay.Width, overlay.Height))
}

// PlaceAt blends the overlay with its top-left corner at origin. Pixels
// outside the returned rectangle are left untouched.
func PlaceAt(frame *types.Frame, overlay types.Overlay, origin image.Point) image.Rectangle {
	if frame == nil || frame.Empty() || overlay.Empty() {
		return image.Rectangle{}
	}

	dst, src := Clip(frame.Bounds(), overlay.Width, overlay.Height, origin)
	if dst.Empty() {
		return image.Rectangle{}
	}

	roiW := dst.Dx()
	for row := 0; row < dst.Dy(); row++ {
		fi := ((dst.Min.Y+row)*frame.Width + dst.Min.X) * types.BytesPerPixel
		oi := (src.Y+row)*overlay.Width + src.X
		for col := 0; col < roiW; col++ {
			a := overlay.Alpha[oi]
			ci := oi * types.BytesPerPixel
			frame.Pix[fi] = Blend(overlay.Color[ci], frame.Pix[fi], a)
			frame.Pix[fi+1] = Blend(overlay.Color[ci+1], frame.Pix[fi+1], a)
			frame.Pix[fi+2] = Blend(overlay.Color[ci+2], frame.Pix[fi+2], a)
			fi += types.BytesPerPixel
			oi++
		}
	}
	return dst
}

// Blend mixes one channel: a*fg + (1-a)*bg with a = alpha/255, truncated
// toward zero. The weighted sum is formed in integers first so that equal
// fg and bg always return that value. Evaluating the formula directly in
// float32 can land just below the exact result and truncate one unit low;
// this returns the exact truncation instead.
func Blend(fg, bg, alpha uint8) uint8 {
	num := int(alpha)*int(fg) + (255-int(alpha))*int(bg)
	return uint8(float64(num) / 255.0)
}

// Compose resizes the overlay to scale and blends it centered onto a copy of
// frame. The input frame is not modified.
func Compose(frame types.Frame, overlay types.Overlay, scale float64) (types.Frame, image.Rectangle) {
	out := frame.Clone()
	roi := Place(&out, Resize(overlay, scale))
	return out, roi
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
