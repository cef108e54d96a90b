package compositor

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/virtual-tryon/pkg/types"
)

// createOverlay creates an overlay filled with one BGR color and alpha
func createOverlay(width, height int, b, g, r, a uint8) types.Overlay {
	ov := types.NewOverlay(width, height)
	for p := 0; p < width*height; p++ {
		ov.Color[p*3], ov.Color[p*3+1], ov.Color[p*3+2] = b, g, r
		ov.Alpha[p] = a
	}
	return ov
}

// createTestFrame creates a frame with a position-dependent pattern
func createTestFrame(width, height int) types.Frame {
	f := types.NewFrame(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			f.Set(x, y, uint8(x), uint8(y), uint8(x+y))
		}
	}
	return f
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		w, h   int
		scale  float64
		ew, eh int
	}{
		{100, 60, 1.0, 100, 60},
		{100, 60, 0.3, 30, 18},
		{101, 61, 0.5, 51, 31}, // 50.5 and 30.5 round away from zero
		{10, 10, 0.01, 1, 1},
		{40, 20, 2.5, 100, 50},
	}
	for _, tt := range tests {
		w, h := ScaledSize(tt.w, tt.h, tt.scale)
		assert.Equal(t, tt.ew, w, "width for %dx%d@%v", tt.w, tt.h, tt.scale)
		assert.Equal(t, tt.eh, h, "height for %dx%d@%v", tt.w, tt.h, tt.scale)
	}
}

func TestResize(t *testing.T) {
	src := createOverlay(40, 20, 10, 20, 30, 200)

	down := Resize(src, 0.5)
	require.NoError(t, down.Validate())
	assert.Equal(t, 20, down.Width)
	assert.Equal(t, 10, down.Height)
	assert.Equal(t, uint8(200), down.Alpha[0])
	assert.Equal(t, []byte{10, 20, 30}, down.Color[:3])

	up := Resize(src, 2.0)
	require.NoError(t, up.Validate())
	assert.Equal(t, 80, up.Width)
	assert.Equal(t, 40, up.Height)
	assert.Equal(t, uint8(200), up.Alpha[len(up.Alpha)-1])
}

func TestResizeAveragesArea(t *testing.T) {
	// Two columns, opaque then transparent: halving the width averages them.
	src := types.NewOverlay(2, 1)
	src.Alpha[0], src.Alpha[1] = 255, 0

	dst := Resize(src, 0.5)
	require.Equal(t, 1, dst.Width)
	assert.InDelta(t, 128, int(dst.Alpha[0]), 1)
}

func TestResizeDoesNotAliasSource(t *testing.T) {
	src := createOverlay(4, 4, 1, 2, 3, 255)
	dst := Resize(src, 1.0)
	dst.Color[0] = 99
	dst.Alpha[0] = 0

	assert.Equal(t, uint8(1), src.Color[0])
	assert.Equal(t, uint8(255), src.Alpha[0])
}

func TestOrigin(t *testing.T) {
	assert.Equal(t, image.Pt(270, 210), Origin(640, 480, 100, 60))
	assert.Equal(t, image.Pt(-30, 210), Origin(640, 480, 700, 60))
	// Odd difference biases toward the top-left
	assert.Equal(t, image.Pt(1, 1), Origin(5, 5, 2, 2))
	assert.Equal(t, image.Pt(2, 2), Origin(5, 5, 1, 1))
}

func TestPlaceCentering(t *testing.T) {
	frame := types.NewFrame(640, 480)
	roi := Place(&frame, createOverlay(100, 60, 255, 255, 255, 255))

	assert.Equal(t, image.Rect(270, 210, 370, 270), roi)
	b, _, _ := frame.At(270, 210)
	assert.Equal(t, uint8(255), b)
	b, _, _ = frame.At(269, 210)
	assert.Equal(t, uint8(0), b)
}

func TestPlaceClipsSymmetrically(t *testing.T) {
	frame := types.NewFrame(640, 480)
	roi := Place(&frame, createOverlay(700, 60, 9, 9, 9, 255))

	assert.Equal(t, 640, roi.Dx())
	assert.Equal(t, 60, roi.Dy())
	assert.Equal(t, 320, (roi.Min.X+roi.Max.X)/2)
	assert.Equal(t, 0, roi.Min.X)
	assert.Equal(t, 640, roi.Max.X)
}

func TestClipSourceOffset(t *testing.T) {
	dst, src := Clip(image.Rect(0, 0, 640, 480), 700, 500, image.Pt(-30, -10))
	assert.Equal(t, image.Rect(0, 0, 640, 480), dst)
	assert.Equal(t, image.Pt(30, 10), src)
}

func TestPlaceClippedUsesMatchingSourcePixels(t *testing.T) {
	ov := types.NewOverlay(4, 1)
	for x := 0; x < 4; x++ {
		ov.Color[x*3] = uint8(10 * (x + 1))
		ov.Alpha[x] = 255
	}
	frame := types.NewFrame(2, 1)

	roi := Place(&frame, ov)
	require.Equal(t, image.Rect(0, 0, 2, 1), roi)

	// Origin is -1, so frame column 0 shows overlay column 1
	b0, _, _ := frame.At(0, 0)
	b1, _, _ := frame.At(1, 0)
	assert.Equal(t, uint8(20), b0)
	assert.Equal(t, uint8(30), b1)
}

func TestPlaceOutsideLeavesFrameUntouched(t *testing.T) {
	frame := createTestFrame(64, 48)
	before := frame.Clone()

	roi := PlaceAt(&frame, createOverlay(10, 10, 255, 255, 255, 255), image.Pt(64, 0))
	assert.True(t, roi.Empty())
	assert.Equal(t, before.Pix, frame.Pix)

	roi = PlaceAt(&frame, createOverlay(10, 10, 255, 255, 255, 255), image.Pt(-10, -10))
	assert.True(t, roi.Empty())
	assert.Equal(t, before.Pix, frame.Pix)

	roi = Place(&frame, types.Overlay{})
	assert.True(t, roi.Empty())
	assert.Equal(t, before.Pix, frame.Pix)
}

func TestPlacePreservesPixelsOutsideROI(t *testing.T) {
	frame := createTestFrame(64, 48)
	before := frame.Clone()

	roi := Place(&frame, createOverlay(10, 6, 1, 2, 3, 255))

	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			if image.Pt(x, y).In(roi) {
				continue
			}
			b, g, r := frame.At(x, y)
			eb, eg, er := before.At(x, y)
			require.Equal(t, []uint8{eb, eg, er}, []uint8{b, g, r}, "pixel %d,%d", x, y)
		}
	}
}

func TestBlend(t *testing.T) {
	assert.Equal(t, uint8(100), Blend(200, 0, 128))
	assert.Equal(t, uint8(200), Blend(200, 17, 255))
	assert.Equal(t, uint8(17), Blend(200, 17, 0))
	assert.Equal(t, uint8(255), Blend(255, 255, 77))
	// 0.2 * 100 + 0.8 * 51 = 60.8 truncates to 60
	assert.Equal(t, uint8(60), Blend(100, 51, 51))
}

func TestBlendExactForEqualInputs(t *testing.T) {
	assert.Equal(t, uint8(255), Blend(255, 255, 128))
	for a := 0; a <= 255; a++ {
		for _, v := range []uint8{0, 1, 128, 254, 255} {
			require.Equal(t, v, Blend(v, v, uint8(a)), "value %d alpha %d", v, a)
		}
	}
}

func TestComposeEndToEnd(t *testing.T) {
	red := createOverlay(50, 50, 0, 0, 255, 255)
	frame := types.NewFrame(200, 200)

	out, roi := Compose(frame, red, 1.0)

	assert.Equal(t, image.Rect(75, 75, 125, 125), roi)
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			b, g, r := out.At(x, y)
			if x >= 75 && x < 125 && y >= 75 && y < 125 {
				require.Equal(t, []uint8{0, 0, 255}, []uint8{b, g, r}, "pixel %d,%d", x, y)
			} else {
				require.Equal(t, []uint8{0, 0, 0}, []uint8{b, g, r}, "pixel %d,%d", x, y)
			}
		}
	}

	// Source frame is untouched
	for _, v := range frame.Pix {
		require.Zero(t, v)
	}
}

func BenchmarkCompose(b *testing.B) {
	frame := createTestFrame(1280, 720)
	overlay := createOverlay(800, 800, 10, 20, 30, 180)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Compose(frame, overlay, 0.3)
	}
}
