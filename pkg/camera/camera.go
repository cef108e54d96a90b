// Package camera adapts OpenCV (gocv) capture devices and HighGUI windows
// to the session interfaces.
package camera

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/menta2k/virtual-tryon/pkg/types"
)

// Config holds capture settings. Zero width/height keep the device default.
type Config struct {
	Index  int
	Width  int
	Height int
}

// Capture reads BGR frames from a local camera
type Capture struct {
	device *gocv.VideoCapture
	mat    gocv.Mat
	config Config
}

// Open starts capturing from the camera at config.Index
func Open(config Config) (*Capture, error) {
	device, err := gocv.OpenVideoCapture(config.Index)
	if err != nil {
		return nil, fmt.Errorf("could not open webcam (index %d): %w", config.Index, err)
	}
	if !device.IsOpened() {
		device.Close()
		return nil, fmt.Errorf("could not open webcam (index %d)", config.Index)
	}

	if config.Width > 0 {
		device.Set(gocv.VideoCaptureFrameWidth, float64(config.Width))
	}
	if config.Height > 0 {
		device.Set(gocv.VideoCaptureFrameHeight, float64(config.Height))
	}

	return &Capture{
		device: device,
		mat:    gocv.NewMat(),
		config: config,
	}, nil
}

// AcquireFrame reads the next frame; ok is false when the device stops
// delivering frames.
func (c *Capture) AcquireFrame() (types.Frame, bool) {
	if ok := c.device.Read(&c.mat); !ok || c.mat.Empty() {
		return types.Frame{}, false
	}
	frame, err := FrameFromMat(c.mat)
	if err != nil {
		return types.Frame{}, false
	}
	return frame, true
}

// Close releases the device and the read buffer
func (c *Capture) Close() error {
	if err := c.mat.Close(); err != nil {
		c.device.Close()
		return err
	}
	return c.device.Close()
}

// FrameFromMat copies an 8-bit 1, 3 or 4 channel Mat into a BGR frame
func FrameFromMat(m gocv.Mat) (types.Frame, error) {
	var bgr gocv.Mat
	switch m.Type() {
	case gocv.MatTypeCV8UC3:
		bgr = m
	case gocv.MatTypeCV8UC4:
		bgr = gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(m, &bgr, gocv.ColorBGRAToBGR)
	case gocv.MatTypeCV8UC1:
		bgr = gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(m, &bgr, gocv.ColorGrayToBGR)
	default:
		return types.Frame{}, fmt.Errorf("unsupported capture format: %v", m.Type())
	}

	frame := types.Frame{
		Width:  bgr.Cols(),
		Height: bgr.Rows(),
		Pix:    bgr.ToBytes(),
	}
	if err := frame.Validate(); err != nil {
		return types.Frame{}, err
	}
	return frame, nil
}

// MatFromFrame copies a frame into a new CV_8UC3 Mat. The caller closes it.
func MatFromFrame(f types.Frame) (gocv.Mat, error) {
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	return gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, pix)
}

// DefaultTitle is the window title used by the CLI
const DefaultTitle = "Centered Try-On (q to quit)"

// LabelColor is the scale label color
var LabelColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}

// Window shows frames in a HighGUI window and polls its keyboard
type Window struct {
	window *gocv.Window
}

// NewWindow creates a window with the given title
func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title)}
}

// Display draws the label in the top-left corner and shows the frame
func (w *Window) Display(frame types.Frame, label string) {
	mat, err := MatFromFrame(frame)
	if err != nil {
		return
	}
	defer mat.Close()

	gocv.PutTextWithParams(&mat, label, image.Pt(10, 30), gocv.FontHersheySimplex, 0.7,
		LabelColor, 2, gocv.LineAA, false)
	w.window.IMShow(mat)
}

// PollKey waits at most 1ms for a key press
func (w *Window) PollKey() (int, bool) {
	key := w.window.WaitKey(1)
	if key < 0 {
		return 0, false
	}
	return key & 0xFF, true
}

// Close destroys the window
func (w *Window) Close() error {
	return w.window.Close()
}
