package session

import (
	"io"

	"github.com/menta2k/virtual-tryon/pkg/types"
)

// FrameSource supplies camera frames. ok=false signals end of stream.
type FrameSource interface {
	AcquireFrame() (frame types.Frame, ok bool)
}

// CaptureDevice is a FrameSource holding a resource that must be released.
type CaptureDevice interface {
	FrameSource
	io.Closer
}

// FrameSink shows a composited frame with a status label.
type FrameSink interface {
	Display(frame types.Frame, label string)
}

// Storage persists snapshots.
type Storage interface {
	Save(frame types.Frame, filename string) error
}

// InputSource returns at most one pending key per call without blocking.
type InputSource interface {
	PollKey() (key int, ok bool)
}
