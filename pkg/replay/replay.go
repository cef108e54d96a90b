// Package replay provides deterministic stand-ins for the camera, window
// and keyboard: a finite, restartable frame sequence, a scripted key source
// and sinks that log or record what they are shown.
package replay

import (
	"errors"
	"fmt"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/menta2k/virtual-tryon/internal/utils"
	"github.com/menta2k/virtual-tryon/pkg/types"
)

// ErrNoFrames is returned when a replay directory holds no images
var ErrNoFrames = errors.New("no frames to replay")

// Sequence replays a fixed list of frames in order
type Sequence struct {
	frames []types.Frame
	pos    int
	loops  int
	played int
	closed bool
}

// NewSequence creates a sequence that plays each frame once
func NewSequence(frames ...types.Frame) *Sequence {
	return &Sequence{frames: frames, loops: 1}
}

// Repeat makes the sequence play n times in total before running dry
func (s *Sequence) Repeat(n int) *Sequence {
	if n < 1 {
		n = 1
	}
	s.loops = n
	return s
}

// FromDir loads every image in dir, sorted by name, as a sequence
func FromDir(dir string) (*Sequence, error) {
	files, err := utils.ListImageFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list frames in %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFrames, dir)
	}
	sort.Strings(files)

	frames := make([]types.Frame, 0, len(files))
	for _, f := range files {
		img, err := imaging.Open(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode frame %s: %w", f, err)
		}
		frames = append(frames, types.FrameFromImage(img))
	}
	return NewSequence(frames...), nil
}

// AcquireFrame returns the next frame. The returned frame is a copy, so
// callers cannot disturb later replays.
func (s *Sequence) AcquireFrame() (types.Frame, bool) {
	if s.closed || len(s.frames) == 0 {
		return types.Frame{}, false
	}
	if s.pos >= len(s.frames) {
		s.played++
		if s.played >= s.loops {
			return types.Frame{}, false
		}
		s.pos = 0
	}
	f := s.frames[s.pos].Clone()
	s.pos++
	return f, true
}

// Reset rewinds the sequence and reopens it
func (s *Sequence) Reset() {
	s.pos = 0
	s.played = 0
	s.closed = false
}

// Close releases the sequence; subsequent reads report end of stream
func (s *Sequence) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close has been called
func (s *Sequence) Closed() bool { return s.closed }

// Len returns the number of frames in one pass
func (s *Sequence) Len() int { return len(s.frames) }

// Keys is a scripted input source. Each poll consumes one entry; NoKey
// entries report that nothing was pressed.
type Keys struct {
	script []int
	pos    int
}

// NoKey marks an iteration with no key press in a script
const NoKey = -1

// NewKeys creates a key script
func NewKeys(keys ...int) *Keys {
	return &Keys{script: keys}
}

// ParseKeys builds a script from a string: every rune is a key press, '.'
// is an idle poll and 'E' stands for ESC.
func ParseKeys(script string) *Keys {
	keys := make([]int, 0, len(script))
	for _, r := range script {
		switch r {
		case '.':
			keys = append(keys, NoKey)
		case 'E':
			keys = append(keys, 27)
		default:
			keys = append(keys, int(r))
		}
	}
	return NewKeys(keys...)
}

// PollKey returns the next scripted key
func (k *Keys) PollKey() (int, bool) {
	if k.pos >= len(k.script) {
		return 0, false
	}
	key := k.script[k.pos]
	k.pos++
	if key == NoKey {
		return 0, false
	}
	return key, true
}

// Remaining returns the number of unconsumed script entries
func (k *Keys) Remaining() int {
	return len(k.script) - k.pos
}

// LogSink logs every displayed frame instead of drawing it
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a headless sink
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Display logs the frame size and label
func (s *LogSink) Display(frame types.Frame, label string) {
	s.logger.Debug().
		Int("width", frame.Width).
		Int("height", frame.Height).
		Str("label", label).
		Msg("frame")
}

// Recorder keeps every displayed frame and label in order
type Recorder struct {
	Frames []types.Frame
	Labels []string
}

// Display appends the frame and label
func (r *Recorder) Display(frame types.Frame, label string) {
	r.Frames = append(r.Frames, frame)
	r.Labels = append(r.Labels, label)
}
