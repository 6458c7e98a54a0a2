package scene

import (
	"maps"
	"slices"
	"sort"
	"strconv"

	"github.com/coreman2200/ledstudio/internal/ledcolor"
)

const (
	DefaultName       = "New Scene"
	DefaultFPS        = 5
	DefaultBrightness = 20
	MinBrightness     = 1
	MaxBrightness     = 100
)

// LedPosition is a relative canvas position in percent [0,100].
type LedPosition struct {
	RelX float64 `json:"relX"`
	RelY float64 `json:"relY"`
}

// Centroid is where new LEDs land without an explicit position.
var Centroid = LedPosition{RelX: 50, RelY: 50}

// Frame is one time-step. A missing key means the LED is off.
type Frame struct {
	LedStates map[string]ledcolor.RGB `json:"ledStates"`
}

// Scene is the persisted document.
type Scene struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	LedPositions map[string]LedPosition `json:"ledPositions"`
	Frames       []Frame                `json:"frames"`
	FPS          int                    `json:"fps"`
	Brightness   int                    `json:"brightness"`
	Locked       bool                   `json:"locked,omitempty"`
}

// New returns a scene with the studio defaults and one blank frame.
func New(id string) Scene {
	return Scene{
		ID:           id,
		Name:         DefaultName,
		LedPositions: map[string]LedPosition{},
		Frames:       []Frame{BlankFrame()},
		FPS:          DefaultFPS,
		Brightness:   DefaultBrightness,
	}
}

func BlankFrame() Frame {
	return Frame{LedStates: map[string]ledcolor.RGB{}}
}

// Clone returns a copy with its own maps.
func (f Frame) Clone() Frame {
	c := maps.Clone(f.LedStates)
	if c == nil {
		c = map[string]ledcolor.RGB{}
	}
	return Frame{LedStates: c}
}

// State returns the LED color in this frame, off when absent.
func (f Frame) State(led string) ledcolor.RGB {
	return f.LedStates[led]
}

// Set stores c for led, deleting the key when c is off.
// The frame's map must already be owned by the caller.
func (f Frame) Set(led string, c ledcolor.RGB) {
	if c.IsOff() {
		delete(f.LedStates, led)
		return
	}
	f.LedStates[led] = c
}

// Clone deep-copies the scene.
func (s Scene) Clone() Scene {
	c := s
	c.LedPositions = maps.Clone(s.LedPositions)
	if c.LedPositions == nil {
		c.LedPositions = map[string]LedPosition{}
	}
	c.Frames = make([]Frame, len(s.Frames))
	for i, f := range s.Frames {
		c.Frames[i] = f.Clone()
	}
	return c
}

// LedCount is the number of present LED entries.
func (s Scene) LedCount() int {
	return len(s.LedPositions)
}

// LedKeys returns the LED keys, numeric keys first in ascending order.
func (s Scene) LedKeys() []string {
	keys := slices.Collect(maps.Keys(s.LedPositions))
	SortKeys(keys)
	return keys
}

// SortKeys orders decimal keys numerically and anything else after them
// lexically.
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, aerr := strconv.Atoi(keys[i])
		b, berr := strconv.Atoi(keys[j])
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		}
		return keys[i] < keys[j]
	})
}

// Normalize enforces the document invariants: at least one frame, non-nil
// maps, no explicit off entries, fps >= 1 and brightness in range.
func (s *Scene) Normalize() {
	if s.LedPositions == nil {
		s.LedPositions = map[string]LedPosition{}
	}
	if len(s.Frames) == 0 {
		s.Frames = []Frame{BlankFrame()}
	}
	for i := range s.Frames {
		if s.Frames[i].LedStates == nil {
			s.Frames[i].LedStates = map[string]ledcolor.RGB{}
		}
		maps.DeleteFunc(s.Frames[i].LedStates, func(_ string, c ledcolor.RGB) bool {
			return c.IsOff()
		})
	}
	if s.FPS < 1 {
		s.FPS = 1
	}
	s.Brightness = ClampBrightness(s.Brightness)
}

func ClampBrightness(b int) int {
	if b < MinBrightness {
		return MinBrightness
	}
	if b > MaxBrightness {
		return MaxBrightness
	}
	return b
}

// RGB flattens frame i for a strip of count LEDs, scaled by brightness.
// LED n reads key strconv.Itoa(n); missing keys are black.
func (s Scene) RGB(i, count int) []byte {
	buf := make([]byte, count*3)
	if i < 0 || i >= len(s.Frames) {
		return buf
	}
	f := s.Frames[i]
	for n := 0; n < count; n++ {
		c := f.State(strconv.Itoa(n)).Scale(s.Brightness)
		buf[n*3+0], buf[n*3+1], buf[n*3+2] = c.R, c.G, c.B
	}
	return buf
}
