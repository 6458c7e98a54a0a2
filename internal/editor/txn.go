package editor

import (
	"maps"
	"slices"

	"github.com/coreman2200/ledstudio/internal/ledcolor"
	"github.com/coreman2200/ledstudio/internal/scene"
)

// txn is one transition. It starts as a shallow copy of the input state and
// clones a subtree the first time it is written, so the input is never
// mutated and untouched frames stay shared.
type txn struct {
	s State

	ownPositions bool
	ownFrames    bool
	ownFrame     map[int]bool
}

func begin(s State) *txn {
	return &txn{s: s, ownFrame: map[int]bool{}}
}

func (t *txn) positions() map[string]scene.LedPosition {
	if !t.ownPositions {
		t.s.Scene.LedPositions = maps.Clone(t.s.Scene.LedPositions)
		if t.s.Scene.LedPositions == nil {
			t.s.Scene.LedPositions = map[string]scene.LedPosition{}
		}
		t.ownPositions = true
	}
	return t.s.Scene.LedPositions
}

// frames returns the frame slice, owned but with frame maps still shared.
func (t *txn) frames() []scene.Frame {
	if !t.ownFrames {
		t.s.Scene.Frames = slices.Clone(t.s.Scene.Frames)
		t.ownFrames = true
	}
	return t.s.Scene.Frames
}

// setFrames replaces the frame slice. Frame ownership is reset because
// indices move.
func (t *txn) setFrames(f []scene.Frame) {
	t.s.Scene.Frames = f
	t.ownFrames = true
	t.ownFrame = map[int]bool{}
}

// frame returns frame i with a map the txn owns, creating blank frames up to
// i when the index is past the end.
func (t *txn) frame(i int) scene.Frame {
	t.ensureFrame(i)
	fs := t.frames()
	if !t.ownFrame[i] {
		fs[i] = fs[i].Clone()
		t.ownFrame[i] = true
	}
	return fs[i]
}

func (t *txn) ensureFrame(i int) {
	if i < len(t.s.Scene.Frames) {
		return
	}
	fs := t.frames()
	for len(fs) <= i {
		fs = append(fs, scene.BlankFrame())
		t.ownFrame[len(fs)-1] = true
	}
	t.s.Scene.Frames = fs
}

func (t *txn) validFrame(i int) bool {
	return i >= 0 && i < len(t.s.Scene.Frames)
}

// setLed writes c into frame i, deleting the entry when c is off.
func (t *txn) setLed(i int, led string, c ledcolor.RGB) {
	t.frame(i).Set(led, c)
}

// normalize re-establishes the invariants after a transition.
func (t *txn) normalize() {
	if len(t.s.Scene.Frames) == 0 {
		t.setFrames([]scene.Frame{scene.BlankFrame()})
	}
	if !t.validFrame(t.s.CurrentFrame) {
		t.s.CurrentFrame = 0
	}
	if slices.ContainsFunc(t.s.SelectedFrames, func(i int) bool { return !t.validFrame(i) }) {
		t.s.SelectedFrames = slices.DeleteFunc(slices.Clone(t.s.SelectedFrames), func(i int) bool {
			return !t.validFrame(i)
		})
	}
	for i := range t.ownFrame {
		if t.validFrame(i) {
			maps.DeleteFunc(t.s.Scene.Frames[i].LedStates, func(_ string, c ledcolor.RGB) bool {
				return c.IsOff()
			})
		}
	}
	if t.s.CurrentTool == nil {
		t.s.CurrentTool = DefaultSelectTool
	}
}
