package editor

import (
	"slices"

	"github.com/coreman2200/ledstudio/internal/ledcolor"
)

// SelectedLed returns the primary selected LED, if any.
func SelectedLed(s State) (string, bool) {
	st, ok := s.CurrentTool.(SelectTool)
	if !ok || st.SelectedLed == "" {
		return "", false
	}
	return st.SelectedLed, true
}

// AdditionalSelectedLeds returns the secondary LED selection.
func AdditionalSelectedLeds(s State) []string {
	st, ok := s.CurrentTool.(SelectTool)
	if !ok {
		return nil
	}
	return st.AdditionalLeds
}

// AllSelectedLeds returns primary then additional LEDs, without duplicates.
func AllSelectedLeds(s State) []string {
	st, ok := s.CurrentTool.(SelectTool)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(st.AdditionalLeds)+1)
	if st.SelectedLed != "" {
		out = append(out, st.SelectedLed)
	}
	for _, led := range st.AdditionalLeds {
		if !slices.Contains(out, led) {
			out = append(out, led)
		}
	}
	return out
}

func LedCount(s State) int {
	return s.Scene.LedCount()
}

// SelectedLedColor is the primary LED's color in the focused frame. Off
// when nothing is selected.
func SelectedLedColor(s State) ledcolor.RGB {
	led, ok := SelectedLed(s)
	if !ok {
		return ledcolor.Off
	}
	return s.FocusedFrame().State(led)
}

// AllSelectedFrames returns CurrentFrame followed by the additional frames
// that are in range, without duplicates.
func AllSelectedFrames(s State) []int {
	out := []int{s.CurrentFrame}
	for _, f := range s.SelectedFrames {
		if f < 0 || f >= len(s.Scene.Frames) || slices.Contains(out, f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// IsLedOn reports whether led has a non-off state in frame.
func IsLedOn(s State, frame int, led string) bool {
	if frame < 0 || frame >= len(s.Scene.Frames) {
		return false
	}
	return s.Scene.Frames[frame].State(led).IsOn()
}
