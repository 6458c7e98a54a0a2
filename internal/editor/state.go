// Package editor holds the scene editor state machine: one document, a
// selection model over LEDs and frames, and a closed set of actions applied
// by Reduce.
package editor

import (
	"github.com/coreman2200/ledstudio/internal/scene"
)

// ToolType names the active editor tool.
type ToolType string

const (
	ToolSelect ToolType = "select"
	ToolPaint  ToolType = "paint"
	ToolAddLed ToolType = "add-led"
)

// Tool is the active tool. LED selection only exists inside SelectTool.
type Tool interface {
	ToolType() ToolType
	isTool()
}

// SelectTool carries the LED selection. An empty SelectedLed means none.
type SelectTool struct {
	SelectedLed    string
	AdditionalLeds []string
}

// PaintTool carries the brush color as hex.
type PaintTool struct {
	Color string
}

type AddLedTool struct{}

func (SelectTool) ToolType() ToolType { return ToolSelect }
func (PaintTool) ToolType() ToolType  { return ToolPaint }
func (AddLedTool) ToolType() ToolType { return ToolAddLed }

func (SelectTool) isTool() {}
func (PaintTool) isTool()  {}
func (AddLedTool) isTool() {}

// DefaultSelectTool is the select tool with nothing selected.
var DefaultSelectTool Tool = SelectTool{}

// State is the editor session: the scene plus everything that is not
// persisted.
type State struct {
	Scene scene.Scene

	CurrentTool Tool
	// CurrentFrame is the focused frame. SelectedFrames are the additional
	// frames; multi-frame operations act on both.
	CurrentFrame   int
	SelectedFrames []int

	IsMultiSelecting bool
	IsRangeSelecting bool
	IsPlaying        bool
	IsLiveEnabled    bool

	CopiedFrames []scene.Frame
}

// NewState loads s into a fresh session. The scene is copied and
// normalized so the invariants hold before the first action.
func NewState(s scene.Scene) State {
	sc := s.Clone()
	sc.Normalize()
	return State{
		Scene:       sc,
		CurrentTool: DefaultSelectTool,
	}
}

// FocusedFrame returns the frame under CurrentFrame.
func (s State) FocusedFrame() scene.Frame {
	if s.CurrentFrame < 0 || s.CurrentFrame >= len(s.Scene.Frames) {
		return scene.BlankFrame()
	}
	return s.Scene.Frames[s.CurrentFrame]
}
