package editor

import "github.com/coreman2200/ledstudio/internal/scene"

// ActionType is the wire tag of an action.
type ActionType string

const (
	TypeAddLed                  ActionType = "add-led"
	TypeSetLedPosition          ActionType = "set-led-position"
	TypeSelectLed               ActionType = "select-led"
	TypeDeselectAllLeds         ActionType = "deselect-all-leds"
	TypeDeselectSecondaryFrames ActionType = "deselect-secondary-frames"
	TypeSetLedColor             ActionType = "set-led-color"
	TypeAddFrame                ActionType = "add-frame"
	TypeRemoveLastFrame         ActionType = "remove-last-frame"
	TypeDeleteSelectedFrames    ActionType = "delete-selected-frames"
	TypeRemoveLastLed           ActionType = "remove-last-led"
	TypePlay                    ActionType = "play"
	TypeStop                    ActionType = "stop"
	TypeBlink                   ActionType = "blink"
	TypeGlow                    ActionType = "glow"
	TypeChase                   ActionType = "chase"
	TypeSnake                   ActionType = "snake"
	TypeSetRangeSelecting       ActionType = "set-range-selecting"
	TypeSetMultiSelecting       ActionType = "set-multi-selecting"
	TypeSetState                ActionType = "set-state"
	TypeSetSceneValue           ActionType = "set-scene-value"
	TypeSelectFrame             ActionType = "select-frame"
	TypeCopySelectedFrames      ActionType = "copy-selected-frames"
	TypePasteSelectedFrames     ActionType = "paste-selected-frames"
	TypeComposite               ActionType = "composite-action"
)

// Action is one of the types in this file. The set is closed: apply is
// unexported, so every action must carry its own transition.
type Action interface {
	Type() ActionType
	apply(t *txn)
}

// AllLeds selects every known LED when multi-selecting.
const AllLeds = "all"

type AddLed struct {
	// Position defaults to the canvas centroid.
	Position *scene.LedPosition
}

type SetLedPosition struct {
	Led        string
	RelX, RelY float64
}

type SelectLed struct {
	Led string
}

type DeselectAllLeds struct{}

type DeselectSecondaryFrames struct{}

// SetLedColor paints Color on Led, or on every selected LED when Led is
// empty, across the selected frames.
type SetLedColor struct {
	Color string
	Led   string
}

type AddFrame struct{}

type RemoveLastFrame struct{}

type DeleteSelectedFrames struct{}

type RemoveLastLed struct{}

type Play struct{}

type Stop struct{}

type Blink struct {
	Color     string
	FramesOn  int
	FramesOff int
	Times     int
}

type Glow struct {
	FromColor string
	ToColor   string
	Frames    int
}

// Chase cycles the fixed red/green/blue palette by frame index. Color is
// accepted but unused.
type Chase struct {
	Color  string
	Frames int
}

// Snake only ever writes the focused frame.
type Snake struct {
	Frames int
}

type SetRangeSelecting struct {
	IsRangeSelecting bool
}

type SetMultiSelecting struct {
	IsMultiSelecting bool
}

// StateKey names a session field settable through SetState.
type StateKey string

const (
	KeyCurrentTool      StateKey = "currentTool"
	KeyIsMultiSelecting StateKey = "isMultiSelecting"
	KeyIsRangeSelecting StateKey = "isRangeSelecting"
	KeyCurrentFrame     StateKey = "currentFrame"
	KeyIsLiveEnabled    StateKey = "isLiveEnabled"
)

// SetState sets one session field. Value must be a Tool for
// KeyCurrentTool, a bool for the flags and an integer for KeyCurrentFrame.
type SetState struct {
	Key   StateKey
	Value any
}

// SceneKey names a persisted scene field settable through SetSceneValue.
type SceneKey string

const (
	KeyName       SceneKey = "name"
	KeyFPS        SceneKey = "fps"
	KeyBrightness SceneKey = "brightness"
)

type SetSceneValue struct {
	Key   SceneKey
	Value any
}

type SelectFrame struct {
	Frame int
}

type CopySelectedFrames struct{}

type PasteSelectedFrames struct{}

// Composite applies Actions in order as a single transition.
type Composite struct {
	Actions []Action
}

func (AddLed) Type() ActionType                  { return TypeAddLed }
func (SetLedPosition) Type() ActionType          { return TypeSetLedPosition }
func (SelectLed) Type() ActionType               { return TypeSelectLed }
func (DeselectAllLeds) Type() ActionType         { return TypeDeselectAllLeds }
func (DeselectSecondaryFrames) Type() ActionType { return TypeDeselectSecondaryFrames }
func (SetLedColor) Type() ActionType             { return TypeSetLedColor }
func (AddFrame) Type() ActionType                { return TypeAddFrame }
func (RemoveLastFrame) Type() ActionType         { return TypeRemoveLastFrame }
func (DeleteSelectedFrames) Type() ActionType    { return TypeDeleteSelectedFrames }
func (RemoveLastLed) Type() ActionType           { return TypeRemoveLastLed }
func (Play) Type() ActionType                    { return TypePlay }
func (Stop) Type() ActionType                    { return TypeStop }
func (Blink) Type() ActionType                   { return TypeBlink }
func (Glow) Type() ActionType                    { return TypeGlow }
func (Chase) Type() ActionType                   { return TypeChase }
func (Snake) Type() ActionType                   { return TypeSnake }
func (SetRangeSelecting) Type() ActionType       { return TypeSetRangeSelecting }
func (SetMultiSelecting) Type() ActionType       { return TypeSetMultiSelecting }
func (SetState) Type() ActionType                { return TypeSetState }
func (SetSceneValue) Type() ActionType           { return TypeSetSceneValue }
func (SelectFrame) Type() ActionType             { return TypeSelectFrame }
func (CopySelectedFrames) Type() ActionType      { return TypeCopySelectedFrames }
func (PasteSelectedFrames) Type() ActionType     { return TypePasteSelectedFrames }
func (Composite) Type() ActionType               { return TypeComposite }
