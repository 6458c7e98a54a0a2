package editor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coreman2200/ledstudio/internal/scene"
)

// ErrUnknownAction is returned when a payload names no known action or tool.
var ErrUnknownAction = errors.New("editor: unknown action")

// wireAction is the union of every field an action carries on the wire.
type wireAction struct {
	Type ActionType `json:"type"`

	Led      string             `json:"led"`
	RelX     float64            `json:"relX"`
	RelY     float64            `json:"relY"`
	Position *scene.LedPosition `json:"position"`

	Color     string `json:"color"`
	FromColor string `json:"fromColor"`
	ToColor   string `json:"toColor"`
	Frames    int    `json:"frames"`
	FramesOn  int    `json:"framesOn"`
	FramesOff int    `json:"framesOff"`
	Times     int    `json:"times"`

	Frame            int  `json:"frame"`
	IsMultiSelecting bool `json:"isMultiSelecting"`
	IsRangeSelecting bool `json:"isRangeSelecting"`

	Key     string            `json:"key"`
	Value   json.RawMessage   `json:"value"`
	Payload []json.RawMessage `json:"payload"`
}

type wireTool struct {
	Type           ToolType `json:"type"`
	SelectedLed    *string  `json:"selectedLed"`
	AdditionalLeds []string `json:"additionalLeds"`
	Color          string   `json:"color"`
}

// DecodeAction parses one action in the editor wire shape,
// {"type": "select-led", "led": "3"}.
func DecodeAction(data []byte) (Action, error) {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	switch w.Type {
	case TypeAddLed:
		return AddLed{Position: w.Position}, nil
	case TypeSetLedPosition:
		return SetLedPosition{Led: w.Led, RelX: w.RelX, RelY: w.RelY}, nil
	case TypeSelectLed:
		return SelectLed{Led: w.Led}, nil
	case TypeDeselectAllLeds:
		return DeselectAllLeds{}, nil
	case TypeDeselectSecondaryFrames:
		return DeselectSecondaryFrames{}, nil
	case TypeSetLedColor:
		return SetLedColor{Color: w.Color, Led: w.Led}, nil
	case TypeAddFrame:
		return AddFrame{}, nil
	case TypeRemoveLastFrame:
		return RemoveLastFrame{}, nil
	case TypeDeleteSelectedFrames:
		return DeleteSelectedFrames{}, nil
	case TypeRemoveLastLed:
		return RemoveLastLed{}, nil
	case TypePlay:
		return Play{}, nil
	case TypeStop:
		return Stop{}, nil
	case TypeBlink:
		return Blink{Color: w.Color, FramesOn: w.FramesOn, FramesOff: w.FramesOff, Times: w.Times}, nil
	case TypeGlow:
		return Glow{FromColor: w.FromColor, ToColor: w.ToColor, Frames: w.Frames}, nil
	case TypeChase:
		return Chase{Color: w.Color, Frames: w.Frames}, nil
	case TypeSnake:
		return Snake{Frames: w.Frames}, nil
	case TypeSetRangeSelecting:
		return SetRangeSelecting{IsRangeSelecting: w.IsRangeSelecting}, nil
	case TypeSetMultiSelecting:
		return SetMultiSelecting{IsMultiSelecting: w.IsMultiSelecting}, nil
	case TypeSelectFrame:
		return SelectFrame{Frame: w.Frame}, nil
	case TypeCopySelectedFrames:
		return CopySelectedFrames{}, nil
	case TypePasteSelectedFrames:
		return PasteSelectedFrames{}, nil
	case TypeSetState:
		v, err := decodeStateValue(StateKey(w.Key), w.Value)
		if err != nil {
			return nil, err
		}
		return SetState{Key: StateKey(w.Key), Value: v}, nil
	case TypeSetSceneValue:
		v, err := decodeValue(w.Value)
		if err != nil {
			return nil, err
		}
		return SetSceneValue{Key: SceneKey(w.Key), Value: v}, nil
	case TypeComposite:
		c := Composite{Actions: make([]Action, 0, len(w.Payload))}
		for i, raw := range w.Payload {
			a, err := DecodeAction(raw)
			if err != nil {
				return nil, fmt.Errorf("composite payload %d: %w", i, err)
			}
			c.Actions = append(c.Actions, a)
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, w.Type)
}

// DecodeActions parses a JSON array of actions.
func DecodeActions(data []byte) ([]Action, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}
	out := make([]Action, 0, len(raws))
	for i, raw := range raws {
		a, err := DecodeAction(raw)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// DecodeTool parses {"type": "select", "selectedLed": "0", "additionalLeds": []}
// and the paint and add-led shapes.
func DecodeTool(data []byte) (Tool, error) {
	var w wireTool
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode tool: %w", err)
	}
	switch w.Type {
	case ToolSelect:
		st := SelectTool{AdditionalLeds: w.AdditionalLeds}
		if w.SelectedLed != nil {
			st.SelectedLed = *w.SelectedLed
		}
		return st, nil
	case ToolPaint:
		return PaintTool{Color: w.Color}, nil
	case ToolAddLed:
		return AddLedTool{}, nil
	}
	return nil, fmt.Errorf("%w: tool %q", ErrUnknownAction, w.Type)
}

func decodeStateValue(key StateKey, raw json.RawMessage) (any, error) {
	if key == KeyCurrentTool {
		return DecodeTool(raw)
	}
	return decodeValue(raw)
}

// decodeValue keeps numbers as json.Number so integers survive exactly.
func decodeValue(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return v, nil
}
