package editor

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"

	"github.com/coreman2200/ledstudio/internal/ledcolor"
	"github.com/coreman2200/ledstudio/internal/scene"
)

// apply adds the LED under the key equal to the current count.
func (a AddLed) apply(t *txn) {
	pos := scene.Centroid
	if a.Position != nil {
		pos = *a.Position
	}
	ps := t.positions()
	ps[strconv.Itoa(len(ps))] = pos
}

// apply deletes the key count-1. With sparse keys that is not necessarily
// the highest key.
func (RemoveLastLed) apply(t *txn) {
	n := len(t.s.Scene.LedPositions)
	if n == 0 {
		return
	}
	delete(t.positions(), strconv.Itoa(n-1))
}

func (a SetLedPosition) apply(t *txn) {
	if _, ok := t.s.Scene.LedPositions[a.Led]; !ok {
		return
	}
	t.positions()[a.Led] = scene.LedPosition{RelX: a.RelX, RelY: a.RelY}
}

func (a SetLedColor) apply(t *txn) {
	c, err := ledcolor.HexToRGB(a.Color)
	if err != nil {
		return
	}
	var leds []string
	if a.Led != "" {
		leds = []string{a.Led}
	} else {
		leds = AllSelectedLeds(t.s)
	}
	leds = knownLeds(t.s, leds)
	if len(leds) == 0 {
		return
	}
	for _, f := range AllSelectedFrames(t.s) {
		for _, led := range leds {
			t.setLed(f, led, c)
		}
	}
}

func knownLeds(s State, leds []string) []string {
	return slices.DeleteFunc(slices.Clone(leds), func(led string) bool {
		_, ok := s.Scene.LedPositions[led]
		return !ok
	})
}

func (AddFrame) apply(t *txn) {
	t.ensureFrame(len(t.s.Scene.Frames))
}

func (RemoveLastFrame) apply(t *txn) {
	fs := t.frames()
	if len(fs) == 0 {
		return
	}
	t.setFrames(fs[:len(fs)-1])
}

// apply removes CurrentFrame and every additional frame, highest index
// first, then focuses the frame before the old primary.
func (DeleteSelectedFrames) apply(t *txn) {
	primary := t.s.CurrentFrame
	idx := AllSelectedFrames(t.s)
	slices.Sort(idx)
	slices.Reverse(idx)

	fs := t.frames()
	for _, i := range idx {
		if i >= 0 && i < len(fs) {
			fs = slices.Delete(fs, i, i+1)
		}
	}
	t.setFrames(fs)
	t.s.CurrentFrame = max(primary-1, 0)
	t.s.SelectedFrames = nil
}

func (CopySelectedFrames) apply(t *txn) {
	idx := AllSelectedFrames(t.s)
	slices.Sort(idx)
	copied := make([]scene.Frame, 0, len(idx))
	for _, i := range idx {
		copied = append(copied, t.s.Scene.Frames[i].Clone())
	}
	t.s.CopiedFrames = copied
}

// apply overwrites frames from CurrentFrame on with the clipboard,
// extending the scene when it runs past the end.
func (PasteSelectedFrames) apply(t *txn) {
	if len(t.s.CopiedFrames) == 0 {
		return
	}
	start := t.s.CurrentFrame
	for i, f := range t.s.CopiedFrames {
		n := start + i
		t.ensureFrame(n)
		t.frames()[n] = f.Clone()
		t.ownFrame[n] = true
	}
}

func (a SetState) apply(t *txn) {
	switch a.Key {
	case KeyCurrentTool:
		switch tool := a.Value.(type) {
		case SelectTool:
			tool.AdditionalLeds = slices.Clone(tool.AdditionalLeds)
			t.s.CurrentTool = tool
		case PaintTool:
			t.s.CurrentTool = tool
		case AddLedTool:
			t.s.CurrentTool = tool
		}
	case KeyIsMultiSelecting:
		if b, ok := a.Value.(bool); ok {
			t.s.IsMultiSelecting = b
		}
	case KeyIsRangeSelecting:
		if b, ok := a.Value.(bool); ok {
			t.s.IsRangeSelecting = b
		}
	case KeyIsLiveEnabled:
		if b, ok := a.Value.(bool); ok {
			t.s.IsLiveEnabled = b
		}
	case KeyCurrentFrame:
		if n, ok := toInt(a.Value); ok {
			t.s.CurrentFrame = n
		}
	}
}

// apply sets a scene field. A zero or missing value, or fps below 1, is
// replaced by 1.
func (a SetSceneValue) apply(t *txn) {
	switch a.Key {
	case KeyFPS, KeyBrightness:
		n, ok := toInt(a.Value)
		if !ok && !isFalsy(a.Value) {
			return
		}
		if !ok || n == 0 || (a.Key == KeyFPS && n < 1) {
			n = 1
		}
		if a.Key == KeyFPS {
			t.s.Scene.FPS = n
		} else {
			t.s.Scene.Brightness = scene.ClampBrightness(n)
		}
	case KeyName:
		name, ok := a.Value.(string)
		if !ok && !isFalsy(a.Value) {
			return
		}
		if name == "" {
			name = "1"
		}
		t.s.Scene.Name = name
	}
}

func isFalsy(v any) bool {
	switch b := v.(type) {
	case nil:
		return true
	case bool:
		return !b
	case string:
		return b == ""
	}
	n, ok := toInt(v)
	return ok && n == 0
}

// toInt accepts the numeric shapes that arrive from Go callers and from
// decoded JSON.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return int(i), true
	}
	return 0, false
}
