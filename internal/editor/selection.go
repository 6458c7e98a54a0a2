package editor

import (
	"slices"
	"strconv"
)

// selectTool returns the current select tool, or an empty one when another
// tool is active. Selecting an LED always lands in the select tool.
func selectTool(tool Tool) SelectTool {
	if st, ok := tool.(SelectTool); ok {
		return st
	}
	return SelectTool{}
}

func (a SelectLed) apply(t *txn) {
	keys := t.s.Scene.LedKeys()
	if len(keys) == 0 {
		return
	}
	_, known := t.s.Scene.LedPositions[a.Led]
	sel := selectTool(t.s.CurrentTool)

	switch {
	case a.Led == AllLeds && t.s.IsMultiSelecting:
		sel = SelectTool{SelectedLed: keys[0], AdditionalLeds: slices.Clone(keys[1:])}

	case !known:
		return

	case t.s.IsMultiSelecting:
		if i := slices.Index(sel.AdditionalLeds, a.Led); i >= 0 {
			sel.AdditionalLeds = slices.Delete(slices.Clone(sel.AdditionalLeds), i, i+1)
		} else {
			sel.AdditionalLeds = append(slices.Clone(sel.AdditionalLeds), a.Led)
		}

	case t.s.IsRangeSelecting && sel.SelectedLed != "":
		start, err := strconv.Atoi(sel.SelectedLed)
		if err != nil {
			return
		}
		end, err := strconv.Atoi(a.Led)
		if err != nil {
			return
		}
		if start > end {
			start, end = end, start
		}
		add := slices.Clone(sel.AdditionalLeds)
		for i := start; i <= end; i++ {
			k := strconv.Itoa(i)
			if _, ok := t.s.Scene.LedPositions[k]; !ok || k == sel.SelectedLed || slices.Contains(add, k) {
				continue
			}
			add = append(add, k)
		}
		sel.AdditionalLeds = add

	default:
		sel = SelectTool{SelectedLed: a.Led}
	}
	t.s.CurrentTool = sel
}

func (DeselectAllLeds) apply(t *txn) {
	t.s.CurrentTool = DefaultSelectTool
}

func (a SelectFrame) apply(t *txn) {
	if !t.validFrame(a.Frame) {
		return
	}
	switch {
	case t.s.IsRangeSelecting:
		start, end := t.s.CurrentFrame, a.Frame
		if start > end {
			start, end = end, start
		}
		sel := slices.Clone(t.s.SelectedFrames)
		for i := start; i <= end; i++ {
			if !slices.Contains(sel, i) {
				sel = append(sel, i)
			}
		}
		t.s.SelectedFrames = sel

	case t.s.IsMultiSelecting:
		if i := slices.Index(t.s.SelectedFrames, a.Frame); i >= 0 {
			t.s.SelectedFrames = slices.Delete(slices.Clone(t.s.SelectedFrames), i, i+1)
		} else {
			t.s.SelectedFrames = append(slices.Clone(t.s.SelectedFrames), a.Frame)
		}

	default:
		t.s.CurrentFrame = a.Frame
		t.s.SelectedFrames = nil
	}
}

// apply keeps only the first additional frame. CurrentFrame is untouched.
func (DeselectSecondaryFrames) apply(t *txn) {
	if len(t.s.SelectedFrames) > 1 {
		t.s.SelectedFrames = []int{t.s.SelectedFrames[0]}
	}
}

func (a SetMultiSelecting) apply(t *txn) {
	t.s.IsMultiSelecting = a.IsMultiSelecting
}

func (a SetRangeSelecting) apply(t *txn) {
	t.s.IsRangeSelecting = a.IsRangeSelecting
}
