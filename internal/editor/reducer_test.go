package editor_test

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/ledstudio/internal/editor"
	"github.com/coreman2200/ledstudio/internal/ledcolor"
	"github.com/coreman2200/ledstudio/internal/scene"
)

// newState builds a session with leds LEDs and frames blank frames.
func newState(leds, frames int) State {
	s := scene.New("test")
	for i := 0; i < leds; i++ {
		s.LedPositions[strconv.Itoa(i)] = scene.LedPosition{RelX: float64(i), RelY: 10}
	}
	s.Frames = nil
	for i := 0; i < frames; i++ {
		s.Frames = append(s.Frames, scene.BlankFrame())
	}
	return NewState(s)
}

func selectLeds(s State, leds ...string) State {
	s = Reduce(s, SelectLed{Led: leds[0]})
	s = Reduce(s, SetMultiSelecting{IsMultiSelecting: true})
	for _, led := range leds[1:] {
		s = Reduce(s, SelectLed{Led: led})
	}
	return Reduce(s, SetMultiSelecting{IsMultiSelecting: false})
}

func assertInvariants(t *testing.T, s State) {
	t.Helper()
	require.GreaterOrEqual(t, len(s.Scene.Frames), 1, "frames must never be empty")
	require.GreaterOrEqual(t, s.CurrentFrame, 0)
	require.Less(t, s.CurrentFrame, len(s.Scene.Frames))
	for _, f := range s.SelectedFrames {
		require.GreaterOrEqual(t, f, 0)
		require.Less(t, f, len(s.Scene.Frames))
	}
	for i, f := range s.Scene.Frames {
		for led, c := range f.LedStates {
			require.True(t, c.IsOn(), "frame %d led %s stored as off", i, led)
		}
	}
}

func TestInvariantsHoldForRandomActionSequences(t *testing.T) {
	gens := []func(r *rand.Rand) Action{
		func(r *rand.Rand) Action { return AddLed{} },
		func(r *rand.Rand) Action { return RemoveLastLed{} },
		func(r *rand.Rand) Action { return SelectLed{Led: strconv.Itoa(r.Intn(8))} },
		func(r *rand.Rand) Action { return SelectLed{Led: AllLeds} },
		func(r *rand.Rand) Action { return DeselectAllLeds{} },
		func(r *rand.Rand) Action { return SetLedColor{Color: []string{"#000000", "#ff0000", "#00ff00"}[r.Intn(3)]} },
		func(r *rand.Rand) Action { return AddFrame{} },
		func(r *rand.Rand) Action { return RemoveLastFrame{} },
		func(r *rand.Rand) Action { return DeleteSelectedFrames{} },
		func(r *rand.Rand) Action { return SelectFrame{Frame: r.Intn(12) - 2} },
		func(r *rand.Rand) Action { return SetMultiSelecting{IsMultiSelecting: r.Intn(2) == 0} },
		func(r *rand.Rand) Action { return SetRangeSelecting{IsRangeSelecting: r.Intn(2) == 0} },
		func(r *rand.Rand) Action { return DeselectSecondaryFrames{} },
		func(r *rand.Rand) Action { return Blink{Color: "#ffffff", FramesOn: 1, FramesOff: r.Intn(3), Times: 2} },
		func(r *rand.Rand) Action { return Glow{FromColor: "#000000", ToColor: "#00ffff", Frames: r.Intn(4)} },
		func(r *rand.Rand) Action { return Chase{Frames: r.Intn(5)} },
		func(r *rand.Rand) Action { return Snake{Frames: 3} },
		func(r *rand.Rand) Action { return SetState{Key: KeyCurrentFrame, Value: r.Intn(40) - 10} },
		func(r *rand.Rand) Action { return CopySelectedFrames{} },
		func(r *rand.Rand) Action { return PasteSelectedFrames{} },
		func(r *rand.Rand) Action { return Play{} },
		func(r *rand.Rand) Action { return Stop{} },
	}

	for seed := int64(1); seed <= 20; seed++ {
		r := rand.New(rand.NewSource(seed))
		s := newState(3, 1)
		for i := 0; i < 300; i++ {
			s = Reduce(s, gens[r.Intn(len(gens))](r))
			assertInvariants(t, s)
		}
	}
}

func TestOffColorDeletesEntry(t *testing.T) {
	s := selectLeds(newState(2, 1), "0")

	s = Reduce(s, SetLedColor{Color: "#ff0000"})
	assert.Equal(t, ledcolor.Red, s.Scene.Frames[0].LedStates["0"])

	s = Reduce(s, SetLedColor{Color: "#000000"})
	_, ok := s.Scene.Frames[0].LedStates["0"]
	assert.False(t, ok, "black must remove the entry")

	s = Reduce(s, SetLedColor{Color: "#00ff00"})
	assert.Equal(t, ledcolor.Green, s.Scene.Frames[0].LedStates["0"])
}

func TestSetLedColorExplicitLedAcrossSelectedFrames(t *testing.T) {
	s := newState(3, 4)
	s = Reduce(s, SelectFrame{Frame: 1})
	s = Reduce(s, SetMultiSelecting{IsMultiSelecting: true})
	s = Reduce(s, SelectFrame{Frame: 3})
	s = Reduce(s, SetLedColor{Color: "#0000ff", Led: "2"})

	assert.True(t, IsLedOn(s, 1, "2"))
	assert.True(t, IsLedOn(s, 3, "2"))
	assert.False(t, IsLedOn(s, 0, "2"))
	assert.False(t, IsLedOn(s, 2, "2"))
}

func TestSetLedColorInvalidHexIsNoop(t *testing.T) {
	s := selectLeds(newState(1, 1), "0")
	assert.Equal(t, s, Reduce(s, SetLedColor{Color: "#zzz"}))
}

func TestPlaybackLock(t *testing.T) {
	s := selectLeds(newState(4, 3), "0", "1")
	s = Reduce(s, Play{})
	require.True(t, s.IsPlaying)

	blocked := []Action{
		AddLed{},
		RemoveLastLed{},
		SetLedPosition{Led: "0", RelX: 1, RelY: 2},
		SelectLed{Led: "2"},
		DeselectAllLeds{},
		DeselectSecondaryFrames{},
		SetLedColor{Color: "#ff0000"},
		AddFrame{},
		RemoveLastFrame{},
		DeleteSelectedFrames{},
		Blink{Color: "#ff0000", FramesOn: 1, FramesOff: 1, Times: 1},
		Glow{FromColor: "#000000", ToColor: "#ffffff", Frames: 2},
		Chase{Frames: 2},
		Snake{Frames: 1},
		SetMultiSelecting{IsMultiSelecting: true},
		SetRangeSelecting{IsRangeSelecting: true},
		SetState{Key: KeyIsLiveEnabled, Value: true},
		SetSceneValue{Key: KeyFPS, Value: 30},
		CopySelectedFrames{},
		PasteSelectedFrames{},
		Play{},
		Composite{Actions: []Action{Stop{}, AddFrame{}}},
	}
	for _, a := range blocked {
		t.Run(string(a.Type()), func(t *testing.T) {
			assert.Equal(t, s, Reduce(s, a))
		})
	}

	scrub := Reduce(s, SelectFrame{Frame: 2})
	assert.Equal(t, 2, scrub.CurrentFrame)

	stopped := Reduce(s, Stop{})
	assert.False(t, stopped.IsPlaying)
}

func TestPlayStartsFromFrameZero(t *testing.T) {
	s := selectLeds(newState(3, 4), "1", "2")
	s = Reduce(s, SelectFrame{Frame: 3})
	s = Reduce(s, Play{})
	assert.Equal(t, 0, s.CurrentFrame)
	assert.Equal(t, []int{0}, s.SelectedFrames)
	assert.Equal(t, DefaultSelectTool, s.CurrentTool)
}

func TestFPSFloor(t *testing.T) {
	for _, v := range []any{0, -5, nil, false, 0.0} {
		s := Reduce(newState(0, 1), SetSceneValue{Key: KeyFPS, Value: v})
		assert.Equal(t, 1, s.Scene.FPS, "value %v", v)
	}
	s := Reduce(newState(0, 1), SetSceneValue{Key: KeyFPS, Value: 24})
	assert.Equal(t, 24, s.Scene.FPS)
}

func TestSetSceneValueNameAndBrightness(t *testing.T) {
	s := Reduce(newState(0, 1), SetSceneValue{Key: KeyName, Value: "Sunset"})
	assert.Equal(t, "Sunset", s.Scene.Name)

	s = Reduce(s, SetSceneValue{Key: KeyName, Value: ""})
	assert.Equal(t, "1", s.Scene.Name)

	s = Reduce(s, SetSceneValue{Key: KeyName, Value: 12})
	assert.Equal(t, "1", s.Scene.Name, "wrong type is ignored")

	s = Reduce(s, SetSceneValue{Key: KeyBrightness, Value: 0})
	assert.Equal(t, 1, s.Scene.Brightness)

	s = Reduce(s, SetSceneValue{Key: KeyBrightness, Value: 250})
	assert.Equal(t, 100, s.Scene.Brightness)

	s = Reduce(s, SetSceneValue{Key: KeyBrightness, Value: 45})
	assert.Equal(t, 45, s.Scene.Brightness)
}

func TestSetState(t *testing.T) {
	s := newState(2, 3)

	s = Reduce(s, SetState{Key: KeyIsLiveEnabled, Value: true})
	assert.True(t, s.IsLiveEnabled)

	s = Reduce(s, SetState{Key: KeyIsLiveEnabled, Value: "yes"})
	assert.True(t, s.IsLiveEnabled, "wrong type is ignored")

	s = Reduce(s, SetState{Key: KeyCurrentTool, Value: PaintTool{Color: "#ff00ff"}})
	assert.Equal(t, PaintTool{Color: "#ff00ff"}, s.CurrentTool)

	s = Reduce(s, SetState{Key: KeyCurrentFrame, Value: 2})
	assert.Equal(t, 2, s.CurrentFrame)

	s = Reduce(s, SetState{Key: KeyCurrentFrame, Value: 9})
	assert.Equal(t, 0, s.CurrentFrame, "out of range focus resets to 0")
}

func TestRemoveLastLedOnEmptyMap(t *testing.T) {
	s := newState(0, 1)
	for i := 0; i < 5; i++ {
		s = Reduce(s, RemoveLastLed{})
		assert.Empty(t, s.Scene.LedPositions)
	}
}

func TestRemoveLastLedUsesCountDerivedKey(t *testing.T) {
	s := newState(3, 1)
	delete(s.Scene.LedPositions, "0")

	s = Reduce(s, RemoveLastLed{})
	assert.Contains(t, s.Scene.LedPositions, "2")
	assert.NotContains(t, s.Scene.LedPositions, "1")
}

func TestAddLed(t *testing.T) {
	s := newState(0, 1)
	s = Reduce(s, AddLed{})
	s = Reduce(s, AddLed{Position: &scene.LedPosition{RelX: 12, RelY: 80}})

	assert.Equal(t, scene.Centroid, s.Scene.LedPositions["0"])
	assert.Equal(t, scene.LedPosition{RelX: 12, RelY: 80}, s.Scene.LedPositions["1"])
	assert.Equal(t, 2, LedCount(s))
}

func TestSetLedPosition(t *testing.T) {
	s := newState(1, 1)
	s = Reduce(s, SetLedPosition{Led: "0", RelX: 33, RelY: 44})
	assert.Equal(t, scene.LedPosition{RelX: 33, RelY: 44}, s.Scene.LedPositions["0"])

	same := Reduce(s, SetLedPosition{Led: "9", RelX: 1, RelY: 1})
	assert.Equal(t, s.Scene.LedPositions, same.Scene.LedPositions)
	assert.NotContains(t, same.Scene.LedPositions, "9")
}

func TestFrameAddRemove(t *testing.T) {
	s := newState(0, 1)
	s = Reduce(s, AddFrame{})
	s = Reduce(s, AddFrame{})
	assert.Len(t, s.Scene.Frames, 3)

	s = Reduce(s, RemoveLastFrame{})
	assert.Len(t, s.Scene.Frames, 2)

	s = ReduceAll(s, RemoveLastFrame{}, RemoveLastFrame{}, RemoveLastFrame{})
	assert.Len(t, s.Scene.Frames, 1, "last frame is replaced with a blank one")
}

// markFrames paints LED "0" with a color unique to each frame index.
func markFrames(s State) State {
	s = selectLeds(s, "0")
	for i := range s.Scene.Frames {
		s = Reduce(s, SelectFrame{Frame: i})
		s = Reduce(s, SetLedColor{Color: ledcolor.RGBToHex(uint8(i+1), 0, 0)})
	}
	return Reduce(s, SelectFrame{Frame: 0})
}

func frameMarks(s State) []uint8 {
	out := make([]uint8, 0, len(s.Scene.Frames))
	for _, f := range s.Scene.Frames {
		out = append(out, f.State("0").R)
	}
	return out
}

func TestDeleteSelectedFrames(t *testing.T) {
	s := markFrames(newState(1, 5))
	s = Reduce(s, SelectFrame{Frame: 3})
	s = Reduce(s, SetMultiSelecting{IsMultiSelecting: true})
	s = Reduce(s, SelectFrame{Frame: 1})
	s = Reduce(s, DeleteSelectedFrames{})

	assert.Equal(t, []uint8{1, 3, 5}, frameMarks(s))
	assert.Equal(t, 2, s.CurrentFrame)
	assert.Empty(t, s.SelectedFrames)
}

func TestDeleteAllFramesLeavesOneBlank(t *testing.T) {
	s := markFrames(newState(1, 2))
	s = Reduce(s, SetMultiSelecting{IsMultiSelecting: true})
	s = Reduce(s, SelectFrame{Frame: 1})
	s = Reduce(s, DeleteSelectedFrames{})

	require.Len(t, s.Scene.Frames, 1)
	assert.Empty(t, s.Scene.Frames[0].LedStates)
	assert.Equal(t, 0, s.CurrentFrame)
}

func TestCopyPasteFrames(t *testing.T) {
	s := markFrames(newState(1, 4))
	s = Reduce(s, SelectFrame{Frame: 1})
	s = Reduce(s, SetMultiSelecting{IsMultiSelecting: true})
	s = Reduce(s, SelectFrame{Frame: 2})
	s = Reduce(s, CopySelectedFrames{})
	require.Len(t, s.CopiedFrames, 2)

	s = Reduce(s, SetMultiSelecting{IsMultiSelecting: false})
	s = Reduce(s, SelectFrame{Frame: 3})
	s = Reduce(s, PasteSelectedFrames{})
	assert.Equal(t, []uint8{1, 2, 3, 2, 3}, frameMarks(s))

	// pasted frames are independent of their source
	s = Reduce(s, SelectFrame{Frame: 4})
	s = Reduce(s, SetLedColor{Color: "#000000"})
	assert.Equal(t, []uint8{1, 2, 3, 2, 0}, frameMarks(s))
}

func TestPasteWithEmptyClipboard(t *testing.T) {
	s := markFrames(newState(1, 2))
	assert.Equal(t, s, Reduce(s, PasteSelectedFrames{}))
}

func TestCompositeAddAndFocusNewFrame(t *testing.T) {
	s := newState(1, 2)
	s = Reduce(s, Composite{Actions: []Action{AddFrame{}, SelectFrame{Frame: 2}}})
	assert.Len(t, s.Scene.Frames, 3)
	assert.Equal(t, 2, s.CurrentFrame)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := markFrames(newState(3, 3))
	s = selectLeds(s, "0", "1")
	before := s.Scene.Clone()
	beforeTool := s.CurrentTool.(SelectTool)
	beforeTool.AdditionalLeds = append([]string(nil), beforeTool.AdditionalLeds...)

	actions := []Action{
		SetLedColor{Color: "#00ff00"},
		Blink{Color: "#ffffff", FramesOn: 1, FramesOff: 1, Times: 3},
		Glow{FromColor: "#000000", ToColor: "#ffffff", Frames: 2},
		AddLed{},
		RemoveLastLed{},
		SetLedPosition{Led: "1", RelX: 99, RelY: 99},
		DeleteSelectedFrames{},
		Composite{Actions: []Action{SetMultiSelecting{IsMultiSelecting: true}, SelectLed{Led: "2"}}},
	}
	for _, a := range actions {
		_ = Reduce(s, a)
		assert.Equal(t, before, s.Scene, "after %s", a.Type())
		assert.Equal(t, beforeTool, s.CurrentTool, "after %s", a.Type())
	}
}

func TestUntouchedFramesAreShared(t *testing.T) {
	s := markFrames(newState(1, 3))
	next := Reduce(s, SetLedColor{Color: "#ffffff"})

	next.Scene.Frames[2].LedStates["probe"] = ledcolor.Red
	assert.Contains(t, s.Scene.Frames[2].LedStates, "probe", "frame 2 was not written and is shared")
	assert.NotEqual(t, s.Scene.Frames[0].State("0"), next.Scene.Frames[0].State("0"))
}
