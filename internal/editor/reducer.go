package editor

// Reduce applies a to s and returns the next state. s is not modified.
//
// While playing only Stop and SelectFrame are accepted; anything else
// returns s unchanged. Every accepted action is followed by the invariant
// pass: at least one frame, focus and frame selection in range, and no
// explicit off LED entries in frames the action wrote.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	if s.IsPlaying && !allowedWhilePlaying(a) {
		return s
	}
	t := begin(s)
	a.apply(t)
	t.normalize()
	return t.s
}

// ReduceAll folds actions over s.
func ReduceAll(s State, actions ...Action) State {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

func allowedWhilePlaying(a Action) bool {
	switch a.(type) {
	case Stop, SelectFrame:
		return true
	}
	return false
}

func (a Composite) apply(t *txn) {
	for _, sub := range a.Actions {
		if sub == nil || (t.s.IsPlaying && !allowedWhilePlaying(sub)) {
			continue
		}
		sub.apply(t)
		t.normalize()
	}
}

func (Play) apply(t *txn) {
	t.s.IsPlaying = true
	t.s.CurrentFrame = 0
	t.s.SelectedFrames = []int{0}
	t.s.CurrentTool = DefaultSelectTool
}

func (Stop) apply(t *txn) {
	t.s.IsPlaying = false
}
