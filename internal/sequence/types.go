package sequence

import "time"

// PlayerState enumerates playback states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are dependency-injected callbacks into whatever shows frames.
type Hooks struct {
	// ShowFrame is called with the cursor every time it moves.
	ShowFrame func(i int)
	// Stopped is called when playback returns to Idle.
	Stopped func()
}

// Player owns a frame cursor over a fixed number of frames. It is not safe
// for concurrent use; callers guard it with their own lock.
type Player struct {
	State PlayerState

	total  int // frame count captured at Load
	cursor int
	loop   bool

	// injection
	hooks Hooks
}

// Interval is the tick period for fps frames per second. fps below 1 is
// treated as 1.
func Interval(fps int) time.Duration {
	if fps < 1 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}
