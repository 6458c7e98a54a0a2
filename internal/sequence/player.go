package sequence

import "errors"

// ErrNoFrames is returned by Load when there is nothing to play.
var ErrNoFrames = errors.New("sequence: no frames")

// NewPlayer constructs a Player with provided hooks. It loops by default.
func NewPlayer(h Hooks) *Player {
	return &Player{
		State: Idle,
		hooks: h,
		loop:  true,
	}
}

// Load replaces the frame count. Resets the cursor and state to Idle.
func (p *Player) Load(total int) error {
	if total <= 0 {
		return ErrNoFrames
	}
	p.total = total
	p.cursor = 0
	p.State = Idle
	return nil
}

// SetLoop controls whether Tick wraps at the end or stops.
func (p *Player) SetLoop(loop bool) { p.loop = loop }

// Total is the frame count captured at Load.
func (p *Player) Total() int { return p.total }

// Cursor is the frame that was shown last.
func (p *Player) Cursor() int { return p.cursor }

// Start moves to Running and shows the first frame.
func (p *Player) Start() {
	if p.State == Running || p.total == 0 {
		return
	}
	p.State = Running
	p.show()
}

// Pause pauses playback.
func (p *Player) Pause() {
	if p.State == Running {
		p.State = Paused
	}
}

// Resume resumes playback.
func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop stops and resets to start.
func (p *Player) Stop() {
	if p.State == Idle {
		return
	}
	p.State = Idle
	p.cursor = 0
	if p.hooks.Stopped != nil {
		p.hooks.Stopped()
	}
}

// Seek moves the cursor to frame i, clamped into [0, total).
func (p *Player) Seek(i int) {
	if p.total == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= p.total {
		i = p.total - 1
	}
	p.cursor = i
	p.show()
}

// Tick advances the cursor by one frame. There is no catch-up: one tick is
// one frame however late it fires.
func (p *Player) Tick() {
	if p.State != Running || p.total == 0 {
		return
	}
	next := p.cursor + 1
	if next >= p.total {
		if !p.loop {
			p.Stop()
			return
		}
		next = 0
	}
	p.cursor = next
	p.show()
}

func (p *Player) show() {
	if p.hooks.ShowFrame != nil {
		p.hooks.ShowFrame(p.cursor)
	}
}
