// Package save throttles scene saves: the first change in a quiet window is
// saved at once, later changes in the window collapse into one trailing save
// of the newest scene.
package save

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledstudio/internal/scene"
)

// DefaultWindow is the minimum gap between two outbound saves.
const DefaultWindow = 60 * time.Second

// Func persists a whole scene. Saves are full overwrites, so a late
// completion of an older save is harmless.
type Func func(ctx context.Context, s scene.Scene) error

type Saver struct {
	save    Func
	window  time.Duration
	timeout time.Duration

	mu        sync.Mutex
	pending   *scene.Scene
	timer     *time.Timer
	lastFire  time.Time
	lastSaved time.Time
	lastErr   error
	closed    bool

	// async saves in flight, guarded by mu
	active int
	idle   *sync.Cond
}

// New returns a Saver calling fn at most once per window. A window <= 0
// uses DefaultWindow.
func New(fn Func, window time.Duration) *Saver {
	if window <= 0 {
		window = DefaultWindow
	}
	sv := &Saver{save: fn, window: window, timeout: 10 * time.Second}
	sv.idle = sync.NewCond(&sv.mu)
	return sv
}

// Submit queues s. It never blocks on the save itself.
func (sv *Saver) Submit(s scene.Scene) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if sv.closed {
		return
	}

	now := time.Now()
	if sv.timer == nil && now.Sub(sv.lastFire) >= sv.window {
		sv.lastFire = now
		sv.active++
		go sv.run(s)
		return
	}

	sv.pending = &s
	if sv.timer == nil {
		wait := sv.window - now.Sub(sv.lastFire)
		sv.timer = time.AfterFunc(wait, sv.trailing)
	}
}

func (sv *Saver) trailing() {
	sv.mu.Lock()
	p := sv.pending
	sv.pending = nil
	sv.timer = nil
	if p == nil || sv.closed {
		sv.mu.Unlock()
		return
	}
	sv.lastFire = time.Now()
	sv.active++
	sv.mu.Unlock()

	sv.run(*p)
}

// Flush saves the pending scene now and waits for any save in flight.
func (sv *Saver) Flush(ctx context.Context) error {
	sv.mu.Lock()
	if sv.timer != nil {
		sv.timer.Stop()
		sv.timer = nil
	}
	p := sv.pending
	sv.pending = nil
	if p != nil {
		sv.lastFire = time.Now()
	}
	for sv.active > 0 {
		sv.idle.Wait()
	}
	sv.mu.Unlock()

	if p == nil {
		return nil
	}
	return sv.runCtx(ctx, *p)
}

// Pending reports whether a trailing save is queued.
func (sv *Saver) Pending() bool {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	return sv.pending != nil
}

// LastSaved is when the last successful save completed.
func (sv *Saver) LastSaved() time.Time {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	return sv.lastSaved
}

// Err is the result of the most recent save.
func (sv *Saver) Err() error {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	return sv.lastErr
}

// Close flushes and refuses further submits.
func (sv *Saver) Close(ctx context.Context) error {
	err := sv.Flush(ctx)
	sv.mu.Lock()
	sv.closed = true
	for sv.active > 0 {
		sv.idle.Wait()
	}
	sv.mu.Unlock()
	return err
}

// run is an async save. The caller has already counted it in active.
func (sv *Saver) run(s scene.Scene) {
	ctx, cancel := context.WithTimeout(context.Background(), sv.timeout)
	defer cancel()
	_ = sv.runCtx(ctx, s)

	sv.mu.Lock()
	sv.active--
	sv.idle.Broadcast()
	sv.mu.Unlock()
}

func (sv *Saver) runCtx(ctx context.Context, s scene.Scene) error {
	err := sv.save(ctx, s)

	sv.mu.Lock()
	sv.lastErr = err
	if err == nil {
		sv.lastSaved = time.Now()
	}
	sv.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Str("scene", s.ID).Msg("save failed")
		return err
	}
	log.Debug().Str("scene", s.ID).Int("frames", len(s.Frames)).Msg("scene saved")
	return nil
}
