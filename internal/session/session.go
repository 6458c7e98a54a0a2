// Package session runs one editor document: actions are applied one at a
// time, committed scenes go to a saver, the focused frame goes to a live
// sink and playback advances the focus on a timer.
package session

import (
	"context"
	"maps"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledstudio/internal/editor"
	"github.com/coreman2200/ledstudio/internal/live"
	"github.com/coreman2200/ledstudio/internal/scene"
	"github.com/coreman2200/ledstudio/internal/sequence"
)

// Saver receives every committed scene. save.Saver implements it.
type Saver interface {
	Submit(s scene.Scene)
	Flush(ctx context.Context) error
}

type Options struct {
	Saver Saver
	Live  live.Sink
	// LiveTimeout bounds one live push. Defaults to 500ms.
	LiveTimeout time.Duration
}

type Session struct {
	// loopMu orders playback start/stop. It is taken before mu and never
	// by the tick goroutine.
	loopMu sync.Mutex
	loop   sequence.Loop

	mu      sync.Mutex
	state   editor.State
	player  *sequence.Player
	gen     int // bumped on every playback start or stop
	loopFPS int
	push    *scene.Frame

	opts Options
}

func New(s scene.Scene, opts Options) *Session {
	if opts.LiveTimeout <= 0 {
		opts.LiveTimeout = 500 * time.Millisecond
	}
	ss := &Session{state: editor.NewState(s), opts: opts}
	ss.player = sequence.NewPlayer(sequence.Hooks{
		ShowFrame: func(i int) {
			ss.push = ss.commitLocked(editor.SelectFrame{Frame: i})
		},
	})
	return ss
}

// State returns the current state. Committed states are never mutated, so
// the value may be read freely.
func (s *Session) State() editor.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and returns the resulting state.
func (s *Session) Dispatch(a editor.Action) editor.State {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()

	s.mu.Lock()
	prev := s.state
	push := s.commitLocked(a)
	next := s.state
	if prev.IsPlaying && next.IsPlaying && next.CurrentFrame != prev.CurrentFrame {
		// scrubbing while playing: continue from the selected frame
		s.player.Seek(next.CurrentFrame)
	}
	s.mu.Unlock()

	s.syncPlayback(prev, next)
	s.sendLive(push)
	return next
}

// DispatchAll applies actions in order, each as its own transition.
func (s *Session) DispatchAll(actions ...editor.Action) editor.State {
	st := s.State()
	for _, a := range actions {
		st = s.Dispatch(a)
	}
	return st
}

// TogglePlayback starts playback from frame 0 or stops it.
func (s *Session) TogglePlayback() editor.State {
	if s.State().IsPlaying {
		return s.Dispatch(editor.Stop{})
	}
	return s.Dispatch(editor.Play{})
}

// Playing reports whether the playback timer is running.
func (s *Session) Playing() bool {
	return s.loop.Running()
}

// Save pushes any pending scene to the saver now.
func (s *Session) Save(ctx context.Context) error {
	if s.opts.Saver == nil {
		return nil
	}
	return s.opts.Saver.Flush(ctx)
}

// Close stops playback and flushes the saver.
func (s *Session) Close(ctx context.Context) error {
	if s.State().IsPlaying {
		s.Dispatch(editor.Stop{})
	}
	s.loopMu.Lock()
	s.loop.Stop()
	s.loopMu.Unlock()
	return s.Save(ctx)
}

// commitLocked reduces a into the state, hands a changed scene to the
// saver, and returns the focused frame when the live sink should see it.
func (s *Session) commitLocked(a editor.Action) *scene.Frame {
	prev := s.state
	next := editor.Reduce(prev, a)
	s.state = next

	if s.opts.Saver != nil && !reflect.DeepEqual(prev.Scene, next.Scene) {
		s.opts.Saver.Submit(next.Scene)
	}
	if s.opts.Live == nil || !next.IsLiveEnabled {
		return nil
	}
	pf, nf := prev.FocusedFrame(), next.FocusedFrame()
	if prev.IsLiveEnabled && prev.CurrentFrame == next.CurrentFrame && maps.Equal(pf.LedStates, nf.LedStates) {
		return nil
	}
	f := nf.Clone()
	return &f
}

// syncPlayback starts or stops the timer to match the transition.
func (s *Session) syncPlayback(prev, next editor.State) {
	switch {
	case next.IsPlaying && (!prev.IsPlaying || next.Scene.FPS != s.loopFPS):
		s.mu.Lock()
		s.gen++
		gen := s.gen
		if !prev.IsPlaying {
			// the frame count is fixed for this run
			_ = s.player.Load(len(next.Scene.Frames))
			s.player.Start()
			s.push = nil
		}
		s.loopFPS = next.Scene.FPS
		s.mu.Unlock()

		s.loop.Start(sequence.Interval(next.Scene.FPS), s.tick(gen))
		log.Debug().Int("fps", next.Scene.FPS).Int("frames", len(next.Scene.Frames)).Msg("playback started")

	case !next.IsPlaying && prev.IsPlaying:
		s.mu.Lock()
		s.gen++
		s.player.Stop()
		s.loopFPS = 0
		s.mu.Unlock()

		s.loop.Stop()
		log.Debug().Msg("playback stopped")
	}
}

func (s *Session) tick(gen int) func() bool {
	return func() bool {
		s.mu.Lock()
		if s.gen != gen || !s.state.IsPlaying {
			s.mu.Unlock()
			return false
		}
		s.player.Tick()
		push := s.push
		s.push = nil
		s.mu.Unlock()

		s.sendLive(push)
		return true
	}
}

func (s *Session) sendLive(f *scene.Frame) {
	if f == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.LiveTimeout)
	defer cancel()
	if err := s.opts.Live.Send(ctx, *f); err != nil {
		log.Warn().Err(err).Msg("live push failed")
	}
}
