// Package studio plays scenes on an LED strip.
package studio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/ledstudio/internal/diagnostics"
	"github.com/coreman2200/ledstudio/internal/led"
	"github.com/coreman2200/ledstudio/internal/scene"
	"github.com/coreman2200/ledstudio/internal/sequence"
)

// ErrFrameRange is returned by ShowFrame for a frame the scene does not have.
var ErrFrameRange = errors.New("frame out of range")

// State is the player as reported by GET /api/player.
type State struct {
	IsPlaying bool         `json:"isPlaying"`
	IsPaused  bool         `json:"isPaused"`
	SceneID   *string      `json:"sceneId"`
	Scene     *scene.Scene `json:"scene"`
}

type Options struct {
	// Count is the number of LEDs on the strip.
	Count int
	// WhiteCap limits r+g+b per LED to WhiteCap*3*255. 0 disables it.
	WhiteCap float64
	// LimitAmps dims whole frames whose estimated draw exceeds it. 0
	// disables it.
	LimitAmps float64
	// OnFrame sees every frame written to the driver. It is called without
	// the player's lock held; the slice is not reused.
	OnFrame func(rgb []byte)
	// Reporter receives driver diagnostics.
	Reporter diag.Reporter
}

type Player struct {
	drv  led.Driver
	opts Options

	// ctl orders Play/Stop/ShowFrame/SetFrame. It is taken before mu;
	// the tick goroutine only takes mu.
	ctl  sync.Mutex
	loop sequence.Loop

	mu       sync.Mutex
	seq      *sequence.Player
	current  *scene.Scene
	playing  bool
	paused   bool
	amps     float64
	writeErr bool
	out      []byte // last rendered frame, handed to OnFrame on unlock
}

func New(drv led.Driver, opts Options) *Player {
	if opts.Reporter == nil {
		opts.Reporter = diag.Discard
	}
	p := &Player{drv: drv, opts: opts}
	p.seq = sequence.NewPlayer(sequence.Hooks{
		ShowFrame: func(i int) {
			if p.current != nil {
				p.render(p.current.RGB(i, p.opts.Count))
			}
		},
		// a one-shot run reached its last frame; it stays on screen
		Stopped: func() {
			p.playing = false
			p.paused = false
		},
	})
	return p
}

// Play shows the scene's frames at its fps. With loop it runs until
// stopped; without, playback ends on the last frame, which stays shown.
func (p *Player) Play(s scene.Scene, loop bool) error {
	p.ctl.Lock()
	defer p.ctl.Unlock()
	p.loop.Stop()

	c := s.Clone()
	c.Normalize()

	p.mu.Lock()
	if err := p.seq.Load(len(c.Frames)); err != nil {
		p.mu.Unlock()
		return err
	}
	p.current = &c
	p.playing = true
	p.paused = false
	p.seq.SetLoop(loop)
	p.seq.Start()
	p.unlock()

	p.loop.Start(sequence.Interval(c.FPS), p.tick)
	log.Info().Str("scene", c.ID).Int("fps", c.FPS).Int("frames", len(c.Frames)).Bool("loop", loop).Msg("playing scene")
	p.opts.Reporter.Report(diag.Diagnostic{
		Severity: diag.Info, Code: diag.PlayerPlay, Summary: "playing scene",
		Evidence: map[string]any{"scene": c.ID, "fps": c.FPS, "loop": loop},
	})
	return nil
}

func (p *Player) tick() bool {
	p.mu.Lock()
	defer p.unlock()
	if !p.playing {
		return false
	}
	p.seq.Tick()
	return p.playing
}

// Pause holds the current frame. It reports whether playback was running.
func (p *Player) Pause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.paused {
		return false
	}
	p.seq.Pause()
	p.paused = true
	return true
}

// Resume continues a paused playback from the held frame.
func (p *Player) Resume() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || !p.paused {
		return false
	}
	p.seq.Resume()
	p.paused = false
	return true
}

// Stop ends playback, forgets the scene and blanks the strip.
func (p *Player) Stop() error {
	p.ctl.Lock()
	defer p.ctl.Unlock()
	p.loop.Stop()

	p.mu.Lock()
	defer p.unlock()
	wasPlaying := p.playing
	p.reset()
	err := p.render(make([]byte, p.opts.Count*3))
	if wasPlaying {
		log.Info().Msg("player stopped")
		p.opts.Reporter.Report(diag.Diagnostic{Severity: diag.Info, Code: diag.PlayerStop, Summary: "player stopped"})
	}
	return err
}

// ShowFrame shows frame n of s without playing.
func (p *Player) ShowFrame(s scene.Scene, n int) error {
	if n < 0 || n >= len(s.Frames) {
		return fmt.Errorf("%w: %d of %d", ErrFrameRange, n, len(s.Frames))
	}
	p.ctl.Lock()
	defer p.ctl.Unlock()
	p.loop.Stop()

	c := s.Clone()
	c.Normalize()

	p.mu.Lock()
	defer p.unlock()
	p.reset()
	p.current = &c
	return p.render(c.RGB(n, p.opts.Count))
}

// SetFrame is live input: playback stops and the frame is shown at full
// brightness.
func (p *Player) SetFrame(f scene.Frame) error {
	p.ctl.Lock()
	defer p.ctl.Unlock()
	p.loop.Stop()

	s := scene.Scene{Frames: []scene.Frame{f}, Brightness: scene.MaxBrightness}

	p.mu.Lock()
	defer p.unlock()
	p.reset()
	return p.render(s.RGB(0, p.opts.Count))
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := State{IsPlaying: p.playing, IsPaused: p.paused}
	if p.current != nil {
		c := p.current.Clone()
		id := c.ID
		st.Scene = &c
		st.SceneID = &id
	}
	return st
}

// Amps is the estimated current draw of the last frame.
func (p *Player) Amps() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.amps
}

// Close stops playback and closes the driver.
func (p *Player) Close() error {
	err := p.Stop()
	if cerr := p.drv.Close(); err == nil {
		err = cerr
	}
	return err
}

// reset returns to idle. Caller holds mu.
func (p *Player) reset() {
	p.playing = false
	p.paused = false
	p.current = nil
	p.seq.Stop()
}

// unlock releases mu, then passes the frame rendered under it to OnFrame.
func (p *Player) unlock() {
	out := p.out
	p.out = nil
	p.mu.Unlock()
	if out != nil && p.opts.OnFrame != nil {
		p.opts.OnFrame(out)
	}
}

// render writes one frame. Caller holds mu.
func (p *Player) render(rgb []byte) error {
	applyWhiteCap(rgb, p.opts.WhiteCap)
	applyBudget(rgb, p.opts.LimitAmps)
	p.amps = estimateCurrent(rgb)

	err := p.drv.Write(rgb)
	if err != nil {
		if !p.writeErr {
			p.opts.Reporter.Report(diag.Diagnostic{
				Severity: diag.Err, Code: diag.DriverWrite, Summary: "led write failed", Detail: err.Error(),
				LikelyCauses: []string{"strip unplugged", "LED count does not match the driver"},
			})
		}
		p.writeErr = true
		return fmt.Errorf("led write: %w", err)
	}
	p.writeErr = false

	p.out = append([]byte(nil), rgb...)
	return nil
}
