package led

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Sim keeps the last frame in memory and logs a compact summary (first
// pixel and average), useful headless and in tests.
type Sim struct {
	count int

	mu     sync.Mutex
	frames int
	last   []byte
	closed bool
}

func NewSim(count int) *Sim {
	return &Sim{count: count, last: make([]byte, count*3)}
}

func (d *Sim) Write(rgb []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("sim driver closed")
	}
	if len(rgb) != d.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), d.count)
	}
	copy(d.last, rgb)
	d.frames++

	if e := log.Trace(); d.count > 0 && e.Enabled() {
		var r, g, b int
		for i := 0; i < d.count; i++ {
			r += int(rgb[i*3])
			g += int(rgb[i*3+1])
			b += int(rgb[i*3+2])
		}
		n := d.count
		e.Int("frame", d.frames).
			Str("avg", fmt.Sprintf("(%d,%d,%d)", r/n, g/n, b/n)).
			Str("first", fmt.Sprintf("(%d,%d,%d)", rgb[0], rgb[1], rgb[2])).
			Msg("sim frame")
	}
	return nil
}

// Last returns a copy of the most recent frame.
func (d *Sim) Last() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.last...)
}

// Frames is the number of frames written.
func (d *Sim) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

func (d *Sim) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
