package editor

import (
	"math"

	"github.com/coreman2200/ledstudio/internal/ledcolor"
)

// palette is shared by chase and snake.
var palette = []ledcolor.RGB{ledcolor.Red, ledcolor.Green, ledcolor.Blue}

const (
	snakeGroup  = 5
	snakeLength = 3
)

// generatorLeds is the LED set a generator writes. Generators start at
// CurrentFrame, append blank frames as needed and do nothing when this is
// empty.
func generatorLeds(t *txn) []string {
	return knownLeds(t.s, AllSelectedLeds(t.s))
}

// apply turns the LEDs on for FramesOn frames then off for FramesOff frames,
// Times over.
func (a Blink) apply(t *txn) {
	leds := generatorLeds(t)
	if len(leds) == 0 {
		return
	}
	c, err := ledcolor.HexToRGB(a.Color)
	if err != nil {
		return
	}
	period := a.FramesOn + a.FramesOff
	if period <= 0 || a.FramesOn < 0 || a.FramesOff < 0 {
		return
	}
	start := t.s.CurrentFrame
	for i := 0; i < period*a.Times; i++ {
		on := c
		if i%period >= a.FramesOn {
			on = ledcolor.Off
		}
		for _, led := range leds {
			t.setLed(start+i, led, on)
		}
	}
}

// apply ramps From to To over Frames frames and back again over the next
// Frames frames.
func (a Glow) apply(t *txn) {
	leds := generatorLeds(t)
	if len(leds) == 0 || a.Frames <= 0 {
		return
	}
	from, err := ledcolor.HexToRGB(a.FromColor)
	if err != nil {
		return
	}
	to, err := ledcolor.HexToRGB(a.ToColor)
	if err != nil {
		return
	}
	start := t.s.CurrentFrame
	ramp(t, leds, start, from, to, a.Frames)
	ramp(t, leds, start+a.Frames, to, from, a.Frames)
}

func ramp(t *txn, leds []string, start int, from, to ledcolor.RGB, n int) {
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		c := ledcolor.RGB{
			R: lerp(from.R, to.R, p),
			G: lerp(from.G, to.G, p),
			B: lerp(from.B, to.B, p),
		}
		for _, led := range leds {
			t.setLed(start+i, led, c)
		}
	}
}

func lerp(a, b uint8, p float64) uint8 {
	return uint8(math.Floor(float64(a) + (float64(b)-float64(a))*p))
}

// apply sets every selected LED to palette[i mod 3] on frame i.
func (a Chase) apply(t *txn) {
	leds := generatorLeds(t)
	if len(leds) == 0 {
		return
	}
	start := t.s.CurrentFrame
	for i := 0; i < a.Frames; i++ {
		c := palette[i%len(palette)]
		for _, led := range leds {
			t.setLed(start+i, led, c)
		}
	}
}

// apply splits all LED keys into groups of five and paints the first three
// of each group, advancing the palette once per group. Only the focused
// frame is written whatever Frames says.
func (a Snake) apply(t *txn) {
	if len(generatorLeds(t)) == 0 || a.Frames <= 0 {
		return
	}
	keys := t.s.Scene.LedKeys()
	cur := t.s.CurrentFrame
	t.ensureFrame(cur)

	colorIndex := 0
	for g := 0; g < len(keys); g += snakeGroup {
		c := palette[colorIndex%len(palette)]
		colorIndex++

		t.setLed(cur, keys[g], ledcolor.Off)
		for s := 0; s < snakeLength && g+s < len(keys); s++ {
			t.setLed(cur, keys[g+s], c)
		}
	}
}
