package ledcolor

import (
	"errors"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidHex is returned for anything that is not six hex digits.
var ErrInvalidHex = errors.New("ledcolor: invalid hex color")

const MAX_CHANNEL uint8 = 255

// RGB is one LED state. The zero value is off.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var (
	Off   = RGB{}
	Red   = RGB{R: 255}
	Green = RGB{G: 255}
	Blue  = RGB{B: 255}
)

// HexToRGB parses "rrggbb" or "#rrggbb".
func HexToRGB(hex string) (RGB, error) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return RGB{}, ErrInvalidHex
	}
	// ParseUint rejects signs and spaces that Sscanf would let through.
	if _, err := strconv.ParseUint(s, 16, 32); err != nil {
		return RGB{}, ErrInvalidHex
	}
	c, err := colorful.Hex("#" + strings.ToLower(s))
	if err != nil {
		return RGB{}, ErrInvalidHex
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// RGBToHex formats channels as "#rrggbb".
func RGBToHex(r, g, b uint8) string {
	c := colorful.Color{
		R: float64(r) / float64(MAX_CHANNEL),
		G: float64(g) / float64(MAX_CHANNEL),
		B: float64(b) / float64(MAX_CHANNEL),
	}
	return c.Hex()
}

func (c RGB) Hex() string {
	return RGBToHex(c.R, c.G, c.B)
}

// IsOn reports r+g+b > 0.
func (c RGB) IsOn() bool {
	return int(c.R)+int(c.G)+int(c.B) > 0
}

func (c RGB) IsOff() bool {
	return !c.IsOn()
}

// Scale multiplies every channel by percent/100, clamped to [0,100].
func (c RGB) Scale(percent int) RGB {
	if percent >= 100 {
		return c
	}
	if percent <= 0 {
		return Off
	}
	return RGB{
		R: uint8(int(c.R) * percent / 100),
		G: uint8(int(c.G) * percent / 100),
		B: uint8(int(c.B) * percent / 100),
	}
}

func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
