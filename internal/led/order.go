package led

import (
	"fmt"
	"strings"
)

// Order maps output channel i to input channel Order[i] (0=R, 1=G, 2=B).
type Order [3]int

// RGB leaves channels as they are.
var RGB = Order{0, 1, 2}

// ParseOrder reads a color order like "GRB". Empty means RGB.
func ParseOrder(s string) (Order, error) {
	if s == "" {
		return RGB, nil
	}
	s = strings.ToUpper(s)
	if len(s) != 3 {
		return RGB, fmt.Errorf("color order %q: want three of R, G, B", s)
	}
	var o Order
	seen := map[byte]bool{}
	for i := 0; i < 3; i++ {
		switch s[i] {
		case 'R':
			o[i] = 0
		case 'G':
			o[i] = 1
		case 'B':
			o[i] = 2
		default:
			return RGB, fmt.Errorf("color order %q: bad channel %q", s, s[i])
		}
		if seen[s[i]] {
			return RGB, fmt.Errorf("color order %q: repeated channel %q", s, s[i])
		}
		seen[s[i]] = true
	}
	return o, nil
}

// Apply reorders one pixel.
func (o Order) Apply(r, g, b byte) (byte, byte, byte) {
	in := [3]byte{r, g, b}
	return in[o[0]], in[o[1]], in[o[2]]
}

func (o Order) String() string {
	const names = "RGB"
	return string([]byte{names[o[0]], names[o[1]], names[o[2]]})
}
