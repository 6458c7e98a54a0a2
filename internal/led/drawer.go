package led

import (
	"fmt"
	"image"
	"io"
	"sync"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"
)

// DefaultSPIFreq drives WS2812 strips over SPI.
const DefaultSPIFreq = 2500 * physic.KiloHertz

// Drawer is a Driver over a periph display.Drawer: a 1-pixel-high image,
// one pixel per LED.
type Drawer struct {
	mu     sync.Mutex
	d      display.Drawer
	closer io.Closer
	count  int
	order  Order
	img    *image.NRGBA
}

// NewDrawer wraps d for a strip of count LEDs.
func NewDrawer(d display.Drawer, count int, order Order) *Drawer {
	return &Drawer{
		d:     d,
		count: count,
		order: order,
		img:   image.NewNRGBA(image.Rect(0, 0, count, 1)),
	}
}

// NewSPI opens an SPI port (empty dev picks the first one) and drives a
// WS2812 strip through nrzled.
func NewSPI(dev string, count, speedHz int, order Order) (*Drawer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", dev, err)
	}
	freq := DefaultSPIFreq
	if speedHz > 0 {
		freq = physic.Frequency(speedHz) * physic.Hertz
	}
	opts := nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      freq,
	}
	nd, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	_ = nd.Halt()
	dr := NewDrawer(nd, count, order)
	dr.closer = port
	return dr, nil
}

// NewConsole prints the strip as colored blocks on the terminal.
func NewConsole(count int) *Drawer {
	return NewDrawer(screen.New(count), count, RGB)
}

func (dr *Drawer) String() string {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	if dr.d == nil {
		return "drawer{closed}"
	}
	return dr.d.String()
}

func (dr *Drawer) Write(rgb []byte) error {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	if dr.d == nil {
		return fmt.Errorf("drawer closed")
	}
	if len(rgb) != dr.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), dr.count)
	}
	for x := 0; x < dr.count; x++ {
		r, g, b := dr.order.Apply(rgb[x*3], rgb[x*3+1], rgb[x*3+2])
		i := dr.img.PixOffset(x, 0)
		dr.img.Pix[i+0], dr.img.Pix[i+1], dr.img.Pix[i+2], dr.img.Pix[i+3] = r, g, b, 255
	}
	if err := dr.d.Draw(dr.d.Bounds(), dr.img, image.Point{}); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (dr *Drawer) Close() error {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	if dr.d == nil {
		return nil
	}
	err := dr.d.Halt()
	if dr.closer != nil {
		if cerr := dr.closer.Close(); err == nil {
			err = cerr
		}
	}
	dr.d = nil
	return err
}
