package led

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/nrzled"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordDrawer is a display.Drawer that keeps the last image drawn.
type recordDrawer struct {
	bounds image.Rectangle
	last   *image.NRGBA
	halted bool
}

func (d *recordDrawer) String() string          { return "record" }
func (d *recordDrawer) Halt() error             { d.halted = true; return nil }
func (d *recordDrawer) ColorModel() color.Model { return color.NRGBAModel }
func (d *recordDrawer) Bounds() image.Rectangle { return d.bounds }
func (d *recordDrawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.last = image.NewNRGBA(r)
	draw.Draw(d.last, r, src, sp, draw.Src)
	return nil
}

var TestColorOrders = []struct {
	Order   string
	Expect  string
	R, G, B byte
}{
	{"", "RGB", 1, 2, 3},
	{"rgb", "RGB", 1, 2, 3},
	{"GRB", "GRB", 2, 1, 3},
	{"BGR", "BGR", 3, 2, 1},
}

func TestParseOrder(t *testing.T) {
	for _, v := range TestColorOrders {
		t.Run("Order "+v.Order, func(t *testing.T) {
			o, err := ParseOrder(v.Order)
			require.NoError(t, err)
			assert.Equal(t, v.Expect, o.String())
			r, g, b := o.Apply(1, 2, 3)
			assert.Equal(t, []byte{v.R, v.G, v.B}, []byte{r, g, b})
		})
	}
	for _, bad := range []string{"RG", "RGX", "RRB"} {
		_, err := ParseOrder(bad)
		assert.Error(t, err, bad)
	}
}

func TestDrawerMapsPixels(t *testing.T) {
	rd := &recordDrawer{bounds: image.Rect(0, 0, 2, 1)}
	grb, _ := ParseOrder("GRB")
	d := NewDrawer(rd, 2, grb)

	require.NoError(t, d.Write([]byte{10, 20, 30, 0, 0, 255}))
	require.NotNil(t, rd.last)
	assert.Equal(t, color.NRGBA{R: 20, G: 10, B: 30, A: 255}, rd.last.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 255, A: 255}, rd.last.NRGBAAt(1, 0))

	assert.Error(t, d.Write([]byte{1, 2, 3}), "short frame")

	require.NoError(t, d.Close())
	assert.True(t, rd.halted)
	assert.Error(t, d.Write([]byte{0, 0, 0, 0, 0, 0}))
	assert.NoError(t, d.Close())
}

func TestDrawerOverNrzled(t *testing.T) {
	buf := bytes.Buffer{}
	o := nrzled.Opts{NumPixels: 3, Channels: 3, Freq: 2500 * physic.KiloHertz}
	nd, err := nrzled.NewSPI(spitest.NewRecordRaw(&buf), &o)
	if err != nil {
		t.Fatal(err)
	}
	d := NewDrawer(nd, 3, RGB)
	if got, expected := d.String(), "nrzled{recordraw}"; got != expected {
		t.Fatalf("\nGot:  %s\nWant: %s\n", got, expected)
	}
	if err := d.Write([]byte{255, 0, 0, 0, 255, 0, 0, 0, 255}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatalf("nothing written to the SPI port")
	}
	n := buf.Len()
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() <= n {
		t.Fatalf("halt did not blank the strip")
	}
}

func TestSim(t *testing.T) {
	s := NewSim(2)
	require.NoError(t, s.Write([]byte{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, s.Last())
	assert.Equal(t, 1, s.Frames())
	assert.Error(t, s.Write([]byte{1}))

	require.NoError(t, s.Close())
	assert.Error(t, s.Write([]byte{1, 2, 3, 4, 5, 6}))
}
