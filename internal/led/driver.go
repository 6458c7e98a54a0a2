// Package led holds the strip outputs the studio player writes to.
package led

// Driver is one LED strip. Sim and Drawer implement it.
type Driver interface {
	// Write shows one frame: r, g, b per LED in strip order.
	Write(rgb []byte) error
	Close() error
}

var (
	_ Driver = (*Sim)(nil)
	_ Driver = (*Drawer)(nil)
)
