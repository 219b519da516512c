package layout

import (
	"fmt"

	"github.com/robert-malhotra/h5value/internal/message"
)

// Compact is storage held in the layout message itself.
type Compact struct {
	data []byte
	size uint64
}

// NewCompact creates a compact layout for a dataset of size bytes.
func NewCompact(layout *message.DataLayout, size uint64) *Compact {
	return &Compact{data: layout.CompactData, size: size}
}

func (c *Compact) Class() message.LayoutClass {
	return message.LayoutCompact
}

// Read returns a copy of the compact data.
func (c *Compact) Read() ([]byte, error) {
	if uint64(len(c.data)) < c.size {
		return nil, fmt.Errorf("compact data holds %d bytes, dataset needs %d", len(c.data), c.size)
	}
	out := make([]byte, c.size)
	copy(out, c.data)
	return out, nil
}

// Size returns the number of bytes stored in the message.
func (c *Compact) Size() int {
	return len(c.data)
}
