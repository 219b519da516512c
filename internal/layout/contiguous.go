package layout

import (
	"fmt"

	"github.com/robert-malhotra/h5value/internal/binary"
	"github.com/robert-malhotra/h5value/internal/message"
)

// Contiguous is storage held in one block of the file.
type Contiguous struct {
	address  uint64
	size     uint64
	elemSize uint64
	fill     []byte
	reader   *binary.Reader
}

// NewContiguous creates a contiguous layout for a dataset of size bytes.
func NewContiguous(layout *message.DataLayout, size, elemSize uint64, fill []byte, reader *binary.Reader) *Contiguous {
	return &Contiguous{
		address:  layout.Address,
		size:     size,
		elemSize: elemSize,
		fill:     fill,
		reader:   reader,
	}
}

func (c *Contiguous) Class() message.LayoutClass {
	return message.LayoutContiguous
}

// Read copies the block out of the file. A block that was never allocated
// reads as the fill value.
func (c *Contiguous) Read() ([]byte, error) {
	if c.reader.IsUndefinedOffset(c.address) {
		return filled(c.size, c.elemSize, c.fill), nil
	}
	if c.size == 0 {
		return []byte{}, nil
	}
	data, err := c.reader.At(int64(c.address)).ReadBytes(int(c.size))
	if err != nil {
		return nil, fmt.Errorf("reading contiguous data: %w", err)
	}
	return data, nil
}

// Address returns the address of the block.
func (c *Contiguous) Address() uint64 {
	return c.address
}

// Size returns the size of the block in bytes.
func (c *Contiguous) Size() uint64 {
	return c.size
}
