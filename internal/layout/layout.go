package layout

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/robert-malhotra/h5value/internal/binary"
	"github.com/robert-malhotra/h5value/internal/message"
)

// ErrUnsupported is returned for storage this package cannot read.
var ErrUnsupported = errors.New("unsupported storage layout")

// Layout reads dataset bytes from one storage layout.
type Layout interface {
	// Read returns every element of the dataset in row-major order.
	Read() ([]byte, error)

	// Class returns the layout class.
	Class() message.LayoutClass
}

// New creates a Layout from a data layout message. pipeline and fill may
// be nil.
func New(
	layout *message.DataLayout,
	dataspace *message.Dataspace,
	datatype *message.Datatype,
	pipeline *message.FilterPipeline,
	fill *message.FillValue,
	reader *binary.Reader,
) (Layout, error) {
	if layout == nil {
		return nil, fmt.Errorf("nil layout message")
	}
	if dataspace == nil || datatype == nil {
		return nil, fmt.Errorf("layout needs a dataspace and a datatype")
	}

	total, err := dataSize(dataspace, datatype)
	if err != nil {
		return nil, err
	}
	var fillValue []byte
	if fill != nil {
		fillValue = fill.Value
	}

	switch layout.Class {
	case message.LayoutCompact:
		return NewCompact(layout, total), nil
	case message.LayoutContiguous:
		return NewContiguous(layout, total, uint64(datatype.Size), fillValue, reader), nil
	case message.LayoutChunked:
		return NewChunked(layout, dataspace, uint64(datatype.Size), pipeline, fillValue, reader)
	default:
		return nil, fmt.Errorf("%w: layout class %d", ErrUnsupported, layout.Class)
	}
}

// dataSize is the byte size of every element of the dataset.
func dataSize(dataspace *message.Dataspace, datatype *message.Datatype) (uint64, error) {
	n := dataspace.NumElements()
	size := uint64(datatype.Size)
	if size != 0 && n > math.MaxInt/size {
		return 0, fmt.Errorf("dataset of %d elements of %d bytes is too large", n, size)
	}
	return n * size, nil
}

// filled returns n bytes holding the fill value repeated, or zeros when the
// fill value does not match the element size.
func filled(n, elemSize uint64, fill []byte) []byte {
	if elemSize == 0 || uint64(len(fill)) != elemSize || allZero(fill) {
		return make([]byte, n)
	}
	return bytes.Repeat(fill, int(n/elemSize))[:n]
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
