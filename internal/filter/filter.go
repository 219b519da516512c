// Package filter implements the HDF5 filters applied to stored chunks.
package filter

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/h5value/internal/message"
)

// ErrUnsupported is returned for a required filter that is not implemented.
var ErrUnsupported = errors.New("unsupported filter")

// Filter is one stage of a filter pipeline.
type Filter interface {
	ID() uint16

	// Decode undoes the filter on stored bytes.
	Decode(input []byte) ([]byte, error)

	// Encode applies the filter, producing stored bytes.
	Encode(input []byte) ([]byte, error)
}

// Registry maps filter IDs to constructors taking the filter's client data.
var Registry = map[uint16]func([]uint32) Filter{
	message.FilterDeflate:    func(cd []uint32) Filter { return NewDeflate(cd) },
	message.FilterShuffle:    func(cd []uint32) Filter { return NewShuffle(cd) },
	message.FilterFletcher32: func(cd []uint32) Filter { return NewFletcher32(cd) },
}

var filterNames = map[uint16]string{
	message.FilterDeflate:     "deflate",
	message.FilterShuffle:     "shuffle",
	message.FilterFletcher32:  "fletcher32",
	message.FilterSZIP:        "szip",
	message.FilterNBit:        "n-bit",
	message.FilterScaleOffset: "scale-offset",
}

// New creates a filter from a pipeline entry. It returns nil, nil for an
// unknown optional filter, which the pipeline then skips.
func New(info message.FilterInfo) (Filter, error) {
	constructor, ok := Registry[info.ID]
	if ok {
		return constructor(info.ClientData), nil
	}
	if info.IsOptional() {
		return nil, nil
	}
	if name, known := filterNames[info.ID]; known {
		return nil, fmt.Errorf("%w: %s (ID %d)", ErrUnsupported, name, info.ID)
	}
	if info.Name != "" {
		return nil, fmt.Errorf("%w: %q (ID %d)", ErrUnsupported, info.Name, info.ID)
	}
	return nil, fmt.Errorf("%w: ID %d", ErrUnsupported, info.ID)
}
