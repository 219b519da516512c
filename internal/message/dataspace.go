package message

import (
	"fmt"
	"math/bits"
	"slices"

	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

// DataspaceType represents the type of dataspace.
type DataspaceType uint8

const (
	DataspaceScalar DataspaceType = 0 // Single element
	DataspaceSimple DataspaceType = 1 // Regular N-dimensional array
	DataspaceNull   DataspaceType = 2 // No data
)

// Dataspace represents a dataspace message (type 0x0001).
type Dataspace struct {
	Version    uint8
	Rank       int
	SpaceType  DataspaceType
	Dimensions []uint64
	MaxDims    []uint64 // nil if not present
}

func (m *Dataspace) Type() Type { return TypeDataspace }

// NumElements returns the total number of elements in the dataspace.
func (m *Dataspace) NumElements() uint64 {
	switch m.SpaceType {
	case DataspaceScalar:
		return 1
	case DataspaceSimple:
		n, _ := elementCount(m.Dimensions)
		return n
	default:
		return 0
	}
}

// elementCount multiplies dims, reporting false when the product does not
// fit 64 bits.
func elementCount(dims []uint64) (uint64, bool) {
	if slices.Contains(dims, 0) {
		return 0, true
	}
	n := uint64(1)
	for _, d := range dims {
		hi, lo := bits.Mul64(n, d)
		if hi != 0 {
			return 0, false
		}
		n = lo
	}
	return n, true
}

// IsScalar returns true if this is a scalar dataspace.
func (m *Dataspace) IsScalar() bool {
	return m.SpaceType == DataspaceScalar
}

// IsNull returns true if this is a null dataspace.
func (m *Dataspace) IsNull() bool {
	return m.SpaceType == DataspaceNull
}

func parseDataspace(r *binpkg.Reader) (*Dataspace, error) {
	hdr, err := r.ReadBytes(4)
	if err != nil {
		return nil, err
	}

	ds := &Dataspace{
		Version: hdr[0],
		Rank:    int(hdr[1]),
	}
	flags := hdr[2]

	switch ds.Version {
	case 1:
		// Version 1 has no type field; rank zero means scalar.
		ds.SpaceType = DataspaceSimple
		if ds.Rank == 0 {
			ds.SpaceType = DataspaceScalar
		}
		r.Skip(4)
	case 2:
		ds.SpaceType = DataspaceType(hdr[3])
		if ds.SpaceType > DataspaceNull {
			return nil, fmt.Errorf("%w: dataspace type %d", ErrInvalid, hdr[3])
		}
	default:
		return nil, fmt.Errorf("%w: dataspace version %d", ErrUnsupported, ds.Version)
	}

	if ds.SpaceType != DataspaceSimple {
		return ds, nil
	}

	ds.Dimensions = make([]uint64, ds.Rank)
	for i := range ds.Dimensions {
		if ds.Dimensions[i], err = r.ReadLength(); err != nil {
			return nil, fmt.Errorf("dataspace dimensions: %w", err)
		}
	}
	if _, ok := elementCount(ds.Dimensions); !ok {
		return nil, fmt.Errorf("%w: dataspace dimensions %v overflow", ErrInvalid, ds.Dimensions)
	}

	if flags&0x01 != 0 {
		ds.MaxDims = make([]uint64, ds.Rank)
		for i := range ds.MaxDims {
			if ds.MaxDims[i], err = r.ReadLength(); err != nil {
				return nil, fmt.Errorf("dataspace max dimensions: %w", err)
			}
		}
	}

	return ds, nil
}
