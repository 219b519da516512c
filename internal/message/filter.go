package message

import (
	"fmt"

	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

// Filter IDs
const (
	FilterDeflate     uint16 = 1 // DEFLATE (gzip)
	FilterShuffle     uint16 = 2 // Byte shuffle
	FilterFletcher32  uint16 = 3 // Fletcher32 checksum
	FilterSZIP        uint16 = 4 // SZIP compression
	FilterNBit        uint16 = 5 // N-bit packing
	FilterScaleOffset uint16 = 6 // Scale + offset
)

// FilterInfo describes a single filter in the pipeline.
type FilterInfo struct {
	ID         uint16
	Flags      uint16 // bit 0: optional
	Name       string
	ClientData []uint32
}

// IsOptional returns true if this filter is optional.
func (f *FilterInfo) IsOptional() bool {
	return f.Flags&0x01 != 0
}

// FilterPipeline represents a filter pipeline message (type 0x000B).
type FilterPipeline struct {
	Version uint8
	Filters []FilterInfo
}

func (m *FilterPipeline) Type() Type { return TypeFilterPipeline }

// HasFilter returns true if the pipeline contains the given filter ID.
func (m *FilterPipeline) HasFilter(id uint16) bool {
	for _, f := range m.Filters {
		if f.ID == id {
			return true
		}
	}
	return false
}

func parseFilterPipeline(r *binpkg.Reader) (*FilterPipeline, error) {
	version, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	n, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	fp := &FilterPipeline{Version: version, Filters: make([]FilterInfo, n)}
	switch version {
	case 1:
		r.Skip(6)
	case 2:
	default:
		return nil, fmt.Errorf("%w: filter pipeline version %d", ErrUnsupported, version)
	}

	for i := range fp.Filters {
		if fp.Filters[i], err = parseFilterInfo(r, version); err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
	}
	return fp, nil
}

func parseFilterInfo(r *binpkg.Reader, version uint8) (FilterInfo, error) {
	var f FilterInfo
	var err error

	if f.ID, err = r.ReadUint16(); err != nil {
		return f, err
	}

	// Version 2 omits the name length for library filters.
	var nameLen uint16
	if version == 1 || f.ID >= 256 {
		if nameLen, err = r.ReadUint16(); err != nil {
			return f, err
		}
	}
	if f.Flags, err = r.ReadUint16(); err != nil {
		return f, err
	}
	numCD, err := r.ReadUint16()
	if err != nil {
		return f, err
	}

	if nameLen > 0 {
		name, err := r.ReadBytes(int(nameLen))
		if err != nil {
			return f, fmt.Errorf("filter name: %w", err)
		}
		for i, c := range name {
			if c == 0 {
				name = name[:i]
				break
			}
		}
		f.Name = string(name)
		if version == 1 {
			r.Skip(padTo8(int64(nameLen)) - int64(nameLen))
		}
	}

	f.ClientData = make([]uint32, numCD)
	for i := range f.ClientData {
		if f.ClientData[i], err = r.ReadUint32(); err != nil {
			return f, fmt.Errorf("filter client data: %w", err)
		}
	}
	if version == 1 && numCD%2 != 0 {
		r.Skip(4)
	}

	return f, nil
}
