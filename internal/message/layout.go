package message

import (
	"fmt"

	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

// LayoutClass represents the storage layout class.
type LayoutClass uint8

const (
	LayoutCompact    LayoutClass = 0 // Data stored in object header
	LayoutContiguous LayoutClass = 1 // Data in single contiguous block
	LayoutChunked    LayoutClass = 2 // Data in indexed chunks
	LayoutVirtual    LayoutClass = 3 // Virtual dataset (v4+)
)

func (c LayoutClass) String() string {
	switch c {
	case LayoutCompact:
		return "compact"
	case LayoutContiguous:
		return "contiguous"
	case LayoutChunked:
		return "chunked"
	case LayoutVirtual:
		return "virtual"
	}
	return fmt.Sprintf("layout(%d)", uint8(c))
}

// ChunkIndexType identifies how chunk addresses are indexed. Layout
// versions before 4 always use a version 1 B-tree.
type ChunkIndexType uint8

const (
	ChunkIndexBTreeV1         ChunkIndexType = 0
	ChunkIndexSingleChunk     ChunkIndexType = 1
	ChunkIndexImplicit        ChunkIndexType = 2
	ChunkIndexFixedArray      ChunkIndexType = 3
	ChunkIndexExtensibleArray ChunkIndexType = 4
	ChunkIndexBTreeV2         ChunkIndexType = 5
)

// Chunked layout flags (version 4).
const (
	ChunkFlagDontFilterPartialEdge uint8 = 0x01
	ChunkFlagSingleIndexWithFilter uint8 = 0x02
)

// DataLayout represents a data layout message (type 0x0008).
type DataLayout struct {
	Version uint8
	Class   LayoutClass

	// Compact
	CompactData []byte

	// Contiguous. Size is zero for version 1 and 2 messages, which do not
	// record it.
	Address uint64
	Size    uint64

	// Chunked. ChunkDims holds the spatial chunk dimensions; the trailing
	// element-size dimension of the encoding is kept in ElementSize.
	ChunkDims      []uint32
	ElementSize    uint32
	ChunkIndexAddr uint64
	ChunkIndexType ChunkIndexType
	ChunkFlags     uint8

	// Single chunk index with filters.
	FilteredChunkSize uint64
	FilterMask        uint32

	// Fixed array index.
	PageBits uint8
}

func (m *DataLayout) Type() Type { return TypeDataLayout }

// IsCompact returns true if data is stored in the object header.
func (m *DataLayout) IsCompact() bool {
	return m.Class == LayoutCompact
}

// IsContiguous returns true if data is stored contiguously.
func (m *DataLayout) IsContiguous() bool {
	return m.Class == LayoutContiguous
}

// IsChunked returns true if data is stored in chunks.
func (m *DataLayout) IsChunked() bool {
	return m.Class == LayoutChunked
}

// ChunkElements returns the number of elements in one chunk.
func (m *DataLayout) ChunkElements() uint64 {
	n := uint64(1)
	for _, d := range m.ChunkDims {
		n *= uint64(d)
	}
	return n
}

func parseDataLayout(r *binpkg.Reader) (*DataLayout, error) {
	version, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	layout := &DataLayout{Version: version}
	switch version {
	case 1, 2:
		err = parseDataLayoutV1(r, layout)
	case 3, 4:
		err = parseDataLayoutV3(r, layout)
	default:
		return nil, fmt.Errorf("%w: data layout version %d", ErrUnsupported, version)
	}
	if err != nil {
		return nil, err
	}
	return layout, nil
}

func parseDataLayoutV1(r *binpkg.Reader, layout *DataLayout) error {
	ndims, err := r.ReadUint8()
	if err != nil {
		return err
	}
	class, err := r.ReadUint8()
	if err != nil {
		return err
	}
	layout.Class = LayoutClass(class)
	r.Skip(5)

	switch layout.Class {
	case LayoutContiguous:
		if layout.Address, err = r.ReadOffset(); err != nil {
			return err
		}
		r.Skip(4 * int64(ndims))

	case LayoutChunked:
		if layout.ChunkIndexAddr, err = r.ReadOffset(); err != nil {
			return err
		}
		if err := readChunkDims(r, layout, int(ndims), 4); err != nil {
			return err
		}

	case LayoutCompact:
		r.Skip(4 * int64(ndims))
		size, err := r.ReadUint32()
		if err != nil {
			return err
		}
		if layout.CompactData, err = r.ReadBytes(int(size)); err != nil {
			return fmt.Errorf("compact data: %w", err)
		}

	default:
		return fmt.Errorf("%w: layout class %d", ErrUnsupported, class)
	}
	return nil
}

func parseDataLayoutV3(r *binpkg.Reader, layout *DataLayout) error {
	class, err := r.ReadUint8()
	if err != nil {
		return err
	}
	layout.Class = LayoutClass(class)

	switch layout.Class {
	case LayoutCompact:
		size, err := r.ReadUint16()
		if err != nil {
			return err
		}
		if layout.CompactData, err = r.ReadBytes(int(size)); err != nil {
			return fmt.Errorf("compact data: %w", err)
		}

	case LayoutContiguous:
		if layout.Address, err = r.ReadOffset(); err != nil {
			return err
		}
		if layout.Size, err = r.ReadLength(); err != nil {
			return err
		}

	case LayoutChunked:
		if layout.Version == 3 {
			ndims, err := r.ReadUint8()
			if err != nil {
				return err
			}
			if layout.ChunkIndexAddr, err = r.ReadOffset(); err != nil {
				return err
			}
			return readChunkDims(r, layout, int(ndims), 4)
		}
		return parseChunkedV4(r, layout)

	case LayoutVirtual:
		return fmt.Errorf("%w: virtual dataset layout", ErrUnsupported)

	default:
		return fmt.Errorf("%w: layout class %d", ErrUnsupported, class)
	}
	return nil
}

func parseChunkedV4(r *binpkg.Reader, layout *DataLayout) error {
	var err error
	if layout.ChunkFlags, err = r.ReadUint8(); err != nil {
		return err
	}
	ndims, err := r.ReadUint8()
	if err != nil {
		return err
	}
	width, err := r.ReadUint8()
	if err != nil {
		return err
	}
	if width < 1 || width > 8 {
		return fmt.Errorf("%w: chunk dimension width %d", ErrInvalid, width)
	}
	if err := readChunkDims(r, layout, int(ndims), int(width)); err != nil {
		return err
	}

	idx, err := r.ReadUint8()
	if err != nil {
		return err
	}
	layout.ChunkIndexType = ChunkIndexType(idx)

	switch layout.ChunkIndexType {
	case ChunkIndexSingleChunk:
		if layout.ChunkFlags&ChunkFlagSingleIndexWithFilter != 0 {
			if layout.FilteredChunkSize, err = r.ReadLength(); err != nil {
				return err
			}
			if layout.FilterMask, err = r.ReadUint32(); err != nil {
				return err
			}
		}
	case ChunkIndexImplicit:
	case ChunkIndexFixedArray:
		if layout.PageBits, err = r.ReadUint8(); err != nil {
			return err
		}
	case ChunkIndexExtensibleArray:
		r.Skip(5)
	case ChunkIndexBTreeV2:
		r.Skip(6)
	default:
		return fmt.Errorf("%w: chunk index type %d", ErrInvalid, idx)
	}

	layout.ChunkIndexAddr, err = r.ReadOffset()
	return err
}

// readChunkDims reads ndims dimension sizes, the last of which is the
// dataset element size.
func readChunkDims(r *binpkg.Reader, layout *DataLayout, ndims, width int) error {
	if ndims < 1 {
		return fmt.Errorf("%w: chunked layout with %d dimensions", ErrInvalid, ndims)
	}
	dims := make([]uint32, ndims)
	for i := range dims {
		v, err := r.ReadUintN(width)
		if err != nil {
			return fmt.Errorf("chunk dimensions: %w", err)
		}
		dims[i] = uint32(v)
	}
	layout.ChunkDims = dims[:ndims-1]
	layout.ElementSize = dims[ndims-1]
	return nil
}
