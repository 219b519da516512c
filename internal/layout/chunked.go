package layout

import (
	"fmt"

	"github.com/robert-malhotra/h5value/internal/binary"
	"github.com/robert-malhotra/h5value/internal/btree"
	"github.com/robert-malhotra/h5value/internal/filter"
	"github.com/robert-malhotra/h5value/internal/message"
)

// Chunked is storage cut into equally shaped, independently filtered
// chunks.
type Chunked struct {
	layout   *message.DataLayout
	dims     []uint64
	maxDims  []uint64
	elemSize uint64
	pipeline *filter.Pipeline
	fill     []byte
	reader   *binary.Reader
}

// NewChunked creates a chunked layout.
func NewChunked(
	layout *message.DataLayout,
	dataspace *message.Dataspace,
	elemSize uint64,
	pipeline *message.FilterPipeline,
	fill []byte,
	reader *binary.Reader,
) (*Chunked, error) {
	p, err := filter.NewPipeline(pipeline)
	if err != nil {
		return nil, fmt.Errorf("creating filter pipeline: %w", err)
	}

	dims := dataspace.Dimensions
	if dataspace.IsScalar() {
		dims = []uint64{1}
	}
	if len(layout.ChunkDims) != len(dims) {
		return nil, fmt.Errorf("chunk rank %d does not match dataset rank %d", len(layout.ChunkDims), len(dims))
	}
	for d, c := range layout.ChunkDims {
		if c == 0 {
			return nil, fmt.Errorf("chunk dimension %d is zero", d)
		}
	}

	return &Chunked{
		layout:   layout,
		dims:     dims,
		maxDims:  dataspace.MaxDims,
		elemSize: elemSize,
		pipeline: p,
		fill:     fill,
		reader:   reader,
	}, nil
}

func (c *Chunked) Class() message.LayoutClass {
	return message.LayoutChunked
}

// Read assembles the dataset from its chunks. Regions without a stored
// chunk read as the fill value.
func (c *Chunked) Read() ([]byte, error) {
	total := c.elemSize
	for _, d := range c.dims {
		total *= d
	}
	out := filled(total, c.elemSize, c.fill)
	if total == 0 || c.reader.IsUndefinedOffset(c.layout.ChunkIndexAddr) {
		return out, nil
	}

	entries, err := c.Entries()
	if err != nil {
		return nil, err
	}

	chunkBytes := c.chunkBytes()
	for _, e := range entries {
		stored, err := c.reader.At(int64(e.Address)).Slice(int(e.Size))
		if err != nil {
			return nil, fmt.Errorf("reading chunk at %v: %w", e.Offset, err)
		}
		data, err := c.pipeline.Decode(stored, e.FilterMask)
		if err != nil {
			return nil, fmt.Errorf("decoding chunk at %v: %w", e.Offset, err)
		}
		if uint64(len(data)) < chunkBytes {
			return nil, fmt.Errorf("chunk at %v holds %d bytes, expected %d", e.Offset, len(data), chunkBytes)
		}
		copyChunk(out, data, e.Offset, c.dims, c.layout.ChunkDims, c.elemSize)
	}
	return out, nil
}

// Entries returns the stored chunks listed by the chunk index.
func (c *Chunked) Entries() ([]btree.ChunkEntry, error) {
	addr := c.layout.ChunkIndexAddr
	rank := len(c.dims)

	if c.layout.Version < 4 {
		idx, err := btree.ReadChunkIndex(c.reader, addr, rank)
		if err != nil {
			return nil, err
		}
		return idx.Entries, nil
	}

	switch c.layout.ChunkIndexType {
	case message.ChunkIndexBTreeV1:
		idx, err := btree.ReadChunkIndex(c.reader, addr, rank)
		if err != nil {
			return nil, err
		}
		return idx.Entries, nil

	case message.ChunkIndexSingleChunk:
		e := btree.ChunkEntry{
			Offset:  make([]uint64, rank),
			Address: addr,
			Size:    uint32(c.chunkBytes()),
		}
		if c.layout.ChunkFlags&message.ChunkFlagSingleIndexWithFilter != 0 {
			e.Size = uint32(c.layout.FilteredChunkSize)
			e.FilterMask = c.layout.FilterMask
		}
		return []btree.ChunkEntry{e}, nil

	case message.ChunkIndexImplicit:
		return c.implicitEntries(), nil

	case message.ChunkIndexFixedArray:
		fa, err := ReadFixedArray(c.reader, addr)
		if err != nil {
			return nil, err
		}
		return c.gridEntries(fa), nil

	case message.ChunkIndexExtensibleArray:
		return nil, fmt.Errorf("%w: extensible array chunk index", ErrUnsupported)
	case message.ChunkIndexBTreeV2:
		return nil, fmt.Errorf("%w: version 2 b-tree chunk index", ErrUnsupported)
	default:
		return nil, fmt.Errorf("%w: chunk index type %d", ErrUnsupported, c.layout.ChunkIndexType)
	}
}

func (c *Chunked) chunkBytes() uint64 {
	return c.layout.ChunkElements() * c.elemSize
}

// grid returns the number of chunks along each dimension of the space the
// index covers: the maximum dimensions when they are all fixed.
func (c *Chunked) grid() []uint64 {
	extent := c.dims
	if len(c.maxDims) == len(c.dims) {
		fixed := true
		for _, m := range c.maxDims {
			if c.reader.IsUndefinedLength(m) {
				fixed = false
			}
		}
		if fixed {
			extent = c.maxDims
		}
	}
	g := make([]uint64, len(extent))
	for d, n := range extent {
		cd := uint64(c.layout.ChunkDims[d])
		g[d] = (n + cd - 1) / cd
	}
	return g
}

// origin converts a linear chunk index into the chunk's element origin.
func (c *Chunked) origin(grid []uint64, linear uint64) []uint64 {
	off := make([]uint64, len(grid))
	for d := len(grid) - 1; d >= 0; d-- {
		off[d] = (linear % grid[d]) * uint64(c.layout.ChunkDims[d])
		linear /= grid[d]
	}
	return off
}

func (c *Chunked) inside(origin []uint64) bool {
	for d, o := range origin {
		if o >= c.dims[d] {
			return false
		}
	}
	return true
}

func (c *Chunked) implicitEntries() []btree.ChunkEntry {
	grid := c.grid()
	n := uint64(1)
	for _, g := range grid {
		n *= g
	}
	size := c.chunkBytes()

	var entries []btree.ChunkEntry
	for i := uint64(0); i < n; i++ {
		off := c.origin(grid, i)
		if !c.inside(off) {
			continue
		}
		entries = append(entries, btree.ChunkEntry{
			Offset:  off,
			Address: c.layout.ChunkIndexAddr + i*size,
			Size:    uint32(size),
		})
	}
	return entries
}

func (c *Chunked) gridEntries(fa *FixedArray) []btree.ChunkEntry {
	grid := c.grid()
	size := c.chunkBytes()

	var entries []btree.ChunkEntry
	for i, fe := range fa.Entries {
		if fe.Address == 0 || c.reader.IsUndefinedOffset(fe.Address) {
			continue
		}
		off := c.origin(grid, uint64(i))
		if !c.inside(off) {
			continue
		}
		e := btree.ChunkEntry{Offset: off, Address: fe.Address, Size: uint32(size)}
		if fa.Filtered {
			e.Size = uint32(fe.Size)
			e.FilterMask = fe.FilterMask
		}
		entries = append(entries, e)
	}
	return entries
}

// copyChunk copies a decoded chunk whose first element sits at origin into
// the dataset buffer, clipping at the dataset edges.
func copyChunk(dst, src []byte, origin, dims []uint64, chunk []uint32, elemSize uint64) {
	rank := len(dims)
	dstStride := make([]uint64, rank)
	srcStride := make([]uint64, rank)
	ds, ss := elemSize, elemSize
	for d := rank - 1; d >= 0; d-- {
		dstStride[d], srcStride[d] = ds, ss
		ds *= dims[d]
		ss *= uint64(chunk[d])
	}

	var walk func(d int, dstOff, srcOff uint64)
	walk = func(d int, dstOff, srcOff uint64) {
		if origin[d] >= dims[d] {
			return
		}
		n := min(uint64(chunk[d]), dims[d]-origin[d])
		if d == rank-1 {
			start := dstOff + origin[d]*elemSize
			copy(dst[start:start+n*elemSize], src[srcOff:srcOff+n*elemSize])
			return
		}
		for i := uint64(0); i < n; i++ {
			walk(d+1, dstOff+(origin[d]+i)*dstStride[d], srcOff+i*srcStride[d])
		}
	}
	walk(0, 0, 0)
}
