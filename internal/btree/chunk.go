package btree

import (
	"fmt"

	"github.com/robert-malhotra/h5value/internal/binary"
)

// ChunkEntry is one stored chunk.
type ChunkEntry struct {
	// Offset is the chunk origin in dataset element coordinates.
	Offset []uint64
	// FilterMask has bit i set when filter i was skipped for this chunk.
	FilterMask uint32
	// Size is the stored size, after filters.
	Size uint32
	// Address is where the chunk starts in the file.
	Address uint64
}

// ChunkIndex holds every stored chunk of a dataset.
type ChunkIndex struct {
	NDims   int
	Entries []ChunkEntry
}

// ReadChunkIndex reads the chunk B-tree rooted at address for a dataset
// of rank ndims. Keys carry one extra trailing offset, which is ignored.
func ReadChunkIndex(r *binary.Reader, address uint64, ndims int) (*ChunkIndex, error) {
	idx := &ChunkIndex{NDims: ndims}
	if err := readChunkNode(r, address, ndims, visited{}, &idx.Entries); err != nil {
		return nil, err
	}
	return idx, nil
}

func readChunkNode(r *binary.Reader, address uint64, ndims int, seen visited, out *[]ChunkEntry) error {
	if err := seen.enter(address); err != nil {
		return err
	}
	nr := r.At(int64(address))
	h, err := readNodeHeader(nr, NodeChunk)
	if err != nil {
		return fmt.Errorf("chunk b-tree at %d: %w", address, err)
	}

	for i := uint16(0); i < h.Entries; i++ {
		key, err := readChunkKey(nr, ndims)
		if err != nil {
			return fmt.Errorf("chunk b-tree at %d, key %d: %w", address, i, err)
		}
		child, err := nr.ReadOffset()
		if err != nil {
			return err
		}

		if h.Level > 0 {
			if err := readChunkNode(r, child, ndims, seen, out); err != nil {
				return err
			}
			continue
		}
		if r.IsUndefinedOffset(child) || key.Size == 0 {
			continue
		}
		key.Address = child
		*out = append(*out, key)
	}
	return nil
}

func readChunkKey(r *binary.Reader, ndims int) (ChunkEntry, error) {
	var e ChunkEntry
	var err error
	if e.Size, err = r.ReadUint32(); err != nil {
		return e, err
	}
	if e.FilterMask, err = r.ReadUint32(); err != nil {
		return e, err
	}
	e.Offset = make([]uint64, ndims)
	for d := range e.Offset {
		if e.Offset[d], err = r.ReadUint64(); err != nil {
			return e, err
		}
	}
	r.Skip(8)
	return e, nil
}

// FindChunk returns the entry whose chunk contains the element at offset,
// or nil.
func (idx *ChunkIndex) FindChunk(offset []uint64, chunkDims []uint32) *ChunkEntry {
	for i := range idx.Entries {
		e := &idx.Entries[i]
		match := true
		for d := 0; d < len(offset) && d < len(e.Offset); d++ {
			if offset[d] < e.Offset[d] || offset[d] >= e.Offset[d]+uint64(chunkDims[d]) {
				match = false
				break
			}
		}
		if match {
			return e
		}
	}
	return nil
}
