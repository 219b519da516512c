package btree

import (
	"github.com/robert-malhotra/h5value/internal/binary"
)

// SymbolEntry is a symbol table entry ready to be written. NameOffset and
// LinkOffset are local heap offsets; LinkOffset is used for soft links.
type SymbolEntry struct {
	NameOffset    uint64
	ObjectAddress uint64
	SoftLink      bool
	LinkOffset    uint64
}

// WriteSymbolEntry appends one symbol table entry.
func WriteSymbolEntry(w *binary.Writer, e SymbolEntry) {
	w.Offset(e.NameOffset)
	w.Offset(e.ObjectAddress)
	if e.SoftLink {
		w.Uint32(CacheSoftLink)
		w.Zeros(4)
		w.Uint32(uint32(e.LinkOffset))
		w.Zeros(12)
		return
	}
	w.Uint32(CacheNone)
	w.Zeros(4 + 16)
}

// WriteGroupTree appends a single-leaf group B-tree whose symbol node holds
// entries, and returns the address of the B-tree.
func WriteGroupTree(w *binary.Writer, entries []SymbolEntry) uint64 {
	w.Align(8)
	snod := w.Pos()
	w.Write(snodSignature)
	w.Uint8(1)
	w.Zeros(1)
	w.Uint16(uint16(len(entries)))
	for _, e := range entries {
		WriteSymbolEntry(w, e)
	}

	w.Align(8)
	addr := w.Pos()
	writeNodeHeader(w, NodeGroup, 1)
	w.Length(0)
	w.Offset(uint64(snod))
	if len(entries) > 0 {
		w.Length(entries[len(entries)-1].NameOffset)
	} else {
		w.Length(0)
	}
	return uint64(addr)
}

// WriteChunkTree appends a single-leaf chunk B-tree indexing entries of a
// dataset with rank ndims, and returns its address.
func WriteChunkTree(w *binary.Writer, ndims int, entries []ChunkEntry) uint64 {
	w.Align(8)
	addr := w.Pos()
	writeNodeHeader(w, NodeChunk, len(entries))
	for _, e := range entries {
		w.Uint32(e.Size)
		w.Uint32(e.FilterMask)
		for d := 0; d < ndims; d++ {
			w.Uint64(e.Offset[d])
		}
		w.Uint64(0)
		w.Offset(e.Address)
	}
	// Closing key.
	w.Uint32(0)
	w.Uint32(0)
	w.Zeros(8 * (ndims + 1))
	return uint64(addr)
}

func writeNodeHeader(w *binary.Writer, typ uint8, entries int) {
	w.Write(treeSignature)
	w.Uint8(typ)
	w.Uint8(0)
	w.Uint16(uint16(entries))
	w.UndefinedOffset()
	w.UndefinedOffset()
}
