package heap

import (
	"github.com/robert-malhotra/h5value/internal/binary"
)

// minCollectionSize is the smallest collection the library writes.
const minCollectionSize = 4096

// WriteGlobalHeap appends a global heap collection holding objects and
// returns the ID of each, in order. Object indices start at 1.
func WriteGlobalHeap(w *binary.Writer, objects [][]byte) []GlobalHeapID {
	w.Align(8)
	addr := w.Pos()

	w.Write(globalHeapSignature)
	w.Uint8(1)
	w.Zeros(3)
	sizeAt := w.Pos()
	w.Length(0)

	ids := make([]GlobalHeapID, len(objects))
	for i, obj := range objects {
		index := uint16(i + 1)
		w.Uint16(index)
		w.Uint16(1)
		w.Zeros(4)
		w.Length(uint64(len(obj)))
		w.Write(obj)
		w.Align(8)
		ids[i] = GlobalHeapID{CollectionAddress: uint64(addr), ObjectIndex: uint32(index)}
	}

	// Trailing free space object.
	freeHeader := int64(8 + w.LengthSize())
	size := w.Pos() - addr + freeHeader
	if size < minCollectionSize {
		size = minCollectionSize
	}
	free := size - (w.Pos() - addr)
	w.Uint16(0)
	w.Zeros(6)
	w.Length(uint64(free))
	w.Zeros(int(free - freeHeader))
	w.PutLength(sizeAt, uint64(size))

	return ids
}

// WriteVarLen appends a stored variable-length element.
func WriteVarLen(w *binary.Writer, v VarLen) {
	w.Uint32(v.Length)
	w.Offset(v.ID.CollectionAddress)
	w.Uint32(v.ID.ObjectIndex)
}

// WriteLocalHeap appends a local heap whose data segment holds names as
// NUL-terminated, 8-byte padded strings, preceded by an empty string at
// offset 0. It returns the heap address and the offset of each name.
func WriteLocalHeap(w *binary.Writer, names []string) (uint64, []uint64) {
	var seg []byte
	seg = append(seg, make([]byte, 8)...)
	offsets := make([]uint64, len(names))
	for i, n := range names {
		offsets[i] = uint64(len(seg))
		seg = append(seg, n...)
		seg = append(seg, 0)
		for len(seg)%8 != 0 {
			seg = append(seg, 0)
		}
	}

	w.Align(8)
	addr := w.Pos()
	w.Write(localHeapSignature)
	w.Uint8(0)
	w.Zeros(3)
	w.Length(uint64(len(seg)))
	w.UndefinedLength()
	dataAt := w.Pos()
	w.Offset(0)
	w.PutOffset(dataAt, uint64(w.Pos()))
	w.Write(seg)

	return uint64(addr), offsets
}
