package superblock

import (
	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

// Write appends the superblock at the writer position and returns the
// position of the end-of-file address field so the caller can patch it
// once the image is complete. Versions 0 and 2 are supported; the writer
// must be configured with the superblock's offset and length sizes.
func (sb *Superblock) Write(w *binpkg.Writer) (eofAt int64) {
	start := w.Pos()
	w.Write(Signature)
	w.Uint8(sb.Version)

	if sb.Version >= 2 {
		w.Uint8(sb.OffsetSize)
		w.Uint8(sb.LengthSize)
		w.Uint8(sb.FileConsistencyFlags)
		w.Offset(sb.BaseAddress)
		w.UndefinedOffset()
		eofAt = w.Pos()
		w.Offset(sb.EOFAddress)
		w.Offset(sb.RootGroupAddress)
		w.Checksum(start)
		return eofAt
	}

	w.Write([]byte{0, 0, 0, 0})
	w.Uint8(sb.OffsetSize)
	w.Uint8(sb.LengthSize)
	w.Uint8(0)
	w.Uint16(sb.GroupLeafNodeK)
	w.Uint16(sb.GroupInternalNodeK)
	w.Uint32(0)
	w.Offset(sb.BaseAddress)
	w.UndefinedOffset()
	eofAt = w.Pos()
	w.Offset(sb.EOFAddress)
	w.UndefinedOffset()

	w.Offset(0)
	w.Offset(sb.RootGroupAddress)
	if sb.HasRootScratchPad {
		w.Uint32(1)
		w.Uint32(0)
		w.Offset(sb.RootGroupBTreeAddress)
		w.Offset(sb.RootGroupLocalHeapAddress)
		w.Zeros(16 - 2*w.OffsetSize())
	} else {
		w.Zeros(24)
	}
	return eofAt
}

// Size returns the encoded size of the superblock.
func (sb *Superblock) Size() int {
	o := int(sb.OffsetSize)
	if sb.Version >= 2 {
		return 12 + 4*o + 4
	}
	return 24 + 4*o + 2*o + 24
}
