package layout

import (
	"github.com/robert-malhotra/h5value/internal/binary"
)

// WriteFixedArray appends a fixed array chunk index and returns the header
// address. sizeWidth is the byte width of chunk sizes when filtered is
// set. More than 1<<pageBits entries are written as pages.
func WriteFixedArray(w *binary.Writer, entries []FixedArrayEntry, filtered bool, sizeWidth int, pageBits uint8) uint64 {
	client, entrySize := FixedArrayChunks, w.OffsetSize()
	if filtered {
		client, entrySize = FixedArrayFilteredChunks, w.OffsetSize()+sizeWidth+4
	}

	addr := w.Pos()
	w.Write(fixedArrayHeaderSignature)
	w.Uint8(0)
	w.Uint8(client)
	w.Uint8(uint8(entrySize))
	w.Uint8(pageBits)
	w.Length(uint64(len(entries)))
	// The data block follows the header checksum.
	w.Offset(uint64(w.Pos()) + uint64(w.OffsetSize()) + 4)
	w.Checksum(addr)

	block := w.Pos()

	w.Write(fixedArrayBlockSignature)
	w.Uint8(0)
	w.Uint8(client)
	w.Offset(uint64(addr))

	writeEntry := func(e FixedArrayEntry) {
		w.Offset(e.Address)
		if filtered {
			w.UintN(e.Size, sizeWidth)
			w.Uint32(e.FilterMask)
		}
	}

	pageSize := 1 << pageBits
	if len(entries) <= pageSize {
		for _, e := range entries {
			writeEntry(e)
		}
		w.Checksum(block)
		return uint64(addr)
	}

	pages := (len(entries) + pageSize - 1) / pageSize
	bitmap := make([]byte, (pages+7)/8)
	for p := 0; p < pages; p++ {
		bitmap[p/8] |= 0x80 >> (p % 8)
	}
	w.Write(bitmap)
	w.Checksum(block)
	for p := 0; p < pages; p++ {
		start := w.Pos()
		for _, e := range entries[p*pageSize : min((p+1)*pageSize, len(entries))] {
			writeEntry(e)
		}
		w.Checksum(start)
	}
	return uint64(addr)
}
