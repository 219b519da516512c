package object

import (
	"github.com/robert-malhotra/h5value/internal/binary"
	"github.com/robert-malhotra/h5value/internal/message"
)

// Raw is an encoded header message ready to be written.
type Raw struct {
	Type  message.Type
	Flags uint8
	Data  []byte
}

// WriteV2 appends a version 2 object header holding msgs and returns its
// address. When tail is non-empty those messages go into a continuation
// block written directly after the header.
func WriteV2(w *binary.Writer, msgs []Raw, tail ...Raw) uint64 {
	addr := w.Pos()

	contSize := 0
	if len(tail) > 0 {
		contSize = 4 + w.OffsetSize() + w.LengthSize()
	}
	chunk := contSize
	for _, m := range msgs {
		chunk += 4 + len(m.Data)
	}

	w.Write(SignatureV2)
	w.Uint8(2)
	// 4-byte chunk size field
	w.Uint8(0x02)
	w.Uint32(uint32(chunk))
	for _, m := range msgs {
		writeV2Message(w, m)
	}

	if len(tail) > 0 {
		tailSize := 8
		for _, m := range tail {
			tailSize += 4 + len(m.Data)
		}
		w.Uint8(uint8(message.TypeObjectHeaderContinuation))
		w.Uint16(uint16(w.OffsetSize() + w.LengthSize()))
		w.Uint8(0)
		// The block starts right after this message and the checksum.
		w.Offset(uint64(w.Pos()) + uint64(w.OffsetSize()+w.LengthSize()) + 4)
		w.Length(uint64(tailSize))
	}
	w.Checksum(addr)

	if len(tail) > 0 {
		start := w.Pos()
		w.Write(SignatureContinuation)
		for _, m := range tail {
			writeV2Message(w, m)
		}
		w.Checksum(start)
	}

	return uint64(addr)
}

func writeV2Message(w *binary.Writer, m Raw) {
	w.Uint8(uint8(m.Type))
	w.Uint16(uint16(len(m.Data)))
	w.Uint8(m.Flags)
	w.Write(m.Data)
}

// WriteV1 appends a version 1 object header holding msgs and returns its
// address. The writer position must be 8-byte aligned.
func WriteV1(w *binary.Writer, msgs []Raw) uint64 {
	w.Align(8)
	addr := w.Pos()

	size := 0
	for _, m := range msgs {
		size += 8 + pad8(len(m.Data))
	}

	w.Uint8(1)
	w.Uint8(0)
	w.Uint16(uint16(len(msgs)))
	w.Uint32(1)
	w.Uint32(uint32(size))
	w.Zeros(4)
	for _, m := range msgs {
		w.Uint16(uint16(m.Type))
		w.Uint16(uint16(pad8(len(m.Data))))
		w.Uint8(m.Flags)
		w.Zeros(3)
		w.Write(m.Data)
		w.Zeros(pad8(len(m.Data)) - len(m.Data))
	}
	return uint64(addr)
}

func pad8(n int) int {
	return (n + 7) &^ 7
}
