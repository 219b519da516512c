package binary

import (
	"encoding/binary"
)

// Writer builds an HDF5 image by appending little-endian fields with
// variable-width offsets and lengths. Fields written ahead of their value
// (addresses, sizes, checksums) are filled in later with the Put methods.
type Writer struct {
	buf        []byte
	order      appendOrder
	offsetSize int
	lengthSize int
}

// NewWriter creates an empty writer with the given configuration.
// Orders that cannot append, including a nil ByteOrder, fall back to
// little-endian.
func NewWriter(cfg Config) *Writer {
	order, ok := cfg.ByteOrder.(appendOrder)
	if !ok {
		order = binary.LittleEndian
	}
	return &Writer{
		order:      order,
		offsetSize: cfg.OffsetSize,
		lengthSize: cfg.LengthSize,
	}
}

type appendOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Pos returns the current end of the image.
func (w *Writer) Pos() int64 {
	return int64(len(w.buf))
}

// Bytes returns the image written so far.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Write appends raw bytes.
func (w *Writer) Write(p []byte) {
	w.buf = append(w.buf, p...)
}

// Uint8 appends an unsigned 8-bit integer.
func (w *Writer) Uint8(v uint8) {
	w.buf = append(w.buf, v)
}

// Uint16 appends an unsigned 16-bit integer.
func (w *Writer) Uint16(v uint16) {
	w.buf = w.order.AppendUint16(w.buf, v)
}

// Uint32 appends an unsigned 32-bit integer.
func (w *Writer) Uint32(v uint32) {
	w.buf = w.order.AppendUint32(w.buf, v)
}

// Uint64 appends an unsigned 64-bit integer.
func (w *Writer) Uint64(v uint64) {
	w.buf = w.order.AppendUint64(w.buf, v)
}

// UintN appends the low n bytes of v, least significant first.
func (w *Writer) UintN(v uint64, n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, byte(v>>(8*i)))
	}
}

// Offset appends a file address using the configured offset size.
func (w *Writer) Offset(v uint64) {
	w.UintN(v, w.offsetSize)
}

// Length appends a length using the configured length size.
func (w *Writer) Length(v uint64) {
	w.UintN(v, w.lengthSize)
}

// UndefinedOffset appends the all-ones "undefined address".
func (w *Writer) UndefinedOffset() {
	w.Offset(allOnes(w.offsetSize))
}

// UndefinedLength appends the all-ones length sentinel.
func (w *Writer) UndefinedLength() {
	w.Length(allOnes(w.lengthSize))
}

// Zeros appends n zero bytes.
func (w *Writer) Zeros(n int) {
	if n > 0 {
		w.buf = append(w.buf, make([]byte, n)...)
	}
}

// Align pads with zeros up to the next multiple of alignment.
func (w *Writer) Align(alignment int64) {
	if alignment <= 1 {
		return
	}
	if remainder := w.Pos() % alignment; remainder != 0 {
		w.Zeros(int(alignment - remainder))
	}
}

// PutUint32 overwrites four bytes at off.
func (w *Writer) PutUint32(off int64, v uint32) {
	w.order.PutUint32(w.buf[off:], v)
}

// PutOffset overwrites an address field at off.
func (w *Writer) PutOffset(off int64, v uint64) {
	for i := 0; i < w.offsetSize; i++ {
		w.buf[off+int64(i)] = byte(v >> (8 * i))
	}
}

// PutLength overwrites a length field at off.
func (w *Writer) PutLength(off int64, v uint64) {
	for i := 0; i < w.lengthSize; i++ {
		w.buf[off+int64(i)] = byte(v >> (8 * i))
	}
}

// Checksum appends the lookup3 checksum of the bytes in [from, Pos).
func (w *Writer) Checksum(from int64) {
	w.Uint32(Lookup3Checksum(w.buf[from:]))
}

// OffsetSize returns the configured offset size in bytes.
func (w *Writer) OffsetSize() int {
	return w.offsetSize
}

// LengthSize returns the configured length size in bytes.
func (w *Writer) LengthSize() int {
	return w.lengthSize
}
