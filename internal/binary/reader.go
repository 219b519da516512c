// Package binary provides bounds-checked access to an in-memory HDF5 image.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize is returned when an invalid offset or length size is specified.
	ErrInvalidSize = errors.New("invalid offset/length size: must be 2, 4, or 8")

	// ErrOutOfBounds is returned when a read would run past the end of the image.
	ErrOutOfBounds = errors.New("read out of bounds")
)

// Reader reads little-endian HDF5 structures with variable-width offset
// and length fields. It never copies the image; slices returned by
// ReadBytes are fresh copies, slices returned by Slice alias the image.
type Reader struct {
	data       []byte
	order      binary.ByteOrder
	offsetSize int
	lengthSize int
	pos        int64
}

// Config holds reader configuration, typically derived from the superblock.
type Config struct {
	ByteOrder  binary.ByteOrder
	OffsetSize int // 2, 4, or 8 bytes
	LengthSize int // 2, 4, or 8 bytes
}

// DefaultConfig returns a configuration suitable for initial superblock reading.
func DefaultConfig() Config {
	return Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: 8,
		LengthSize: 8,
	}
}

// ValidSize reports whether n is an allowed offset or length width.
func ValidSize(n int) bool {
	return n == 2 || n == 4 || n == 8
}

// NewReader creates a reader over data with the given configuration.
func NewReader(data []byte, cfg Config) *Reader {
	return &Reader{
		data:       data,
		order:      cfg.ByteOrder,
		offsetSize: cfg.OffsetSize,
		lengthSize: cfg.LengthSize,
	}
}

// At returns a new reader positioned at the given offset.
func (r *Reader) At(offset int64) *Reader {
	c := *r
	c.pos = offset
	return &c
}

// WithSizes returns a new reader with updated offset and length sizes.
func (r *Reader) WithSizes(offsetSize, lengthSize int) *Reader {
	c := *r
	c.offsetSize = offsetSize
	c.lengthSize = lengthSize
	return &c
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Len returns the size of the underlying image.
func (r *Reader) Len() int64 {
	return int64(len(r.data))
}

// Remaining returns the number of bytes between the position and the end of the image.
func (r *Reader) Remaining() int64 {
	if r.pos >= int64(len(r.data)) {
		return 0
	}
	return int64(len(r.data)) - r.pos
}

func (r *Reader) window(n int) ([]byte, error) {
	if n < 0 || r.pos < 0 || r.pos > int64(len(r.data)) || int64(n) > int64(len(r.data))-r.pos {
		return nil, fmt.Errorf("%w: %d bytes at offset %d (image is %d bytes)", ErrOutOfBounds, n, r.pos, len(r.data))
	}
	return r.data[r.pos : r.pos+int64(n)], nil
}

// Slice returns the next n bytes without copying and advances the position.
// The result aliases the image and must not be modified.
func (r *Reader) Slice(n int) ([]byte, error) {
	buf, err := r.window(n)
	if err != nil {
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// ReadBytes reads exactly n bytes from the current position into a new slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf, err := r.Slice(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, buf)
	return out, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.Slice(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.Slice(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(buf), nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.Slice(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.Slice(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(buf), nil
}

// ReadUintN reads an unsigned little-endian integer of n bytes (0 to 8).
func (r *Reader) ReadUintN(n int) (uint64, error) {
	if n < 0 || n > 8 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	buf, err := r.Slice(n)
	if err != nil {
		return 0, err
	}
	return r.decodeUint(buf), nil
}

// ReadOffset reads a file address using the configured offset size.
func (r *Reader) ReadOffset() (uint64, error) {
	return r.ReadUintN(r.offsetSize)
}

// ReadLength reads a length value using the configured length size.
func (r *Reader) ReadLength() (uint64, error) {
	return r.ReadUintN(r.lengthSize)
}

func (r *Reader) decodeUint(buf []byte) uint64 {
	switch len(buf) {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(r.order.Uint16(buf))
	case 4:
		return uint64(r.order.Uint32(buf))
	case 8:
		return r.order.Uint64(buf)
	}
	var val uint64
	for i := len(buf) - 1; i >= 0; i-- {
		val = val<<8 | uint64(buf[i])
	}
	return val
}

// IsUndefinedOffset reports whether offset is the all-ones "undefined address".
func (r *Reader) IsUndefinedOffset(offset uint64) bool {
	return offset == allOnes(r.offsetSize)
}

// IsUndefinedLength reports whether length is the all-ones sentinel.
func (r *Reader) IsUndefinedLength(length uint64) bool {
	return length == allOnes(r.lengthSize)
}

func allOnes(size int) uint64 {
	if size >= 8 {
		return ^uint64(0)
	}
	return uint64(1)<<(size*8) - 1
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) {
	r.pos += n
}

// Align advances the position to the next multiple of alignment.
func (r *Reader) Align(alignment int64) {
	if alignment <= 1 {
		return
	}
	if remainder := r.pos % alignment; remainder != 0 {
		r.pos += alignment - remainder
	}
}

// Peek returns n bytes at the current position without advancing.
func (r *Reader) Peek(n int) ([]byte, error) {
	return r.window(n)
}

// OffsetSize returns the configured offset size in bytes.
func (r *Reader) OffsetSize() int {
	return r.offsetSize
}

// LengthSize returns the configured length size in bytes.
func (r *Reader) LengthSize() int {
	return r.lengthSize
}

// ByteOrder returns the configured byte order.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}
