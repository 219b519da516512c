package message

import (
	"fmt"
	"math"
	"math/bits"

	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

// DatatypeClass represents the class of an HDF5 datatype.
type DatatypeClass uint8

const (
	ClassFixedPoint DatatypeClass = 0  // Integers
	ClassFloatPoint DatatypeClass = 1  // Floating-point
	ClassTime       DatatypeClass = 2  // Time (rarely used)
	ClassString     DatatypeClass = 3  // Strings
	ClassBitfield   DatatypeClass = 4  // Bitfields
	ClassOpaque     DatatypeClass = 5  // Opaque data
	ClassCompound   DatatypeClass = 6  // Compound types (structs)
	ClassReference  DatatypeClass = 7  // References to objects/regions
	ClassEnum       DatatypeClass = 8  // Enumerated types
	ClassVarLen     DatatypeClass = 9  // Variable-length data
	ClassArray      DatatypeClass = 10 // Fixed-size arrays
)

var classNames = map[DatatypeClass]string{
	ClassFixedPoint: "fixed-point",
	ClassFloatPoint: "floating-point",
	ClassTime:       "time",
	ClassString:     "string",
	ClassBitfield:   "bitfield",
	ClassOpaque:     "opaque",
	ClassCompound:   "compound",
	ClassReference:  "reference",
	ClassEnum:       "enum",
	ClassVarLen:     "variable-length",
	ClassArray:      "array",
}

func (c DatatypeClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// ByteOrder represents the byte order of numeric types.
type ByteOrder uint8

const (
	OrderLE ByteOrder = 0
	OrderBE ByteOrder = 1
)

// StringPadding represents how strings are padded.
type StringPadding uint8

const (
	PadNullTerm StringPadding = 0
	PadNullPad  StringPadding = 1
	PadSpacePad StringPadding = 2
)

// CharacterSet represents the character encoding.
type CharacterSet uint8

const (
	CharsetASCII CharacterSet = 0
	CharsetUTF8  CharacterSet = 1
)

// VarLenKind distinguishes sequences from strings.
type VarLenKind uint8

const (
	VarLenSequence VarLenKind = 0
	VarLenString   VarLenKind = 1
)

// Datatype represents a datatype message (type 0x0003).
type Datatype struct {
	Class     DatatypeClass
	Version   uint8
	ClassBits uint32
	Size      uint32

	// Fixed-point, floating-point, bitfield
	ByteOrder    ByteOrder
	Signed       bool
	BitOffset    uint16
	BitPrecision uint16

	// String, and variable-length strings
	StringPadding StringPadding
	CharSet       CharacterSet

	// Compound
	Members []CompoundMember

	// Array
	ArrayDims []uint32

	// Base type of arrays, enums and variable-length types
	BaseType *Datatype

	// Enum
	EnumNames  []string
	EnumValues [][]byte

	// Variable-length
	VarLenKind VarLenKind

	// Opaque
	Tag string
}

// CompoundMember represents a member of a compound datatype.
type CompoundMember struct {
	Name       string
	ByteOffset uint32
	Type       *Datatype
}

func (m *Datatype) Type() Type { return TypeDatatype }

// IsVarLenString reports whether this is a variable-length string.
func (m *Datatype) IsVarLenString() bool {
	return m.Class == ClassVarLen && m.VarLenKind == VarLenString
}

// NumElements returns the product of the array dimensions.
func (m *Datatype) NumElements() uint64 {
	n := uint64(1)
	for _, d := range m.ArrayDims {
		n *= uint64(d)
	}
	return n
}

// ArraySize returns the byte size of an array of base-sized elements with
// the given dimensions. It reports false when the size does not fit the
// 32-bit size field.
func ArraySize(base uint32, dims []uint32) (uint32, bool) {
	n := uint64(base)
	for _, d := range dims {
		hi, lo := bits.Mul64(n, uint64(d))
		if hi != 0 || lo > math.MaxUint32 {
			return 0, false
		}
		n = lo
	}
	return uint32(n), true
}

// ParseDatatype decodes a datatype from the start of data, as it appears
// inside a datatype or attribute message.
func ParseDatatype(data []byte, r *binpkg.Reader) (*Datatype, error) {
	return parseDatatype(sub(data, r))
}

// parseDatatype reads one datatype, nested types included, and leaves r
// positioned after it.
func parseDatatype(r *binpkg.Reader) (*Datatype, error) {
	head, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	b0, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	b12, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	size, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}

	dt := &Datatype{
		Class:     DatatypeClass(head & 0x0F),
		Version:   head >> 4,
		ClassBits: uint32(b0) | uint32(b12)<<8,
		Size:      size,
	}
	if dt.Version < 1 || dt.Version > 4 {
		return nil, fmt.Errorf("%w: datatype version %d", ErrUnsupported, dt.Version)
	}

	switch dt.Class {
	case ClassFixedPoint, ClassBitfield:
		dt.ByteOrder = ByteOrder(dt.ClassBits & 0x01)
		dt.Signed = dt.ClassBits&0x08 != 0
		if dt.BitOffset, err = r.ReadUint16(); err != nil {
			return nil, err
		}
		if dt.BitPrecision, err = r.ReadUint16(); err != nil {
			return nil, err
		}

	case ClassFloatPoint:
		// Bit 6 together with bit 0 selects VAX order, which is not supported.
		if dt.ClassBits&0x40 != 0 {
			return nil, fmt.Errorf("%w: VAX floating-point byte order", ErrUnsupported)
		}
		dt.ByteOrder = ByteOrder(dt.ClassBits & 0x01)
		dt.Signed = true
		if dt.BitOffset, err = r.ReadUint16(); err != nil {
			return nil, err
		}
		if dt.BitPrecision, err = r.ReadUint16(); err != nil {
			return nil, err
		}
		r.Skip(8) // exponent and mantissa layout, exponent bias

	case ClassTime:
		dt.ByteOrder = ByteOrder(dt.ClassBits & 0x01)
		if dt.BitPrecision, err = r.ReadUint16(); err != nil {
			return nil, err
		}

	case ClassString:
		dt.StringPadding = StringPadding(dt.ClassBits & 0x0F)
		dt.CharSet = CharacterSet((dt.ClassBits >> 4) & 0x0F)

	case ClassOpaque:
		tag, err := r.ReadBytes(int(dt.ClassBits & 0xFF))
		if err != nil {
			return nil, err
		}
		for len(tag) > 0 && tag[len(tag)-1] == 0 {
			tag = tag[:len(tag)-1]
		}
		dt.Tag = string(tag)

	case ClassCompound:
		if err := parseCompound(r, dt); err != nil {
			return nil, err
		}

	case ClassReference:

	case ClassEnum:
		if err := parseEnum(r, dt); err != nil {
			return nil, err
		}

	case ClassVarLen:
		dt.VarLenKind = VarLenKind(dt.ClassBits & 0x0F)
		dt.StringPadding = StringPadding((dt.ClassBits >> 4) & 0x0F)
		dt.CharSet = CharacterSet((dt.ClassBits >> 8) & 0x0F)
		if dt.BaseType, err = parseDatatype(r); err != nil {
			return nil, fmt.Errorf("variable-length base type: %w", err)
		}

	case ClassArray:
		if err := parseArray(r, dt); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: datatype class %d", ErrUnsupported, dt.Class)
	}

	return dt, nil
}

func parseCompound(r *binpkg.Reader, dt *Datatype) error {
	n := int(dt.ClassBits & 0xFFFF)
	dt.Members = make([]CompoundMember, 0, n)

	for i := 0; i < n; i++ {
		var (
			m   CompoundMember
			err error
		)
		if dt.Version >= 3 {
			m.Name, err = readCString(r)
		} else {
			m.Name, err = readPaddedName(r)
		}
		if err != nil {
			return fmt.Errorf("compound member %d name: %w", i, err)
		}

		var dims []uint32
		switch dt.Version {
		case 1:
			off, err := r.ReadUint32()
			if err != nil {
				return err
			}
			m.ByteOffset = off
			rank, err := r.ReadUint8()
			if err != nil {
				return err
			}
			r.Skip(3 + 4 + 4) // reserved, permutation, reserved
			for d := 0; d < 4; d++ {
				v, err := r.ReadUint32()
				if err != nil {
					return err
				}
				if d < int(rank) {
					dims = append(dims, v)
				}
			}
		case 2:
			if m.ByteOffset, err = r.ReadUint32(); err != nil {
				return err
			}
		default:
			off, err := r.ReadUintN(offsetWidth(dt.Size))
			if err != nil {
				return err
			}
			m.ByteOffset = uint32(off)
		}

		if m.Type, err = parseDatatype(r); err != nil {
			return fmt.Errorf("compound member %q: %w", m.Name, err)
		}
		if len(dims) > 0 {
			// Old-style array member.
			size, ok := ArraySize(m.Type.Size, dims)
			if !ok || m.Type.Size == 0 {
				return fmt.Errorf("%w: compound member %q array %v of %d-byte elements", ErrInvalid, m.Name, dims, m.Type.Size)
			}
			m.Type = &Datatype{Class: ClassArray, Version: 2, Size: size, ArrayDims: dims, BaseType: m.Type}
		}
		dt.Members = append(dt.Members, m)
	}
	return nil
}

// offsetWidth is the number of bytes a version 3 compound uses for member
// offsets: the fewest that can hold the compound size.
func offsetWidth(size uint32) int {
	if size == 0 {
		return 1
	}
	return (bits.Len32(size)-1)/8 + 1
}

func parseEnum(r *binpkg.Reader, dt *Datatype) error {
	n := int(dt.ClassBits & 0xFFFF)
	base, err := parseDatatype(r)
	if err != nil {
		return fmt.Errorf("enum base type: %w", err)
	}
	dt.BaseType = base
	dt.Signed = base.Signed
	dt.ByteOrder = base.ByteOrder

	dt.EnumNames = make([]string, n)
	for i := range dt.EnumNames {
		if dt.Version >= 3 {
			dt.EnumNames[i], err = readCString(r)
		} else {
			dt.EnumNames[i], err = readPaddedName(r)
		}
		if err != nil {
			return fmt.Errorf("enum member %d name: %w", i, err)
		}
	}

	dt.EnumValues = make([][]byte, n)
	for i := range dt.EnumValues {
		if dt.EnumValues[i], err = r.ReadBytes(int(base.Size)); err != nil {
			return fmt.Errorf("enum member %d value: %w", i, err)
		}
	}
	return nil
}

func parseArray(r *binpkg.Reader, dt *Datatype) error {
	rank, err := r.ReadUint8()
	if err != nil {
		return err
	}
	if dt.Version < 3 {
		r.Skip(3)
	}
	dt.ArrayDims = make([]uint32, rank)
	for i := range dt.ArrayDims {
		if dt.ArrayDims[i], err = r.ReadUint32(); err != nil {
			return err
		}
	}
	if dt.Version < 3 {
		r.Skip(4 * int64(rank)) // permutation indices
	}
	if dt.BaseType, err = parseDatatype(r); err != nil {
		return fmt.Errorf("array base type: %w", err)
	}
	if dt.BaseType.Size == 0 {
		return fmt.Errorf("%w: array of zero-size elements", ErrInvalid)
	}
	if size, ok := ArraySize(dt.BaseType.Size, dt.ArrayDims); !ok || size != dt.Size {
		return fmt.Errorf("%w: array %v of %d-byte elements declared as %d bytes", ErrInvalid, dt.ArrayDims, dt.BaseType.Size, dt.Size)
	}
	return nil
}
