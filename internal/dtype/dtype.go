package dtype

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/robert-malhotra/h5value/internal/message"
	"github.com/robert-malhotra/h5value/types"
)

// ErrUnsupported is returned for datatypes with no descriptor.
var ErrUnsupported = errors.New("unsupported datatype")

// Descriptor returns the descriptor of the native form of dt.
func Descriptor(dt *message.Datatype) (types.Descriptor, error) {
	if dt == nil {
		return types.Descriptor{}, fmt.Errorf("nil datatype")
	}

	switch dt.Class {
	case message.ClassFixedPoint:
		if dt.BitOffset != 0 {
			return types.Descriptor{}, fmt.Errorf("%w: fixed-point with bit offset %d", ErrUnsupported, dt.BitOffset)
		}
		if !validWidth(dt.Size) {
			return types.Descriptor{}, fmt.Errorf("%w: fixed-point size %d", ErrUnsupported, dt.Size)
		}
		if dt.Signed {
			return types.Int(int(dt.Size)), nil
		}
		return types.Uint(int(dt.Size)), nil

	case message.ClassFloatPoint:
		if dt.Size != 4 && dt.Size != 8 {
			return types.Descriptor{}, fmt.Errorf("%w: float size %d", ErrUnsupported, dt.Size)
		}
		return types.Float(int(dt.Size)), nil

	case message.ClassEnum:
		if dt.BaseType == nil || !validWidth(dt.BaseType.Size) {
			return types.Descriptor{}, fmt.Errorf("%w: enum base type", ErrUnsupported)
		}
		if isBool(dt) {
			return types.Bool(), nil
		}
		return types.Enum(int(dt.BaseType.Size), dt.BaseType.Signed), nil

	case message.ClassString:
		return types.FixedString(int(dt.Size), encoding(dt.CharSet)), nil

	case message.ClassVarLen:
		if dt.IsVarLenString() {
			return types.VarLenString(encoding(dt.CharSet)), nil
		}
		elem, err := Descriptor(dt.BaseType)
		if err != nil {
			return types.Descriptor{}, fmt.Errorf("sequence element: %w", err)
		}
		return types.VarLenArray(elem), nil

	case message.ClassArray:
		elem, err := Descriptor(dt.BaseType)
		if err != nil {
			return types.Descriptor{}, fmt.Errorf("array element: %w", err)
		}
		size, ok := message.ArraySize(dt.BaseType.Size, dt.ArrayDims)
		if !ok || size != dt.Size || dt.BaseType.Size == 0 {
			return types.Descriptor{}, fmt.Errorf("array %v of %d-byte elements declared as %d bytes", dt.ArrayDims, dt.BaseType.Size, dt.Size)
		}
		return types.FixedArray(elem, int(dt.NumElements())), nil

	case message.ClassCompound:
		return compound(dt)

	default:
		return types.Descriptor{}, fmt.Errorf("%w: %s", ErrUnsupported, dt.Class)
	}
}

// compound keeps the stored offsets when every member keeps its size, and
// packs members in declaration order otherwise.
func compound(dt *message.Datatype) (types.Descriptor, error) {
	fields := make([]types.Field, len(dt.Members))
	relaid := false
	for i, m := range dt.Members {
		d, err := Descriptor(m.Type)
		if err != nil {
			return types.Descriptor{}, fmt.Errorf("compound member %q: %w", m.Name, err)
		}
		fields[i] = types.Field{Name: m.Name, Offset: int(m.ByteOffset), Type: d}
		if d.ByteSize() != int(m.Type.Size) {
			relaid = true
		}
	}
	if !relaid {
		return types.Compound(int(dt.Size), fields...), nil
	}

	off := 0
	for i := range fields {
		fields[i].Offset = off
		off += fields[i].Type.ByteSize()
	}
	return types.Compound(off, fields...), nil
}

// isBool reports whether dt is the FALSE=0, TRUE=1 enum that h5py and
// PyTables write for booleans.
func isBool(dt *message.Datatype) bool {
	if dt.BaseType.Size != 1 || len(dt.EnumNames) != 2 {
		return false
	}
	seen := 0
	for i, name := range dt.EnumNames {
		v := dt.EnumValues[i]
		switch {
		case name == "FALSE" && len(v) == 1 && v[0] == 0:
			seen |= 1
		case name == "TRUE" && len(v) == 1 && v[0] == 1:
			seen |= 2
		}
	}
	return seen == 3
}

func validWidth(n uint32) bool {
	return n == 1 || n == 2 || n == 4 || n == 8
}

func encoding(cs message.CharacterSet) types.Encoding {
	if cs == message.CharsetUTF8 {
		return types.Unicode
	}
	return types.ASCII
}

// ByteOrder returns the binary.ByteOrder of a numeric datatype.
func ByteOrder(dt *message.Datatype) binary.ByteOrder {
	if dt.ByteOrder == message.OrderBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// hostLittle reports whether the host is little-endian.
var hostLittle = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// swapped reports whether dt's stored order differs from the host's.
func swapped(dt *message.Datatype) bool {
	return (dt.ByteOrder == message.OrderBE) == hostLittle
}
