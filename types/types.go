// Package types describes the binary layout of container values.
//
// A [Descriptor] is a closed union over ten kinds. Scalars are read from
// fixed-width windows; variable-length kinds occupy an indirection record
// of [IndirectionSize] bytes whose payload lives elsewhere; compounds
// place named fields at byte offsets inside a window of declared size.
package types

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Kind identifies the variant of a Descriptor.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInteger
	KindUnsigned
	KindFloat
	KindBoolean
	KindEnum
	KindFixedString
	KindVarLenString
	KindFixedArray
	KindVarLenArray
	KindCompound
)

var kindNames = [...]string{
	KindInvalid:      "invalid",
	KindInteger:      "integer",
	KindUnsigned:     "unsigned",
	KindFloat:        "float",
	KindBoolean:      "boolean",
	KindEnum:         "enum",
	KindFixedString:  "fixed-string",
	KindVarLenString: "varlen-string",
	KindFixedArray:   "fixed-array",
	KindVarLenArray:  "varlen-array",
	KindCompound:     "compound",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Encoding is the character set of a string.
type Encoding uint8

const (
	ASCII Encoding = iota
	Unicode
)

func (e Encoding) String() string {
	if e == Unicode {
		return "utf8"
	}
	return "ascii"
}

// IndirectionSize is the size of the native record a variable-length value
// occupies in its parent's window: a uint64 element count followed by a
// uint64 handle.
const IndirectionSize = 16

// Descriptor describes the layout of one value. The zero Descriptor is
// invalid. Descriptors are immutable; constructors copy their inputs.
type Descriptor struct {
	kind     Kind
	width    int
	signed   bool
	encoding Encoding
	elem     *Descriptor
	count    int
	size     int
	fields   []Field
}

// Field is one member of a compound.
type Field struct {
	Name   string
	Offset int
	Type   Descriptor
}

// Int describes a signed integer of width bytes.
func Int(width int) Descriptor {
	return Descriptor{kind: KindInteger, width: width, signed: true}
}

// Uint describes an unsigned integer of width bytes.
func Uint(width int) Descriptor {
	return Descriptor{kind: KindUnsigned, width: width}
}

// Float describes an IEEE 754 number of width bytes.
func Float(width int) Descriptor {
	return Descriptor{kind: KindFloat, width: width}
}

// Bool describes a one-byte boolean.
func Bool() Descriptor {
	return Descriptor{kind: KindBoolean, width: 1}
}

// Enum describes an enumeration backed by an integer of width bytes.
func Enum(width int, signed bool) Descriptor {
	return Descriptor{kind: KindEnum, width: width, signed: signed}
}

// FixedString describes a string stored in exactly length bytes.
func FixedString(length int, enc Encoding) Descriptor {
	return Descriptor{kind: KindFixedString, size: length, encoding: enc}
}

// VarLenString describes a string held behind an indirection record.
func VarLenString(enc Encoding) Descriptor {
	return Descriptor{kind: KindVarLenString, encoding: enc}
}

// FixedArray describes count consecutive elements.
func FixedArray(elem Descriptor, count int) Descriptor {
	return Descriptor{kind: KindFixedArray, elem: &elem, count: count}
}

// VarLenArray describes a run of elements held behind an indirection
// record.
func VarLenArray(elem Descriptor) Descriptor {
	return Descriptor{kind: KindVarLenArray, elem: &elem}
}

// Compound describes a record of size bytes with fields at fixed offsets.
func Compound(size int, fields ...Field) Descriptor {
	return Descriptor{kind: KindCompound, size: size, fields: slices.Clone(fields)}
}

// Kind returns the variant.
func (d Descriptor) Kind() Kind { return d.kind }

// Width returns the byte width of an integer, float, boolean or enum.
func (d Descriptor) Width() int { return d.width }

// Signed reports whether an integer or enum is signed.
func (d Descriptor) Signed() bool { return d.signed }

// Encoding returns the character set of a string kind.
func (d Descriptor) Encoding() Encoding { return d.encoding }

// Len returns the length of a fixed string or the count of a fixed array.
func (d Descriptor) Len() int {
	if d.kind == KindFixedArray {
		return d.count
	}
	return d.size
}

// Elem returns the element descriptor of an array kind.
func (d Descriptor) Elem() Descriptor {
	if d.elem == nil {
		return Descriptor{}
	}
	return *d.elem
}

// Fields returns the fields of a compound in declaration order.
func (d Descriptor) Fields() []Field { return slices.Clone(d.fields) }

// NumFields returns the number of compound fields.
func (d Descriptor) NumFields() int { return len(d.fields) }

// Field returns compound field i.
func (d Descriptor) Field(i int) Field { return d.fields[i] }

// IsVarLen reports whether the value lives behind an indirection record.
func (d Descriptor) IsVarLen() bool {
	return d.kind == KindVarLenString || d.kind == KindVarLenArray
}

// ByteSize returns the number of bytes the value occupies in its window.
func (d Descriptor) ByteSize() int {
	switch d.kind {
	case KindInteger, KindUnsigned, KindFloat, KindBoolean, KindEnum:
		return d.width
	case KindFixedString, KindCompound:
		return d.size
	case KindFixedArray:
		return d.count * d.Elem().ByteSize()
	case KindVarLenString, KindVarLenArray:
		return IndirectionSize
	default:
		return 0
	}
}

var (
	// ErrInvalid is wrapped by every Validate failure.
	ErrInvalid = errors.New("invalid type descriptor")
)

// Validate checks widths, counts and field placement, recursively.
// Duplicate field names are accepted here; decoding decides what to do
// with them.
func (d Descriptor) Validate() error {
	switch d.kind {
	case KindInteger, KindUnsigned, KindEnum:
		if !slices.Contains([]int{1, 2, 4, 8}, d.width) {
			return fmt.Errorf("%w: %s width %d", ErrInvalid, d.kind, d.width)
		}
	case KindFloat:
		if d.width != 4 && d.width != 8 {
			return fmt.Errorf("%w: float width %d", ErrInvalid, d.width)
		}
	case KindBoolean:
		if d.width != 1 {
			return fmt.Errorf("%w: boolean width %d", ErrInvalid, d.width)
		}
	case KindFixedString:
		if d.size < 0 {
			return fmt.Errorf("%w: string length %d", ErrInvalid, d.size)
		}
	case KindVarLenString:
	case KindFixedArray:
		if d.count < 0 {
			return fmt.Errorf("%w: array count %d", ErrInvalid, d.count)
		}
		if err := d.Elem().Validate(); err != nil {
			return fmt.Errorf("array element: %w", err)
		}
		if d.count > 0 {
			es := d.Elem().ByteSize()
			if es == 0 {
				return fmt.Errorf("%w: array of %d zero-size elements", ErrInvalid, d.count)
			}
			if d.count > math.MaxInt/es {
				return fmt.Errorf("%w: array of %d %d-byte elements overflows", ErrInvalid, d.count, es)
			}
		}
	case KindVarLenArray:
		if err := d.Elem().Validate(); err != nil {
			return fmt.Errorf("varlen element: %w", err)
		}
		if d.Elem().ByteSize() == 0 {
			return fmt.Errorf("%w: varlen element of zero size", ErrInvalid)
		}
	case KindCompound:
		if d.size < 0 {
			return fmt.Errorf("%w: compound size %d", ErrInvalid, d.size)
		}
		for _, f := range d.fields {
			if f.Name == "" {
				return fmt.Errorf("%w: compound field with empty name", ErrInvalid)
			}
			if err := f.Type.Validate(); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
			size := f.Type.ByteSize()
			if f.Offset < 0 || f.Offset > d.size || size > d.size-f.Offset {
				return fmt.Errorf("%w: field %q of %d bytes at offset %d outside compound of %d bytes", ErrInvalid, f.Name, size, f.Offset, d.size)
			}
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalid, d.kind)
	}
	return nil
}

// Equal reports whether two descriptors are structurally identical.
func (d Descriptor) Equal(o Descriptor) bool {
	if d.kind != o.kind || d.width != o.width || d.signed != o.signed ||
		d.encoding != o.encoding || d.count != o.count || d.size != o.size {
		return false
	}
	if (d.elem == nil) != (o.elem == nil) {
		return false
	}
	if d.elem != nil && !d.elem.Equal(*o.elem) {
		return false
	}
	return slices.EqualFunc(d.fields, o.fields, func(a, b Field) bool {
		return a.Name == b.Name && a.Offset == b.Offset && a.Type.Equal(b.Type)
	})
}

// String renders the descriptor compactly, e.g. "u32", "[4]u8",
// "{a@0:u32, b@4:f64}" or "vlen<str/utf8>".
func (d Descriptor) String() string {
	var b strings.Builder
	d.write(&b)
	return b.String()
}

func (d Descriptor) write(b *strings.Builder) {
	switch d.kind {
	case KindInteger:
		fmt.Fprintf(b, "i%d", d.width*8)
	case KindUnsigned:
		fmt.Fprintf(b, "u%d", d.width*8)
	case KindFloat:
		fmt.Fprintf(b, "f%d", d.width*8)
	case KindBoolean:
		b.WriteString("bool")
	case KindEnum:
		if d.signed {
			fmt.Fprintf(b, "enum<i%d>", d.width*8)
		} else {
			fmt.Fprintf(b, "enum<u%d>", d.width*8)
		}
	case KindFixedString:
		fmt.Fprintf(b, "str[%d]/%s", d.size, d.encoding)
	case KindVarLenString:
		fmt.Fprintf(b, "vlen<str/%s>", d.encoding)
	case KindFixedArray:
		fmt.Fprintf(b, "[%d]", d.count)
		d.Elem().write(b)
	case KindVarLenArray:
		b.WriteString("vlen<")
		d.Elem().write(b)
		b.WriteByte('>')
	case KindCompound:
		b.WriteByte('{')
		for i, f := range d.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s@%d:", f.Name, f.Offset)
			f.Type.write(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString("invalid")
	}
}
