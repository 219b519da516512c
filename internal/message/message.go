// Package message handles parsing of HDF5 header messages.
//
// Header messages are embedded in object headers and describe the
// dataspace, datatype, storage layout, filters and links of an object.
package message

import (
	"errors"
	"fmt"

	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

// Type represents an HDF5 header message type.
type Type uint16

const (
	TypeNIL                      Type = 0x0000
	TypeDataspace                Type = 0x0001
	TypeLinkInfo                 Type = 0x0002
	TypeDatatype                 Type = 0x0003
	TypeFillValueOld             Type = 0x0004
	TypeFillValue                Type = 0x0005
	TypeLink                     Type = 0x0006
	TypeExternalDataFiles        Type = 0x0007
	TypeDataLayout               Type = 0x0008
	TypeBogus                    Type = 0x0009
	TypeGroupInfo                Type = 0x000A
	TypeFilterPipeline           Type = 0x000B
	TypeAttribute                Type = 0x000C
	TypeObjectComment            Type = 0x000D
	TypeObjectModTime            Type = 0x000E
	TypeSharedMessageTable       Type = 0x000F
	TypeObjectHeaderContinuation Type = 0x0010
	TypeSymbolTable              Type = 0x0011
	TypeObjectModTimeOld         Type = 0x0012
	TypeBTreeKValues             Type = 0x0013
	TypeDriverInfo               Type = 0x0014
	TypeAttributeInfo            Type = 0x0015
	TypeObjectRefCount           Type = 0x0016
)

// Message flag bits.
const (
	FlagConstant uint8 = 0x01
	FlagShared   uint8 = 0x02
)

var (
	// ErrUnsupported marks encodings this reader does not implement.
	ErrUnsupported = errors.New("unsupported message encoding")

	// ErrInvalid marks messages whose fields are inconsistent.
	ErrInvalid = errors.New("invalid message")
)

// Message is the interface implemented by all header messages.
type Message interface {
	Type() Type
}

// Parse parses a header message from its raw body. The reader r supplies
// the file's offset and length sizes; its position is not used.
func Parse(typ Type, data []byte, flags uint8, r *binpkg.Reader) (Message, error) {
	mr := sub(data, r)

	if flags&FlagShared != 0 {
		return parseShared(typ, mr)
	}

	var (
		msg Message
		err error
	)
	switch typ {
	case TypeDataspace:
		msg, err = parseDataspace(mr)
	case TypeLinkInfo:
		msg, err = parseLinkInfo(mr)
	case TypeDatatype:
		msg, err = parseDatatype(mr)
	case TypeFillValueOld:
		msg, err = parseFillValueOld(mr)
	case TypeFillValue:
		msg, err = parseFillValue(mr)
	case TypeDataLayout:
		msg, err = parseDataLayout(mr)
	case TypeFilterPipeline:
		msg, err = parseFilterPipeline(mr)
	case TypeLink:
		msg, err = parseLink(mr)
	case TypeSymbolTable:
		msg, err = parseSymbolTable(mr)
	case TypeObjectHeaderContinuation:
		msg, err = parseContinuation(mr)
	default:
		return &Unknown{typ: typ, data: data}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("message 0x%04x: %w", uint16(typ), err)
	}
	return msg, nil
}

// sub returns a reader over a message body that inherits the file's sizes.
func sub(data []byte, r *binpkg.Reader) *binpkg.Reader {
	return binpkg.NewReader(data, binpkg.Config{
		ByteOrder:  r.ByteOrder(),
		OffsetSize: r.OffsetSize(),
		LengthSize: r.LengthSize(),
	})
}

// Unknown represents a message type this package does not interpret.
type Unknown struct {
	typ  Type
	data []byte
}

func (m *Unknown) Type() Type   { return m.typ }
func (m *Unknown) Data() []byte { return m.data }

// Continuation points at a further block of header messages.
type Continuation struct {
	Offset uint64
	Length uint64
}

func (m *Continuation) Type() Type { return TypeObjectHeaderContinuation }

func parseContinuation(r *binpkg.Reader) (*Continuation, error) {
	offset, err := r.ReadOffset()
	if err != nil {
		return nil, err
	}
	length, err := r.ReadLength()
	if err != nil {
		return nil, err
	}
	return &Continuation{Offset: offset, Length: length}, nil
}

// Shared stands in for a message stored elsewhere, typically a committed
// datatype whose header holds the real message.
type Shared struct {
	MessageType Type
	Version     uint8
	// Address is the object header holding the message. Messages kept in
	// the shared message heap are not supported.
	Address uint64
}

func (m *Shared) Type() Type { return m.MessageType }

func parseShared(typ Type, r *binpkg.Reader) (*Shared, error) {
	version, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	kind, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	s := &Shared{MessageType: typ, Version: version}
	switch version {
	case 1:
		r.Skip(6)
	case 2:
	case 3:
		if kind != 2 {
			return nil, fmt.Errorf("%w: shared message in heap (type %d)", ErrUnsupported, kind)
		}
	default:
		return nil, fmt.Errorf("%w: shared message version %d", ErrUnsupported, version)
	}

	if s.Address, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	return s, nil
}

func readCString(r *binpkg.Reader) (string, error) {
	var name []byte
	for {
		b, err := r.ReadUint8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(name), nil
		}
		name = append(name, b)
	}
}

// readPaddedName reads a NUL-terminated name whose storage, terminator
// included, is padded to a multiple of eight bytes.
func readPaddedName(r *binpkg.Reader) (string, error) {
	start := r.Pos()
	name, err := readCString(r)
	if err != nil {
		return "", err
	}
	r.Skip(padTo8(r.Pos()-start) - (r.Pos() - start))
	return name, nil
}

func padTo8(n int64) int64 {
	return (n + 7) &^ 7
}
