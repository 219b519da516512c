package message

import (
	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

// UndefinedAddress encodes as the all-ones address at any offset size.
const UndefinedAddress = ^uint64(0)

// Encoder is implemented by messages that can be written back out.
type Encoder interface {
	Message
	Encode(w *binpkg.Writer)
}

// Marshal encodes m into a fresh message body using the sizes in cfg.
func Marshal(m Encoder, cfg binpkg.Config) []byte {
	w := binpkg.NewWriter(cfg)
	m.Encode(w)
	return w.Bytes()
}

// NewInt returns a fixed-point datatype of size bytes.
func NewInt(size uint32, signed bool, order ByteOrder) *Datatype {
	return &Datatype{
		Class:        ClassFixedPoint,
		Version:      1,
		Size:         size,
		Signed:       signed,
		ByteOrder:    order,
		BitPrecision: uint16(size * 8),
	}
}

// NewFloat returns an IEEE floating-point datatype of 4 or 8 bytes.
func NewFloat(size uint32, order ByteOrder) *Datatype {
	return &Datatype{
		Class:        ClassFloatPoint,
		Version:      1,
		Size:         size,
		Signed:       true,
		ByteOrder:    order,
		BitPrecision: uint16(size * 8),
	}
}

// NewString returns a fixed-length string datatype.
func NewString(size uint32, pad StringPadding, cs CharacterSet) *Datatype {
	return &Datatype{
		Class:         ClassString,
		Version:       1,
		Size:          size,
		StringPadding: pad,
		CharSet:       cs,
	}
}

// NewVarLenString returns a variable-length string datatype whose stored
// elements use offsetSize-byte addresses.
func NewVarLenString(cs CharacterSet, offsetSize int) *Datatype {
	return &Datatype{
		Class:      ClassVarLen,
		Version:    1,
		Size:       uint32(8 + offsetSize),
		VarLenKind: VarLenString,
		CharSet:    cs,
		BaseType:   NewInt(1, false, OrderLE),
	}
}

// NewVarLen returns a variable-length sequence of base.
func NewVarLen(base *Datatype, offsetSize int) *Datatype {
	return &Datatype{
		Class:      ClassVarLen,
		Version:    1,
		Size:       uint32(8 + offsetSize),
		VarLenKind: VarLenSequence,
		BaseType:   base,
	}
}

// NewArray returns a fixed array of base with the given dimensions.
func NewArray(base *Datatype, dims ...uint32) *Datatype {
	size, _ := ArraySize(base.Size, dims)
	return &Datatype{Class: ClassArray, Version: 3, Size: size, ArrayDims: dims, BaseType: base}
}

// NewEnum returns an enumeration over base. Values are encoded in the
// base type's byte order.
func NewEnum(base *Datatype, names []string, values [][]byte) *Datatype {
	return &Datatype{
		Class:      ClassEnum,
		Version:    3,
		Size:       base.Size,
		Signed:     base.Signed,
		ByteOrder:  base.ByteOrder,
		BaseType:   base,
		EnumNames:  names,
		EnumValues: values,
	}
}

// NewCompound returns a compound datatype of size bytes.
func NewCompound(size uint32, members ...CompoundMember) *Datatype {
	return &Datatype{Class: ClassCompound, Version: 3, Size: size, Members: members}
}

// Encode writes the datatype. Compound, enum and array types are written
// as version 3, everything else as version 1.
func (m *Datatype) Encode(w *binpkg.Writer) {
	version := uint8(1)
	switch m.Class {
	case ClassCompound, ClassEnum, ClassArray:
		version = 3
	}

	var bits uint32
	switch m.Class {
	case ClassFixedPoint, ClassBitfield:
		bits = uint32(m.ByteOrder) & 0x01
		if m.Signed {
			bits |= 0x08
		}
	case ClassFloatPoint:
		// implied mantissa normalization, sign at the top bit
		bits = uint32(m.ByteOrder)&0x01 | 0x20 | (m.Size*8-1)<<8
	case ClassString:
		bits = uint32(m.StringPadding)&0x0F | (uint32(m.CharSet)&0x0F)<<4
	case ClassCompound:
		bits = uint32(len(m.Members))
	case ClassEnum:
		bits = uint32(len(m.EnumNames))
	case ClassVarLen:
		bits = uint32(m.VarLenKind)&0x0F | (uint32(m.StringPadding)&0x0F)<<4 | (uint32(m.CharSet)&0x0F)<<8
	case ClassOpaque:
		bits = uint32(padTo8(int64(len(m.Tag))))
	}

	w.Uint8(version<<4 | uint8(m.Class))
	w.Uint8(uint8(bits))
	w.Uint16(uint16(bits >> 8))
	w.Uint32(m.Size)

	switch m.Class {
	case ClassFixedPoint, ClassBitfield:
		w.Uint16(m.BitOffset)
		w.Uint16(m.precision())

	case ClassFloatPoint:
		w.Uint16(m.BitOffset)
		w.Uint16(m.precision())
		if m.Size == 4 {
			w.Write([]byte{23, 8, 0, 23})
			w.Uint32(127)
		} else {
			w.Write([]byte{52, 11, 0, 52})
			w.Uint32(1023)
		}

	case ClassTime:
		w.Uint16(m.precision())

	case ClassOpaque:
		tag := make([]byte, padTo8(int64(len(m.Tag))))
		copy(tag, m.Tag)
		w.Write(tag)

	case ClassCompound:
		width := offsetWidth(m.Size)
		for _, mem := range m.Members {
			writeCString(w, mem.Name)
			w.UintN(uint64(mem.ByteOffset), width)
			mem.Type.Encode(w)
		}

	case ClassEnum:
		m.BaseType.Encode(w)
		for _, name := range m.EnumNames {
			writeCString(w, name)
		}
		for _, v := range m.EnumValues {
			w.Write(v)
		}

	case ClassVarLen:
		base := m.BaseType
		if base == nil {
			base = NewInt(1, false, OrderLE)
		}
		base.Encode(w)

	case ClassArray:
		w.Uint8(uint8(len(m.ArrayDims)))
		for _, d := range m.ArrayDims {
			w.Uint32(d)
		}
		m.BaseType.Encode(w)
	}
}

func (m *Datatype) precision() uint16 {
	if m.BitPrecision != 0 {
		return m.BitPrecision
	}
	return uint16(m.Size * 8)
}

func writeCString(w *binpkg.Writer, s string) {
	w.Write([]byte(s))
	w.Uint8(0)
}

// NewSimpleDataspace returns a simple dataspace with fixed dimensions.
func NewSimpleDataspace(dims ...uint64) *Dataspace {
	return &Dataspace{Version: 2, Rank: len(dims), SpaceType: DataspaceSimple, Dimensions: dims}
}

// Encode writes the dataspace as version 2.
func (m *Dataspace) Encode(w *binpkg.Writer) {
	var flags uint8
	if len(m.MaxDims) > 0 {
		flags |= 0x01
	}
	rank := len(m.Dimensions)
	if m.SpaceType != DataspaceSimple {
		rank = 0
	}
	w.Write([]byte{2, uint8(rank), flags, uint8(m.SpaceType)})
	if m.SpaceType != DataspaceSimple {
		return
	}
	for _, d := range m.Dimensions {
		w.Length(d)
	}
	for _, d := range m.MaxDims {
		w.Length(d)
	}
}

// Encode writes the layout. Chunked layouts indexed by a version 1
// B-tree are written as version 3, other chunk indexes as version 4.
func (m *DataLayout) Encode(w *binpkg.Writer) {
	version := uint8(3)
	if m.Class == LayoutChunked && m.ChunkIndexType != ChunkIndexBTreeV1 {
		version = 4
	}
	w.Uint8(version)
	w.Uint8(uint8(m.Class))

	switch m.Class {
	case LayoutCompact:
		w.Uint16(uint16(len(m.CompactData)))
		w.Write(m.CompactData)

	case LayoutContiguous:
		w.Offset(m.Address)
		w.Length(m.Size)

	case LayoutChunked:
		ndims := len(m.ChunkDims) + 1
		if version == 3 {
			w.Uint8(uint8(ndims))
			w.Offset(m.ChunkIndexAddr)
			for _, d := range m.ChunkDims {
				w.Uint32(d)
			}
			w.Uint32(m.ElementSize)
			return
		}

		w.Uint8(m.ChunkFlags)
		w.Uint8(uint8(ndims))
		w.Uint8(4)
		for _, d := range m.ChunkDims {
			w.Uint32(d)
		}
		w.Uint32(m.ElementSize)
		w.Uint8(uint8(m.ChunkIndexType))
		switch m.ChunkIndexType {
		case ChunkIndexSingleChunk:
			if m.ChunkFlags&ChunkFlagSingleIndexWithFilter != 0 {
				w.Length(m.FilteredChunkSize)
				w.Uint32(m.FilterMask)
			}
		case ChunkIndexFixedArray:
			w.Uint8(m.PageBits)
		case ChunkIndexExtensibleArray:
			w.Zeros(5)
		case ChunkIndexBTreeV2:
			w.Zeros(6)
		}
		w.Offset(m.ChunkIndexAddr)
	}
}

// Encode writes the pipeline as version 2. Names are written only for
// filters outside the library range.
func (m *FilterPipeline) Encode(w *binpkg.Writer) {
	w.Uint8(2)
	w.Uint8(uint8(len(m.Filters)))
	for _, f := range m.Filters {
		w.Uint16(f.ID)
		name := []byte(f.Name)
		if f.ID >= 256 {
			if len(name) > 0 {
				name = append(name, 0)
			}
			w.Uint16(uint16(len(name)))
		}
		w.Uint16(f.Flags)
		w.Uint16(uint16(len(f.ClientData)))
		if f.ID >= 256 {
			w.Write(name)
		}
		for _, cd := range f.ClientData {
			w.Uint32(cd)
		}
	}
}

// Encode writes the fill value as version 3.
func (m *FillValue) Encode(w *binpkg.Writer) {
	flags := m.SpaceAllocTime&0x03 | (m.FillWriteTime&0x03)<<2
	if m.Value != nil {
		flags |= 0x20
	}
	w.Uint8(3)
	w.Uint8(flags)
	if m.Value != nil {
		w.Uint32(uint32(len(m.Value)))
		w.Write(m.Value)
	}
}

// Encode writes the link as version 1.
func (m *Link) Encode(w *binpkg.Writer) {
	var flags uint8
	width := 1
	if len(m.Name) > 0xFF {
		flags, width = 0x01, 2
	}
	if m.LinkType != LinkTypeHard {
		flags |= 0x08
	}
	w.Uint8(1)
	w.Uint8(flags)
	if m.LinkType != LinkTypeHard {
		w.Uint8(uint8(m.LinkType))
	}
	w.UintN(uint64(len(m.Name)), width)
	w.Write([]byte(m.Name))

	switch m.LinkType {
	case LinkTypeHard:
		w.Offset(m.ObjectAddress)
	case LinkTypeSoft:
		w.Uint16(uint16(len(m.SoftLinkValue)))
		w.Write([]byte(m.SoftLinkValue))
	case LinkTypeExternal:
		value := []byte{0}
		value = append(value, m.ExternalFile...)
		value = append(value, 0)
		value = append(value, m.ExternalPath...)
		value = append(value, 0)
		w.Uint16(uint16(len(value)))
		w.Write(value)
	}
}

// NewLinkInfo returns the link info of a group that stores its links as
// link messages in its header.
func NewLinkInfo() *LinkInfo {
	return &LinkInfo{FractalHeapAddress: UndefinedAddress, NameIndexAddress: UndefinedAddress}
}

// Encode writes the link info as version 0 without creation order.
func (m *LinkInfo) Encode(w *binpkg.Writer) {
	w.Uint8(0)
	w.Uint8(0)
	w.Offset(m.FractalHeapAddress)
	w.Offset(m.NameIndexAddress)
}

// GroupInfo is the group info message (type 0x000A). Reading keeps it
// as an Unknown message; it only matters for spotting empty groups.
type GroupInfo struct{}

func (m *GroupInfo) Type() Type { return TypeGroupInfo }

// Encode writes an empty version 0 group info message.
func (m *GroupInfo) Encode(w *binpkg.Writer) {
	w.Uint8(0)
	w.Uint8(0)
}

// Encode writes the symbol table message.
func (m *SymbolTable) Encode(w *binpkg.Writer) {
	w.Offset(m.BTreeAddress)
	w.Offset(m.LocalHeapAddress)
}

// Encode writes the shared message as version 2, pointing at the object
// header that holds the real message. Written headers must set
// FlagShared on it.
func (m *Shared) Encode(w *binpkg.Writer) {
	w.Uint8(2)
	w.Uint8(0)
	w.Offset(m.Address)
}
