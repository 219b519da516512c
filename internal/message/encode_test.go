package message

import (
	"bytes"
	"testing"

	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

func reparse(t *testing.T, m Encoder) Message {
	t.Helper()
	return mustParse(t, m.Type(), Marshal(m, binpkg.DefaultConfig()))
}

func TestEncodeDatatypes(t *testing.T) {
	point := NewCompound(24,
		CompoundMember{Name: "id", ByteOffset: 0, Type: NewInt(4, true, OrderBE)},
		CompoundMember{Name: "tags", ByteOffset: 4, Type: NewArray(NewInt(2, false, OrderLE), 2, 2)},
		CompoundMember{Name: "name", ByteOffset: 12, Type: NewVarLenString(CharsetUTF8, 8)},
	)
	dt := reparse(t, point).(*Datatype)
	if dt.Class != ClassCompound || dt.Size != 24 || len(dt.Members) != 3 {
		t.Fatalf("compound = %+v", dt)
	}
	id := dt.Members[0]
	if id.Name != "id" || id.Type.ByteOrder != OrderBE || !id.Type.Signed || id.Type.Size != 4 {
		t.Errorf("member id = %+v, type %+v", id, id.Type)
	}
	tags := dt.Members[1]
	if tags.ByteOffset != 4 || tags.Type.Class != ClassArray || tags.Type.NumElements() != 4 || tags.Type.Size != 8 {
		t.Errorf("member tags = %+v, type %+v", tags, tags.Type)
	}
	name := dt.Members[2]
	if name.ByteOffset != 12 || !name.Type.IsVarLenString() || name.Type.CharSet != CharsetUTF8 {
		t.Errorf("member name = %+v, type %+v", name, name.Type)
	}

	enum := NewEnum(NewInt(1, true, OrderLE), []string{"FALSE", "TRUE"}, [][]byte{{0}, {1}})
	dt = reparse(t, enum).(*Datatype)
	if dt.Class != ClassEnum || len(dt.EnumNames) != 2 || dt.EnumNames[1] != "TRUE" || !bytes.Equal(dt.EnumValues[1], []byte{1}) {
		t.Errorf("enum = %+v", dt)
	}

	dt = reparse(t, NewFloat(8, OrderBE)).(*Datatype)
	if dt.Class != ClassFloatPoint || dt.Size != 8 || dt.ByteOrder != OrderBE {
		t.Errorf("float = %+v", dt)
	}

	dt = reparse(t, NewString(7, PadSpacePad, CharsetASCII)).(*Datatype)
	if dt.Class != ClassString || dt.Size != 7 || dt.StringPadding != PadSpacePad {
		t.Errorf("string = %+v", dt)
	}

	dt = reparse(t, NewVarLen(NewFloat(4, OrderLE), 8)).(*Datatype)
	if dt.Class != ClassVarLen || dt.VarLenKind != VarLenSequence || dt.BaseType.Size != 4 {
		t.Errorf("sequence = %+v", dt)
	}
}

func TestEncodeLayouts(t *testing.T) {
	tests := []struct {
		name  string
		in    *DataLayout
		check func(t *testing.T, l *DataLayout)
	}{
		{
			name: "compact",
			in:   &DataLayout{Class: LayoutCompact, CompactData: []byte{1, 2, 3}},
			check: func(t *testing.T, l *DataLayout) {
				if !l.IsCompact() || !bytes.Equal(l.CompactData, []byte{1, 2, 3}) {
					t.Errorf("layout = %+v", l)
				}
			},
		},
		{
			name: "contiguous",
			in:   &DataLayout{Class: LayoutContiguous, Address: 0x400, Size: 32},
			check: func(t *testing.T, l *DataLayout) {
				if !l.IsContiguous() || l.Address != 0x400 || l.Size != 32 {
					t.Errorf("layout = %+v", l)
				}
			},
		},
		{
			name: "chunked b-tree",
			in:   &DataLayout{Class: LayoutChunked, ChunkDims: []uint32{4, 2}, ElementSize: 8, ChunkIndexAddr: 0x800},
			check: func(t *testing.T, l *DataLayout) {
				if l.Version != 3 || l.ChunkElements() != 8 || l.ElementSize != 8 || l.ChunkIndexAddr != 0x800 {
					t.Errorf("layout = %+v", l)
				}
			},
		},
		{
			name: "chunked fixed array",
			in: &DataLayout{Class: LayoutChunked, ChunkDims: []uint32{16}, ElementSize: 4,
				ChunkIndexType: ChunkIndexFixedArray, PageBits: 10, ChunkIndexAddr: 0x900},
			check: func(t *testing.T, l *DataLayout) {
				if l.Version != 4 || l.ChunkIndexType != ChunkIndexFixedArray || l.PageBits != 10 || l.ChunkIndexAddr != 0x900 {
					t.Errorf("layout = %+v", l)
				}
			},
		},
		{
			name: "filtered single chunk",
			in: &DataLayout{Class: LayoutChunked, ChunkDims: []uint32{8}, ElementSize: 2,
				ChunkIndexType: ChunkIndexSingleChunk, ChunkFlags: ChunkFlagSingleIndexWithFilter,
				FilteredChunkSize: 11, FilterMask: 0x2, ChunkIndexAddr: 0xA00},
			check: func(t *testing.T, l *DataLayout) {
				if l.FilteredChunkSize != 11 || l.FilterMask != 0x2 || l.ChunkIndexAddr != 0xA00 {
					t.Errorf("layout = %+v", l)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, reparse(t, tt.in).(*DataLayout))
		})
	}
}

func TestEncodeGroupMessages(t *testing.T) {
	link := reparse(t, &Link{LinkType: LinkTypeSoft, Name: "alias", SoftLinkValue: "/a/b"}).(*Link)
	if !link.IsSoft() || link.Name != "alias" || link.SoftLinkValue != "/a/b" {
		t.Errorf("soft link = %+v", link)
	}
	link = reparse(t, &Link{Name: "data", ObjectAddress: 0x30}).(*Link)
	if !link.IsHard() || link.ObjectAddress != 0x30 {
		t.Errorf("hard link = %+v", link)
	}
	link = reparse(t, &Link{LinkType: LinkTypeExternal, Name: "ext", ExternalFile: "o.h5", ExternalPath: "/x"}).(*Link)
	if link.ExternalFile != "o.h5" || link.ExternalPath != "/x" {
		t.Errorf("external link = %+v", link)
	}

	if li := reparse(t, NewLinkInfo()).(*LinkInfo); li.IsDense() {
		t.Error("compact link info reported as dense")
	}

	st := reparse(t, &SymbolTable{BTreeAddress: 1, LocalHeapAddress: 2}).(*SymbolTable)
	if st.BTreeAddress != 1 || st.LocalHeapAddress != 2 {
		t.Errorf("symbol table = %+v", st)
	}

	ds := reparse(t, NewSimpleDataspace(3, 4)).(*Dataspace)
	if ds.NumElements() != 12 {
		t.Errorf("dataspace = %+v", ds)
	}
	ds = reparse(t, &Dataspace{SpaceType: DataspaceScalar}).(*Dataspace)
	if !ds.IsScalar() {
		t.Errorf("scalar dataspace = %+v", ds)
	}

	fp := reparse(t, &FilterPipeline{Filters: []FilterInfo{
		{ID: FilterShuffle, ClientData: []uint32{4}},
		{ID: 300, Name: "custom", Flags: 1},
	}}).(*FilterPipeline)
	if len(fp.Filters) != 2 || fp.Filters[0].ClientData[0] != 4 || fp.Filters[1].Name != "custom" || !fp.Filters[1].IsOptional() {
		t.Errorf("pipeline = %+v", fp)
	}

	fv := reparse(t, &FillValue{Value: []byte{9, 9}}).(*FillValue)
	if !bytes.Equal(fv.Value, []byte{9, 9}) {
		t.Errorf("fill value = %v", fv.Value)
	}
}

func TestEncodeShared(t *testing.T) {
	body := Marshal(&Shared{MessageType: TypeDatatype, Address: 0x120}, binpkg.DefaultConfig())
	msg, err := Parse(TypeDatatype, body, FlagShared, mockReader())
	if err != nil {
		t.Fatal(err)
	}
	s, ok := msg.(*Shared)
	if !ok || s.Address != 0x120 {
		t.Errorf("shared = %+v", msg)
	}
}
