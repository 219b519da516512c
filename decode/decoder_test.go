package decode

import (
	"encoding/binary"
	stderrors "errors"
	"math"
	"testing"

	"github.com/robert-malhotra/h5value/errors"
	"github.com/robert-malhotra/h5value/types"
	"github.com/robert-malhotra/h5value/value"
)

// arena is a test resolver: the record's handle indexes payloads.
type arena [][]byte

func (a arena) Resolve(record []byte) ([]byte, error) {
	h := binary.NativeEndian.Uint64(record[8:])
	if h >= uint64(len(a)) {
		return nil, stderrors.New("bad handle")
	}
	return a[h], nil
}

func record(count, handle uint64) []byte {
	b := make([]byte, types.IndirectionSize)
	binary.NativeEndian.PutUint64(b, count)
	binary.NativeEndian.PutUint64(b[8:], handle)
	return b
}

func TestScalarBitPatterns(t *testing.T) {
	d := New()
	raw := []byte{0xF0, 0xDE, 0xBC, 0x9A, 0x78, 0x56, 0x34, 0x12}

	tests := []struct {
		desc types.Descriptor
		want value.Value
	}{
		{types.Int(1), value.Int(int64(int8(raw[0])))},
		{types.Int(2), value.Int(int64(int16(binary.NativeEndian.Uint16(raw))))},
		{types.Int(4), value.Int(int64(int32(binary.NativeEndian.Uint32(raw))))},
		{types.Int(8), value.Int(int64(binary.NativeEndian.Uint64(raw)))},
		{types.Uint(1), value.Uint(uint64(raw[0]))},
		{types.Uint(2), value.Uint(uint64(binary.NativeEndian.Uint16(raw)))},
		{types.Uint(4), value.Uint(uint64(binary.NativeEndian.Uint32(raw)))},
		{types.Uint(8), value.Uint(binary.NativeEndian.Uint64(raw))},
		{types.Float(4), value.Float(float64(math.Float32frombits(binary.NativeEndian.Uint32(raw))))},
		{types.Float(8), value.Float(math.Float64frombits(binary.NativeEndian.Uint64(raw)))},
		{types.Bool(), value.Bool(true)},
	}
	for _, tt := range tests {
		t.Run(tt.desc.String(), func(t *testing.T) {
			got, err := d.Decode(raw[:tt.desc.ByteSize()], tt.desc)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnsignedKeepsHighBit(t *testing.T) {
	got, err := New().Decode([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, types.Uint(8))
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind() != value.KindUint || got.AsUint() != math.MaxUint64 {
		t.Errorf("got %v (%s)", got, got.Kind())
	}
}

func TestBoolAnyNonZero(t *testing.T) {
	for b, want := range map[byte]bool{0: false, 1: true, 0x80: true} {
		got, err := New().Decode([]byte{b}, types.Bool())
		if err != nil {
			t.Fatal(err)
		}
		if got.AsBool() != want {
			t.Errorf("byte %#x: got %v", b, got.AsBool())
		}
	}
}

func TestSizeMismatch(t *testing.T) {
	tests := []struct {
		name string
		desc types.Descriptor
		n    int
	}{
		{"int short", types.Int(4), 3},
		{"uint long", types.Uint(2), 3},
		{"float", types.Float(8), 4},
		{"bool", types.Bool(), 2},
		{"fixed string", types.FixedString(5, types.ASCII), 4},
		{"fixed array", types.FixedArray(types.Uint(2), 3), 5},
		{"compound", types.Compound(12, types.Field{Name: "a", Type: types.Uint(4)}), 11},
		{"varlen record", types.VarLenString(types.Unicode), 8},
		{"enum", types.Enum(2, false), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Decode(make([]byte, tt.n), tt.desc)
			if !errors.IsKind(err, errors.KindSizeMismatch) {
				t.Fatalf("err = %v, want size mismatch", err)
			}
			if got.Kind() != value.KindNull {
				t.Errorf("partial value %v returned with error", got)
			}
		})
	}
}

func TestCompound(t *testing.T) {
	desc := types.Compound(12,
		types.Field{Name: "a", Offset: 0, Type: types.Uint(4)},
		types.Field{Name: "b", Offset: 4, Type: types.Float(8)},
	)
	buf := make([]byte, 12)
	binary.NativeEndian.PutUint32(buf, 7)
	binary.NativeEndian.PutUint64(buf[4:], math.Float64bits(3.5))

	got, err := New().Decode(buf, desc)
	if err != nil {
		t.Fatal(err)
	}
	rec := got.AsRecord()
	if names := rec.Names(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("names = %v", names)
	}
	if a, _ := rec.Get("a"); a.AsUint() != 7 {
		t.Errorf("a = %v", a)
	}
	if b, _ := rec.Get("b"); b.AsFloat() != 3.5 {
		t.Errorf("b = %v", b)
	}
}

func TestFixedArrayOrder(t *testing.T) {
	got, err := New().Decode([]byte{1, 2, 3, 4}, types.FixedArray(types.Uint(1), 4))
	if err != nil {
		t.Fatal(err)
	}
	want := value.List(value.Uint(1), value.Uint(2), value.Uint(3), value.Uint(4))
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestEnumMatchesBacking(t *testing.T) {
	buf := make([]byte, 2)
	binary.NativeEndian.PutUint16(buf, 500)

	d := New()
	e, err := d.Decode(buf, types.Enum(2, false))
	if err != nil {
		t.Fatal(err)
	}
	u, err := d.Decode(buf, types.Uint(2))
	if err != nil {
		t.Fatal(err)
	}
	if !e.Equal(u) || e.AsUint() != 500 {
		t.Errorf("enum %v, uint %v", e, u)
	}

	buf[0], buf[1] = 0xFF, 0xFF
	s, err := d.Decode(buf, types.Enum(2, true))
	if err != nil {
		t.Fatal(err)
	}
	if s.AsInt() != -1 {
		t.Errorf("signed enum = %v", s)
	}
}

func TestFixedStringLossy(t *testing.T) {
	got, err := New().Decode([]byte{'h', 'i', 0xFF, 0, 0}, types.FixedString(5, types.ASCII))
	if err != nil {
		t.Fatal(err)
	}
	if got.AsString() != "hi\uFFFD\x00\x00" {
		t.Errorf("got %q", got.AsString())
	}
}

func TestVarLenString(t *testing.T) {
	d := New(WithResolver(arena{[]byte("hello\x00junk"), []byte("caf\xC3\xA9")}))

	got, err := d.Decode(record(10, 0), types.VarLenString(types.ASCII))
	if err != nil {
		t.Fatal(err)
	}
	if got.AsString() != "hello" {
		t.Errorf("got %q, want hello", got.AsString())
	}
	got, err = d.Decode(record(5, 1), types.VarLenString(types.Unicode))
	if err != nil {
		t.Fatal(err)
	}
	if got.AsString() != "café" {
		t.Errorf("got %q", got.AsString())
	}
}

func TestVarLenArray(t *testing.T) {
	payload := make([]byte, 6)
	for i, v := range []uint16{4, 5, 6} {
		binary.NativeEndian.PutUint16(payload[2*i:], v)
	}
	d := New(WithResolver(arena{payload, payload[:5], {}}))

	got, err := d.Decode(record(3, 0), types.VarLenArray(types.Uint(2)))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(value.List(value.Uint(4), value.Uint(5), value.Uint(6))) {
		t.Errorf("got %v", got)
	}

	if _, err := d.Decode(record(3, 1), types.VarLenArray(types.Uint(2))); !errors.IsKind(err, errors.KindSizeMismatch) {
		t.Errorf("ragged payload: err = %v", err)
	}

	got, err = d.Decode(record(0, 2), types.VarLenArray(types.Uint(2)))
	if err != nil || got.Len() != 0 {
		t.Errorf("empty payload: %v, %v", got, err)
	}
}

func TestVarLenWithoutResolver(t *testing.T) {
	_, err := New().Decode(record(1, 0), types.VarLenString(types.ASCII))
	if !errors.IsKind(err, errors.KindEngine) || !stderrors.Is(err, ErrNoResolver) {
		t.Errorf("err = %v", err)
	}
}

func TestResolverErrorIsEngine(t *testing.T) {
	d := New(WithResolver(arena{}))
	_, err := d.Decode(record(1, 9), types.VarLenString(types.ASCII))
	if !errors.IsKind(err, errors.KindEngine) {
		t.Errorf("err = %v", err)
	}
}

func TestNestedErrorPath(t *testing.T) {
	desc := types.FixedArray(types.Compound(2,
		types.Field{Name: "x", Offset: 0, Type: types.Uint(1)},
		types.Field{Name: "y", Offset: 1, Type: types.Enum(1, true)},
	), 2)
	got, err := New().Decode([]byte{1, 0xFF, 2, 3}, desc)
	if err != nil {
		t.Fatal(err)
	}
	second := got.Index(1).AsRecord()
	if y, _ := second.Get("y"); y.AsInt() != 3 {
		t.Errorf("y = %v", y)
	}

	_, err = New().DecodeAt([]byte{1}, types.Uint(2), []string{"ds", "[4]", "x"}, 0)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("err = %v", err)
	}
	if got := errors.FormatPath(e.Path); got != "ds[4].x" {
		t.Errorf("path = %s", got)
	}
}

func TestInvalidDescriptor(t *testing.T) {
	_, err := New().Decode(make([]byte, 3), types.Int(3))
	if !errors.IsKind(err, errors.KindInvalidType) {
		t.Errorf("err = %v", err)
	}
	_, err = New().Decode(nil, types.Descriptor{})
	if !errors.IsKind(err, errors.KindInvalidType) {
		t.Errorf("zero descriptor: err = %v", err)
	}
	for _, desc := range []types.Descriptor{
		types.FixedArray(types.Uint(4), 1<<62),
		types.Compound(8, types.Field{Name: "a", Offset: 4, Type: types.FixedArray(types.Uint(8), 1<<61)}),
	} {
		if _, err := New().Decode(nil, desc); !errors.IsKind(err, errors.KindInvalidType) {
			t.Errorf("%s: err = %v", desc, err)
		}
	}
}

func TestDuplicateFields(t *testing.T) {
	desc := types.Compound(2,
		types.Field{Name: "a", Offset: 0, Type: types.Uint(1)},
		types.Field{Name: "b", Offset: 0, Type: types.Uint(1)},
		types.Field{Name: "a", Offset: 1, Type: types.Uint(1)},
	)
	buf := []byte{5, 9}

	_, err := New().Decode(buf, desc)
	if !errors.IsKind(err, errors.KindDuplicateField) {
		t.Fatalf("default policy: err = %v", err)
	}

	got, err := New(WithDuplicatePolicy(DuplicateLastWins)).Decode(buf, desc)
	if err != nil {
		t.Fatal(err)
	}
	rec := got.AsRecord()
	if names := rec.Names(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("names = %v", names)
	}
	if a, _ := rec.Get("a"); a.AsUint() != 9 {
		t.Errorf("a = %v, want last value 9", a)
	}
}

func TestMaxDepth(t *testing.T) {
	desc := types.Uint(1)
	for range 5 {
		desc = types.FixedArray(desc, 1)
	}

	if _, err := New(WithMaxDepth(5)).Decode([]byte{1}, desc); err != nil {
		t.Fatalf("depth 5 within limit: %v", err)
	}
	_, err := New(WithMaxDepth(4)).Decode([]byte{1}, desc)
	if !errors.IsKind(err, errors.KindSchemaTooDeep) {
		t.Errorf("err = %v", err)
	}
	if New(WithMaxDepth(0)).MaxDepth() != DefaultMaxDepth {
		t.Error("WithMaxDepth(0) should keep the default")
	}
}

func TestIdempotent(t *testing.T) {
	desc := types.Compound(10,
		types.Field{Name: "n", Offset: 0, Type: types.Int(2)},
		types.Field{Name: "tag", Offset: 2, Type: types.FixedString(4, types.ASCII)},
		types.Field{Name: "v", Offset: 6, Type: types.FixedArray(types.Uint(1), 4)},
	)
	buf := []byte{1, 2, 'a', 'b', 'c', 'd', 7, 8, 9, 10}
	d := New()
	first, err := d.Decode(buf, desc)
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Decode(buf, desc)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(second) {
		t.Errorf("%v != %v", first, second)
	}

	buf[2] = 'z'
	if s, _ := first.AsRecord().Get("tag"); s.AsString() != "abcd" {
		t.Errorf("value aliases the input buffer: %q", s.AsString())
	}
}
