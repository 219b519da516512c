package heap

import (
	"bytes"
	"testing"

	"github.com/robert-malhotra/h5value/internal/binary"
)

func TestLocalHeapRoundTrip(t *testing.T) {
	w := binary.NewWriter(binary.DefaultConfig())
	w.Zeros(8)
	addr, offsets := WriteLocalHeap(w, []string{"alpha", "b", "gamma_delta"})

	lh, err := ReadLocalHeap(binary.NewReader(w.Bytes(), binary.DefaultConfig()), addr)
	if err != nil {
		t.Fatalf("ReadLocalHeap failed: %v", err)
	}

	for i, want := range []string{"alpha", "b", "gamma_delta"} {
		got, err := lh.GetString(offsets[i])
		if err != nil {
			t.Fatalf("GetString(%d) failed: %v", offsets[i], err)
		}
		if got != want {
			t.Errorf("GetString(%d) = %q, want %q", offsets[i], got, want)
		}
	}
	if s, err := lh.GetString(0); err != nil || s != "" {
		t.Errorf("GetString(0) = %q, %v", s, err)
	}
	if _, err := lh.GetString(lh.DataSize + 1); err == nil {
		t.Error("expected error for offset past the data segment")
	}
}

func TestLocalHeapGetStringNoTerminator(t *testing.T) {
	lh := &LocalHeap{data: []byte("abc")}
	got, err := lh.GetString(1)
	if err != nil || got != "bc" {
		t.Errorf("GetString(1) = %q, %v", got, err)
	}
}

func TestReadLocalHeapInvalid(t *testing.T) {
	r := binary.NewReader([]byte("XXXX\x00\x00\x00\x00"), binary.DefaultConfig())
	if _, err := ReadLocalHeap(r, 0); err == nil {
		t.Error("expected error for invalid signature")
	}

	r = binary.NewReader([]byte("HEAP\x01\x00\x00\x00"), binary.DefaultConfig())
	if _, err := ReadLocalHeap(r, 0); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestGlobalHeapRoundTrip(t *testing.T) {
	w := binary.NewWriter(binary.DefaultConfig())
	w.Zeros(16)
	objects := [][]byte{[]byte("hello"), {}, []byte("a longer payload that spans words")}
	ids := WriteGlobalHeap(w, objects)

	r := binary.NewReader(w.Bytes(), binary.DefaultConfig())
	gh, err := ReadGlobalHeap(r, ids[0].CollectionAddress)
	if err != nil {
		t.Fatalf("ReadGlobalHeap failed: %v", err)
	}
	if gh.Len() != 3 {
		t.Errorf("Len = %d, want 3", gh.Len())
	}
	if gh.CollectionSize < minCollectionSize {
		t.Errorf("collection size %d below minimum", gh.CollectionSize)
	}

	for i, id := range ids {
		got, err := gh.GetObject(id.ObjectIndex)
		if err != nil {
			t.Fatalf("GetObject(%d) failed: %v", id.ObjectIndex, err)
		}
		if !bytes.Equal(got, objects[i]) {
			t.Errorf("object %d = %q, want %q", id.ObjectIndex, got, objects[i])
		}
	}

	if _, err := gh.GetObject(99); err == nil {
		t.Error("expected error for missing object")
	}
}

func TestGlobalHeapGetObjectReturnsCopy(t *testing.T) {
	gh := &GlobalHeap{objects: map[uint16][]byte{1: []byte("abc")}}
	got, _ := gh.GetObject(1)
	got[0] = 'X'
	again, _ := gh.GetObject(1)
	if again[0] != 'a' {
		t.Error("GetObject should return a copy")
	}

	var nilHeap *GlobalHeap
	if _, err := nilHeap.GetObject(1); err == nil {
		t.Error("expected error for nil heap")
	}
}

func TestReadGlobalHeapInvalid(t *testing.T) {
	r := binary.NewReader(make([]byte, 64), binary.DefaultConfig())
	if _, err := ReadGlobalHeap(r, 0); err == nil {
		t.Error("expected error for address 0")
	}
	if _, err := ReadGlobalHeap(r, ^uint64(0)); err == nil {
		t.Error("expected error for undefined address")
	}
	if _, err := ReadGlobalHeap(r, 8); err == nil {
		t.Error("expected error for invalid signature")
	}
}

func TestVarLenRoundTrip(t *testing.T) {
	w := binary.NewWriter(binary.DefaultConfig())
	WriteVarLen(w, VarLen{Length: 3, ID: GlobalHeapID{CollectionAddress: 0x4000, ObjectIndex: 7}})
	if len(w.Bytes()) != VarLenSize(8) {
		t.Fatalf("encoded %d bytes, VarLenSize = %d", len(w.Bytes()), VarLenSize(8))
	}

	v, err := ParseVarLen(w.Bytes(), binary.NewReader(nil, binary.DefaultConfig()))
	if err != nil {
		t.Fatalf("ParseVarLen failed: %v", err)
	}
	if v.Length != 3 || v.ID.CollectionAddress != 0x4000 || v.ID.ObjectIndex != 7 {
		t.Errorf("ParseVarLen = %+v", v)
	}

	if _, err := ParseVarLen([]byte{1, 2, 3}, binary.NewReader(nil, binary.DefaultConfig())); err == nil {
		t.Error("expected error for short element")
	}
}

func TestCache(t *testing.T) {
	w := binary.NewWriter(binary.DefaultConfig())
	w.Zeros(8)
	ids := WriteGlobalHeap(w, [][]byte{[]byte("x"), []byte("yz")})

	c := NewCache(binary.NewReader(w.Bytes(), binary.DefaultConfig()))
	first, err := c.Collection(ids[0].CollectionAddress)
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	second, _ := c.Collection(ids[0].CollectionAddress)
	if first != second {
		t.Error("Collection should return the cached heap")
	}

	got, err := c.Object(ids[1])
	if err != nil || string(got) != "yz" {
		t.Errorf("Object = %q, %v", got, err)
	}
}
