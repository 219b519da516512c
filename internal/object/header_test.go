package object

import (
	"errors"
	"testing"

	"github.com/robert-malhotra/h5value/internal/binary"
	"github.com/robert-malhotra/h5value/internal/message"
)

func TestHeaderAccessors(t *testing.T) {
	h := &Header{
		Version: 2,
		Messages: []message.Message{
			&message.Dataspace{Rank: 2, Dimensions: []uint64{10, 20}},
			&message.Datatype{Class: message.ClassFixedPoint, Size: 4},
			&message.DataLayout{Class: message.LayoutContiguous, Address: 1234},
			&message.FilterPipeline{Filters: []message.FilterInfo{{ID: 1}}},
		},
	}

	if ds := h.Dataspace(); ds == nil || ds.Rank != 2 {
		t.Errorf("Dataspace = %+v", ds)
	}
	if dt := h.Datatype(); dt == nil || dt.Size != 4 {
		t.Errorf("Datatype = %+v", dt)
	}
	if dl := h.DataLayout(); dl == nil || dl.Address != 1234 {
		t.Errorf("DataLayout = %+v", dl)
	}
	if fp := h.FilterPipeline(); fp == nil || len(fp.Filters) != 1 {
		t.Errorf("FilterPipeline = %+v", fp)
	}
	if !h.IsDataset() || h.IsGroup() {
		t.Error("expected a dataset header")
	}
	if h.SymbolTable() != nil || h.LinkInfo() != nil || h.SharedDatatype() != nil {
		t.Error("unexpected group or shared messages")
	}

	empty := &Header{}
	if empty.Dataspace() != nil || empty.Datatype() != nil || empty.DataLayout() != nil {
		t.Error("expected nil messages on empty header")
	}
	if len(empty.GetMessages(message.TypeLink)) != 0 {
		t.Error("expected no links")
	}
}

func TestHeaderGroupDetection(t *testing.T) {
	h := &Header{Messages: []message.Message{
		&message.Link{Name: "a"},
		&message.Link{Name: "b"},
	}}
	if !h.IsGroup() || h.IsDataset() {
		t.Error("expected a group header")
	}
	if links := h.Links(); len(links) != 2 || links[1].Name != "b" {
		t.Errorf("Links = %v", links)
	}
}

func scalarSpace() Raw {
	return Raw{Type: message.TypeDataspace, Data: []byte{2, 0, 0, 0}}
}

func symbolTable() Raw {
	body := binary.NewWriter(binary.DefaultConfig())
	body.Offset(0x100)
	body.Offset(0x200)
	return Raw{Type: message.TypeSymbolTable, Data: body.Bytes()}
}

func TestReadV2RoundTrip(t *testing.T) {
	w := binary.NewWriter(binary.DefaultConfig())
	w.Zeros(16)
	addr := WriteV2(w, []Raw{scalarSpace()}, symbolTable())

	r := binary.NewReader(w.Bytes(), binary.DefaultConfig())
	h, err := Read(r, addr)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if h.Version != 2 || h.Address != addr {
		t.Errorf("version %d address %d", h.Version, h.Address)
	}
	if len(h.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(h.Messages))
	}
	if h.Dataspace() == nil {
		t.Error("dataspace from chunk 0 missing")
	}
	if st := h.SymbolTable(); st == nil || st.BTreeAddress != 0x100 {
		t.Errorf("symbol table from continuation = %+v", st)
	}
}

func TestReadV2ChecksumMismatch(t *testing.T) {
	w := binary.NewWriter(binary.DefaultConfig())
	addr := WriteV2(w, []Raw{scalarSpace()})
	data := w.Bytes()
	data[len(data)-6] ^= 0xFF

	_, err := Read(binary.NewReader(data, binary.DefaultConfig()), addr)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestReadV2ContinuationChecksum(t *testing.T) {
	w := binary.NewWriter(binary.DefaultConfig())
	addr := WriteV2(w, []Raw{scalarSpace()}, scalarSpace())
	data := w.Bytes()
	data[len(data)-5] ^= 0xFF // inside the continuation block

	_, err := Read(binary.NewReader(data, binary.DefaultConfig()), addr)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestReadV1RoundTrip(t *testing.T) {
	w := binary.NewWriter(binary.DefaultConfig())
	w.Zeros(8)
	addr := WriteV1(w, []Raw{
		{Type: message.TypeDataspace, Data: []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		symbolTable(),
	})

	h, err := Read(binary.NewReader(w.Bytes(), binary.DefaultConfig()), addr)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if h.Version != 1 || h.RefCount != 1 {
		t.Errorf("version %d refcount %d", h.Version, h.RefCount)
	}
	if ds := h.Dataspace(); ds == nil || !ds.IsScalar() {
		t.Errorf("Dataspace = %+v", ds)
	}
	if st := h.SymbolTable(); st == nil || st.LocalHeapAddress != 0x200 {
		t.Errorf("SymbolTable = %+v", st)
	}
}

func TestReadV1ContinuationCycle(t *testing.T) {
	w := binary.NewWriter(binary.DefaultConfig())
	body := binary.NewWriter(binary.DefaultConfig())
	body.Offset(16) // messages of the header itself
	body.Length(24)
	addr := WriteV1(w, []Raw{{Type: message.TypeObjectHeaderContinuation, Data: body.Bytes()}})

	_, err := Read(binary.NewReader(w.Bytes(), binary.DefaultConfig()), addr)
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("expected ErrInvalidHeader for cyclic continuation, got %v", err)
	}
}

func TestReadInvalidHeader(t *testing.T) {
	r := binary.NewReader([]byte{99, 0, 0, 0}, binary.DefaultConfig())
	if _, err := Read(r, 0); !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("expected ErrInvalidHeader, got %v", err)
	}

	r = binary.NewReader([]byte{1, 0}, binary.DefaultConfig())
	if _, err := Read(r, 0); !errors.Is(err, binary.ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}
