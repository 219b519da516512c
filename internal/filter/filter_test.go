package filter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/robert-malhotra/h5value/internal/message"
)

func TestDeflateRoundtrip(t *testing.T) {
	original := bytes.Repeat([]byte("Hello, World! compressible "), 20)

	f := NewDeflate([]uint32{6})
	compressed, err := f.Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(compressed) >= len(original) {
		t.Errorf("compressed %d bytes into %d", len(original), len(compressed))
	}

	decompressed, err := f.Decode(compressed)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(decompressed, original) {
		t.Errorf("round trip mismatch:\ngot:  %q\nwant: %q", decompressed, original)
	}
}

func TestDeflateCorrupt(t *testing.T) {
	if _, err := NewDeflate(nil).Decode([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for corrupt stream")
	}
}

func TestShuffle(t *testing.T) {
	original := []byte{
		0x01, 0x02, 0x03, 0x04,
		0x11, 0x12, 0x13, 0x14,
		0x21, 0x22, 0x23, 0x24,
		0x31, 0x32, 0x33, 0x34,
	}
	shuffled := []byte{
		0x01, 0x11, 0x21, 0x31,
		0x02, 0x12, 0x22, 0x32,
		0x03, 0x13, 0x23, 0x33,
		0x04, 0x14, 0x24, 0x34,
	}

	f := NewShuffle([]uint32{4})
	got, err := f.Encode(original)
	if err != nil || !bytes.Equal(got, shuffled) {
		t.Errorf("Encode = %v, %v", got, err)
	}
	got, err = f.Decode(shuffled)
	if err != nil || !bytes.Equal(got, original) {
		t.Errorf("Decode = %v, %v", got, err)
	}
}

func TestShuffleTrailingBytes(t *testing.T) {
	original := []byte{1, 2, 3, 4, 9}
	f := NewShuffle([]uint32{2})

	enc, _ := f.Encode(original)
	if !bytes.Equal(enc, []byte{1, 3, 2, 4, 9}) {
		t.Errorf("Encode = %v", enc)
	}
	dec, _ := f.Decode(enc)
	if !bytes.Equal(dec, original) {
		t.Errorf("Decode = %v, want %v", dec, original)
	}
}

func TestShuffleSingleByte(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	result, err := NewShuffle([]uint32{1}).Decode(data)
	if err != nil || !bytes.Equal(result, data) {
		t.Error("single-byte shuffle should be identity")
	}
}

func TestFletcher32(t *testing.T) {
	data := []byte("test data for checksum")
	f := NewFletcher32(nil)

	stored, err := f.Encode(data)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(stored) != len(data)+4 {
		t.Fatalf("stored %d bytes, want %d", len(stored), len(data)+4)
	}

	out, err := f.Decode(stored)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("Decode = %q, want %q", out, data)
	}

	stored[0] ^= 0xFF
	if _, err := f.Decode(stored); !errors.Is(err, ErrChecksum) {
		t.Errorf("expected ErrChecksum, got %v", err)
	}
	if _, err := f.Decode([]byte{1, 2}); !errors.Is(err, ErrChecksum) {
		t.Errorf("expected ErrChecksum for short input, got %v", err)
	}
}

func TestFletcher32ByteSwapped(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	stored, _ := NewFletcher32(nil).Encode(data)
	n := len(stored)
	stored[n-4], stored[n-3], stored[n-2], stored[n-1] = stored[n-1], stored[n-2], stored[n-3], stored[n-4]

	if _, err := NewFletcher32(nil).Decode(stored); err != nil {
		t.Errorf("byte-swapped checksum rejected: %v", err)
	}
}

func TestPipelineRoundTrip(t *testing.T) {
	p, err := NewPipeline(&message.FilterPipeline{
		Version: 2,
		Filters: []message.FilterInfo{
			{ID: message.FilterShuffle, ClientData: []uint32{4}},
			{ID: message.FilterDeflate, ClientData: []uint32{6}},
			{ID: message.FilterFletcher32},
		},
	})
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	if p.Len() != 3 {
		t.Errorf("Len = %d, want 3", p.Len())
	}

	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i / 4)
	}
	stored, err := p.Encode(data)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := p.Decode(stored, 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("pipeline round trip mismatch")
	}
}

func TestPipelineEmpty(t *testing.T) {
	p, err := NewPipeline(nil)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	if !p.Empty() {
		t.Error("expected empty pipeline")
	}
	data := []byte("unchanged")
	if got, _ := p.Decode(data, 0); !bytes.Equal(got, data) {
		t.Error("empty pipeline should pass data through")
	}
}

func TestPipelineFilterMask(t *testing.T) {
	p, err := NewPipeline(&message.FilterPipeline{
		Version: 2,
		Filters: []message.FilterInfo{{ID: message.FilterShuffle, ClientData: []uint32{2}}},
	})
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	data := []byte{1, 2, 3, 4}
	got, err := p.Decode(data, 0x01)
	if err != nil || !bytes.Equal(got, data) {
		t.Error("masked filter should leave data unchanged")
	}
}

func TestPipelineUnsupported(t *testing.T) {
	_, err := NewPipeline(&message.FilterPipeline{
		Filters: []message.FilterInfo{{ID: message.FilterSZIP}},
	})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}

	p, err := NewPipeline(&message.FilterPipeline{
		Filters: []message.FilterInfo{{ID: 32000, Flags: 0x01}},
	})
	if err != nil {
		t.Fatalf("optional filter rejected: %v", err)
	}
	if !p.Empty() {
		t.Error("unknown optional filter should be skipped")
	}
}
