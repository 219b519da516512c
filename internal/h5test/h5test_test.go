package h5test

import (
	"bytes"
	"testing"

	"github.com/robert-malhotra/h5value/internal/message"
	"github.com/robert-malhotra/h5value/internal/superblock"
)

func TestChunks(t *testing.T) {
	// 3x3 bytes in 2x2 chunks: four chunks, three of them clipped.
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	chunks := Chunks(data, []uint64{3, 3}, []uint32{2, 2}, 1)
	want := []Chunk{
		{Origin: []uint64{0, 0}, Data: []byte{1, 2, 4, 5}},
		{Origin: []uint64{0, 2}, Data: []byte{3, 0, 6, 0}},
		{Origin: []uint64{2, 0}, Data: []byte{7, 8, 0, 0}},
		{Origin: []uint64{2, 2}, Data: []byte{9, 0, 0, 0}},
	}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i := range want {
		if !bytes.Equal(chunks[i].Data, want[i].Data) {
			t.Errorf("chunk %d = %v, want %v", i, chunks[i].Data, want[i].Data)
		}
		for d := range want[i].Origin {
			if chunks[i].Origin[d] != want[i].Origin[d] {
				t.Errorf("chunk %d origin = %v, want %v", i, chunks[i].Origin, want[i].Origin)
			}
		}
	}
}

func TestBuildSuperblock(t *testing.T) {
	root := &Group{Members: []Member{
		&Dataset{Name: "x", Type: message.NewInt(4, true, message.OrderLE), Dims: []uint64{1}, Data: []byte{1, 0, 0, 0}},
	}}

	for _, v := range []uint8{0, 2} {
		img := Image(t, root, WithVersion(v), WithOffsetSize(4))
		sb, err := superblock.Read(img)
		if err != nil {
			t.Fatalf("version %d: %v", v, err)
		}
		if sb.Version != v || sb.OffsetSize != 4 || sb.EOFAddress != uint64(len(img)) {
			t.Errorf("version %d: superblock = %+v", v, sb)
		}
		if v == 0 && !sb.HasRootScratchPad {
			t.Error("old-style root has no scratch pad")
		}
	}
}

func TestBuildRejectsExternalLinkInOldStyle(t *testing.T) {
	root := &Group{Members: []Member{&ExternalLink{Name: "e", File: "f.h5", Path: "/"}}}
	if _, err := New(WithVersion(0)).Build(root); err == nil {
		t.Error("expected an error")
	}
}
