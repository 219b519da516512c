package hdf5

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/robert-malhotra/h5value/internal/h5test"
	"github.com/robert-malhotra/h5value/internal/message"
)

// === ERROR PATH TESTS ===

func TestOpenInvalidHDF5Signature(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"empty", []byte{}},
		{"random bytes", []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77}},
		{"almost valid signature", []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, 'X'}},
		{"text", []byte("This is not an HDF5 file")},
		{"binary garbage", bytes.Repeat([]byte{0xFF}, 1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenBytes(tt.content)
			if !errors.Is(err, ErrNotHDF5) {
				t.Errorf("expected ErrNotHDF5, got %v", err)
			}
		})
	}
}

func TestOpenTruncated(t *testing.T) {
	img := h5test.Image(t, sampleTree())
	for _, n := range []int{9, 40, len(img) / 2} {
		if _, err := OpenBytes(img[:n]); err == nil {
			t.Errorf("image truncated to %d bytes opened", n)
		}
	}
}

func TestOpenNonExistentFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.h5")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestOpenDirectory(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("expected error opening a directory")
	}
}

func TestCorruptObjectHeader(t *testing.T) {
	img := h5test.Image(t, sampleTree())
	// The root group header is the last object written; flip a byte
	// inside its checksummed body.
	i := bytes.LastIndex(img, []byte("OHDR"))
	img[i+6] ^= 0xFF
	if _, err := OpenBytes(img); err == nil {
		t.Error("expected checksum error")
	}
}

func TestDoubleClose(t *testing.T) {
	f, err := OpenBytes(h5test.Image(t, sampleTree()))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}

func TestOperationsAfterClose(t *testing.T) {
	f, err := OpenBytes(h5test.Image(t, sampleTree()))
	if err != nil {
		t.Fatal(err)
	}
	ds, err := f.OpenDataset("data")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := f.OpenDataset("data"); err != ErrClosed {
		t.Errorf("OpenDataset after close: %v", err)
	}
	if _, err := f.OpenGroup("a"); err != ErrClosed {
		t.Errorf("OpenGroup after close: %v", err)
	}
	if _, err := f.Root().Datasets(); err != ErrClosed {
		t.Errorf("Datasets after close: %v", err)
	}
	if _, err := ds.ReadRaw(); err != ErrClosed {
		t.Errorf("ReadRaw after close: %v", err)
	}
}

// === LINK TESTS ===

func TestSoftLinks(t *testing.T) {
	root := &h5test.Group{Members: []h5test.Member{
		&h5test.Group{Name: "g", Members: []h5test.Member{
			&h5test.Dataset{Name: "v", Type: i32()},
			&h5test.SoftLink{Name: "up", Target: "/"},
		}},
		&h5test.SoftLink{Name: "galias", Target: "/g"},
		&h5test.SoftLink{Name: "valias", Target: "g/v"},
		&h5test.SoftLink{Name: "chain", Target: "/valias"},
		&h5test.SoftLink{Name: "dangling", Target: "/nowhere"},
	}}

	for _, v := range []uint8{0, 2} {
		f := openImage(t, root, h5test.WithVersion(v))

		g, err := f.OpenGroup("galias")
		if err != nil {
			t.Fatalf("v%d: OpenGroup(galias): %v", v, err)
		}
		if g.Path() != "/galias" {
			t.Errorf("v%d: soft-linked group path = %q", v, g.Path())
		}
		if _, err := g.OpenDataset("v"); err != nil {
			t.Errorf("v%d: dataset through linked group: %v", v, err)
		}

		for _, name := range []string{"valias", "chain"} {
			d, err := f.OpenDataset(name)
			if err != nil {
				t.Fatalf("v%d: OpenDataset(%s): %v", v, name, err)
			}
			if d.Name() != name {
				t.Errorf("v%d: dataset name = %q, want %q", v, d.Name(), name)
			}
		}

		if _, err := f.OpenDataset("dangling"); !errors.Is(err, ErrNotFound) {
			t.Errorf("v%d: dangling link: %v", v, err)
		}

		// Dangling links are left out of listings.
		datasets, err := f.Root().Datasets()
		if err != nil {
			t.Fatalf("v%d: Datasets: %v", v, err)
		}
		if len(datasets) != 2 {
			t.Errorf("v%d: %d datasets, want chain and valias", v, len(datasets))
		}

		up, err := f.OpenGroup("/g/up")
		if err != nil {
			t.Fatalf("v%d: link to root: %v", v, err)
		}
		if _, err := up.OpenDataset("valias"); err != nil {
			t.Errorf("v%d: through link to root: %v", v, err)
		}
	}
}

func TestCircularSoftLinks(t *testing.T) {
	root := &h5test.Group{Members: []h5test.Member{
		&h5test.SoftLink{Name: "self", Target: "/self"},
		&h5test.SoftLink{Name: "ping", Target: "/pong"},
		&h5test.SoftLink{Name: "pong", Target: "/ping"},
	}}
	f := openImage(t, root)

	for _, name := range []string{"self", "ping"} {
		if _, err := f.OpenDataset(name); !errors.Is(err, ErrLinkDepth) {
			t.Errorf("OpenDataset(%s) = %v, want ErrLinkDepth", name, err)
		}
	}
	if _, err := f.Root().Datasets(); !errors.Is(err, ErrLinkDepth) {
		t.Errorf("Datasets = %v, want ErrLinkDepth", err)
	}
}

func TestExternalLinkUnsupported(t *testing.T) {
	root := &h5test.Group{Members: []h5test.Member{
		&h5test.ExternalLink{Name: "ext", File: "other.h5", Path: "/data"},
	}}
	f := openImage(t, root)
	if _, err := f.OpenDataset("ext"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("OpenDataset(ext) = %v", err)
	}
	members, err := f.Root().Members()
	if err != nil || len(members) != 1 || members[0] != "ext" {
		t.Errorf("Members = %v, %v", members, err)
	}
}

func TestDenseGroupUnsupported(t *testing.T) {
	root := &h5test.Group{Members: []h5test.Member{
		&h5test.Group{Name: "big", Dense: true},
	}}
	f := openImage(t, root)
	g, err := f.OpenGroup("big")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Datasets(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Datasets = %v", err)
	}
}

func TestEmptyGroups(t *testing.T) {
	root := &h5test.Group{Members: []h5test.Member{&h5test.Group{Name: "empty"}}}
	for _, v := range []uint8{0, 2} {
		f := openImage(t, root, h5test.WithVersion(v))
		g, err := f.OpenGroup("empty")
		if err != nil {
			t.Fatalf("v%d: %v", v, err)
		}
		members, err := g.Members()
		if err != nil || len(members) != 0 {
			t.Errorf("v%d: Members = %v, %v", v, members, err)
		}
	}
}

func TestManyMembersSorted(t *testing.T) {
	names := []string{"delta", "alpha", "echo", "charlie", "bravo"}
	var members []h5test.Member
	for _, n := range names {
		members = append(members, &h5test.Dataset{Name: n, Type: message.NewInt(1, false, message.OrderLE)})
	}
	for _, v := range []uint8{0, 2} {
		f := openImage(t, &h5test.Group{Members: members}, h5test.WithVersion(v))
		got, err := f.Root().Members()
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"alpha", "bravo", "charlie", "delta", "echo"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("v%d: members = %v", v, got)
			}
		}
		for _, n := range names {
			if _, err := f.OpenDataset(n); err != nil {
				t.Errorf("v%d: OpenDataset(%s): %v", v, n, err)
			}
		}
	}
}

// === PATH TESTS ===

func TestSplitPath(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"/", nil},
		{"//", nil},
		{"foo", []string{"foo"}},
		{"/foo", []string{"foo"}},
		{"/foo/", []string{"foo"}},
		{"foo/bar", []string{"foo", "bar"}},
		{"/foo//bar/", []string{"foo", "bar"}},
		{"./foo/./bar", []string{"foo", "bar"}},
		{"/a/b/c/d/e/f", []string{"a", "b", "c", "d", "e", "f"}},
	}

	for _, tt := range tests {
		t.Run("input_"+tt.input, func(t *testing.T) {
			result := SplitPath(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("SplitPath(%q): expected %v, got %v", tt.input, tt.expected, result)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("SplitPath(%q)[%d]: expected %q, got %q", tt.input, i, tt.expected[i], result[i])
				}
			}
		})
	}
}

func TestCleanPath(t *testing.T) {
	for in, want := range map[string]string{
		"":         "/",
		"a/b/":     "/a/b",
		"//a//b":   "/a/b",
		"/./x/":    "/x",
		"/already": "/already",
	} {
		if got := CleanPath(in); got != want {
			t.Errorf("CleanPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaxLinkDepth(t *testing.T) {
	if MaxLinkDepth < 10 || MaxLinkDepth > 10000 {
		t.Errorf("MaxLinkDepth out of range: %d", MaxLinkDepth)
	}
}
