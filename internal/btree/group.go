package btree

import (
	"bytes"
	"fmt"

	"github.com/robert-malhotra/h5value/internal/binary"
	"github.com/robert-malhotra/h5value/internal/heap"
)

// Symbol table entry cache types.
const (
	CacheNone     uint32 = 0
	CacheHardLink uint32 = 1
	CacheSoftLink uint32 = 2
)

// SymbolEntrySize returns the stored size of a symbol table entry.
func SymbolEntrySize(offsetSize int) int {
	return 2*offsetSize + 4 + 4 + 16
}

// GroupEntry is one member of an old-style group.
type GroupEntry struct {
	Name          string
	ObjectAddress uint64
	// SoftLink is the target path of a soft link. It is empty for hard links.
	SoftLink string
}

// IsSoftLink reports whether the entry is a soft link.
func (e GroupEntry) IsSoftLink() bool {
	return e.SoftLink != ""
}

// ReadGroupEntries reads every entry of the group B-tree rooted at
// address, resolving names through the group's local heap.
func ReadGroupEntries(r *binary.Reader, address uint64, lh *heap.LocalHeap) ([]GroupEntry, error) {
	var entries []GroupEntry
	if err := readGroupNode(r, address, lh, visited{}, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func readGroupNode(r *binary.Reader, address uint64, lh *heap.LocalHeap, seen visited, out *[]GroupEntry) error {
	if err := seen.enter(address); err != nil {
		return err
	}
	nr := r.At(int64(address))
	h, err := readNodeHeader(nr, NodeGroup)
	if err != nil {
		return fmt.Errorf("group b-tree at %d: %w", address, err)
	}

	// Keys are heap offsets of the separating names; only children matter.
	for i := uint16(0); i < h.Entries; i++ {
		if _, err := nr.ReadLength(); err != nil {
			return err
		}
		child, err := nr.ReadOffset()
		if err != nil {
			return err
		}
		if h.Level > 0 {
			err = readGroupNode(r, child, lh, seen, out)
		} else {
			err = readSymbolNode(r, child, lh, seen, out)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func readSymbolNode(r *binary.Reader, address uint64, lh *heap.LocalHeap, seen visited, out *[]GroupEntry) error {
	if err := seen.enter(address); err != nil {
		return err
	}
	nr := r.At(int64(address))

	sig, err := nr.Slice(4)
	if err != nil {
		return fmt.Errorf("reading symbol node signature: %w", err)
	}
	if !bytes.Equal(sig, snodSignature) {
		return fmt.Errorf("invalid symbol node signature at %d: %q", address, sig)
	}
	version, err := nr.ReadUint8()
	if err != nil {
		return err
	}
	if version != 1 {
		return fmt.Errorf("unsupported symbol node version %d", version)
	}
	nr.Skip(1)
	n, err := nr.ReadUint16()
	if err != nil {
		return err
	}

	for i := uint16(0); i < n; i++ {
		entry, err := ReadSymbolEntry(nr, lh)
		if err != nil {
			return fmt.Errorf("symbol node at %d, entry %d: %w", address, i, err)
		}
		*out = append(*out, entry)
	}
	return nil
}

// ReadSymbolEntry reads one symbol table entry at the reader's position.
func ReadSymbolEntry(r *binary.Reader, lh *heap.LocalHeap) (GroupEntry, error) {
	var e GroupEntry

	nameOffset, err := r.ReadOffset()
	if err != nil {
		return e, err
	}
	if e.ObjectAddress, err = r.ReadOffset(); err != nil {
		return e, err
	}
	cache, err := r.ReadUint32()
	if err != nil {
		return e, err
	}
	r.Skip(4)
	scratch, err := r.Slice(16)
	if err != nil {
		return e, err
	}

	if e.Name, err = lh.GetString(nameOffset); err != nil {
		return e, fmt.Errorf("entry name: %w", err)
	}
	if cache == CacheSoftLink {
		target := uint64(r.ByteOrder().Uint32(scratch))
		if e.SoftLink, err = lh.GetString(target); err != nil {
			return e, fmt.Errorf("soft link %q: %w", e.Name, err)
		}
		if e.SoftLink == "" {
			return e, fmt.Errorf("soft link %q has an empty target", e.Name)
		}
		e.ObjectAddress = 0
	}
	return e, nil
}
