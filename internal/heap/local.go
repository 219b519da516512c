// Package heap implements HDF5 heap structures.
package heap

import (
	"bytes"
	"fmt"

	"github.com/robert-malhotra/h5value/internal/binary"
)

// LocalHeap represents an HDF5 local heap, which holds the member names
// of an old-style group.
type LocalHeap struct {
	DataSize    uint64
	FreeOffset  uint64
	DataAddress uint64
	data        []byte
}

var localHeapSignature = []byte{'H', 'E', 'A', 'P'}

// ReadLocalHeap reads a local heap at the given address.
func ReadLocalHeap(r *binary.Reader, address uint64) (*LocalHeap, error) {
	hr := r.At(int64(address))

	sig, err := hr.Slice(4)
	if err != nil {
		return nil, fmt.Errorf("reading local heap signature: %w", err)
	}
	if !bytes.Equal(sig, localHeapSignature) {
		return nil, fmt.Errorf("invalid local heap signature: got %q, expected \"HEAP\"", sig)
	}

	version, err := hr.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("unsupported local heap version: %d", version)
	}
	hr.Skip(3)

	heap := &LocalHeap{}
	if heap.DataSize, err = hr.ReadLength(); err != nil {
		return nil, err
	}
	if heap.FreeOffset, err = hr.ReadLength(); err != nil {
		return nil, err
	}
	if heap.DataAddress, err = hr.ReadOffset(); err != nil {
		return nil, err
	}

	if heap.data, err = r.At(int64(heap.DataAddress)).Slice(int(heap.DataSize)); err != nil {
		return nil, fmt.Errorf("reading local heap data: %w", err)
	}
	return heap, nil
}

// GetString reads the NUL-terminated string at offset in the data segment.
func (h *LocalHeap) GetString(offset uint64) (string, error) {
	if offset >= uint64(len(h.data)) {
		return "", fmt.Errorf("local heap offset %d out of range (%d bytes)", offset, len(h.data))
	}
	s := h.data[offset:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s), nil
}
