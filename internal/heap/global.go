package heap

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/robert-malhotra/h5value/internal/binary"
)

var globalHeapSignature = []byte{'G', 'C', 'O', 'L'}

// GlobalHeap represents an HDF5 global heap collection, which holds the
// payloads of variable-length data.
type GlobalHeap struct {
	Address        uint64
	CollectionSize uint64
	objects        map[uint16][]byte
}

// GlobalHeapID references an object in a global heap collection.
type GlobalHeapID struct {
	CollectionAddress uint64
	ObjectIndex       uint32
}

// ReadGlobalHeap reads a global heap collection at the given address.
func ReadGlobalHeap(r *binary.Reader, address uint64) (*GlobalHeap, error) {
	if address == 0 || r.IsUndefinedOffset(address) {
		return nil, fmt.Errorf("invalid global heap address %d", address)
	}

	hr := r.At(int64(address))
	sig, err := hr.Slice(4)
	if err != nil {
		return nil, fmt.Errorf("reading global heap signature: %w", err)
	}
	if !bytes.Equal(sig, globalHeapSignature) {
		return nil, fmt.Errorf("invalid global heap signature: %q", sig)
	}

	version, err := hr.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 1 {
		return nil, fmt.Errorf("unsupported global heap version: %d", version)
	}
	hr.Skip(3)

	size, err := hr.ReadLength()
	if err != nil {
		return nil, err
	}

	heap := &GlobalHeap{
		Address:        address,
		CollectionSize: size,
		objects:        make(map[uint16][]byte),
	}

	end := int64(address) + int64(size)
	objHeader := int64(8 + r.LengthSize())
	for hr.Pos()+objHeader <= end {
		index, err := hr.ReadUint16()
		if err != nil {
			return nil, err
		}
		// Index 0 is the free space that ends the collection.
		if index == 0 {
			break
		}
		hr.Skip(6) // reference count, reserved

		objSize, err := hr.ReadLength()
		if err != nil {
			return nil, err
		}
		if hr.Pos()+int64(objSize) > end {
			return nil, fmt.Errorf("global heap object %d overruns its collection", index)
		}
		data, err := hr.Slice(int(objSize))
		if err != nil {
			return nil, err
		}
		heap.objects[index] = data
		hr.Align(8)
	}

	return heap, nil
}

// GetObject returns a copy of the object with the given index.
func (h *GlobalHeap) GetObject(index uint32) ([]byte, error) {
	if h == nil {
		return nil, fmt.Errorf("nil global heap")
	}
	data, ok := h.objects[uint16(index)]
	if !ok || index > 0xFFFF {
		return nil, fmt.Errorf("object index %d not found in global heap at %d", index, h.Address)
	}
	return bytes.Clone(data), nil
}

// Len returns the number of objects in the collection.
func (h *GlobalHeap) Len() int {
	return len(h.objects)
}

// VarLen is a variable-length element as stored in the file: element
// count followed by the global heap ID of the payload.
type VarLen struct {
	Length uint32
	ID     GlobalHeapID
}

// VarLenSize returns the stored size of a variable-length element.
func VarLenSize(offsetSize int) int {
	return 4 + offsetSize + 4
}

// ParseVarLen decodes a stored variable-length element.
func ParseVarLen(data []byte, r *binary.Reader) (VarLen, error) {
	var v VarLen
	vr := binary.NewReader(data, binary.Config{
		ByteOrder:  r.ByteOrder(),
		OffsetSize: r.OffsetSize(),
		LengthSize: r.LengthSize(),
	})
	var err error
	if v.Length, err = vr.ReadUint32(); err != nil {
		return v, fmt.Errorf("variable-length element: %w", err)
	}
	if v.ID.CollectionAddress, err = vr.ReadOffset(); err != nil {
		return v, fmt.Errorf("variable-length element: %w", err)
	}
	if v.ID.ObjectIndex, err = vr.ReadUint32(); err != nil {
		return v, fmt.Errorf("variable-length element: %w", err)
	}
	return v, nil
}

// Cache keeps parsed collections so repeated references do not re-read
// them. It is safe for concurrent use.
type Cache struct {
	r           *binary.Reader
	mu          sync.Mutex
	collections map[uint64]*GlobalHeap
}

// NewCache returns a collection cache reading through r.
func NewCache(r *binary.Reader) *Cache {
	return &Cache{r: r, collections: make(map[uint64]*GlobalHeap)}
}

// Collection returns the collection at address, reading it on first use.
func (c *Cache) Collection(address uint64) (*GlobalHeap, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.collections[address]; ok {
		return h, nil
	}
	h, err := ReadGlobalHeap(c.r, address)
	if err != nil {
		return nil, err
	}
	c.collections[address] = h
	return h, nil
}

// Object returns a copy of the object id refers to.
func (c *Cache) Object(id GlobalHeapID) ([]byte, error) {
	h, err := c.Collection(id.CollectionAddress)
	if err != nil {
		return nil, err
	}
	return h.GetObject(id.ObjectIndex)
}
