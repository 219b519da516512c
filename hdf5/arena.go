package hdf5

import (
	"encoding/binary"
	"fmt"
	"slices"
	"sync"

	"github.com/robert-malhotra/h5value/types"
)

// arena keeps the native payloads of variable-length elements read from
// a file. Handle 0 is the empty payload; handle i refers to payloads[i-1].
type arena struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (a *arena) store(p []byte) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.payloads = append(a.payloads, p)
	return uint64(len(a.payloads))
}

func (a *arena) load(handle uint64) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if handle == 0 {
		return []byte{}, true
	}
	if handle > uint64(len(a.payloads)) {
		return nil, false
	}
	return a.payloads[handle-1], true
}

func (a *arena) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.payloads = nil
}

// Resolve returns a copy of the payload a native variable-length record
// refers to. Records come from ReadNative on a dataset of this file.
func (f *File) Resolve(record []byte) ([]byte, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	if len(record) != types.IndirectionSize {
		return nil, fmt.Errorf("%w: record of %d bytes", ErrBadHandle, len(record))
	}
	handle := binary.NativeEndian.Uint64(record[8:])
	p, ok := f.arena.load(handle)
	if !ok {
		return nil, fmt.Errorf("%w: handle %d", ErrBadHandle, handle)
	}
	return slices.Clone(p), nil
}
