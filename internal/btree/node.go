package btree

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/robert-malhotra/h5value/internal/binary"
)

// Node types of a version 1 B-tree.
const (
	NodeGroup uint8 = 0
	NodeChunk uint8 = 1
)

var (
	treeSignature = []byte{'T', 'R', 'E', 'E'}
	snodSignature = []byte{'S', 'N', 'O', 'D'}
)

// ErrCycle is returned when a tree visits the same node twice.
var ErrCycle = errors.New("b-tree node visited twice")

// nodeHeader is the fixed part of a version 1 B-tree node.
type nodeHeader struct {
	Type    uint8
	Level   uint8
	Entries uint16
}

// readNodeHeader reads a node header and leaves r positioned at the first
// key.
func readNodeHeader(r *binary.Reader, want uint8) (nodeHeader, error) {
	var h nodeHeader

	sig, err := r.Slice(4)
	if err != nil {
		return h, fmt.Errorf("reading b-tree signature: %w", err)
	}
	if !bytes.Equal(sig, treeSignature) {
		return h, fmt.Errorf("invalid b-tree signature: got %q, expected \"TREE\"", sig)
	}
	if h.Type, err = r.ReadUint8(); err != nil {
		return h, err
	}
	if h.Type != want {
		return h, fmt.Errorf("unexpected b-tree node type %d, expected %d", h.Type, want)
	}
	if h.Level, err = r.ReadUint8(); err != nil {
		return h, err
	}
	if h.Entries, err = r.ReadUint16(); err != nil {
		return h, err
	}
	// Siblings are not needed for a full traversal.
	r.Skip(2 * int64(r.OffsetSize()))
	return h, nil
}

// visited records node addresses seen during one traversal.
type visited map[uint64]bool

func (v visited) enter(address uint64) error {
	if v[address] {
		return fmt.Errorf("%w: %d", ErrCycle, address)
	}
	v[address] = true
	return nil
}
