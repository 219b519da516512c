package message

import (
	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

// SymbolTable points at the B-tree and local heap of an old-style group.
type SymbolTable struct {
	BTreeAddress     uint64
	LocalHeapAddress uint64
}

func (m *SymbolTable) Type() Type { return TypeSymbolTable }

func parseSymbolTable(r *binpkg.Reader) (*SymbolTable, error) {
	btree, err := r.ReadOffset()
	if err != nil {
		return nil, err
	}
	heap, err := r.ReadOffset()
	if err != nil {
		return nil, err
	}
	return &SymbolTable{BTreeAddress: btree, LocalHeapAddress: heap}, nil
}
