// Package superblock handles parsing of HDF5 superblock structures.
//
// The superblock is the entry point for any HDF5 image, containing the
// format version, offset/length sizes, and the root group address.
package superblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

// Signature is the 8-byte HDF5 format signature: 0x89 H D F \r \n 0x1a \n.
var Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

// Possible superblock locations, searched in order.
var superblockOffsets = []int64{0, 512, 1024, 2048, 4096}

var (
	ErrNotHDF5            = errors.New("not an HDF5 file: signature not found")
	ErrUnsupportedVersion = errors.New("unsupported superblock version")
	ErrInvalidSuperblock  = errors.New("invalid superblock structure")
)

// Superblock contains the essential HDF5 file metadata.
type Superblock struct {
	Version              uint8
	OffsetSize           uint8
	LengthSize           uint8
	FileConsistencyFlags uint8

	// BaseAddress is the absolute position that file addresses are relative to.
	BaseAddress                uint64
	SuperblockExtensionAddress uint64
	EOFAddress                 uint64

	// RootGroupAddress is the address of the root group object header.
	RootGroupAddress uint64

	// v0/v1 only
	GroupLeafNodeK     uint16
	GroupInternalNodeK uint16
	IndexedStorageK    uint16

	// RootGroupBTreeAddress and RootGroupLocalHeapAddress come from the
	// root symbol table entry scratch pad (v0/v1, cache type 1).
	RootGroupBTreeAddress     uint64
	RootGroupLocalHeapAddress uint64
	HasRootScratchPad         bool

	ByteOrder binary.ByteOrder

	// FileOffset is where the signature was found.
	FileOffset int64
}

// Read locates and parses the superblock of an in-memory image.
func Read(data []byte) (*Superblock, error) {
	for _, offset := range superblockOffsets {
		if offset+int64(len(Signature)) > int64(len(data)) {
			break
		}
		if !bytes.Equal(data[offset:offset+int64(len(Signature))], Signature) {
			continue
		}

		r := binpkg.NewReader(data, binpkg.DefaultConfig()).At(offset + 8)
		version, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}

		var sb *Superblock
		switch version {
		case 0, 1:
			sb, err = readV0(r, version)
		case 2, 3:
			sb, err = readV2(data, r, offset, version)
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
		}
		if err != nil {
			return nil, err
		}

		sb.FileOffset = offset
		sb.ByteOrder = binary.LittleEndian
		return sb, nil
	}

	return nil, ErrNotHDF5
}

// ReaderConfig returns a binary.Config for readers of this file.
func (sb *Superblock) ReaderConfig() binpkg.Config {
	return binpkg.Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: int(sb.OffsetSize),
		LengthSize: int(sb.LengthSize),
	}
}

func checkSizes(sb *Superblock) error {
	if !binpkg.ValidSize(int(sb.OffsetSize)) || !binpkg.ValidSize(int(sb.LengthSize)) {
		return fmt.Errorf("%w: offset size %d, length size %d", ErrInvalidSuperblock, sb.OffsetSize, sb.LengthSize)
	}
	return nil
}
