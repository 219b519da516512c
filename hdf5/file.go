package hdf5

import (
	stderrors "errors"
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/robert-malhotra/h5value/internal/binary"
	"github.com/robert-malhotra/h5value/internal/heap"
	"github.com/robert-malhotra/h5value/internal/object"
	"github.com/robert-malhotra/h5value/internal/superblock"
)

// File is an open HDF5 image. It reads lazily from the buffer it was
// opened on, which must stay unmodified while the file is in use.
type File struct {
	path       string
	reader     *binary.Reader
	superblock *superblock.Superblock
	root       *Group
	heaps      *heap.Cache
	arena      arena
	closed     atomic.Bool
}

// Open reads the file at path and opens it.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	f, err := OpenBytes(data)
	if err != nil {
		return nil, err
	}
	f.path = path
	return f, nil
}

// OpenBytes opens an image without copying it.
func OpenBytes(data []byte) (*File, error) {
	sb, err := superblock.Read(data)
	if err != nil {
		if stderrors.Is(err, superblock.ErrNotHDF5) {
			return nil, fmt.Errorf("%w: %w", ErrNotHDF5, err)
		}
		return nil, fmt.Errorf("reading superblock: %w", err)
	}

	// Addresses are relative to the base address, which is past any user block.
	if sb.BaseAddress > uint64(len(data)) {
		return nil, fmt.Errorf("%w: base address %d beyond end of image", ErrNotHDF5, sb.BaseAddress)
	}
	reader := binary.NewReader(data[sb.BaseAddress:], sb.ReaderConfig())

	f := &File{
		reader:     reader,
		superblock: sb,
		heaps:      heap.NewCache(reader),
	}

	root, err := f.openGroupAt(sb.RootGroupAddress, "/")
	if err != nil {
		return nil, fmt.Errorf("opening root group: %w", err)
	}
	f.root = root

	Logger().Debug("opened image",
		zap.Int("bytes", len(data)),
		zap.Uint8("superblock", sb.Version),
		zap.Uint8("offset_size", sb.OffsetSize))
	return f, nil
}

// Close releases the payloads of variable-length data read so far.
// Closing twice is a no-op.
func (f *File) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	f.arena.reset()
	return nil
}

// Root returns the root group of the file.
func (f *File) Root() *Group {
	return f.root
}

// Path returns the path the file was opened from, or "" for OpenBytes.
func (f *File) Path() string {
	return f.path
}

// Version returns the superblock version.
func (f *File) Version() int {
	return int(f.superblock.Version)
}

// OpenGroup opens a group by path.
func (f *File) OpenGroup(path string) (*Group, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	return f.root.OpenGroup(path)
}

// OpenDataset opens a dataset by path.
func (f *File) OpenDataset(path string) (*Dataset, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	return f.root.OpenDataset(path)
}

// openGroupAt opens a group at the given address.
func (f *File) openGroupAt(address uint64, path string) (*Group, error) {
	header, err := object.Read(f.reader, address)
	if err != nil {
		return nil, fmt.Errorf("reading object header: %w", err)
	}
	return &Group{file: f, path: path, header: header}, nil
}

// openObject opens whatever object lives at address.
func (f *File) openObject(address uint64, path string) (any, error) {
	header, err := object.Read(f.reader, address)
	if err != nil {
		return nil, fmt.Errorf("reading object header: %w", err)
	}
	switch {
	case header.IsDataset():
		return newDataset(f, path, header)
	case header.IsGroup():
		return &Group{file: f, path: path, header: header}, nil
	default:
		return nil, nil
	}
}
