package hdf5

import (
	"errors"
	"fmt"
	"path"

	"github.com/robert-malhotra/h5value/internal/dtype"
	"github.com/robert-malhotra/h5value/internal/heap"
	"github.com/robert-malhotra/h5value/internal/layout"
	"github.com/robert-malhotra/h5value/internal/message"
	"github.com/robert-malhotra/h5value/internal/object"
	"github.com/robert-malhotra/h5value/types"
)

// Dataset represents an HDF5 dataset.
type Dataset struct {
	file      *File
	path      string
	header    *object.Header
	dataspace *message.Dataspace
	datatype  *message.Datatype
	layout    layout.Layout
}

// newDataset creates a Dataset from an object header.
func newDataset(f *File, path string, header *object.Header) (*Dataset, error) {
	ds := &Dataset{
		file:   f,
		path:   path,
		header: header,
	}

	ds.dataspace = header.Dataspace()
	if ds.dataspace == nil {
		return nil, fmt.Errorf("dataset missing dataspace message")
	}

	var err error
	if ds.datatype, err = f.datatype(header); err != nil {
		return nil, err
	}

	layoutMsg := header.DataLayout()
	if layoutMsg == nil {
		return nil, fmt.Errorf("dataset missing layout message")
	}
	ds.layout, err = layout.New(layoutMsg, ds.dataspace, ds.datatype, header.FilterPipeline(), header.FillValue(), f.reader)
	if err != nil {
		if errors.Is(err, layout.ErrUnsupported) {
			return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
		}
		return nil, fmt.Errorf("creating layout: %w", err)
	}
	return ds, nil
}

// datatype returns the datatype of header, following a committed
// datatype reference.
func (f *File) datatype(header *object.Header) (*message.Datatype, error) {
	if dt := header.Datatype(); dt != nil {
		return dt, nil
	}
	shared := header.SharedDatatype()
	if shared == nil {
		return nil, fmt.Errorf("dataset missing datatype message")
	}
	committed, err := object.Read(f.reader, shared.Address)
	if err != nil {
		return nil, fmt.Errorf("reading committed datatype: %w", err)
	}
	dt := committed.Datatype()
	if dt == nil {
		return nil, fmt.Errorf("committed datatype at %d has no datatype message", shared.Address)
	}
	return dt, nil
}

func (d *Dataset) withPath(p string) *Dataset {
	c := *d
	c.path = p
	return &c
}

// Name returns the dataset name (last component of path).
func (d *Dataset) Name() string {
	return path.Base(d.path)
}

// Path returns the full path to this dataset.
func (d *Dataset) Path() string {
	return d.path
}

// Shape returns the dimensions of the dataset, nil for a scalar.
func (d *Dataset) Shape() []uint64 {
	if d.dataspace.IsScalar() {
		return nil
	}
	return d.dataspace.Dimensions
}

// Rank returns the number of dimensions.
func (d *Dataset) Rank() int {
	return d.dataspace.Rank
}

// Len returns the number of elements: 1 for a scalar, 0 for a null
// dataspace.
func (d *Dataset) Len() uint64 {
	return d.dataspace.NumElements()
}

// Datatype returns the stored datatype.
func (d *Dataset) Datatype() *message.Datatype {
	return d.datatype
}

// Layout returns the storage layout class.
func (d *Dataset) Layout() message.LayoutClass {
	return d.layout.Class()
}

// Descriptor returns the descriptor of the dataset's native element form.
func (d *Dataset) Descriptor() (types.Descriptor, error) {
	desc, err := dtype.Descriptor(d.datatype)
	if err != nil {
		if errors.Is(err, dtype.ErrUnsupported) {
			return types.Descriptor{}, fmt.Errorf("%w: %s: %w", ErrUnsupported, d.path, err)
		}
		return types.Descriptor{}, fmt.Errorf("%s: %w", d.path, err)
	}
	return desc, nil
}

// ReadRaw returns every element as stored, after filters.
func (d *Dataset) ReadRaw() ([]byte, error) {
	if d.file.closed.Load() {
		return nil, ErrClosed
	}
	if d.Len() == 0 {
		return []byte{}, nil
	}
	data, err := d.layout.Read()
	if errors.Is(err, layout.ErrUnsupported) {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupported, d.path, err)
	}
	return data, err
}

// ReadNative returns every element in host byte order, laid out as desc
// describes. desc must equal Descriptor(). Variable-length elements become
// records the file's Resolve method accepts.
func (d *Dataset) ReadNative(desc types.Descriptor) ([]byte, error) {
	mine, err := d.Descriptor()
	if err != nil {
		return nil, err
	}
	if !desc.Equal(mine) {
		return nil, fmt.Errorf("%w: %s is %s, not %s", ErrTypeMismatch, d.path, mine, desc)
	}
	raw, err := d.ReadRaw()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.path, err)
	}
	out, err := dtype.ToNative(d.datatype, desc, raw, d.Len(), fileHeap{d.file})
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", d.path, err)
	}
	return out, nil
}

// fileHeap fetches variable-length payloads from the global heap and keeps
// their native forms in the file's arena.
type fileHeap struct {
	f *File
}

func (h fileHeap) Fetch(stored []byte) ([]byte, error) {
	v, err := heap.ParseVarLen(stored, h.f.reader)
	if err != nil {
		return nil, err
	}
	if v.ID.CollectionAddress == 0 || h.f.reader.IsUndefinedOffset(v.ID.CollectionAddress) {
		return nil, nil
	}
	return h.f.heaps.Object(v.ID)
}

func (h fileHeap) Store(payload []byte) uint64 {
	return h.f.arena.store(payload)
}
