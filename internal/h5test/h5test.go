// Package h5test builds small HDF5 images in memory for tests.
//
// A Builder writes a tree of Group, Dataset and link nodes into a single
// image, using either old-style structures (superblock version 0, version
// 1 object headers, symbol table groups) or new-style ones (superblock
// version 2, version 2 object headers, link message groups).
package h5test

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"
	"testing"

	binpkg "github.com/robert-malhotra/h5value/internal/binary"
	"github.com/robert-malhotra/h5value/internal/btree"
	"github.com/robert-malhotra/h5value/internal/filter"
	"github.com/robert-malhotra/h5value/internal/heap"
	"github.com/robert-malhotra/h5value/internal/layout"
	"github.com/robert-malhotra/h5value/internal/message"
	"github.com/robert-malhotra/h5value/internal/object"
	"github.com/robert-malhotra/h5value/internal/superblock"
)

// Member is a node that can be placed in a group.
type Member interface {
	memberName() string
}

// Group is a group node. Dense marks a new-style group whose links live
// in a fractal heap; no heap is written, so such groups cannot be listed.
type Group struct {
	Name    string
	Members []Member
	Dense   bool
}

// SoftLink is a symbolic link to Target.
type SoftLink struct {
	Name   string
	Target string
}

// ExternalLink points into another file. Only new-style images hold them.
type ExternalLink struct {
	Name string
	File string
	Path string
}

// Storage selects a dataset layout.
type Storage int

const (
	Contiguous Storage = iota
	Compact
	Chunked
)

// Dataset is a dataset node. Data holds the stored bytes of every element
// in row-major order. Dims nil means a scalar dataspace.
type Dataset struct {
	Name    string
	Type    *message.Datatype
	Dims    []uint64
	MaxDims []uint64
	Null    bool
	Data    []byte

	Storage Storage
	// Chunk and Index configure chunked storage. PageBits sizes fixed
	// array pages and defaults to 10.
	Chunk    []uint32
	Index    message.ChunkIndexType
	PageBits uint8
	Filters  []message.FilterInfo

	Fill []byte
	// Committed stores the datatype in its own object header and
	// references it from the dataset.
	Committed bool
}

func (g *Group) memberName() string        { return g.Name }
func (d *Dataset) memberName() string      { return d.Name }
func (l *SoftLink) memberName() string     { return l.Name }
func (l *ExternalLink) memberName() string { return l.Name }

// Option configures a Builder.
type Option func(*Builder)

// WithVersion selects superblock version 0 (old-style) or 2 (new-style).
func WithVersion(v uint8) Option {
	return func(b *Builder) { b.version = v }
}

// WithOffsetSize sets the address and length width: 2, 4 or 8.
func WithOffsetSize(n int) Option {
	return func(b *Builder) { b.offsetSize = n }
}

// Builder writes one image. Heap payloads may be written before Build.
type Builder struct {
	version    uint8
	offsetSize int
	w          *binpkg.Writer
	sb         *superblock.Superblock
}

// New creates a builder for a new-style image with 8-byte addresses
// unless options say otherwise.
func New(opts ...Option) *Builder {
	b := &Builder{version: 2, offsetSize: 8}
	for _, opt := range opts {
		opt(b)
	}
	b.w = binpkg.NewWriter(b.config())
	b.sb = &superblock.Superblock{
		Version:            b.version,
		OffsetSize:         uint8(b.offsetSize),
		LengthSize:         uint8(b.offsetSize),
		GroupLeafNodeK:     4,
		GroupInternalNodeK: 16,
	}
	b.w.Zeros(b.sb.Size())
	return b
}

func (b *Builder) config() binpkg.Config {
	return binpkg.Config{ByteOrder: binary.LittleEndian, OffsetSize: b.offsetSize, LengthSize: b.offsetSize}
}

// VarLenSize is the stored size of a variable-length element.
func (b *Builder) VarLenSize() int {
	return heap.VarLenSize(b.offsetSize)
}

// Strings writes each string into a global heap and returns the stored
// variable-length elements, concatenated.
func (b *Builder) Strings(s ...string) []byte {
	payloads := make([][]byte, len(s))
	counts := make([]uint32, len(s))
	for i, v := range s {
		payloads[i] = []byte(v)
		counts[i] = uint32(len(v))
	}
	return b.varLen(payloads, counts)
}

// Sequences writes each payload into a global heap and returns stored
// variable-length elements counting elemSize-byte items.
func (b *Builder) Sequences(elemSize int, payloads ...[]byte) []byte {
	counts := make([]uint32, len(payloads))
	for i, p := range payloads {
		counts[i] = uint32(len(p) / elemSize)
	}
	return b.varLen(payloads, counts)
}

func (b *Builder) varLen(payloads [][]byte, counts []uint32) []byte {
	ids := heap.WriteGlobalHeap(b.w, payloads)
	out := binpkg.NewWriter(b.config())
	for i, id := range ids {
		heap.WriteVarLen(out, heap.VarLen{Length: counts[i], ID: id})
	}
	return out.Bytes()
}

// Build writes root and returns the finished image.
func (b *Builder) Build(root *Group) ([]byte, error) {
	addr, st, err := b.group(root)
	if err != nil {
		return nil, err
	}

	sb := b.sb
	sb.RootGroupAddress = addr
	if b.version < 2 {
		sb.HasRootScratchPad = true
		sb.RootGroupBTreeAddress = st.BTreeAddress
		sb.RootGroupLocalHeapAddress = st.LocalHeapAddress
	}
	sb.EOFAddress = uint64(b.w.Pos())

	hw := binpkg.NewWriter(b.config())
	sb.Write(hw)
	img := b.w.Bytes()
	copy(img, hw.Bytes())
	return img, nil
}

// MustBuild is Build for tests.
func (b *Builder) MustBuild(tb testing.TB, root *Group) []byte {
	tb.Helper()
	img, err := b.Build(root)
	if err != nil {
		tb.Fatalf("building image: %v", err)
	}
	return img
}

// Image builds root with a fresh builder.
func Image(tb testing.TB, root *Group, opts ...Option) []byte {
	tb.Helper()
	return New(opts...).MustBuild(tb, root)
}

func (b *Builder) raw(m message.Encoder, flags uint8) object.Raw {
	return object.Raw{Type: m.Type(), Flags: flags, Data: message.Marshal(m, b.config())}
}

func (b *Builder) header(msgs []object.Raw) uint64 {
	if b.version < 2 {
		return object.WriteV1(b.w, msgs)
	}
	return object.WriteV2(b.w, msgs)
}

// group writes the members of g, then g itself. Old-style groups also
// return their symbol table.
func (b *Builder) group(g *Group) (uint64, *message.SymbolTable, error) {
	members := slices.Clone(g.Members)
	slices.SortFunc(members, func(a, c Member) int {
		return strings.Compare(a.memberName(), c.memberName())
	})

	addrs := make([]uint64, len(members))
	for i, m := range members {
		var err error
		switch n := m.(type) {
		case *Group:
			addrs[i], _, err = b.group(n)
		case *Dataset:
			addrs[i], err = b.dataset(n)
		case *SoftLink:
		case *ExternalLink:
			if b.version < 2 {
				err = fmt.Errorf("external link %q needs a version 2 image", n.Name)
			}
		default:
			err = fmt.Errorf("unknown member %T", m)
		}
		if err != nil {
			return 0, nil, err
		}
	}

	if b.version < 2 {
		return b.symbolGroup(members, addrs)
	}

	li := message.NewLinkInfo()
	if g.Dense {
		li.FractalHeapAddress = 0
		li.NameIndexAddress = 0
	}
	msgs := []object.Raw{b.raw(li, 0), b.raw(&message.GroupInfo{}, 0)}
	for i, m := range members {
		var link *message.Link
		switch n := m.(type) {
		case *SoftLink:
			link = &message.Link{LinkType: message.LinkTypeSoft, Name: n.Name, SoftLinkValue: n.Target}
		case *ExternalLink:
			link = &message.Link{LinkType: message.LinkTypeExternal, Name: n.Name, ExternalFile: n.File, ExternalPath: n.Path}
		default:
			link = &message.Link{Name: m.memberName(), ObjectAddress: addrs[i]}
		}
		msgs = append(msgs, b.raw(link, 0))
	}
	return b.header(msgs), nil, nil
}

func (b *Builder) symbolGroup(members []Member, addrs []uint64) (uint64, *message.SymbolTable, error) {
	var names []string
	for _, m := range members {
		names = append(names, m.memberName())
		if l, ok := m.(*SoftLink); ok {
			names = append(names, l.Target)
		}
	}
	heapAddr, offsets := heap.WriteLocalHeap(b.w, names)

	var entries []btree.SymbolEntry
	next := 0
	for i, m := range members {
		e := btree.SymbolEntry{NameOffset: offsets[next], ObjectAddress: addrs[i]}
		next++
		if _, ok := m.(*SoftLink); ok {
			e.SoftLink = true
			e.LinkOffset = offsets[next]
			next++
		}
		entries = append(entries, e)
	}
	treeAddr := btree.WriteGroupTree(b.w, entries)

	st := &message.SymbolTable{BTreeAddress: treeAddr, LocalHeapAddress: heapAddr}
	return b.header([]object.Raw{b.raw(st, 0)}), st, nil
}

func (b *Builder) dataset(d *Dataset) (uint64, error) {
	if d.Type == nil {
		return 0, fmt.Errorf("dataset %q has no datatype", d.Name)
	}

	space := &message.Dataspace{SpaceType: message.DataspaceScalar}
	switch {
	case d.Null:
		space.SpaceType = message.DataspaceNull
	case d.Dims != nil:
		space = message.NewSimpleDataspace(d.Dims...)
		space.MaxDims = d.MaxDims
	}

	msgs := []object.Raw{b.raw(space, 0)}
	if d.Committed {
		typeAddr := b.header([]object.Raw{b.raw(d.Type, 0)})
		shared := &message.Shared{MessageType: message.TypeDatatype, Address: typeAddr}
		msgs = append(msgs, b.raw(shared, message.FlagShared))
	} else {
		msgs = append(msgs, b.raw(d.Type, 0))
	}
	if d.Fill != nil {
		msgs = append(msgs, b.raw(&message.FillValue{SpaceAllocTime: 2, Value: d.Fill}, 0))
	}
	if len(d.Filters) > 0 {
		msgs = append(msgs, b.raw(&message.FilterPipeline{Filters: d.Filters}, 0))
	}

	lay, err := b.storage(d, space)
	if err != nil {
		return 0, fmt.Errorf("dataset %q: %w", d.Name, err)
	}
	msgs = append(msgs, b.raw(lay, 0))
	return b.header(msgs), nil
}

func (b *Builder) storage(d *Dataset, space *message.Dataspace) (*message.DataLayout, error) {
	switch d.Storage {
	case Compact:
		return &message.DataLayout{Class: message.LayoutCompact, CompactData: d.Data}, nil

	case Contiguous:
		size := space.NumElements() * uint64(d.Type.Size)
		lay := &message.DataLayout{Class: message.LayoutContiguous, Address: message.UndefinedAddress, Size: size}
		if d.Data != nil {
			b.w.Align(8)
			lay.Address = uint64(b.w.Pos())
			b.w.Write(d.Data)
		}
		return lay, nil

	case Chunked:
		return b.chunked(d, space)
	}
	return nil, fmt.Errorf("unknown storage %d", d.Storage)
}

func (b *Builder) chunked(d *Dataset, space *message.Dataspace) (*message.DataLayout, error) {
	dims := space.Dimensions
	if space.IsScalar() {
		dims = []uint64{1}
	}
	if len(d.Chunk) != len(dims) {
		return nil, fmt.Errorf("chunk rank %d does not match dataset rank %d", len(d.Chunk), len(dims))
	}

	pipeline, err := filter.NewPipeline(&message.FilterPipeline{Filters: d.Filters})
	if err != nil {
		return nil, err
	}
	elemSize := uint64(d.Type.Size)
	chunks := Chunks(d.Data, dims, d.Chunk, elemSize)

	lay := &message.DataLayout{
		Class:          message.LayoutChunked,
		ChunkDims:      d.Chunk,
		ElementSize:    d.Type.Size,
		ChunkIndexType: d.Index,
		ChunkIndexAddr: message.UndefinedAddress,
	}
	if d.Data == nil {
		return lay, nil
	}

	type stored struct {
		origin []uint64
		addr   uint64
		size   int
	}
	var written []stored
	for _, c := range chunks {
		data := c.Data
		if d.Index != message.ChunkIndexImplicit {
			if data, err = pipeline.Encode(c.Data); err != nil {
				return nil, err
			}
		}
		addr := uint64(b.w.Pos())
		b.w.Write(data)
		written = append(written, stored{origin: c.Origin, addr: addr, size: len(data)})
	}

	switch d.Index {
	case message.ChunkIndexBTreeV1:
		entries := make([]btree.ChunkEntry, len(written))
		for i, s := range written {
			entries[i] = btree.ChunkEntry{Offset: s.origin, Size: uint32(s.size), Address: s.addr}
		}
		lay.ChunkIndexAddr = btree.WriteChunkTree(b.w, len(dims), entries)

	case message.ChunkIndexSingleChunk:
		if len(written) != 1 {
			return nil, fmt.Errorf("single chunk index over %d chunks", len(written))
		}
		lay.ChunkIndexAddr = written[0].addr
		if len(d.Filters) > 0 {
			lay.ChunkFlags = message.ChunkFlagSingleIndexWithFilter
			lay.FilteredChunkSize = uint64(written[0].size)
		}

	case message.ChunkIndexImplicit:
		if len(d.Filters) > 0 {
			return nil, fmt.Errorf("implicit chunk index with filters")
		}
		lay.ChunkIndexAddr = written[0].addr

	case message.ChunkIndexFixedArray:
		lay.PageBits = d.PageBits
		if lay.PageBits == 0 {
			lay.PageBits = 10
		}
		entries := make([]layout.FixedArrayEntry, len(written))
		for i, s := range written {
			entries[i] = layout.FixedArrayEntry{Address: s.addr, Size: uint64(s.size)}
		}
		lay.ChunkIndexAddr = layout.WriteFixedArray(b.w, entries, len(d.Filters) > 0, 4, lay.PageBits)

	default:
		// Other indexes are only written as a dangling address so
		// readers can report them.
		lay.ChunkIndexAddr = 0
	}
	return lay, nil
}

// Chunk is one chunk cut from a dataset buffer.
type Chunk struct {
	Origin []uint64
	Data   []byte
}

// Chunks cuts data into every chunk of the grid covering dims, in
// row-major chunk order. Edge chunks are padded with zeros.
func Chunks(data []byte, dims []uint64, chunk []uint32, elemSize uint64) []Chunk {
	rank := len(dims)
	grid := make([]uint64, rank)
	total := uint64(1)
	for d := range dims {
		grid[d] = (dims[d] + uint64(chunk[d]) - 1) / uint64(chunk[d])
		total *= grid[d]
	}
	chunkElems := uint64(1)
	for _, c := range chunk {
		chunkElems *= uint64(c)
	}

	out := make([]Chunk, 0, total)
	for linear := uint64(0); linear < total; linear++ {
		origin := make([]uint64, rank)
		rest := linear
		for d := rank - 1; d >= 0; d-- {
			origin[d] = (rest % grid[d]) * uint64(chunk[d])
			rest /= grid[d]
		}

		buf := make([]byte, chunkElems*elemSize)
		pos := make([]uint64, rank)
		for e := uint64(0); e < chunkElems; e++ {
			rest := e
			src, inside := uint64(0), true
			for d := rank - 1; d >= 0; d-- {
				pos[d] = origin[d] + rest%uint64(chunk[d])
				rest /= uint64(chunk[d])
			}
			for d := 0; d < rank; d++ {
				if pos[d] >= dims[d] {
					inside = false
					break
				}
				src = src*dims[d] + pos[d]
			}
			if inside && (src+1)*elemSize <= uint64(len(data)) {
				copy(buf[e*elemSize:], data[src*elemSize:(src+1)*elemSize])
			}
		}
		out = append(out, Chunk{Origin: origin, Data: buf})
	}
	return out
}
