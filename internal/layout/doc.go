// Package layout reads the raw bytes of a dataset from its storage.
//
// HDF5 stores dataset bytes in one of three layouts:
//
//   - Compact: the bytes live inside the data layout message.
//   - Contiguous: the bytes occupy one block of the file. An unallocated
//     block reads as the fill value.
//   - Chunked: the dataspace is cut into equal chunks, each stored and
//     filtered on its own, and found through a chunk index.
//
// Supported chunk indexes are the version 1 B-tree, the single chunk, the
// implicit index and the fixed array. Extensible arrays and version 2
// B-trees return [ErrUnsupported].
//
// Every layout yields the whole dataset as elements in row-major order:
//
//	l, err := layout.New(layoutMsg, dataspace, datatype, pipeline, fill, reader)
//	raw, err := l.Read()
package layout
