// Package filter implements the HDF5 filter pipeline applied to chunks.
//
// Supported filters:
//
//   - deflate (ID 1), backed by github.com/klauspost/compress/zlib
//   - shuffle (ID 2)
//   - fletcher32 (ID 3)
//
// SZIP, N-bit and scale-offset are recognized by name in errors. A dataset
// that requires one of them cannot be read; an optional unknown filter is
// skipped.
//
// Decoding runs the filters last to first:
//
//	p, err := filter.NewPipeline(msg)
//	raw, err := p.Decode(stored, chunkFilterMask)
//
// Bit i of a chunk's filter mask means filter i was not applied to that
// chunk.
package filter
