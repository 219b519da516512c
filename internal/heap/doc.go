// Package heap implements HDF5 heap structures for variable-length data.
//
// # Local Heap
//
// The [LocalHeap] (signature "HEAP") holds the member names of an
// old-style group as NUL-terminated strings. Symbol table entries refer to
// names by offset into the heap's data segment:
//
//	lh, err := heap.ReadLocalHeap(reader, heapAddress)
//	name, err := lh.GetString(nameOffset)
//
// # Global Heap
//
// A [GlobalHeap] collection (signature "GCOL") holds the payloads of
// variable-length strings and sequences. A dataset element of a
// variable-length type is stored as a [VarLen]: an element count and a
// [GlobalHeapID] naming the collection and object index.
//
//	v, err := heap.ParseVarLen(element, reader)
//	payload, err := cache.Object(v.ID)
//
// [Cache] keeps each collection parsed once per file.
package heap
