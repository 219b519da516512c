// Package btree reads the version 1 B-trees of an HDF5 file.
//
// Version 1 B-trees (signature "TREE") index two kinds of things:
//
//   - Group nodes (type 0) point at symbol table nodes ("SNOD"), each
//     holding up to 2K entries whose names live in the group's local heap.
//     [ReadGroupEntries] flattens the tree into a list of [GroupEntry].
//   - Chunk nodes (type 1) map chunk origins to stored chunks.
//     [ReadChunkIndex] flattens the tree into a [ChunkIndex].
//
// Both readers refuse to visit a node twice, so a corrupt tree that points
// back at itself fails instead of looping.
package btree
