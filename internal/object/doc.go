// Package object reads HDF5 object headers.
//
// Every HDF5 object (group, dataset, committed datatype) has an object
// header holding its header messages. [Read] detects the header version:
//
//   - Version 1: used with superblock v0/v1. Messages are 8-byte aligned
//     and may continue in bare continuation blocks.
//   - Version 2 (signature "OHDR"): used with superblock v2/v3. Chunk 0
//     and every "OCHK" continuation block carry a lookup3 checksum, which
//     is verified.
//
// Continuation messages are followed transparently; [Header.Messages]
// holds the messages of all blocks in storage order. Typed accessors
// ([Header.Dataspace], [Header.Datatype], [Header.DataLayout],
// [Header.Links] and so on) return nil when the message is absent.
//
// [WriteV1] and [WriteV2] encode headers from raw message bodies; they
// exist to build in-memory images for tests.
package object
