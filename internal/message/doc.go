// Package message handles parsing of HDF5 object header messages.
//
// Object headers contain a sequence of messages that describe the properties
// of HDF5 objects (groups, datasets, committed datatypes). Each message has
// a type, flags, and type-specific content.
//
// # Message Types
//
// Parsing is implemented for:
//
//   - Dataspace (0x0001): dimensions of a dataset. See [Dataspace].
//   - Link Info (0x0002): whether a group stores links densely. See [LinkInfo].
//   - Datatype (0x0003): element type, nested types included. See [Datatype].
//   - Fill Value (0x0004, 0x0005): value of unwritten storage. See [FillValue].
//   - Link (0x0006): a named link to another object. See [Link].
//   - Data Layout (0x0008): where dataset bytes live. See [DataLayout].
//   - Filter Pipeline (0x000B): filters applied to chunks. See [FilterPipeline].
//   - Continuation (0x0010): more header messages elsewhere. See [Continuation].
//   - Symbol Table (0x0011): v1 group B-tree and heap. See [SymbolTable].
//
// A message flagged as shared parses to [Shared], which carries the address
// of the object header holding the real message. Unrecognized message types
// are wrapped in [Unknown].
//
// # Parsing
//
// Use [Parse] to parse a message from raw bytes:
//
//	msg, err := message.Parse(msgType, msgData, msgFlags, reader)
//
// The reader only supplies the file's offset and length sizes. The
// returned [Message] can be type-asserted to the specific message type.
// Truncated bodies fail with an error wrapping binary.ErrOutOfBounds.
package message
