// Package superblock locates and parses the superblock of an in-memory
// HDF5 image.
//
// [Read] looks for the 8-byte signature (89 48 44 46 0D 0A 1A 0A) at
// offsets 0, 512, 1024, 2048 and 4096. Versions 0 and 1 describe the root
// group through a symbol table entry; versions 2 and 3 point at its object
// header directly and carry a lookup3 checksum. The offset and length
// widths it reports configure every later read:
//
//	sb, err := superblock.Read(image)
//	if errors.Is(err, superblock.ErrNotHDF5) {
//	    // not an HDF5 image
//	}
//	r := binary.NewReader(image, sb.ReaderConfig())
//
// [Superblock.Write] emits version 0 or 2 and is used by test fixtures.
package superblock
