package superblock

import (
	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

/*
Version 0/1 superblock, after the signature and version byte:

	1  free-space storage version
	1  root group symbol table entry version
	1  reserved
	1  shared header message format version
	1  size of offsets
	1  size of lengths
	1  reserved
	2  group leaf node K
	2  group internal node K
	4  file consistency flags
	2  indexed storage K (v1 only)
	2  reserved (v1 only)
	O  base address
	O  free-space info address
	O  end of file address
	O  driver info block address
	   root group symbol table entry

Symbol table entry: link name offset (O), object header address (O),
cache type (4), reserved (4), scratch pad (16). Cache type 1 stores the
group B-tree and local heap addresses in the scratch pad.
*/

func readV0(r *binpkg.Reader, version uint8) (*Superblock, error) {
	hdr, err := r.ReadBytes(15)
	if err != nil {
		return nil, err
	}

	sb := &Superblock{
		Version:            version,
		OffsetSize:         hdr[4],
		LengthSize:         hdr[5],
		GroupLeafNodeK:     uint16(hdr[7]) | uint16(hdr[8])<<8,
		GroupInternalNodeK: uint16(hdr[9]) | uint16(hdr[10])<<8,
	}
	if err := checkSizes(sb); err != nil {
		return nil, err
	}

	if version == 1 {
		k, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		sb.IndexedStorageK = k
		r.Skip(2)
	}

	r = r.WithSizes(int(sb.OffsetSize), int(sb.LengthSize))
	if sb.BaseAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	r.Skip(int64(sb.OffsetSize)) // free-space info
	if sb.EOFAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	r.Skip(int64(sb.OffsetSize)) // driver info

	r.Skip(int64(sb.OffsetSize)) // link name offset
	if sb.RootGroupAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	cacheType, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	r.Skip(4)
	if cacheType == 1 {
		if sb.RootGroupBTreeAddress, err = r.ReadOffset(); err != nil {
			return nil, err
		}
		if sb.RootGroupLocalHeapAddress, err = r.ReadOffset(); err != nil {
			return nil, err
		}
		sb.HasRootScratchPad = true
	}

	return sb, nil
}
