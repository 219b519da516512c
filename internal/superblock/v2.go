package superblock

import (
	"fmt"

	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

/*
Version 2/3 superblock, after the signature and version byte:

	1  size of offsets
	1  size of lengths
	1  file consistency flags
	O  base address
	O  superblock extension address
	O  end of file address
	O  root group object header address
	4  lookup3 checksum of everything before it
*/

func readV2(data []byte, r *binpkg.Reader, offset int64, version uint8) (*Superblock, error) {
	hdr, err := r.ReadBytes(3)
	if err != nil {
		return nil, err
	}

	sb := &Superblock{
		Version:              version,
		OffsetSize:           hdr[0],
		LengthSize:           hdr[1],
		FileConsistencyFlags: hdr[2],
	}
	if err := checkSizes(sb); err != nil {
		return nil, err
	}

	r = r.WithSizes(int(sb.OffsetSize), int(sb.LengthSize))
	if sb.BaseAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	if sb.SuperblockExtensionAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	if sb.EOFAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	if sb.RootGroupAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}

	end := r.Pos()
	stored, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if computed := binpkg.Lookup3Checksum(data[offset:end]); computed != stored {
		return nil, fmt.Errorf("%w: checksum 0x%08x, computed 0x%08x", ErrInvalidSuperblock, stored, computed)
	}

	return sb, nil
}
