package message

import (
	"fmt"

	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

// FillValue represents a fill value message (type 0x0005, or the old
// type 0x0004). Value is nil when no fill value is defined, in which
// case unwritten storage reads as zeros.
type FillValue struct {
	Version        uint8
	SpaceAllocTime uint8
	FillWriteTime  uint8
	Value          []byte
}

func (m *FillValue) Type() Type { return TypeFillValue }

func parseFillValueOld(r *binpkg.Reader) (*FillValue, error) {
	size, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	fv := &FillValue{}
	if fv.Value, err = r.ReadBytes(int(size)); err != nil {
		return nil, err
	}
	return fv, nil
}

func parseFillValue(r *binpkg.Reader) (*FillValue, error) {
	version, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	fv := &FillValue{Version: version}

	switch version {
	case 1, 2:
		hdr, err := r.ReadBytes(3)
		if err != nil {
			return nil, err
		}
		fv.SpaceAllocTime = hdr[0]
		fv.FillWriteTime = hdr[1]
		defined := hdr[2] != 0
		if version == 2 && !defined {
			return fv, nil
		}
		size, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		if fv.Value, err = r.ReadBytes(int(size)); err != nil {
			return nil, fmt.Errorf("fill value: %w", err)
		}

	case 3:
		flags, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		fv.SpaceAllocTime = flags & 0x03
		fv.FillWriteTime = (flags >> 2) & 0x03
		if flags&0x20 != 0 {
			size, err := r.ReadUint32()
			if err != nil {
				return nil, err
			}
			if fv.Value, err = r.ReadBytes(int(size)); err != nil {
				return nil, fmt.Errorf("fill value: %w", err)
			}
		}

	default:
		return nil, fmt.Errorf("%w: fill value version %d", ErrUnsupported, version)
	}

	return fv, nil
}
