package dtype

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/robert-malhotra/h5value/internal/message"
	"github.com/robert-malhotra/h5value/types"
)

// Heap supplies the payloads of stored variable-length elements and keeps
// their native forms.
type Heap interface {
	// Fetch returns the stored payload a variable-length element refers
	// to, or nil for an empty element.
	Fetch(stored []byte) ([]byte, error)
	// Store keeps a native payload and returns its handle.
	Store(payload []byte) uint64
}

// ToNative converts n stored elements of dt into the layout desc
// describes. desc must be the result of Descriptor(dt).
func ToNative(dt *message.Datatype, desc types.Descriptor, data []byte, n uint64, h Heap) ([]byte, error) {
	stored := uint64(dt.Size)
	native := uint64(desc.ByteSize())
	if stored != 0 && n > uint64(len(data))/stored {
		return nil, fmt.Errorf("data holds %d bytes, %d elements of %d bytes need more", len(data), n, stored)
	}
	if native != 0 && n > math.MaxInt/native {
		return nil, fmt.Errorf("%d elements of %d bytes overflow", n, native)
	}

	out := make([]byte, n*native)
	for i := range n {
		src := data[i*stored : (i+1)*stored]
		dst := out[i*native : (i+1)*native]
		if err := convert(dt, desc, src, dst, h); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return out, nil
}

func convert(dt *message.Datatype, desc types.Descriptor, src, dst []byte, h Heap) error {
	switch desc.Kind() {
	case types.KindInteger, types.KindUnsigned, types.KindFloat, types.KindEnum:
		copy(dst, src)
		if swapped(dt) {
			slices.Reverse(dst)
		}

	case types.KindBoolean, types.KindFixedString:
		copy(dst, src)

	case types.KindFixedArray:
		base := dt.BaseType
		elem := desc.Elem()
		ss, ns := int(base.Size), elem.ByteSize()
		for i := range desc.Len() {
			if err := convert(base, elem, src[i*ss:(i+1)*ss], dst[i*ns:(i+1)*ns], h); err != nil {
				return err
			}
		}

	case types.KindCompound:
		for i, m := range dt.Members {
			f := desc.Field(i)
			start, end := int(m.ByteOffset), int(m.ByteOffset)+int(m.Type.Size)
			if end > len(src) {
				return fmt.Errorf("member %q spans [%d, %d) of a %d-byte compound", m.Name, start, end, len(src))
			}
			if err := convert(m.Type, f.Type, src[start:end], dst[f.Offset:f.Offset+f.Type.ByteSize()], h); err != nil {
				return fmt.Errorf("member %q: %w", m.Name, err)
			}
		}

	case types.KindVarLenString, types.KindVarLenArray:
		return varLen(dt, desc, src, dst, h)

	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, desc.Kind())
	}
	return nil
}

// varLen resolves a stored element (uint32 count, global heap ID) and
// writes the native record (uint64 count, uint64 handle).
func varLen(dt *message.Datatype, desc types.Descriptor, src, dst []byte, h Heap) error {
	if len(src) < 4 {
		return fmt.Errorf("variable-length element of %d bytes", len(src))
	}
	count := uint64(binary.LittleEndian.Uint32(src))
	var handle uint64

	if count > 0 {
		payload, err := h.Fetch(src)
		if err != nil {
			return err
		}
		if desc.Kind() == types.KindVarLenString {
			if uint64(len(payload)) < count {
				return fmt.Errorf("string of %d bytes stored in %d", count, len(payload))
			}
			payload = slices.Clone(payload[:count])
		} else {
			if payload, err = ToNative(dt.BaseType, desc.Elem(), payload, count, h); err != nil {
				return fmt.Errorf("sequence: %w", err)
			}
		}
		handle = h.Store(payload)
	}

	binary.NativeEndian.PutUint64(dst, count)
	binary.NativeEndian.PutUint64(dst[8:], handle)
	return nil
}
