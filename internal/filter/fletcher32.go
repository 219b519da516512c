package filter

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	binpkg "github.com/robert-malhotra/h5value/internal/binary"
	"github.com/robert-malhotra/h5value/internal/message"
)

// ErrChecksum is returned when a chunk fails its Fletcher-32 check.
var ErrChecksum = errors.New("fletcher32 checksum mismatch")

// Fletcher32Filter appends and verifies a Fletcher-32 checksum.
type Fletcher32Filter struct{}

// NewFletcher32 creates a Fletcher-32 filter. It takes no client data.
func NewFletcher32([]uint32) *Fletcher32Filter {
	return &Fletcher32Filter{}
}

func (f *Fletcher32Filter) ID() uint16 {
	return message.FilterFletcher32
}

// Decode checks the trailing little-endian checksum and strips it. Files
// from old library versions stored the checksum byte-swapped; both forms
// are accepted.
func (f *Fletcher32Filter) Decode(input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrChecksum, len(input))
	}
	data := input[:len(input)-4]
	stored := binary.LittleEndian.Uint32(input[len(input)-4:])
	computed := binpkg.Fletcher32(data)
	if stored != computed && stored != bits.ReverseBytes32(computed) {
		return nil, fmt.Errorf("%w: stored 0x%08x, computed 0x%08x", ErrChecksum, stored, computed)
	}
	return data, nil
}

func (f *Fletcher32Filter) Encode(input []byte) ([]byte, error) {
	return binary.LittleEndian.AppendUint32(append([]byte(nil), input...), binpkg.Fletcher32(input)), nil
}
