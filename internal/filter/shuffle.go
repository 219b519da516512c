package filter

import (
	"github.com/robert-malhotra/h5value/internal/message"
)

// Shuffle is the byte shuffle filter. Stored data holds byte 0 of every
// element, then byte 1 of every element, and so on. Bytes past the last
// whole element are stored unchanged.
type Shuffle struct {
	elemSize int
}

// NewShuffle creates a shuffle filter. Client data holds the element size.
func NewShuffle(clientData []uint32) *Shuffle {
	size := 1
	if len(clientData) > 0 && clientData[0] > 0 {
		size = int(clientData[0])
	}
	return &Shuffle{elemSize: size}
}

func (f *Shuffle) ID() uint16 {
	return message.FilterShuffle
}

func (f *Shuffle) Decode(input []byte) ([]byte, error) {
	n := len(input) / max(f.elemSize, 1)
	if f.elemSize <= 1 || n <= 1 {
		return input, nil
	}
	out := make([]byte, len(input))
	for i := 0; i < n; i++ {
		for j := 0; j < f.elemSize; j++ {
			out[i*f.elemSize+j] = input[j*n+i]
		}
	}
	copy(out[n*f.elemSize:], input[n*f.elemSize:])
	return out, nil
}

func (f *Shuffle) Encode(input []byte) ([]byte, error) {
	n := len(input) / max(f.elemSize, 1)
	if f.elemSize <= 1 || n <= 1 {
		return input, nil
	}
	out := make([]byte, len(input))
	for i := 0; i < n; i++ {
		for j := 0; j < f.elemSize; j++ {
			out[j*n+i] = input[i*f.elemSize+j]
		}
	}
	copy(out[n*f.elemSize:], input[n*f.elemSize:])
	return out, nil
}
