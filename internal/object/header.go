// Package object handles parsing of HDF5 object headers.
package object

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/h5value/internal/binary"
	"github.com/robert-malhotra/h5value/internal/message"
)

var (
	SignatureV2           = []byte{'O', 'H', 'D', 'R'}
	SignatureContinuation = []byte{'O', 'C', 'H', 'K'}
)

var (
	ErrInvalidHeader      = errors.New("invalid object header")
	ErrUnsupportedVersion = errors.New("unsupported object header version")
	ErrChecksumMismatch   = errors.New("object header checksum mismatch")
)

// maxContinuations bounds the number of continuation blocks followed for
// one header, so a cyclic chain cannot loop forever.
const maxContinuations = 1024

// Header represents a parsed HDF5 object header.
type Header struct {
	Version  uint8
	Address  uint64
	Flags    uint8
	RefCount uint32

	// Messages holds every non-NIL message, continuation blocks included,
	// in storage order.
	Messages []message.Message

	// Timestamps (v2 only, if flag 0x20 is set)
	AccessTime uint32
	ModTime    uint32
	ChangeTime uint32
	BirthTime  uint32
}

// Read parses the object header at the given address.
func Read(r *binary.Reader, address uint64) (*Header, error) {
	hr := r.At(int64(address))

	peek, err := hr.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("reading object header at %d: %w", address, err)
	}

	var hdr *Header
	switch {
	case string(peek) == string(SignatureV2):
		hdr, err = readV2(hr, address)
	case peek[0] == 1:
		hdr, err = readV1(hr, address)
	default:
		return nil, fmt.Errorf("%w: unknown format at address %d", ErrInvalidHeader, address)
	}
	if err != nil {
		return nil, fmt.Errorf("object header at %d: %w", address, err)
	}
	return hdr, nil
}

// continuations tracks visited continuation blocks.
type continuations map[uint64]bool

func (c continuations) visit(cont *message.Continuation) error {
	if c[cont.Offset] {
		return fmt.Errorf("%w: continuation block %d visited twice", ErrInvalidHeader, cont.Offset)
	}
	if len(c) >= maxContinuations {
		return fmt.Errorf("%w: too many continuation blocks", ErrInvalidHeader)
	}
	c[cont.Offset] = true
	return nil
}

// GetMessage returns the first message of the given type, or nil if not found.
func (h *Header) GetMessage(typ message.Type) message.Message {
	for _, msg := range h.Messages {
		if msg.Type() == typ {
			return msg
		}
	}
	return nil
}

// GetMessages returns all messages of the given type.
func (h *Header) GetMessages(typ message.Type) []message.Message {
	var result []message.Message
	for _, msg := range h.Messages {
		if msg.Type() == typ {
			result = append(result, msg)
		}
	}
	return result
}

// Dataspace returns the dataspace message if present.
func (h *Header) Dataspace() *message.Dataspace {
	ds, _ := h.GetMessage(message.TypeDataspace).(*message.Dataspace)
	return ds
}

// Datatype returns the datatype message if present and stored inline.
// A shared datatype is reported by SharedDatatype instead.
func (h *Header) Datatype() *message.Datatype {
	dt, _ := h.GetMessage(message.TypeDatatype).(*message.Datatype)
	return dt
}

// SharedDatatype returns the shared datatype reference if the datatype
// message points at a committed datatype.
func (h *Header) SharedDatatype() *message.Shared {
	s, _ := h.GetMessage(message.TypeDatatype).(*message.Shared)
	return s
}

// DataLayout returns the data layout message if present.
func (h *Header) DataLayout() *message.DataLayout {
	l, _ := h.GetMessage(message.TypeDataLayout).(*message.DataLayout)
	return l
}

// FilterPipeline returns the filter pipeline message if present.
func (h *Header) FilterPipeline() *message.FilterPipeline {
	fp, _ := h.GetMessage(message.TypeFilterPipeline).(*message.FilterPipeline)
	return fp
}

// FillValue returns the fill value message, new style preferred.
func (h *Header) FillValue() *message.FillValue {
	for _, typ := range []message.Type{message.TypeFillValue, message.TypeFillValueOld} {
		for _, msg := range h.Messages {
			if fv, ok := msg.(*message.FillValue); ok && msg.Type() == typ {
				return fv
			}
		}
	}
	return nil
}

// SymbolTable returns the symbol table message of an old-style group.
func (h *Header) SymbolTable() *message.SymbolTable {
	st, _ := h.GetMessage(message.TypeSymbolTable).(*message.SymbolTable)
	return st
}

// LinkInfo returns the link info message of a new-style group.
func (h *Header) LinkInfo() *message.LinkInfo {
	li, _ := h.GetMessage(message.TypeLinkInfo).(*message.LinkInfo)
	return li
}

// Links returns the link messages of a compact new-style group.
func (h *Header) Links() []*message.Link {
	var links []*message.Link
	for _, msg := range h.Messages {
		if l, ok := msg.(*message.Link); ok {
			links = append(links, l)
		}
	}
	return links
}

// IsGroup reports whether the header describes a group.
func (h *Header) IsGroup() bool {
	return h.SymbolTable() != nil || h.LinkInfo() != nil || len(h.Links()) > 0 ||
		(h.DataLayout() == nil && h.Dataspace() == nil && h.GetMessage(message.TypeGroupInfo) != nil)
}

// IsDataset reports whether the header describes a dataset.
func (h *Header) IsDataset() bool {
	return h.DataLayout() != nil && h.Dataspace() != nil
}
