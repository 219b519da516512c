package message

import (
	"fmt"

	binpkg "github.com/robert-malhotra/h5value/internal/binary"
)

// LinkType represents the type of link.
type LinkType uint8

const (
	LinkTypeHard     LinkType = 0
	LinkTypeSoft     LinkType = 1
	LinkTypeExternal LinkType = 64
)

// Link represents a link message (type 0x0006).
type Link struct {
	Version       uint8
	LinkType      LinkType
	CreationOrder uint64
	Name          string
	Charset       uint8

	// Hard link
	ObjectAddress uint64

	// Soft link
	SoftLinkValue string

	// External link
	ExternalFile string
	ExternalPath string
}

func (m *Link) Type() Type { return TypeLink }

// IsHard returns true if this is a hard link.
func (m *Link) IsHard() bool {
	return m.LinkType == LinkTypeHard
}

// IsSoft returns true if this is a soft link.
func (m *Link) IsSoft() bool {
	return m.LinkType == LinkTypeSoft
}

// IsExternal returns true if this is an external link.
func (m *Link) IsExternal() bool {
	return m.LinkType == LinkTypeExternal
}

func parseLink(r *binpkg.Reader) (*Link, error) {
	version, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 1 {
		return nil, fmt.Errorf("%w: link version %d", ErrUnsupported, version)
	}
	flags, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	link := &Link{Version: version}

	if flags&0x08 != 0 {
		t, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		link.LinkType = LinkType(t)
	}
	if flags&0x04 != 0 {
		if link.CreationOrder, err = r.ReadUint64(); err != nil {
			return nil, err
		}
	}
	if flags&0x10 != 0 {
		if link.Charset, err = r.ReadUint8(); err != nil {
			return nil, err
		}
	}

	nameLen, err := r.ReadUintN(1 << (flags & 0x03))
	if err != nil {
		return nil, err
	}
	name, err := r.ReadBytes(int(nameLen))
	if err != nil {
		return nil, fmt.Errorf("link name: %w", err)
	}
	link.Name = string(name)

	switch link.LinkType {
	case LinkTypeHard:
		if link.ObjectAddress, err = r.ReadOffset(); err != nil {
			return nil, err
		}

	case LinkTypeSoft:
		n, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		value, err := r.ReadBytes(int(n))
		if err != nil {
			return nil, fmt.Errorf("soft link value: %w", err)
		}
		link.SoftLinkValue = string(value)

	case LinkTypeExternal:
		n, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		value, err := r.ReadBytes(int(n))
		if err != nil {
			return nil, fmt.Errorf("external link value: %w", err)
		}
		// flags byte, then NUL-terminated file and object paths
		if len(value) > 1 {
			parts := splitNul(value[1:])
			if len(parts) > 0 {
				link.ExternalFile = parts[0]
			}
			if len(parts) > 1 {
				link.ExternalPath = parts[1]
			}
		}
	}

	return link, nil
}

func splitNul(b []byte) []string {
	var out []string
	start := 0
	for i, c := range b {
		if c == 0 {
			out = append(out, string(b[start:i]))
			start = i + 1
		}
	}
	if start < len(b) {
		out = append(out, string(b[start:]))
	}
	return out
}

// LinkInfo represents a link info message (type 0x0002). A defined
// fractal heap address means the group keeps its links in dense storage.
type LinkInfo struct {
	Version                uint8
	MaxCreationIndex       uint64
	FractalHeapAddress     uint64
	NameIndexAddress       uint64
	CreationOrderIndexAddr uint64
	hasFractalHeap         bool
}

func (m *LinkInfo) Type() Type { return TypeLinkInfo }

// IsDense reports whether links live in a fractal heap rather than in
// link messages.
func (m *LinkInfo) IsDense() bool {
	return m.hasFractalHeap
}

func parseLinkInfo(r *binpkg.Reader) (*LinkInfo, error) {
	version, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("%w: link info version %d", ErrUnsupported, version)
	}
	flags, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	li := &LinkInfo{Version: version}
	if flags&0x01 != 0 {
		if li.MaxCreationIndex, err = r.ReadUint64(); err != nil {
			return nil, err
		}
	}
	if li.FractalHeapAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	if li.NameIndexAddress, err = r.ReadOffset(); err != nil {
		return nil, err
	}
	if flags&0x02 != 0 {
		if li.CreationOrderIndexAddr, err = r.ReadOffset(); err != nil {
			return nil, err
		}
	}
	li.hasFractalHeap = !r.IsUndefinedOffset(li.FractalHeapAddress)
	return li, nil
}
