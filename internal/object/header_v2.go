package object

import (
	"bytes"
	"fmt"

	"github.com/robert-malhotra/h5value/internal/binary"
	"github.com/robert-malhotra/h5value/internal/message"
)

/*
Version 2 object header:

	4  signature "OHDR"
	1  version (2)
	1  flags
	     bits 0-1  width of the chunk 0 size field (1 << value)
	     bit 2     attribute creation order tracked
	     bit 4     attribute phase change values stored
	     bit 5     timestamps stored
	16 access, modification, change, birth times (flag bit 5)
	4  max compact / min dense attributes (flag bit 4)
	n  size of chunk 0
	   messages
	4  lookup3 checksum

Each message: type (1), size (2), flags (1), creation order (2, if flag
bit 2), body. Continuation blocks are "OCHK", messages, checksum; their
recorded length covers all three.
*/

func readV2(r *binary.Reader, address uint64) (*Header, error) {
	start := r.Pos()
	r.Skip(4)

	version, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 2 {
		return nil, fmt.Errorf("%w: expected version 2, got %d", ErrUnsupportedVersion, version)
	}
	flags, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	hdr := &Header{
		Version: 2,
		Address: address,
		Flags:   flags,
	}

	if flags&0x20 != 0 {
		for _, t := range []*uint32{&hdr.AccessTime, &hdr.ModTime, &hdr.ChangeTime, &hdr.BirthTime} {
			if *t, err = r.ReadUint32(); err != nil {
				return nil, err
			}
		}
	}
	if flags&0x10 != 0 {
		r.Skip(4)
	}

	chunkSize, err := r.ReadUintN(1 << (flags & 0x03))
	if err != nil {
		return nil, err
	}
	chunkEnd := r.Pos() + int64(chunkSize)
	if err := verifyChecksum(r, start, chunkEnd); err != nil {
		return nil, err
	}

	trackOrder := flags&0x04 != 0
	conts, err := readV2Messages(r, chunkEnd, trackOrder, hdr)
	if err != nil {
		return nil, err
	}

	seen := continuations{}
	for len(conts) > 0 {
		c := conts[0]
		conts = conts[1:]
		if err := seen.visit(c); err != nil {
			return nil, err
		}

		cr := r.At(int64(c.Offset))
		sig, err := cr.Slice(4)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(sig, SignatureContinuation) {
			return nil, fmt.Errorf("%w: bad continuation signature %q at %d", ErrInvalidHeader, sig, c.Offset)
		}
		end := int64(c.Offset+c.Length) - 4
		if err := verifyChecksum(r, int64(c.Offset), end); err != nil {
			return nil, err
		}
		more, err := readV2Messages(cr, end, trackOrder, hdr)
		if err != nil {
			return nil, err
		}
		conts = append(conts, more...)
	}

	return hdr, nil
}

// verifyChecksum checks the lookup3 checksum stored at end against the
// bytes in [start, end).
func verifyChecksum(r *binary.Reader, start, end int64) error {
	if end < start {
		return fmt.Errorf("%w: block ends before it starts", ErrInvalidHeader)
	}
	data, err := r.At(start).Slice(int(end - start))
	if err != nil {
		return err
	}
	stored, err := r.At(end).ReadUint32()
	if err != nil {
		return err
	}
	if computed := binary.Lookup3Checksum(data); computed != stored {
		return fmt.Errorf("%w: stored 0x%08x, computed 0x%08x", ErrChecksumMismatch, stored, computed)
	}
	return nil
}

func readV2Messages(r *binary.Reader, end int64, trackOrder bool, hdr *Header) ([]*message.Continuation, error) {
	prefix := int64(4)
	if trackOrder {
		prefix = 6
	}

	var conts []*message.Continuation
	// Anything shorter than a message prefix at the end is a gap.
	for r.Pos()+prefix <= end {
		typ, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		size, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		flags, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		if trackOrder {
			r.Skip(2)
		}
		if r.Pos()+int64(size) > end {
			return nil, fmt.Errorf("%w: message of %d bytes overruns its block", ErrInvalidHeader, size)
		}
		data, err := r.Slice(int(size))
		if err != nil {
			return nil, err
		}

		if message.Type(typ) == message.TypeNIL {
			continue
		}
		msg, err := message.Parse(message.Type(typ), data, flags, r)
		if err != nil {
			return nil, err
		}
		if c, ok := msg.(*message.Continuation); ok {
			conts = append(conts, c)
			continue
		}
		hdr.Messages = append(hdr.Messages, msg)
	}
	return conts, nil
}
