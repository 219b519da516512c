package object

import (
	"fmt"

	"github.com/robert-malhotra/h5value/internal/binary"
	"github.com/robert-malhotra/h5value/internal/message"
)

/*
Version 1 object header:

	1  version (1)
	1  reserved
	2  number of header messages
	4  object reference count
	4  object header size
	4  padding to 8-byte alignment
	   messages

Each message: type (2), size (2), flags (1), reserved (3), body padded
to a multiple of 8. Continuation blocks hold bare messages.
*/

func readV1(r *binary.Reader, address uint64) (*Header, error) {
	r.Skip(2) // version, reserved
	numMessages, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	refCount, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	size, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	r.Skip(4)

	hdr := &Header{
		Version:  1,
		Address:  address,
		RefCount: refCount,
		Messages: make([]message.Message, 0, numMessages),
	}

	seen := continuations{}
	blocks := []blockRange{{start: r.Pos(), end: r.Pos() + int64(size)}}
	for len(blocks) > 0 {
		b := blocks[0]
		blocks = blocks[1:]

		conts, err := readV1Messages(r.At(b.start), b.end, hdr)
		if err != nil {
			return nil, err
		}
		for _, c := range conts {
			if err := seen.visit(c); err != nil {
				return nil, err
			}
			blocks = append(blocks, blockRange{start: int64(c.Offset), end: int64(c.Offset + c.Length)})
		}
	}

	return hdr, nil
}

type blockRange struct {
	start, end int64
}

func readV1Messages(r *binary.Reader, end int64, hdr *Header) ([]*message.Continuation, error) {
	var conts []*message.Continuation

	for r.Pos()+8 <= end {
		typ, err := r.ReadUint16()
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
		r.Skip(3)

		data, err := r.Slice(int(size))
		if err != nil {
			return nil, fmt.Errorf("message body: %w", err)
		}
		r.Align(8)

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
