package layout

import (
	"bytes"
	"fmt"

	"github.com/robert-malhotra/h5value/internal/binary"
)

var (
	fixedArrayHeaderSignature = []byte{'F', 'A', 'H', 'D'}
	fixedArrayBlockSignature  = []byte{'F', 'A', 'D', 'B'}
)

// Fixed array client IDs.
const (
	FixedArrayChunks         uint8 = 0
	FixedArrayFilteredChunks uint8 = 1
)

// FixedArrayEntry is one element of a fixed array chunk index.
type FixedArrayEntry struct {
	Address    uint64
	Size       uint64
	FilterMask uint32
}

// FixedArray is a parsed fixed array chunk index. Entries are in linear
// chunk order.
type FixedArray struct {
	Filtered bool
	PageBits uint8
	Entries  []FixedArrayEntry
}

// ReadFixedArray reads the fixed array whose header is at address.
func ReadFixedArray(r *binary.Reader, address uint64) (*FixedArray, error) {
	hr := r.At(int64(address))
	start := hr.Pos()

	sig, err := hr.Slice(4)
	if err != nil {
		return nil, fmt.Errorf("reading fixed array signature: %w", err)
	}
	if !bytes.Equal(sig, fixedArrayHeaderSignature) {
		return nil, fmt.Errorf("invalid fixed array signature: got %q, expected \"FAHD\"", sig)
	}
	hdr, err := hr.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	if hdr[0] != 0 {
		return nil, fmt.Errorf("%w: fixed array version %d", ErrUnsupported, hdr[0])
	}
	client, entrySize, pageBits := hdr[1], int(hdr[2]), hdr[3]
	if client > FixedArrayFilteredChunks {
		return nil, fmt.Errorf("%w: fixed array client %d", ErrUnsupported, client)
	}
	n, err := hr.ReadLength()
	if err != nil {
		return nil, err
	}
	block, err := hr.ReadOffset()
	if err != nil {
		return nil, err
	}
	if err := checkBlock(r, start, hr.Pos()); err != nil {
		return nil, fmt.Errorf("fixed array header: %w", err)
	}

	fa := &FixedArray{Filtered: client == FixedArrayFilteredChunks, PageBits: pageBits}
	if r.IsUndefinedOffset(block) || n == 0 {
		return fa, nil
	}
	if pageBits >= 32 || n > uint64(r.Len()) {
		return nil, fmt.Errorf("fixed array of %d entries with %d page bits is not plausible", n, pageBits)
	}

	br := r.At(int64(block))
	start = br.Pos()
	sig, err = br.Slice(4)
	if err != nil {
		return nil, fmt.Errorf("reading fixed array data block signature: %w", err)
	}
	if !bytes.Equal(sig, fixedArrayBlockSignature) {
		return nil, fmt.Errorf("invalid fixed array data block signature: got %q, expected \"FADB\"", sig)
	}
	br.Skip(2) // version, client
	if _, err := br.ReadOffset(); err != nil {
		return nil, err
	}

	pageSize := uint64(1) << pageBits
	if n <= pageSize {
		if fa.Entries, err = readFixedArrayEntries(br, fa.Filtered, entrySize, n); err != nil {
			return nil, err
		}
		if err := checkBlock(r, start, br.Pos()); err != nil {
			return nil, fmt.Errorf("fixed array data block: %w", err)
		}
		return fa, nil
	}

	pages := (n + pageSize - 1) / pageSize
	bitmap, err := br.Slice(int((pages + 7) / 8))
	if err != nil {
		return nil, err
	}
	if err := checkBlock(r, start, br.Pos()); err != nil {
		return nil, fmt.Errorf("fixed array data block: %w", err)
	}
	br.Skip(4)

	fa.Entries = make([]FixedArrayEntry, 0, n)
	for p := uint64(0); p < pages; p++ {
		count := min(pageSize, n-p*pageSize)
		if bitmap[p/8]&(0x80>>(p%8)) == 0 {
			for range count {
				fa.Entries = append(fa.Entries, FixedArrayEntry{Address: undefined(r)})
			}
			br.Skip(int64(count)*int64(entrySize) + 4)
			continue
		}
		pageStart := br.Pos()
		page, err := readFixedArrayEntries(br, fa.Filtered, entrySize, count)
		if err != nil {
			return nil, fmt.Errorf("fixed array page %d: %w", p, err)
		}
		if err := checkBlock(r, pageStart, br.Pos()); err != nil {
			return nil, fmt.Errorf("fixed array page %d: %w", p, err)
		}
		br.Skip(4)
		fa.Entries = append(fa.Entries, page...)
	}
	return fa, nil
}

func readFixedArrayEntries(r *binary.Reader, filtered bool, entrySize int, n uint64) ([]FixedArrayEntry, error) {
	sizeWidth := entrySize - r.OffsetSize() - 4
	if filtered && (sizeWidth < 1 || sizeWidth > 8) {
		return nil, fmt.Errorf("fixed array entry size %d is invalid", entrySize)
	}
	if !filtered && entrySize != r.OffsetSize() {
		return nil, fmt.Errorf("fixed array entry size %d is invalid", entrySize)
	}

	entries := make([]FixedArrayEntry, n)
	for i := range entries {
		e := &entries[i]
		var err error
		if e.Address, err = r.ReadOffset(); err != nil {
			return nil, err
		}
		if !filtered {
			continue
		}
		if e.Size, err = r.ReadUintN(sizeWidth); err != nil {
			return nil, err
		}
		if e.FilterMask, err = r.ReadUint32(); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// checkBlock verifies the lookup3 checksum stored at end over [start, end).
func checkBlock(r *binary.Reader, start, end int64) error {
	data, err := r.At(start).Slice(int(end - start))
	if err != nil {
		return err
	}
	stored, err := r.At(end).ReadUint32()
	if err != nil {
		return err
	}
	if !binary.VerifyLookup3(data, stored) {
		return fmt.Errorf("checksum mismatch: stored 0x%08x", stored)
	}
	return nil
}

func undefined(r *binary.Reader) uint64 {
	if r.OffsetSize() >= 8 {
		return ^uint64(0)
	}
	return uint64(1)<<(8*r.OffsetSize()) - 1
}
