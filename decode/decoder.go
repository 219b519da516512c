package decode

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"math"
	"strconv"
	"strings"

	"github.com/robert-malhotra/h5value/errors"
	"github.com/robert-malhotra/h5value/types"
	"github.com/robert-malhotra/h5value/value"
)

// ErrNoResolver is the cause of the engine error returned when a
// variable-length value is decoded without a resolver.
var ErrNoResolver = stderrors.New("no resolver for variable-length data")

// Resolver exchanges an indirection record for the payload it refers to.
// The returned slice is owned by the caller's decode and is not retained.
type Resolver interface {
	Resolve(record []byte) ([]byte, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(record []byte) ([]byte, error)

func (f ResolverFunc) Resolve(record []byte) ([]byte, error) { return f(record) }

// Decoder decodes windows into values. It holds configuration only and may
// be shared between goroutines.
type Decoder struct {
	resolver   Resolver
	maxDepth   int
	duplicates DuplicatePolicy
}

// New returns a decoder configured by opts.
func New(opts ...Option) *Decoder {
	d := &Decoder{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MaxDepth returns the nesting limit.
func (d *Decoder) MaxDepth() int { return d.maxDepth }

// Duplicates returns the duplicate field policy.
func (d *Decoder) Duplicates() DuplicatePolicy { return d.duplicates }

// Decode validates desc and decodes window as one value of it.
func (d *Decoder) Decode(window []byte, desc types.Descriptor) (value.Value, error) {
	if err := desc.Validate(); err != nil {
		return value.Value{}, errors.InvalidType(nil, desc.String(), err)
	}
	return d.decode(window, desc, nil, 0)
}

// DecodeAt decodes window at a known position in a larger tree: path
// prefixes any error and depth counts toward the nesting limit. desc must
// already be valid.
func (d *Decoder) DecodeAt(window []byte, desc types.Descriptor, path []string, depth int) (value.Value, error) {
	return d.decode(window, desc, path, depth)
}

func (d *Decoder) decode(w []byte, desc types.Descriptor, path []string, depth int) (value.Value, error) {
	if depth > d.maxDepth {
		return value.Value{}, errors.SchemaTooDeep(errors.PhaseDecode, path, d.maxDepth)
	}

	switch desc.Kind() {
	case types.KindInteger:
		return d.integer(w, desc, path)
	case types.KindUnsigned:
		return d.unsigned(w, desc, path)
	case types.KindEnum:
		if desc.Signed() {
			return d.integer(w, types.Int(desc.Width()), path)
		}
		return d.unsigned(w, types.Uint(desc.Width()), path)
	case types.KindFloat:
		return d.float(w, desc, path)
	case types.KindBoolean:
		if len(w) != 1 {
			return value.Value{}, errors.SizeMismatch(path, desc.String(), len(w), 1)
		}
		return value.Bool(w[0] != 0), nil
	case types.KindFixedString:
		if len(w) != desc.Len() {
			return value.Value{}, errors.SizeMismatch(path, desc.String(), len(w), desc.Len())
		}
		return value.String(lossy(w)), nil
	case types.KindVarLenString:
		payload, err := d.resolve(w, desc, path)
		if err != nil {
			return value.Value{}, err
		}
		if i := bytes.IndexByte(payload, 0); i >= 0 {
			payload = payload[:i]
		}
		return value.String(lossy(payload)), nil
	case types.KindFixedArray:
		elem := desc.Elem()
		if want := desc.ByteSize(); len(w) != want {
			return value.Value{}, errors.SizeMismatch(path, desc.String(), len(w), want)
		}
		return d.list(w, elem, desc.Len(), path, depth)
	case types.KindVarLenArray:
		payload, err := d.resolve(w, desc, path)
		if err != nil {
			return value.Value{}, err
		}
		elem := desc.Elem()
		size := elem.ByteSize()
		if size == 0 {
			return value.Value{}, errors.InvalidType(path, desc.String(), types.ErrInvalid)
		}
		if len(payload)%size != 0 {
			return value.Value{}, errors.New(errors.PhaseDecode, errors.KindSizeMismatch).
				Path(path...).
				Type(desc.String()).
				Detail("payload of %d bytes is not a whole number of %d-byte elements", len(payload), size).
				Build()
		}
		return d.list(payload, elem, len(payload)/size, path, depth)
	case types.KindCompound:
		return d.compound(w, desc, path, depth)
	}
	return value.Value{}, errors.InvalidType(path, desc.String(), types.ErrInvalid)
}

func (d *Decoder) integer(w []byte, desc types.Descriptor, path []string) (value.Value, error) {
	if len(w) != desc.Width() {
		return value.Value{}, errors.SizeMismatch(path, desc.String(), len(w), desc.Width())
	}
	switch len(w) {
	case 1:
		return value.Int(int64(int8(w[0]))), nil
	case 2:
		return value.Int(int64(int16(binary.NativeEndian.Uint16(w)))), nil
	case 4:
		return value.Int(int64(int32(binary.NativeEndian.Uint32(w)))), nil
	case 8:
		return value.Int(int64(binary.NativeEndian.Uint64(w))), nil
	}
	return value.Value{}, errors.InvalidType(path, desc.String(), types.ErrInvalid)
}

func (d *Decoder) unsigned(w []byte, desc types.Descriptor, path []string) (value.Value, error) {
	if len(w) != desc.Width() {
		return value.Value{}, errors.SizeMismatch(path, desc.String(), len(w), desc.Width())
	}
	switch len(w) {
	case 1:
		return value.Uint(uint64(w[0])), nil
	case 2:
		return value.Uint(uint64(binary.NativeEndian.Uint16(w))), nil
	case 4:
		return value.Uint(uint64(binary.NativeEndian.Uint32(w))), nil
	case 8:
		return value.Uint(binary.NativeEndian.Uint64(w)), nil
	}
	return value.Value{}, errors.InvalidType(path, desc.String(), types.ErrInvalid)
}

func (d *Decoder) float(w []byte, desc types.Descriptor, path []string) (value.Value, error) {
	if len(w) != desc.Width() {
		return value.Value{}, errors.SizeMismatch(path, desc.String(), len(w), desc.Width())
	}
	switch len(w) {
	case 4:
		return value.Float(float64(math.Float32frombits(binary.NativeEndian.Uint32(w)))), nil
	case 8:
		return value.Float(math.Float64frombits(binary.NativeEndian.Uint64(w))), nil
	}
	return value.Value{}, errors.InvalidType(path, desc.String(), types.ErrInvalid)
}

// resolve checks the indirection record and asks the resolver for its
// payload.
func (d *Decoder) resolve(w []byte, desc types.Descriptor, path []string) ([]byte, error) {
	if len(w) != types.IndirectionSize {
		return nil, errors.SizeMismatch(path, desc.String(), len(w), types.IndirectionSize)
	}
	if d.resolver == nil {
		return nil, errors.Engine(errors.PhaseDecode, path, ErrNoResolver, "resolve indirection")
	}
	payload, err := d.resolver.Resolve(w)
	if err != nil {
		return nil, errors.Engine(errors.PhaseDecode, path, err, "resolve indirection")
	}
	return payload, nil
}

func (d *Decoder) list(w []byte, elem types.Descriptor, n int, path []string, depth int) (value.Value, error) {
	size := elem.ByteSize()
	items := make([]value.Value, n)
	for i := range items {
		item, err := d.decode(w[i*size:(i+1)*size], elem, appendPath(path, index(i)), depth+1)
		if err != nil {
			return value.Value{}, err
		}
		items[i] = item
	}
	return value.List(items...), nil
}

func (d *Decoder) compound(w []byte, desc types.Descriptor, path []string, depth int) (value.Value, error) {
	if len(w) != desc.ByteSize() {
		return value.Value{}, errors.SizeMismatch(path, desc.String(), len(w), desc.ByteSize())
	}

	rec := value.NewRecord()
	for i := range desc.NumFields() {
		f := desc.Field(i)
		fpath := appendPath(path, f.Name)
		end := f.Offset + f.Type.ByteSize()
		if f.Offset < 0 || end > len(w) {
			return value.Value{}, errors.New(errors.PhaseDecode, errors.KindSizeMismatch).
				Path(fpath...).
				Type(f.Type.String()).
				Detail("field spans [%d, %d) of a %d-byte compound", f.Offset, end, len(w)).
				Build()
		}

		v, err := d.decode(w[f.Offset:end], f.Type, fpath, depth+1)
		if err != nil {
			return value.Value{}, err
		}
		if !d.addField(rec, f.Name, v) {
			return value.Value{}, errors.DuplicateField(errors.PhaseDecode, path, f.Name)
		}
	}
	return value.RecordOf(rec), nil
}

// AddField adds name to rec under the decoder's duplicate policy. It
// reports false when the policy rejects the duplicate.
func (d *Decoder) AddField(rec *value.Record, name string, v value.Value) bool {
	return d.addField(rec, name, v)
}

func (d *Decoder) addField(rec *value.Record, name string, v value.Value) bool {
	if rec.Add(name, v) {
		return true
	}
	if d.duplicates == DuplicateLastWins {
		rec.Set(name, v)
		return true
	}
	return false
}

// lossy converts b to a string, replacing invalid UTF-8 with U+FFFD.
func lossy(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

func index(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// appendPath returns path+seg without sharing path's backing array.
func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
