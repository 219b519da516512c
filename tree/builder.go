package tree

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/robert-malhotra/h5value/decode"
	"github.com/robert-malhotra/h5value/errors"
	"github.com/robert-malhotra/h5value/value"
)

// Builder assembles groups and datasets into values.
type Builder struct {
	dec *decode.Decoder
}

// NewBuilder returns a builder decoding elements with dec. A nil dec is
// replaced by a default decoder without a resolver.
func NewBuilder(dec *decode.Decoder) *Builder {
	if dec == nil {
		dec = decode.New()
	}
	return &Builder{dec: dec}
}

// BuildDataset returns ds as a list of its elements.
func (b *Builder) BuildDataset(ds Dataset) (value.Value, error) {
	return b.dataset(context.Background(), ds, []string{FieldName(ds.Name())}, 0)
}

// BuildGroup returns g as a record of its datasets and subgroups.
func (b *Builder) BuildGroup(g Group) (value.Value, error) {
	return b.BuildGroupContext(context.Background(), g)
}

// BuildGroupContext is BuildGroup with cancellation, checked before each
// dataset and group.
func (b *Builder) BuildGroupContext(ctx context.Context, g Group) (value.Value, error) {
	return b.group(ctx, g, nil, 0)
}

func (b *Builder) dataset(ctx context.Context, ds Dataset, path []string, depth int) (value.Value, error) {
	if err := ctx.Err(); err != nil {
		return value.Value{}, errors.Canceled(path, err)
	}

	desc, err := ds.Type()
	if err != nil {
		return value.Value{}, errors.Engine(errors.PhaseBuild, path, err, "read datatype")
	}
	if err := desc.Validate(); err != nil {
		return value.Value{}, errors.InvalidType(path, desc.String(), err)
	}
	count, err := ds.Len()
	if err != nil {
		return value.Value{}, errors.Engine(errors.PhaseBuild, path, err, "read element count")
	}
	raw, err := ds.ReadNative(desc)
	if err != nil {
		return value.Value{}, errors.Engine(errors.PhaseBuild, path, err, "read data")
	}

	size := desc.ByteSize()
	var n uint64
	if size == 0 {
		if len(raw) != 0 {
			return value.Value{}, errors.SizeMismatch(path, desc.String(), len(raw), 0)
		}
		n = count
	} else {
		if len(raw)%size != 0 {
			return value.Value{}, errors.New(errors.PhaseBuild, errors.KindSizeMismatch).
				Path(path...).
				Type(desc.String()).
				Detail("buffer of %d bytes is not a whole number of %d-byte elements", len(raw), size).
				Build()
		}
		n = uint64(len(raw) / size)
	}
	if n != count || count > math.MaxInt {
		return value.Value{}, errors.CountMismatch(path, n, count)
	}

	Logger().Debug("decoding dataset",
		zap.String("path", strings.Join(path, "/")),
		zap.Stringer("type", desc),
		zap.Uint64("count", count))

	items := make([]value.Value, n)
	for i := range items {
		w := raw[i*size : (i+1)*size]
		v, err := b.dec.DecodeAt(w, desc, appendPath(path, index(i)), depth+1)
		if err != nil {
			return value.Value{}, err
		}
		items[i] = v
	}
	return value.List(items...), nil
}

func (b *Builder) group(ctx context.Context, g Group, path []string, depth int) (value.Value, error) {
	if depth > b.dec.MaxDepth() {
		return value.Value{}, errors.SchemaTooDeep(errors.PhaseBuild, path, b.dec.MaxDepth())
	}
	if err := ctx.Err(); err != nil {
		return value.Value{}, errors.Canceled(path, err)
	}

	datasets, err := g.Datasets()
	if err != nil {
		return value.Value{}, errors.Engine(errors.PhaseBuild, path, err, "list datasets")
	}
	groups, err := g.Groups()
	if err != nil {
		return value.Value{}, errors.Engine(errors.PhaseBuild, path, err, "list groups")
	}
	Logger().Debug("building group",
		zap.String("path", "/"+strings.Join(path, "/")),
		zap.Int("datasets", len(datasets)),
		zap.Int("groups", len(groups)))

	rec := value.NewRecord()
	for _, ds := range datasets {
		name := FieldName(ds.Name())
		v, err := b.dataset(ctx, ds, appendPath(path, name), depth)
		if err != nil {
			return value.Value{}, err
		}
		if !b.dec.AddField(rec, name, v) {
			return value.Value{}, errors.DuplicateField(errors.PhaseBuild, path, name)
		}
	}
	for _, sub := range groups {
		name := FieldName(sub.Name())
		v, err := b.group(ctx, sub, appendPath(path, name), depth+1)
		if err != nil {
			return value.Value{}, err
		}
		if !b.dec.AddField(rec, name, v) {
			return value.Value{}, errors.DuplicateField(errors.PhaseBuild, path, name)
		}
	}
	return value.RecordOf(rec), nil
}

// FieldName returns the record field name for a member called name: its
// last path component.
func FieldName(name string) string {
	name = strings.TrimRight(name, "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func index(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
