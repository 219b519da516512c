package tree

import (
	"context"

	"go.uber.org/zap"

	"github.com/robert-malhotra/h5value/decode"
	"github.com/robert-malhotra/h5value/errors"
	"github.com/robert-malhotra/h5value/value"
)

// Option configures DecodeContainer.
type Option func(*options)

type options struct {
	engine     Engine
	maxDepth   int
	duplicates decode.DuplicatePolicy
}

func defaultOptions() *options {
	return &options{
		engine:   HDF5,
		maxDepth: decode.DefaultMaxDepth,
	}
}

// WithEngine selects the container engine.
func WithEngine(e Engine) Option {
	return func(o *options) {
		if e != nil {
			o.engine = e
		}
	}
}

// WithMaxDepth bounds nesting of groups and types combined.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithDuplicatePolicy sets how duplicate field names are handled.
func WithDuplicatePolicy(p decode.DuplicatePolicy) Option {
	return func(o *options) {
		o.duplicates = p
	}
}

// DecodeContainer opens data and returns its root group as a record.
func DecodeContainer(data []byte, opts ...Option) (value.Value, error) {
	return DecodeContainerContext(context.Background(), data, opts...)
}

// DecodeContainerContext is DecodeContainer with cancellation. A canceled
// conversion returns no partial result.
func DecodeContainerContext(ctx context.Context, data []byte, opts ...Option) (value.Value, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c, err := o.engine.Open(data)
	if err != nil {
		return value.Value{}, errors.Engine(errors.PhaseOpen, nil, err, "open container")
	}
	defer func() {
		if err := c.Close(); err != nil {
			Logger().Warn("failed to close container", zap.Error(err))
		}
	}()

	root, err := c.Root()
	if err != nil {
		return value.Value{}, errors.Engine(errors.PhaseOpen, nil, err, "open root group")
	}

	dec := decode.New(
		decode.WithResolver(c),
		decode.WithMaxDepth(o.maxDepth),
		decode.WithDuplicatePolicy(o.duplicates),
	)
	Logger().Debug("decoding container", zap.Int("bytes", len(data)))
	return NewBuilder(dec).BuildGroupContext(ctx, root)
}
