package tree

import (
	"github.com/robert-malhotra/h5value/decode"
	"github.com/robert-malhotra/h5value/types"
)

// Engine opens container images.
type Engine interface {
	// Open returns a container reading from data. The container may read
	// lazily and must not be used after data is released.
	Open(data []byte) (Container, error)
}

// Container is an open image.
type Container interface {
	decode.Resolver
	Root() (Group, error)
	Close() error
}

// Group is a read-only view of a group.
type Group interface {
	Name() string
	Datasets() ([]Dataset, error)
	Groups() ([]Group, error)
}

// Dataset is a read-only view of a dataset.
type Dataset interface {
	Name() string
	Type() (types.Descriptor, error)
	Len() (uint64, error)
	// ReadNative returns every element in host byte order laid out as
	// desc describes, variable-length values as indirection records.
	ReadNative(desc types.Descriptor) ([]byte, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(data []byte) (Container, error)

func (f EngineFunc) Open(data []byte) (Container, error) { return f(data) }
