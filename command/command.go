// Package command is the host-facing surface of the converter: one command,
// "from hdf5", that takes a binary value and returns the decoded tree.
package command

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/robert-malhotra/h5value/errors"
	"github.com/robert-malhotra/h5value/tree"
	"github.com/robert-malhotra/h5value/value"
)

// Signature describes a command to the host.
type Signature struct {
	Name       string
	Usage      string
	InputType  string
	OutputType string
}

// Input types understood by the host.
const (
	TypeBinary = "binary"
	TypeString = "string"
	TypeAny    = "any"
)

// Input is a value handed over by the host. Only binary inputs carry Data.
type Input struct {
	Type string
	Data []byte
}

// Binary wraps data as a binary input.
func Binary(data []byte) Input {
	return Input{Type: TypeBinary, Data: data}
}

// FromHDF5 converts an HDF5 image into a record of its groups and datasets.
type FromHDF5 struct {
	// Options are passed to tree.DecodeContainer on every run.
	Options []tree.Option
	Logger  *zap.Logger
}

// Signature returns the command's host signature.
func (c *FromHDF5) Signature() Signature {
	return Signature{
		Name:       "from hdf5",
		Usage:      "Convert binary HDF5 data into a record of groups and datasets",
		InputType:  TypeBinary,
		OutputType: TypeAny,
	}
}

// Run decodes in. Any failure, including a panic below this call, comes
// back as a single labeled error and no value.
func (c *FromHDF5) Run(ctx context.Context, in Input) (v value.Value, lerr *errors.Labeled) {
	log := c.logger()
	if in.Type != TypeBinary {
		log.Debug("rejected input", zap.String("type", in.Type))
		return value.Value{}, errors.ToLabeled(errors.UnsupportedInput(in.Type))
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("conversion panicked", zap.Any("panic", r), zap.Stack("stack"))
			v = value.Value{}
			lerr = &errors.Labeled{
				Label: "internal error",
				Msg:   fmt.Sprintf("conversion panicked: %v", r),
			}
		}
	}()

	out, err := tree.DecodeContainerContext(ctx, in.Data, c.Options...)
	if err != nil {
		log.Debug("conversion failed", zap.Error(err))
		return value.Value{}, errors.ToLabeled(err)
	}
	return out, nil
}

func (c *FromHDF5) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}
