package tree

import (
	"github.com/robert-malhotra/h5value/hdf5"
	"github.com/robert-malhotra/h5value/types"
)

// HDF5 is the default engine, reading HDF5 images with package hdf5.
var HDF5 Engine = EngineFunc(func(data []byte) (Container, error) {
	f, err := hdf5.OpenBytes(data)
	if err != nil {
		return nil, err
	}
	return hdf5Container{f}, nil
})

type hdf5Container struct {
	*hdf5.File
}

func (c hdf5Container) Root() (Group, error) {
	return hdf5Group{c.File.Root()}, nil
}

type hdf5Group struct {
	g *hdf5.Group
}

func (g hdf5Group) Name() string { return g.g.Name() }

func (g hdf5Group) Datasets() ([]Dataset, error) {
	list, err := g.g.Datasets()
	if err != nil {
		return nil, err
	}
	out := make([]Dataset, len(list))
	for i, ds := range list {
		out[i] = hdf5Dataset{ds}
	}
	return out, nil
}

func (g hdf5Group) Groups() ([]Group, error) {
	list, err := g.g.Groups()
	if err != nil {
		return nil, err
	}
	out := make([]Group, len(list))
	for i, sub := range list {
		out[i] = hdf5Group{sub}
	}
	return out, nil
}

type hdf5Dataset struct {
	ds *hdf5.Dataset
}

func (d hdf5Dataset) Name() string { return d.ds.Name() }

func (d hdf5Dataset) Type() (types.Descriptor, error) { return d.ds.Descriptor() }

func (d hdf5Dataset) Len() (uint64, error) { return d.ds.Len(), nil }

func (d hdf5Dataset) ReadNative(desc types.Descriptor) ([]byte, error) {
	return d.ds.ReadNative(desc)
}
