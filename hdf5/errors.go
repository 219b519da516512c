// Package hdf5 reads HDF5 container images held in memory.
package hdf5

import "errors"

// Common errors
var (
	ErrNotHDF5      = errors.New("not an HDF5 file")
	ErrNotFound     = errors.New("object not found")
	ErrNotDataset   = errors.New("object is not a dataset")
	ErrNotGroup     = errors.New("object is not a group")
	ErrUnsupported  = errors.New("unsupported feature")
	ErrTypeMismatch = errors.New("type does not match dataset")
	ErrClosed       = errors.New("file is closed")
	ErrLinkDepth    = errors.New("maximum link depth exceeded")
	ErrBadHandle    = errors.New("invalid variable-length record")
)

// MaxLinkDepth is the maximum number of soft links that can be followed
// in a single path resolution.
const MaxLinkDepth = 100
