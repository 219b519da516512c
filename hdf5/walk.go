package hdf5

// WalkFunc is called for each object during traversal.
// path is the full path to the object.
// obj is either *Group or *Dataset.
// err is any error encountered listing or opening the object.
// Return nil to continue walking, or an error to stop.
type WalkFunc func(path string, obj any, err error) error

// Walk traverses all groups and datasets below g, g included. Within a
// group, datasets are visited before subgroups, each in name order. A
// group reachable along several paths is visited once.
//
// Example:
//
//	Walk(root, func(path string, obj any, err error) error {
//	    if err != nil {
//	        return err
//	    }
//	    switch o := obj.(type) {
//	    case *Group:
//	        fmt.Println("Group:", path)
//	    case *Dataset:
//	        fmt.Println("Dataset:", path, "shape:", o.Shape())
//	    }
//	    return nil
//	})
func Walk(g *Group, fn WalkFunc) error {
	err := walkGroup(g, fn, map[uint64]bool{})
	if err == ErrStopWalk {
		return nil
	}
	return err
}

func walkGroup(g *Group, fn WalkFunc, seen map[uint64]bool) error {
	if seen[g.header.Address] {
		return nil
	}
	seen[g.header.Address] = true
	if err := fn(g.Path(), g, nil); err != nil {
		return err
	}

	datasets, err := g.Datasets()
	if err != nil {
		return fn(g.Path(), nil, err)
	}
	for _, ds := range datasets {
		if err := fn(ds.Path(), ds, nil); err != nil {
			return err
		}
	}

	groups, err := g.Groups()
	if err != nil {
		return fn(g.Path(), nil, err)
	}
	for _, sub := range groups {
		if err := walkGroup(sub, fn, seen); err != nil {
			return err
		}
	}
	return nil
}

// ErrStopWalk can be returned from a WalkFunc to stop walking without an error.
var ErrStopWalk = &walkStopError{}

type walkStopError struct{}

func (e *walkStopError) Error() string { return "walk stopped" }

// IsStopWalk returns true if the error is ErrStopWalk.
func IsStopWalk(err error) bool {
	_, ok := err.(*walkStopError)
	return ok
}
