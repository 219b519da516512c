// Package tree converts a whole container into one value tree.
//
// A container is reached through an [Engine], which opens an image and
// exposes its groups and datasets. Each dataset becomes a list with one
// item per element; each group becomes a record whose fields are its
// datasets followed by its subgroups, in the order the engine lists them.
//
//	v, err := tree.DecodeContainer(data)
//	if err != nil {
//		return err
//	}
//	out, _ := json.Marshal(v)
//
// The default engine is the hdf5 package. Conversions share no state and
// may run concurrently.
package tree
