package hdf5

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/robert-malhotra/h5value/internal/btree"
	"github.com/robert-malhotra/h5value/internal/heap"
	"github.com/robert-malhotra/h5value/internal/message"
	"github.com/robert-malhotra/h5value/internal/object"
)

// Group represents an HDF5 group.
type Group struct {
	file   *File
	path   string
	header *object.Header
}

// link is one named member of a group before resolution.
type link struct {
	name     string
	address  uint64
	soft     string
	external bool
}

// Name returns the group name (last component of path).
func (g *Group) Name() string {
	if g.path == "/" {
		return "/"
	}
	return path.Base(g.path)
}

// Path returns the full path to this group.
func (g *Group) Path() string {
	return g.path
}

// Members returns the names of all members in ascending order.
func (g *Group) Members() ([]string, error) {
	links, err := g.links()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(links))
	for i, l := range links {
		names[i] = l.name
	}
	return names, nil
}

// Datasets returns the datasets directly in g, in name order. Soft links
// to datasets are included under the link's name.
func (g *Group) Datasets() ([]*Dataset, error) {
	var out []*Dataset
	err := g.eachChild(func(obj any) {
		if ds, ok := obj.(*Dataset); ok {
			out = append(out, ds)
		}
	})
	return out, err
}

// Groups returns the subgroups of g, in name order.
func (g *Group) Groups() ([]*Group, error) {
	var out []*Group
	err := g.eachChild(func(obj any) {
		if sub, ok := obj.(*Group); ok {
			out = append(out, sub)
		}
	})
	return out, err
}

// eachChild opens every member and passes it to fn. Dangling soft links
// and objects that are neither groups nor datasets are skipped.
func (g *Group) eachChild(fn func(obj any)) error {
	if g.file.closed.Load() {
		return ErrClosed
	}
	links, err := g.links()
	if err != nil {
		return err
	}
	for _, l := range links {
		obj, err := g.openLink(l, map[string]bool{})
		if err != nil {
			if l.soft != "" && errors.Is(err, ErrNotFound) {
				Logger().Debug("skipping dangling soft link",
					zap.String("group", g.path), zap.String("name", l.name), zap.String("target", l.soft))
				continue
			}
			return fmt.Errorf("opening %q: %w", path.Join(g.path, l.name), err)
		}
		if obj != nil {
			fn(obj)
		}
	}
	return nil
}

// OpenGroup opens a subgroup by relative path.
func (g *Group) OpenGroup(relativePath string) (*Group, error) {
	obj, err := g.open(relativePath, map[string]bool{})
	if err != nil {
		return nil, err
	}
	group, ok := obj.(*Group)
	if !ok {
		return nil, ErrNotGroup
	}
	return group, nil
}

// OpenDataset opens a dataset by relative path.
func (g *Group) OpenDataset(relativePath string) (*Dataset, error) {
	obj, err := g.open(relativePath, map[string]bool{})
	if err != nil {
		return nil, err
	}
	dataset, ok := obj.(*Dataset)
	if !ok {
		return nil, ErrNotDataset
	}
	return dataset, nil
}

// open walks relativePath from g. An absolute path starts at the root.
func (g *Group) open(relativePath string, visited map[string]bool) (any, error) {
	if g.file.closed.Load() {
		return nil, ErrClosed
	}
	current := g
	if strings.HasPrefix(relativePath, "/") {
		current = g.file.root
	}
	parts := SplitPath(relativePath)
	if len(parts) == 0 {
		return current, nil
	}

	for i, name := range parts {
		l, err := current.find(name)
		if err != nil {
			return nil, fmt.Errorf("finding %q: %w", name, err)
		}
		obj, err := current.openLink(l, visited)
		if err != nil {
			return nil, err
		}
		if i == len(parts)-1 {
			if obj == nil {
				return nil, fmt.Errorf("%w: %q is neither a group nor a dataset", ErrUnsupported, name)
			}
			return obj, nil
		}
		next, ok := obj.(*Group)
		if !ok {
			return nil, fmt.Errorf("%q is not a group: %w", path.Join(current.path, name), ErrNotGroup)
		}
		current = next
	}
	return current, nil
}

// openLink resolves l to the object it names. The object keeps the path
// under which it was reached.
func (g *Group) openLink(l link, visited map[string]bool) (any, error) {
	childPath := path.Join(g.path, l.name)
	switch {
	case l.external:
		return nil, fmt.Errorf("%w: external link %q", ErrUnsupported, childPath)

	case l.soft != "":
		if len(visited) >= MaxLinkDepth {
			return nil, ErrLinkDepth
		}
		if visited[l.soft] {
			return nil, fmt.Errorf("%w: circular soft link %s", ErrLinkDepth, l.soft)
		}
		visited[l.soft] = true
		obj, err := g.open(l.soft, visited)
		if err != nil {
			return nil, fmt.Errorf("soft link %q -> %q: %w", childPath, l.soft, err)
		}
		switch o := obj.(type) {
		case *Group:
			return &Group{file: o.file, path: childPath, header: o.header}, nil
		case *Dataset:
			return o.withPath(childPath), nil
		}
		return obj, nil

	default:
		return g.file.openObject(l.address, childPath)
	}
}

// find returns the member called name.
func (g *Group) find(name string) (link, error) {
	links, err := g.links()
	if err != nil {
		return link{}, err
	}
	i, ok := slices.BinarySearchFunc(links, name, func(l link, name string) int {
		return strings.Compare(l.name, name)
	})
	if !ok {
		return link{}, ErrNotFound
	}
	return links[i], nil
}

// links lists the members of g sorted by name.
func (g *Group) links() ([]link, error) {
	var links []link

	if li := g.header.LinkInfo(); li != nil && li.IsDense() {
		return nil, fmt.Errorf("%w: dense link storage in group %s", ErrUnsupported, g.path)
	}
	for _, m := range g.header.Links() {
		l := link{name: m.Name}
		switch m.LinkType {
		case message.LinkTypeHard:
			l.address = m.ObjectAddress
		case message.LinkTypeSoft:
			l.soft = m.SoftLinkValue
		case message.LinkTypeExternal:
			l.external = true
		default:
			return nil, fmt.Errorf("%w: link type %d", ErrUnsupported, m.LinkType)
		}
		links = append(links, l)
	}

	if st := g.symbolTable(); st != nil {
		entries, err := g.symbolEntries(st)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			links = append(links, link{name: e.Name, address: e.ObjectAddress, soft: e.SoftLink})
		}
	}

	slices.SortFunc(links, func(a, b link) int {
		return strings.Compare(a.name, b.name)
	})
	return links, nil
}

// symbolTable returns the symbol table of an old-style group. The root
// group may only be described by the superblock's scratch pad.
func (g *Group) symbolTable() *message.SymbolTable {
	if st := g.header.SymbolTable(); st != nil {
		return st
	}
	sb := g.file.superblock
	if g.header.Address == sb.RootGroupAddress && sb.HasRootScratchPad {
		return &message.SymbolTable{
			BTreeAddress:     sb.RootGroupBTreeAddress,
			LocalHeapAddress: sb.RootGroupLocalHeapAddress,
		}
	}
	return nil
}

func (g *Group) symbolEntries(st *message.SymbolTable) ([]btree.GroupEntry, error) {
	localHeap, err := heap.ReadLocalHeap(g.file.reader, st.LocalHeapAddress)
	if err != nil {
		return nil, fmt.Errorf("reading local heap: %w", err)
	}
	entries, err := btree.ReadGroupEntries(g.file.reader, st.BTreeAddress, localHeap)
	if err != nil {
		return nil, fmt.Errorf("reading B-tree: %w", err)
	}
	return entries, nil
}
