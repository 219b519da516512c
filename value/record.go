package value

import (
	"iter"

	"github.com/elliotchance/orderedmap/v3"
)

// Record is an ordered set of uniquely named fields.
type Record struct {
	fields *orderedmap.OrderedMap[string, Value]
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{fields: orderedmap.NewOrderedMap[string, Value]()}
}

// Add appends a field. It reports false, leaving the record unchanged,
// when the name is already present.
func (r *Record) Add(name string, v Value) bool {
	if _, ok := r.fields.Get(name); ok {
		return false
	}
	r.fields.Set(name, v)
	return true
}

// Set stores v under name. An existing field keeps its position.
func (r *Record) Set(name string, v Value) {
	r.fields.Set(name, v)
}

// Get returns the field called name.
func (r *Record) Get(name string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	return r.fields.Get(name)
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return r.fields.Len()
}

// Names returns the field names in order.
func (r *Record) Names() []string {
	names := make([]string, 0, r.Len())
	for name := range r.All() {
		names = append(names, name)
	}
	return names
}

// All iterates over the fields in order.
func (r *Record) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if r == nil {
			return
		}
		for el := r.fields.Front(); el != nil; el = el.Next() {
			if !yield(el.Key, el.Value) {
				return
			}
		}
	}
}

// Equal reports whether both records hold equal fields in the same order.
func (r *Record) Equal(o *Record) bool {
	if r.Len() != o.Len() {
		return false
	}
	next, stop := iter.Pull2(o.All())
	defer stop()
	for name, v := range r.All() {
		oname, ov, ok := next()
		if !ok || name != oname || !v.Equal(ov) {
			return false
		}
	}
	return true
}
