// Package value is the generic tree that decoded container data is
// returned as.
//
// A [Value] is one of seven kinds: signed and unsigned integers, floats,
// booleans, strings, lists and records. Records keep their fields in
// insertion order and never hold the same name twice. Values own their
// data; nothing in a tree aliases the bytes it was decoded from.
package value

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindUint
	KindFloat
	KindBool
	KindString
	KindList
	KindRecord
)

var kindNames = [...]string{
	KindNull:   "null",
	KindInt:    "int",
	KindUint:   "uint",
	KindFloat:  "float",
	KindBool:   "bool",
	KindString: "string",
	KindList:   "list",
	KindRecord: "record",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is a node of a decoded tree. The zero Value is null, which the
// decoder never produces.
type Value struct {
	kind Kind
	bits uint64
	str  string
	list []Value
	rec  *Record
}

// Int returns a signed integer value.
func Int(v int64) Value { return Value{kind: KindInt, bits: uint64(v)} }

// Uint returns an unsigned integer value.
func Uint(v uint64) Value { return Value{kind: KindUint, bits: v} }

// Float returns a floating-point value.
func Float(v float64) Value { return Value{kind: KindFloat, bits: math.Float64bits(v)} }

// Bool returns a boolean value.
func Bool(v bool) Value {
	if v {
		return Value{kind: KindBool, bits: 1}
	}
	return Value{kind: KindBool}
}

// String returns a string value.
func String(v string) Value { return Value{kind: KindString, str: v} }

// List returns a list holding items in order.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// RecordOf wraps a record. A nil record is treated as empty.
func RecordOf(r *Record) Value {
	if r == nil {
		r = NewRecord()
	}
	return Value{kind: KindRecord, rec: r}
}

// Kind returns the variant.
func (v Value) Kind() Kind { return v.kind }

// AsInt returns the value of an Int.
func (v Value) AsInt() int64 { return int64(v.bits) }

// AsUint returns the value of a Uint.
func (v Value) AsUint() uint64 { return v.bits }

// AsFloat returns the value of a Float.
func (v Value) AsFloat() float64 { return math.Float64frombits(v.bits) }

// AsBool returns the value of a Bool.
func (v Value) AsBool() bool { return v.bits != 0 }

// AsString returns the value of a String.
func (v Value) AsString() string { return v.str }

// Len returns the number of items of a List or fields of a Record.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindRecord:
		return v.rec.Len()
	}
	return 0
}

// Index returns item i of a List.
func (v Value) Index(i int) Value { return v.list[i] }

// Items returns a copy of the items of a List.
func (v Value) Items() []Value { return slices.Clone(v.list) }

// AsRecord returns the record of a Record value, or nil.
func (v Value) AsRecord() *Record { return v.rec }

// Equal reports whether two trees are structurally identical. Floats
// compare by bit pattern, so NaN equals itself; record fields compare in
// order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindList:
		return slices.EqualFunc(v.list, o.list, Value.Equal)
	case KindRecord:
		return v.rec.Equal(o.rec)
	default:
		return v.bits == o.bits
	}
}

// Interface converts the tree to plain Go values: int64, uint64, float64,
// bool, string, []any and map[string]any. Record order is lost.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.AsInt()
	case KindUint:
		return v.AsUint()
	case KindFloat:
		return v.AsFloat()
	case KindBool:
		return v.AsBool()
	case KindString:
		return v.str
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindRecord:
		out := make(map[string]any, v.rec.Len())
		for name, field := range v.rec.All() {
			out[name] = field.Interface()
		}
		return out
	}
	return nil
}

// String renders the tree on one line, for debugging and error messages.
func (v Value) String() string {
	var b strings.Builder
	v.write(&b)
	return b.String()
}

func (v Value) write(b *strings.Builder) {
	switch v.kind {
	case KindInt:
		b.WriteString(strconv.FormatInt(v.AsInt(), 10))
	case KindUint:
		b.WriteString(strconv.FormatUint(v.AsUint(), 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(v.AsFloat(), 'g', -1, 64))
	case KindBool:
		b.WriteString(strconv.FormatBool(v.AsBool()))
	case KindString:
		b.WriteString(strconv.Quote(v.str))
	case KindList:
		b.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				b.WriteString(", ")
			}
			item.write(b)
		}
		b.WriteByte(']')
	case KindRecord:
		b.WriteByte('{')
		i := 0
		for name, field := range v.rec.All() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(name)
			b.WriteString(": ")
			field.write(b)
			i++
		}
		b.WriteByte('}')
	default:
		b.WriteString("null")
	}
}
