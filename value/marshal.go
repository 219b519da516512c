package value

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes the tree with record fields in order. Non-finite
// floats, which JSON cannot represent, are written as the strings "NaN",
// "+Inf" and "-Inf".
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) appendJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.AsInt(), 10))
	case KindUint:
		buf.WriteString(strconv.FormatUint(v.AsUint(), 10))
	case KindFloat:
		f := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString(strconv.Quote(floatName(f)))
			return nil
		}
		b, err := json.Marshal(f)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.AsBool()))
	case KindString:
		b, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindRecord:
		buf.WriteByte('{')
		i := 0
		for name, field := range v.rec.All() {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(name)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := field.appendJSON(buf); err != nil {
				return err
			}
			i++
		}
		buf.WriteByte('}')
	default:
		buf.WriteString("null")
	}
	return nil
}

func floatName(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case f > 0:
		return "+Inf"
	default:
		return "-Inf"
	}
}

// MarshalYAML returns the tree as a yaml.Node so record order survives.
func (v Value) MarshalYAML() (any, error) {
	return v.Node(), nil
}

// Node converts the tree to a YAML node.
func (v Value) Node() *yaml.Node {
	switch v.kind {
	case KindInt:
		return scalar("!!int", strconv.FormatInt(v.AsInt(), 10))
	case KindUint:
		return scalar("!!int", strconv.FormatUint(v.AsUint(), 10))
	case KindFloat:
		f := v.AsFloat()
		switch {
		case math.IsNaN(f):
			return scalar("!!float", ".nan")
		case math.IsInf(f, 1):
			return scalar("!!float", ".inf")
		case math.IsInf(f, -1):
			return scalar("!!float", "-.inf")
		}
		return scalar("!!float", strconv.FormatFloat(f, 'g', -1, 64))
	case KindBool:
		return scalar("!!bool", strconv.FormatBool(v.AsBool()))
	case KindString:
		return scalar("!!str", v.str)
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.list {
			n.Content = append(n.Content, item.Node())
		}
		return n
	case KindRecord:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for name, field := range v.rec.All() {
			n.Content = append(n.Content, scalar("!!str", name), field.Node())
		}
		return n
	}
	return scalar("!!null", "null")
}

func scalar(tag, s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: s}
}
