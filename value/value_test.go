package value

import (
	"math"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func sample() Value {
	r := NewRecord()
	r.Add("b", Int(-3))
	r.Add("a", List(Uint(1), Float(2.5), Bool(true)))
	r.Add("c", String("x\"y"))
	return RecordOf(r)
}

func TestScalarRoundTrip(t *testing.T) {
	if got := Int(math.MinInt64).AsInt(); got != math.MinInt64 {
		t.Errorf("Int = %d", got)
	}
	if got := Uint(math.MaxUint64).AsUint(); got != math.MaxUint64 {
		t.Errorf("Uint = %d", got)
	}
	if got := Float(-0.0).AsFloat(); math.Signbit(got) != true {
		t.Errorf("Float lost sign of -0")
	}
	if !Bool(true).AsBool() || Bool(false).AsBool() {
		t.Error("Bool mismatch")
	}
	if Int(1).Equal(Uint(1)) {
		t.Error("Int(1) should not equal Uint(1)")
	}
}

func TestRecordAddKeepsFirst(t *testing.T) {
	r := NewRecord()
	if !r.Add("x", Int(1)) {
		t.Fatal("first Add returned false")
	}
	if r.Add("x", Int(2)) {
		t.Fatal("duplicate Add returned true")
	}
	if v, _ := r.Get("x"); v.AsInt() != 1 {
		t.Errorf("x = %v, want 1", v)
	}
	r.Add("y", Int(3))
	r.Set("x", Int(9))
	if got := strings.Join(r.Names(), ","); got != "x,y" {
		t.Errorf("names = %s, want x,y", got)
	}
	if v, _ := r.Get("x"); v.AsInt() != 9 {
		t.Errorf("x = %v, want 9", v)
	}
}

func TestEqualIsOrderSensitive(t *testing.T) {
	a := NewRecord()
	a.Add("p", Int(1))
	a.Add("q", Int(2))
	b := NewRecord()
	b.Add("q", Int(2))
	b.Add("p", Int(1))
	if RecordOf(a).Equal(RecordOf(b)) {
		t.Error("records with different order compared equal")
	}
	if !sample().Equal(sample()) {
		t.Error("identical trees compared unequal")
	}
	if !Float(math.NaN()).Equal(Float(math.NaN())) {
		t.Error("NaN should equal itself bitwise")
	}
}

func TestMarshalJSONPreservesOrder(t *testing.T) {
	b, err := sample().MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"b":-3,"a":[1,2.5,true],"c":"x\"y"}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}

	b, err = List(Float(math.Inf(-1)), Float(math.NaN())).MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `["-Inf","NaN"]` {
		t.Errorf("json = %s", b)
	}
}

func TestMarshalYAMLPreservesOrder(t *testing.T) {
	r := NewRecord()
	r.Add("b", Int(-3))
	r.Add("a", List(Uint(1), Float(2.5), Bool(true)))
	r.Add("c", String("xy"))
	out, err := yaml.Marshal(RecordOf(r))
	if err != nil {
		t.Fatal(err)
	}
	want := "b: -3\na:\n    - 1\n    - 2.5\n    - true\nc: xy\n"
	if string(out) != want {
		t.Errorf("yaml =\n%s\nwant\n%s", out, want)
	}
}

func TestInterface(t *testing.T) {
	m, ok := sample().Interface().(map[string]any)
	if !ok {
		t.Fatalf("Interface() = %T", sample().Interface())
	}
	if m["b"] != int64(-3) {
		t.Errorf("b = %#v", m["b"])
	}
	list := m["a"].([]any)
	if list[0] != uint64(1) || list[1] != 2.5 || list[2] != true {
		t.Errorf("a = %#v", list)
	}
}

func TestString(t *testing.T) {
	if got := sample().String(); got != `{b: -3, a: [1, 2.5, true], c: "x\"y"}` {
		t.Errorf("String() = %s", got)
	}
	if got := List().String(); got != "[]" {
		t.Errorf("empty list = %s", got)
	}
}
