package command

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/robert-malhotra/h5value/errors"
	"github.com/robert-malhotra/h5value/internal/h5test"
	"github.com/robert-malhotra/h5value/internal/message"
	"github.com/robert-malhotra/h5value/tree"
	"github.com/robert-malhotra/h5value/value"
)

func TestSignature(t *testing.T) {
	sig := (&FromHDF5{}).Signature()
	if sig.Name != "from hdf5" || sig.InputType != "binary" || sig.OutputType != "any" {
		t.Errorf("signature = %+v", sig)
	}
}

func TestRun(t *testing.T) {
	img := h5test.Image(t, &h5test.Group{Members: []h5test.Member{
		&h5test.Dataset{Name: "x", Type: message.NewInt(4, true, message.OrderLE), Dims: []uint64{2}, Data: []byte{1, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}},
	}})

	got, lerr := (&FromHDF5{}).Run(context.Background(), Binary(img))
	if lerr != nil {
		t.Fatal(lerr)
	}
	x, ok := got.AsRecord().Get("x")
	if !ok || !x.Equal(value.List(value.Int(1), value.Int(-1))) {
		t.Errorf("x = %v", x)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		kind  errors.Kind
		label string
	}{
		{"string input", Input{Type: TypeString}, errors.KindUnsupportedInput, "unsupported input"},
		{"not a container", Binary([]byte("plain text")), errors.KindEngine, "could not read container"},
		{"empty", Binary(nil), errors.KindEngine, "could not read container"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, lerr := (&FromHDF5{}).Run(context.Background(), tt.in)
			if lerr == nil {
				t.Fatalf("got %v, want error", got)
			}
			if lerr.Label != tt.label {
				t.Errorf("label = %q, want %q", lerr.Label, tt.label)
			}
			if !errors.IsKind(lerr, tt.kind) {
				t.Errorf("kind = %s, want %s", errors.KindOf(lerr), tt.kind)
			}
			if got.Kind() != value.KindNull {
				t.Errorf("partial result %v", got)
			}
		})
	}
}

func TestRunNeverCallsEngineOnWrongInput(t *testing.T) {
	called := false
	cmd := &FromHDF5{Options: []tree.Option{tree.WithEngine(tree.EngineFunc(func([]byte) (tree.Container, error) {
		called = true
		return nil, stderrors.New("unreachable")
	}))}}
	if _, lerr := cmd.Run(context.Background(), Input{Type: TypeAny}); lerr == nil {
		t.Fatal("expected error")
	}
	if called {
		t.Error("engine opened for non-binary input")
	}
}

func TestRunRecoversPanic(t *testing.T) {
	cmd := &FromHDF5{Options: []tree.Option{tree.WithEngine(tree.EngineFunc(func([]byte) (tree.Container, error) {
		panic("engine exploded")
	}))}}
	_, lerr := cmd.Run(context.Background(), Binary([]byte{0}))
	if lerr == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(lerr.Msg, "engine exploded") {
		t.Errorf("msg = %q", lerr.Msg)
	}
}

func TestRunCanceled(t *testing.T) {
	img := h5test.Image(t, &h5test.Group{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, lerr := (&FromHDF5{}).Run(ctx, Binary(img))
	if lerr == nil || !stderrors.Is(lerr, context.Canceled) {
		t.Errorf("err = %v", lerr)
	}
}
