package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindSizeMismatch,
				Path:   []string{"sensors", "[3]", "reading"},
				Type:   "u64",
				Detail: "window is 4 bytes",
			},
			contains: []string{"[decode]", "size_mismatch", "sensors[3].reading", "type u64", " - window is 4 bytes"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseBuild,
				Kind:  KindCountMismatch,
			},
			contains: []string{"[build]", "count_mismatch"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseOpen,
				Kind:   KindEngine,
				Detail: "open failed",
				Cause:  errors.New("not an HDF5 file"),
			},
			contains: []string{"[open]", "engine", "open failed", "caused by", "not an HDF5 file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Engine(PhaseOpen, nil, cause, "")

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := SizeMismatch([]string{"a"}, "u32", 2, 4)

	if !errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindSizeMismatch}) {
		t.Error("expected match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseBuild, Kind: KindSizeMismatch}) {
		t.Error("expected no match on different phase")
	}
	if errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindEngine}) {
		t.Error("expected no match on different kind")
	}

	wrapped := fmt.Errorf("dataset x: %w", err)
	if !errors.Is(wrapped, &Error{Phase: PhaseDecode, Kind: KindSizeMismatch}) {
		t.Error("expected match through fmt.Errorf wrapping")
	}
}

func TestIsKind(t *testing.T) {
	inner := SizeMismatch(nil, "u8", 0, 1)
	outer := Engine(PhaseBuild, []string{"ds"}, inner, "read failed")

	if !IsKind(outer, KindEngine) {
		t.Error("expected outer kind")
	}
	if !IsKind(outer, KindSizeMismatch) {
		t.Error("expected kind found through Cause")
	}
	if IsKind(outer, KindCanceled) {
		t.Error("unexpected kind")
	}
	if IsKind(errors.New("plain"), KindEngine) {
		t.Error("plain error has no kind")
	}
	if KindOf(fmt.Errorf("x: %w", outer)) != KindEngine {
		t.Errorf("KindOf = %q", KindOf(outer))
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("boom")
	err := New(PhaseDecode, KindInvalidType).
		Path("a", "b").
		Type("vlen<u8>").
		Detail("width %d", 3).
		Cause(cause).
		Build()

	if err.Phase != PhaseDecode || err.Kind != KindInvalidType {
		t.Errorf("phase/kind = %s/%s", err.Phase, err.Kind)
	}
	if FormatPath(err.Path) != "a.b" {
		t.Errorf("path = %q", FormatPath(err.Path))
	}
	if err.Detail != "width 3" || err.Type != "vlen<u8>" || err.Cause != cause {
		t.Errorf("unexpected builder result: %+v", err)
	}
}

func TestFormatPath(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"x"}, "x"},
		{[]string{"[0]"}, "[0]"},
		{[]string{"g", "ds", "[2]", "[0]", "f"}, "g.ds[2][0].f"},
	}
	for _, tt := range tests {
		if got := FormatPath(tt.path); got != tt.want {
			t.Errorf("FormatPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestToLabeled(t *testing.T) {
	if ToLabeled(nil) != nil {
		t.Error("nil error should stay nil")
	}

	l := ToLabeled(fmt.Errorf("wrap: %w", UnsupportedInput("string")))
	if l.Label != "unsupported input" {
		t.Errorf("Label = %q", l.Label)
	}
	if !strings.Contains(l.Msg, "expected binary input, got string") {
		t.Errorf("Msg = %q", l.Msg)
	}
	if !IsKind(l, KindUnsupportedInput) {
		t.Error("labeled error should unwrap to its cause")
	}

	if again := ToLabeled(l); again != l {
		t.Error("labeled error should pass through")
	}

	plain := ToLabeled(errors.New("boom"))
	if plain.Label != "conversion failed" || plain.Msg != "boom" {
		t.Errorf("plain = %+v", plain)
	}
}
