package errors

import (
	stderrors "errors"
)

// Labeled is the form an error takes when it crosses the command boundary:
// a short label for display next to the input, a descriptive message, and
// the original error.
type Labeled struct {
	Label string
	Msg   string
	Cause error
}

func (l *Labeled) Error() string {
	return l.Label + ": " + l.Msg
}

func (l *Labeled) Unwrap() error {
	return l.Cause
}

var labels = map[Kind]string{
	KindSizeMismatch:     "type size mismatch",
	KindCountMismatch:    "element count mismatch",
	KindEngine:           "could not read container",
	KindUnsupportedInput: "unsupported input",
	KindDuplicateField:   "duplicate field name",
	KindSchemaTooDeep:    "schema too deep",
	KindInvalidType:      "invalid type",
	KindCanceled:         "canceled",
}

// ToLabeled converts err into a labeled error. It returns nil for a nil
// error and passes an existing *Labeled through.
func ToLabeled(err error) *Labeled {
	if err == nil {
		return nil
	}
	var l *Labeled
	if stderrors.As(err, &l) {
		return l
	}

	label := "conversion failed"
	var e *Error
	if stderrors.As(err, &e) {
		if s, ok := labels[e.Kind]; ok {
			label = s
		}
	}
	return &Labeled{Label: label, Msg: err.Error(), Cause: err}
}
