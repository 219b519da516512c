// Package errors defines the structured error type returned by decoding
// and tree building, and the labeled form it takes at the command
// boundary.
//
// Every failure is an [*Error] carrying the [Phase] it happened in, a
// [Kind], and the field path of the value being decoded:
//
//	[decode] size_mismatch at sensors.[3].reading: window is 4 bytes, u64 needs 8
//
// errors.Is compares phase and kind only, so callers can match a class of
// failure with a template:
//
//	if errors.Is(err, &h5errors.Error{Phase: h5errors.PhaseDecode, Kind: h5errors.KindSizeMismatch}) { ... }
//
// or with [IsKind] when the phase does not matter.
package errors
