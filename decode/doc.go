// Package decode turns byte windows into values according to a type
// descriptor.
//
// Windows are in host byte order, as container engines hand them out.
// Fixed-size kinds are read straight from the window; variable-length
// kinds hold a 16-byte indirection record that a [Resolver] exchanges for
// the payload. Every read is bounds checked: a window whose length
// disagrees with the size its descriptor declares fails with a size
// mismatch rather than being truncated or padded.
//
// Basic usage:
//
//	d := decode.New(decode.WithResolver(file))
//	v, err := d.Decode(window, types.Compound(12,
//		types.Field{Name: "a", Offset: 0, Type: types.Uint(4)},
//		types.Field{Name: "b", Offset: 4, Type: types.Float(8)},
//	))
package decode
