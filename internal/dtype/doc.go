// Package dtype maps stored HDF5 datatypes onto type descriptors and
// converts stored elements into their native form.
//
// # Type Mapping
//
//	HDF5 class        | Descriptor
//	------------------|---------------------------------------------
//	Fixed-point       | Int or Uint of the same width (1, 2, 4, 8)
//	Floating-point    | Float (4 or 8 bytes)
//	Enum              | Enum of the base width, or Bool for FALSE/TRUE
//	String (fixed)    | FixedString of the stored length
//	String (varlen)   | VarLenString
//	Sequence (varlen) | VarLenArray of the mapped base type
//	Array             | FixedArray, dimensions flattened
//	Compound          | Compound, re-laid when member sizes change
//
// Time, bitfield, opaque and reference classes are not mapped.
//
// # Native Form
//
// [ToNative] rewrites stored elements into the layout [Descriptor]
// reports: numbers in host byte order, variable-length elements as
// 16-byte records of a uint64 count and a uint64 handle issued by a
// [Heap].
package dtype
