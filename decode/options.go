package decode

// DefaultMaxDepth bounds nesting of arrays, compounds and groups.
const DefaultMaxDepth = 64

// DuplicatePolicy decides what happens when a record would receive the
// same field name twice.
type DuplicatePolicy uint8

const (
	// DuplicateError fails the decode.
	DuplicateError DuplicatePolicy = iota
	// DuplicateLastWins keeps the first position and the last value.
	DuplicateLastWins
)

func (p DuplicatePolicy) String() string {
	if p == DuplicateLastWins {
		return "last-wins"
	}
	return "error"
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithResolver sets the resolver used for variable-length kinds.
func WithResolver(r Resolver) Option {
	return func(d *Decoder) {
		d.resolver = r
	}
}

// WithMaxDepth sets the nesting limit. Values below one are ignored.
func WithMaxDepth(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxDepth = n
		}
	}
}

// WithDuplicatePolicy sets how duplicate field names are handled.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(d *Decoder) {
		d.duplicates = p
	}
}
