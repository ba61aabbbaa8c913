// Package request derives per-partition archive requests from an immutable
// template. Every partition build clones the template before touching it,
// so concurrent partition fetches never share a mutable request.
package request

import "errors"

// Static errors for request building
var (
	// ErrPartitionOutOfRange is returned for a partition index outside the plan
	ErrPartitionOutOfRange = errors.New("partition index out of range")
	// ErrNilFormatter is returned when a date-mode builder has no wire formatter
	ErrNilFormatter = errors.New("wire formatter is required in date mode")
)

// Archive selector keys set by the builder.
const (
	// KeyDate is the archive date selector
	KeyDate = "date"
	// KeyTime is the archive time-range selector
	KeyTime = "time"
	// KeyStep is the integer step selector
	KeyStep = "step"
	// KeyParam is the physical parameter selector
	KeyParam = "param"
)

// Request is a flat mapping of archive selector keys to values. Each
// partition fetch owns its private copy.
type Request map[string]string

// Clone returns an independent copy of the request.
func (r Request) Clone() Request {
	out := make(Request, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Template is an immutable seed for per-partition requests. The fields map
// is copied on construction and on every Clone, so a Template can be shared
// across goroutines.
type Template struct {
	fields Request
}

// NewTemplate copies the given selector fields into an immutable template.
func NewTemplate(fields map[string]string) Template {
	seed := make(Request, len(fields))
	for k, v := range fields {
		seed[k] = v
	}
	return Template{fields: seed}
}

// Clone returns a fresh mutable request seeded from the template.
func (t Template) Clone() Request {
	return t.fields.Clone()
}
