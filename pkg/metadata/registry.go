// Package metadata infers attribute types during CSV ingestion.
//
// Every metadata value arrives as a string. The [Registry] watches the raw
// values observed for each attribute name and tracks the narrowest type that
// can represent all of them, widening over the lattice
//
//	Int < Float < String
//
// monotonically: once an attribute has widened to String it never narrows
// again, and an integer seen after a float leaves the attribute at Float.
// The registry never fails - an unparsable value simply widens to String.
//
// The widening itself is the pure, commutative, associative [Widen]; the
// registry is just the mapping it populates over one ingestion session.
package metadata

import "strconv"

// Type is the inferred representable type of a metadata attribute.
type Type int

// Types are ordered by width: widening only ever increases the value.
const (
	// TypeUnknown means the attribute has never been observed.
	TypeUnknown Type = iota
	// TypeInt means every observed value parsed as an integer.
	TypeInt
	// TypeFloat means every observed value parsed as a number, at least one
	// of them requiring a float.
	TypeFloat
	// TypeString means at least one observed value was not numeric.
	TypeString
)

// String returns the lowercase name of the type.
func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// TypeOf classifies a single raw value.
func TypeOf(raw string) Type {
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return TypeInt
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return TypeFloat
	}
	return TypeString
}

// Widen merges two inferred types, returning the narrowest type able to
// represent both. It is commutative and associative, and TypeUnknown is its
// identity element.
func Widen(a, b Type) Type {
	if a > b {
		return a
	}
	return b
}

// Registry tracks the inferred type of every metadata attribute seen during
// an ingestion session. Create one per session with [NewRegistry], feed it
// through [Registry.Observe] while rows are processed, and read it out once
// ingestion completes. Widening is monotonic for the registry's lifetime;
// there is no removal.
type Registry struct {
	types map[string]Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Type)}
}

// Observe records a raw value for the named attribute and returns the
// attribute's (possibly widened) inferred type.
func (r *Registry) Observe(attribute, raw string) Type {
	t := Widen(r.types[attribute], TypeOf(raw))
	r.types[attribute] = t
	return t
}

// Get returns the current inferred type for the attribute, or TypeUnknown if
// it has never been observed.
func (r *Registry) Get(attribute string) Type {
	return r.types[attribute]
}

// Attributes returns a copy of the attribute-to-type mapping.
func (r *Registry) Attributes() map[string]Type {
	out := make(map[string]Type, len(r.types))
	for k, v := range r.types {
		out[k] = v
	}
	return out
}

// Len returns the number of observed attributes.
func (r *Registry) Len() int { return len(r.types) }
