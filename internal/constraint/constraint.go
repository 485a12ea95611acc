// Package constraint builds inclusive [start, end] string ranges over encoded
// row keys and qualifiers, the form every range scan in the store contract
// consumes. Ranges are derived from partially specified composite keys using
// the codec's order-preserving encodings.
package constraint

// Constraint is an inclusive string range. Either bound may be absent. A nil
// *Constraint matches everything.
type Constraint struct {
	start, end       string
	hasStart, hasEnd bool
}

// Range returns a constraint with both bounds set.
func Range(start, end string) *Constraint {
	return &Constraint{start: start, end: end, hasStart: true, hasEnd: true}
}

// AtLeast returns a constraint bounded only from below.
func AtLeast(start string) *Constraint {
	return &Constraint{start: start, hasStart: true}
}

// AtMost returns a constraint bounded only from above.
func AtMost(end string) *Constraint {
	return &Constraint{end: end, hasEnd: true}
}

// Start returns the lower bound, if present.
func (c *Constraint) Start() (string, bool) {
	if c == nil {
		return "", false
	}
	return c.start, c.hasStart
}

// End returns the upper bound, if present.
func (c *Constraint) End() (string, bool) {
	if c == nil {
		return "", false
	}
	return c.end, c.hasEnd
}

// Contains reports whether key falls inside the constraint.
func (c *Constraint) Contains(key string) bool {
	if c == nil {
		return true
	}
	if c.hasStart && key < c.start {
		return false
	}
	if c.hasEnd && key > c.end {
		return false
	}
	return true
}
