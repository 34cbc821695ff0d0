// Package profile loads easymode profile definitions and resolves which
// profile a set of current parameter values corresponds to.
package profile

// Constraint restricts a single parameter within a profile definition.
// It is a closed sum over three shapes: Fixed, List and Range. The
// sealed method keeps matching logic exhaustively type-switchable.
type Constraint interface {
	constraint()

	// Matches reports whether a current value satisfies the constraint.
	// A missing value (ok == false) never matches, and neither does a
	// value that is not numeric.
	Matches(value float64, ok bool) bool
}

// Fixed requires the parameter to equal exactly Value.
type Fixed struct {
	Value float64
}

func (Fixed) constraint() {}

// Matches implements Constraint.
func (c Fixed) Matches(value float64, ok bool) bool {
	return ok && value == c.Value
}

// List requires the parameter to be one of Values. Default is the
// profile's suggested value and is always a member of Values.
type List struct {
	Values  []float64
	Default float64
}

func (List) constraint() {}

// Matches implements Constraint.
func (c List) Matches(value float64, ok bool) bool {
	if !ok {
		return false
	}
	for _, v := range c.Values {
		if value == v {
			return true
		}
	}
	return false
}

// Range requires the parameter to lie in [Min, Max]. Default always lies
// in that interval.
type Range struct {
	Min     float64
	Max     float64
	Default float64
}

func (Range) constraint() {}

// Matches implements Constraint.
func (c Range) Matches(value float64, ok bool) bool {
	return ok && c.Min <= value && value <= c.Max
}
