// Package paramset defines the value and diff types exchanged between the
// configuration session, the change log, and persistence callers, together
// with the parameter descriptor model used for validation.
package paramset

import (
	"fmt"
	"math"
)

// ValueSet maps parameter ids to scalar values (bool, int64, float64 or
// string). It represents either an initial, current or changes-only state.
type ValueSet = map[string]any

// ValueChange records the old and new value of a single parameter.
// Old is nil when the parameter was absent from the baseline.
type ValueChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// ChangeDiff is a field-by-field difference between two value sets.
type ChangeDiff = map[string]ValueChange

// BuildChangeDiff computes the difference between two value sets. Every key
// present in new whose value differs from old (missing in old counts as
// different) is emitted; unchanged keys are omitted.
func BuildChangeDiff(oldValues, newValues ValueSet) ChangeDiff {
	changes := make(ChangeDiff)
	for param, newVal := range newValues {
		if oldVal, ok := oldValues[param]; !ok || !ValuesEqual(oldVal, newVal) {
			var old any
			if ok {
				old = oldVal
			}
			changes[param] = ValueChange{Old: old, New: newVal}
		}
	}
	return changes
}

// ValuesEqual compares two parameter values. Numeric values compare by
// magnitude regardless of concrete type, everything else by interface
// equality.
func ValuesEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

// ValueSetsEqual reports whether two value sets hold the same keys with
// equal values.
func ValueSetsEqual(a, b ValueSet) bool {
	if len(a) != len(b) {
		return false
	}
	for param, av := range a {
		bv, ok := b[param]
		if !ok || !ValuesEqual(av, bv) {
			return false
		}
	}
	return true
}

// CloneValueSet returns a shallow copy of a value set. Values are scalars,
// so a shallow copy is a full copy.
func CloneValueSet(values ValueSet) ValueSet {
	out := make(ValueSet, len(values))
	for param, v := range values {
		out[param] = v
	}
	return out
}

// toFloat converts a numeric value to float64. Bools are not numeric.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// AsFloat converts a parameter value to float64 for constraint comparison.
func AsFloat(v any) (float64, bool) {
	return toFloat(v)
}

// coerceInt converts a value to int64 if it is an integral number.
func coerceInt(v any) (int64, bool) {
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// CoerceValue converts a raw value to the canonical representation for the
// descriptor's type. Returns an error when the value cannot represent the
// descriptor type at all; range and membership checks belong to
// ValidateValue, not here.
func CoerceValue(desc Description, value any) (any, error) {
	switch desc.Type {
	case TypeBool, TypeAction:
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("parameter type %s requires bool, got %T", desc.Type, value)
	case TypeInteger, TypeEnum:
		if n, ok := coerceInt(value); ok {
			return n, nil
		}
		return nil, fmt.Errorf("parameter type %s requires integer, got %v", desc.Type, value)
	case TypeFloat:
		if f, ok := toFloat(value); ok {
			return f, nil
		}
		return nil, fmt.Errorf("parameter type %s requires number, got %T", desc.Type, value)
	case TypeString:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("parameter type %s requires string, got %T", desc.Type, value)
	}
	return value, nil
}
