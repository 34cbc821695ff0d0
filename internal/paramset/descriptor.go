package paramset

import "fmt"

// ParameterType is the type tag of a parameter descriptor.
type ParameterType string

// Parameter types.
const (
	TypeBool    ParameterType = "BOOL"
	TypeInteger ParameterType = "INTEGER"
	TypeFloat   ParameterType = "FLOAT"
	TypeEnum    ParameterType = "ENUM"
	TypeString  ParameterType = "STRING"
	TypeAction  ParameterType = "ACTION"
)

// Description describes a single parameter: its type, writability,
// default and value bounds. Descriptions are supplied by the device
// protocol layer; this package never constructs them on its own.
type Description struct {
	Type      ParameterType
	Writable  bool
	Default   any
	Min       any
	Max       any
	ValueList []string
	Unit      string
}

// Descriptions maps parameter ids to their descriptors.
type Descriptions = map[string]Description

// ValidationResult describes a single failed validation. Passing values
// produce no result at all; validation is collecting, not fail-fast.
type ValidationResult struct {
	Parameter string
	Value     any
	Reason    string
}

// ValidateFunc checks one value against its descriptor. A nil result means
// the value is acceptable.
type ValidateFunc func(desc Description, parameter string, value any) *ValidationResult

// ValidateValue is the canonical ValidateFunc: it checks type, numeric
// range and enum membership.
func ValidateValue(desc Description, parameter string, value any) *ValidationResult {
	coerced, err := CoerceValue(desc, value)
	if err != nil {
		return &ValidationResult{Parameter: parameter, Value: value, Reason: err.Error()}
	}

	switch desc.Type {
	case TypeInteger, TypeFloat:
		f, _ := AsFloat(coerced)
		if minVal, ok := AsFloat(desc.Min); ok && f < minVal {
			return &ValidationResult{
				Parameter: parameter,
				Value:     value,
				Reason:    fmt.Sprintf("value %v below minimum %v", value, desc.Min),
			}
		}
		if maxVal, ok := AsFloat(desc.Max); ok && f > maxVal {
			return &ValidationResult{
				Parameter: parameter,
				Value:     value,
				Reason:    fmt.Sprintf("value %v above maximum %v", value, desc.Max),
			}
		}
	case TypeEnum:
		idx, _ := coerced.(int64)
		if idx < 0 || int(idx) >= len(desc.ValueList) {
			return &ValidationResult{
				Parameter: parameter,
				Value:     value,
				Reason:    fmt.Sprintf("enum index %d outside value list of length %d", idx, len(desc.ValueList)),
			}
		}
	}
	return nil
}

// ValidateSet validates every value against its descriptor and returns only
// the failures, keyed by parameter id. Parameters without a descriptor fail
// with an unknown-parameter reason. An empty map means success.
func ValidateSet(descriptions Descriptions, values ValueSet, validate ValidateFunc) map[string]ValidationResult {
	if validate == nil {
		validate = ValidateValue
	}
	failures := make(map[string]ValidationResult)
	for param, value := range values {
		desc, ok := descriptions[param]
		if !ok {
			failures[param] = ValidationResult{
				Parameter: param,
				Value:     value,
				Reason:    "unknown parameter",
			}
			continue
		}
		if res := validate(desc, param, value); res != nil {
			failures[param] = *res
		}
	}
	return failures
}

// DiffSet builds a descriptor-aware diff between a baseline and the current
// values. Values with a descriptor are coerced to the descriptor's canonical
// type before comparison, so an int edit to a FLOAT parameter does not
// produce a spurious change. Parameters without a descriptor diff by plain
// value equality.
func DiffSet(descriptions Descriptions, baseline, current ValueSet) ChangeDiff {
	changes := make(ChangeDiff)
	for param, newVal := range current {
		if desc, ok := descriptions[param]; ok {
			if coerced, err := CoerceValue(desc, newVal); err == nil {
				newVal = coerced
			}
		}
		oldVal, had := baseline[param]
		if had && ValuesEqual(oldVal, newVal) {
			continue
		}
		var old any
		if had {
			old = oldVal
		}
		changes[param] = ValueChange{Old: old, New: newVal}
	}
	return changes
}
