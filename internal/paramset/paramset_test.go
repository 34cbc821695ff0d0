package paramset

import (
	"testing"
)

func TestBuildChangeDiffIdenticalSets(t *testing.T) {
	values := ValueSet{"LEVEL": 0.5, "MODE": int64(1), "NAME": "lamp"}

	diff := BuildChangeDiff(values, values)

	if len(diff) != 0 {
		t.Errorf("expected empty diff for identical sets, got %v", diff)
	}
}

func TestBuildChangeDiffChangedValue(t *testing.T) {
	oldValues := ValueSet{"LEVEL": 0.5, "MODE": int64(1)}
	newValues := ValueSet{"LEVEL": 0.8, "MODE": int64(1)}

	diff := BuildChangeDiff(oldValues, newValues)

	if len(diff) != 1 {
		t.Fatalf("expected 1 change, got %d", len(diff))
	}
	change, ok := diff["LEVEL"]
	if !ok {
		t.Fatal("expected LEVEL in diff")
	}
	if change.Old != 0.5 || change.New != 0.8 {
		t.Errorf("unexpected change: %+v", change)
	}
}

func TestBuildChangeDiffMissingInOld(t *testing.T) {
	diff := BuildChangeDiff(ValueSet{}, ValueSet{"EXTRA": int64(7)})

	change, ok := diff["EXTRA"]
	if !ok {
		t.Fatal("expected EXTRA in diff")
	}
	if change.Old != nil {
		t.Errorf("expected nil old value, got %v", change.Old)
	}
	if change.New != int64(7) {
		t.Errorf("expected new value 7, got %v", change.New)
	}
}

func TestBuildChangeDiffKeyOnlyInOld(t *testing.T) {
	// Keys absent from new are not part of the diff; the diff covers
	// the new set only.
	diff := BuildChangeDiff(ValueSet{"GONE": int64(1)}, ValueSet{})

	if len(diff) != 0 {
		t.Errorf("expected empty diff, got %v", diff)
	}
}

func TestValuesEqualAcrossNumericTypes(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"int vs int64", 1, int64(1), true},
		{"int64 vs float64", int64(2), float64(2), true},
		{"float mismatch", 0.5, 0.6, false},
		{"string equal", "a", "a", true},
		{"string mismatch", "a", "b", false},
		{"bool equal", true, true, true},
		{"bool vs int", true, 1, false},
		{"number vs string", int64(1), "1", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValuesEqual(tc.a, tc.b); got != tc.want {
				t.Errorf("ValuesEqual(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestValueSetsEqual(t *testing.T) {
	a := ValueSet{"LEVEL": 0.5, "MODE": int64(1)}
	b := ValueSet{"LEVEL": 0.5, "MODE": 1}

	if !ValueSetsEqual(a, b) {
		t.Error("expected sets with numerically equal values to be equal")
	}
	if ValueSetsEqual(a, ValueSet{"LEVEL": 0.5}) {
		t.Error("expected sets with different key counts to differ")
	}
	if ValueSetsEqual(a, ValueSet{"LEVEL": 0.5, "OTHER": int64(1)}) {
		t.Error("expected sets with different keys to differ")
	}
}

func TestCloneValueSetIsIndependent(t *testing.T) {
	original := ValueSet{"LEVEL": 0.5}
	clone := CloneValueSet(original)

	clone["LEVEL"] = 0.9

	if original["LEVEL"] != 0.5 {
		t.Error("mutating the clone changed the original")
	}
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name    string
		desc    Description
		value   any
		want    any
		wantErr bool
	}{
		{"bool ok", Description{Type: TypeBool}, true, true, false},
		{"bool from int fails", Description{Type: TypeBool}, 1, nil, true},
		{"integer from float", Description{Type: TypeInteger}, float64(3), int64(3), false},
		{"integer from fraction fails", Description{Type: TypeInteger}, 3.5, nil, true},
		{"float from int", Description{Type: TypeFloat}, 2, float64(2), false},
		{"float from string fails", Description{Type: TypeFloat}, "2", nil, true},
		{"enum index", Description{Type: TypeEnum}, 1, int64(1), false},
		{"string ok", Description{Type: TypeString}, "abc", "abc", false},
		{"string from int fails", Description{Type: TypeString}, 1, nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CoerceValue(tc.desc, tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tc.want, tc.want)
			}
		})
	}
}

func TestValidateValueRange(t *testing.T) {
	desc := Description{Type: TypeFloat, Min: float64(0), Max: float64(1)}

	if res := ValidateValue(desc, "LEVEL", 0.5); res != nil {
		t.Errorf("expected in-range value to pass, got %+v", res)
	}
	if res := ValidateValue(desc, "LEVEL", 1.5); res == nil {
		t.Error("expected above-max value to fail")
	}
	if res := ValidateValue(desc, "LEVEL", -0.1); res == nil {
		t.Error("expected below-min value to fail")
	}
}

func TestValidateValueEnum(t *testing.T) {
	desc := Description{Type: TypeEnum, ValueList: []string{"OFF", "ON"}}

	if res := ValidateValue(desc, "MODE", 1); res != nil {
		t.Errorf("expected valid enum index to pass, got %+v", res)
	}
	if res := ValidateValue(desc, "MODE", 2); res == nil {
		t.Error("expected out-of-list enum index to fail")
	}
	if res := ValidateValue(desc, "MODE", -1); res == nil {
		t.Error("expected negative enum index to fail")
	}
}

func TestValidateSetCollectsFailures(t *testing.T) {
	descriptions := Descriptions{
		"LEVEL": {Type: TypeFloat, Min: float64(0), Max: float64(1)},
		"MODE":  {Type: TypeEnum, ValueList: []string{"OFF", "ON"}},
	}
	values := ValueSet{
		"LEVEL":   1.5,
		"MODE":    int64(1),
		"UNKNOWN": "x",
	}

	failures := ValidateSet(descriptions, values, nil)

	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d: %v", len(failures), failures)
	}
	if _, ok := failures["LEVEL"]; !ok {
		t.Error("expected LEVEL failure")
	}
	if _, ok := failures["UNKNOWN"]; !ok {
		t.Error("expected UNKNOWN failure")
	}
}

func TestDiffSetCoercesAgainstDescriptions(t *testing.T) {
	descriptions := Descriptions{
		"LEVEL": {Type: TypeFloat},
	}
	baseline := ValueSet{"LEVEL": float64(1)}
	// An int edit to a FLOAT parameter is not a change.
	current := ValueSet{"LEVEL": 1}

	diff := DiffSet(descriptions, baseline, current)

	if len(diff) != 0 {
		t.Errorf("expected no diff after coercion, got %v", diff)
	}
}

func TestDiffSetUnknownParameter(t *testing.T) {
	diff := DiffSet(Descriptions{}, ValueSet{}, ValueSet{"EXTRA": int64(1)})

	if len(diff) != 1 {
		t.Fatalf("expected unknown parameter in diff, got %v", diff)
	}
}
