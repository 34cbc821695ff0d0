package linkparam

import "testing"

func TestClassifyTimePairs(t *testing.T) {
	tests := []struct {
		param        string
		wantGroup    KeypressGroup
		wantPairID   string
		wantSelector TimeSelectorType
	}{
		{"ON_TIME_BASE", KeypressCommon, "ON_TIME", SelectorTimeOnOff},
		{"ON_TIME_FACTOR", KeypressCommon, "ON_TIME", SelectorTimeOnOff},
		{"SHORT_ON_TIME_BASE", KeypressShort, "SHORT_ON_TIME", SelectorTimeOnOff},
		{"LONG_OFFDELAY_TIME_FACTOR", KeypressLong, "LONG_OFFDELAY_TIME", SelectorDelay},
		{"RAMP_ON_TIME_BASE", KeypressCommon, "RAMP_ON_TIME", SelectorRampOnOff},
	}

	for _, tc := range tests {
		t.Run(tc.param, func(t *testing.T) {
			meta := Classify(tc.param)
			if meta.Category != CategoryTime {
				t.Fatalf("expected time category, got %s", meta.Category)
			}
			if meta.KeypressGroup != tc.wantGroup {
				t.Errorf("group: got %s, want %s", meta.KeypressGroup, tc.wantGroup)
			}
			if meta.TimePairID != tc.wantPairID {
				t.Errorf("pair id: got %s, want %s", meta.TimePairID, tc.wantPairID)
			}
			if meta.TimeSelectorType != tc.wantSelector {
				t.Errorf("selector: got %s, want %s", meta.TimeSelectorType, tc.wantSelector)
			}
		})
	}
}

func TestClassifyCategories(t *testing.T) {
	tests := []struct {
		param string
		want  Category
	}{
		{"SHORT_JT_ON", CategoryJumpTarget},
		{"JT_OFF", CategoryJumpTarget},
		{"LONG_CT_ON", CategoryCondition},
		{"LEVEL", CategoryLevel},
		{"SHORT_ON_LEVEL", CategoryLevel},
		{"DIM_MIN_LEVEL", CategoryLevel},
		{"SHORT_ACTION_TYPE", CategoryAction},
		{"MULTIEXECUTE", CategoryAction},
		{"UNKNOWN_PARAM", CategoryOther},
	}

	for _, tc := range tests {
		t.Run(tc.param, func(t *testing.T) {
			if got := Classify(tc.param).Category; got != tc.want {
				t.Errorf("Classify(%s).Category = %s, want %s", tc.param, got, tc.want)
			}
		})
	}
}

func TestClassifyFlags(t *testing.T) {
	level := Classify("SHORT_ON_LEVEL")
	if !level.DisplayAsPercent || !level.HasLastValue {
		t.Errorf("level params display as percent with last value, got %+v", level)
	}
	if level.KeypressGroup != KeypressShort {
		t.Errorf("expected short group, got %s", level.KeypressGroup)
	}

	jump := Classify("JT_ONDELAY")
	if !jump.HiddenByDefault {
		t.Error("jump targets are hidden by default")
	}

	other := Classify("PEER_NEEDS_BURST")
	if other.HiddenByDefault || other.DisplayAsPercent {
		t.Errorf("other params carry no flags, got %+v", other)
	}
}
