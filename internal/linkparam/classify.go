package linkparam

import "strings"

// Category is the functional category of a link parameter.
type Category string

// Link parameter categories.
const (
	CategoryTime       Category = "time"
	CategoryLevel      Category = "level"
	CategoryJumpTarget Category = "jump_target"
	CategoryCondition  Category = "condition"
	CategoryAction     Category = "action"
	CategoryOther      Category = "other"
)

// KeypressGroup partitions link parameters by SHORT/LONG keypress duration.
type KeypressGroup string

// Keypress groups.
const (
	KeypressShort  KeypressGroup = "short"
	KeypressLong   KeypressGroup = "long"
	KeypressCommon KeypressGroup = "common"
)

// Meta is the classification metadata for a single link parameter.
type Meta struct {
	Category         Category
	KeypressGroup    KeypressGroup
	DisplayAsPercent bool
	HasLastValue     bool
	HiddenByDefault  bool
	TimePairID       string
	TimeSelectorType TimeSelectorType
}

const (
	baseSuffix   = "_BASE"
	factorSuffix = "_FACTOR"
	jtMarker     = "JT_"
	ctMarker     = "CT_"
)

var levelSuffixes = []string{"_LEVEL", "_DIM_MIN_LEVEL", "_DIM_MAX_LEVEL"}

var actionSuffixes = []string{"_ACTION_TYPE", "_MULTIEXECUTE"}

// timeTypeByStem maps a time-parameter stem to its selector type.
var timeTypeByStem = map[string]TimeSelectorType{
	"ON_TIME":        SelectorTimeOnOff,
	"OFF_TIME":       SelectorTimeOnOff,
	"ONDELAY_TIME":   SelectorDelay,
	"OFFDELAY_TIME":  SelectorDelay,
	"ON_DELAY_TIME":  SelectorDelay,
	"OFF_DELAY_TIME": SelectorDelay,
	"RAMP_ON_TIME":   SelectorRampOnOff,
	"RAMP_OFF_TIME":  SelectorRampOnOff,
	"RAMPON_TIME":    SelectorRampOnOff,
	"RAMPOFF_TIME":   SelectorRampOnOff,
}

// stripKeypressPrefix strips a SHORT_/LONG_ prefix and returns the group
// and the remainder.
func stripKeypressPrefix(paramUpper string) (KeypressGroup, string) {
	if rest, ok := strings.CutPrefix(paramUpper, "SHORT_"); ok {
		return KeypressShort, rest
	}
	if rest, ok := strings.CutPrefix(paramUpper, "LONG_"); ok {
		return KeypressLong, rest
	}
	return KeypressCommon, paramUpper
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// Classify returns the metadata for a single link parameter id.
func Classify(parameterID string) Meta {
	upper := strings.ToUpper(parameterID)
	group, suffix := stripKeypressPrefix(upper)

	// TIME_BASE / TIME_FACTOR pairs, e.g. ON_TIME_BASE, ONDELAY_TIME_FACTOR.
	isTimeBase := strings.HasSuffix(suffix, "_TIME"+baseSuffix)
	isTimeFactor := strings.HasSuffix(suffix, "_TIME"+factorSuffix)
	if isTimeBase || isTimeFactor {
		stem := strings.TrimSuffix(suffix, baseSuffix)
		if isTimeFactor {
			stem = strings.TrimSuffix(suffix, factorSuffix)
		}

		pairID := stem
		if group != KeypressCommon {
			pairID = strings.ToUpper(string(group)) + "_" + stem
		}

		return Meta{
			Category:         CategoryTime,
			KeypressGroup:    group,
			TimePairID:       pairID,
			TimeSelectorType: timeTypeByStem[stem],
		}
	}

	// Jump targets, e.g. JT_ON, JT_OFF, JT_ONDELAY.
	if strings.Contains(suffix, jtMarker) {
		return Meta{Category: CategoryJumpTarget, KeypressGroup: group, HiddenByDefault: true}
	}

	// Condition transitions, e.g. CT_ON, CT_OFF.
	if strings.Contains(suffix, ctMarker) {
		return Meta{Category: CategoryCondition, KeypressGroup: group, HiddenByDefault: true}
	}

	if hasAnySuffix(suffix, levelSuffixes) || suffix == "LEVEL" {
		return Meta{
			Category:         CategoryLevel,
			KeypressGroup:    group,
			DisplayAsPercent: true,
			HasLastValue:     true,
		}
	}

	if hasAnySuffix(suffix, actionSuffixes) || suffix == "ACTION_TYPE" || suffix == "MULTIEXECUTE" {
		return Meta{Category: CategoryAction, KeypressGroup: group, HiddenByDefault: true}
	}

	return Meta{Category: CategoryOther, KeypressGroup: group}
}
