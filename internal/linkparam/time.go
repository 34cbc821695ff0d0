// Package linkparam classifies link paramset parameters and converts
// between human durations and the device's base/factor time encoding.
package linkparam

import "math"

// TimeSelectorType selects which preset table a time parameter pair uses.
type TimeSelectorType string

// Time selector types.
const (
	SelectorTimeOnOff TimeSelectorType = "timeOnOff"
	SelectorDelay     TimeSelectorType = "delay"
	SelectorRampOnOff TimeSelectorType = "rampOnOff"
)

// TimePreset is a single preset option in a time selector.
type TimePreset struct {
	Base    int
	Factor  int
	LabelEN string
	LabelDE string
}

// PresetOption is a preset projected for one locale.
type PresetOption struct {
	Base   int    `json:"base"`
	Factor int    `json:"factor"`
	Label  string `json:"label"`
}

// timeBaseUnits maps a TIME_BASE value to seconds per factor unit. The
// table is fixed by the device protocol and monotonically increasing.
var timeBaseUnits = map[int]float64{
	0: 0.1,
	1: 1.0,
	2: 5.0,
	3: 10.0,
	4: 60.0,
	5: 300.0,
	6: 600.0,
	7: 3600.0,
}

var timeOnOffPresets = []TimePreset{
	{0, 0, "Not active", "Nicht aktiv"},
	{0, 1, "100 ms", "100 ms"},
	{1, 1, "1 s", "1 s"},
	{1, 2, "2 s", "2 s"},
	{1, 3, "3 s", "3 s"},
	{2, 1, "5 s", "5 s"},
	{3, 1, "10 s", "10 s"},
	{3, 3, "30 s", "30 s"},
	{4, 1, "1 min", "1 min"},
	{4, 2, "2 min", "2 min"},
	{5, 1, "5 min", "5 min"},
	{6, 1, "10 min", "10 min"},
	{6, 3, "30 min", "30 min"},
	{7, 1, "1 h", "1 h"},
	{7, 2, "2 h", "2 h"},
	{7, 3, "3 h", "3 h"},
	{7, 5, "5 h", "5 h"},
	{7, 8, "8 h", "8 h"},
	{7, 12, "12 h", "12 h"},
	{7, 24, "24 h", "24 h"},
	{7, 31, "Permanent", "Permanent"},
}

var delayPresets = []TimePreset{
	{0, 0, "Not active", "Nicht aktiv"},
	{2, 1, "5 s", "5 s"},
	{3, 1, "10 s", "10 s"},
	{3, 3, "30 s", "30 s"},
	{4, 1, "1 min", "1 min"},
	{4, 2, "2 min", "2 min"},
	{5, 1, "5 min", "5 min"},
	{6, 1, "10 min", "10 min"},
	{6, 3, "30 min", "30 min"},
	{7, 1, "1 h", "1 h"},
}

var rampOnOffPresets = []TimePreset{
	{0, 0, "Not active", "Nicht aktiv"},
	{0, 2, "200 ms", "200 ms"},
	{0, 5, "500 ms", "500 ms"},
	{1, 1, "1 s", "1 s"},
	{1, 2, "2 s", "2 s"},
	{1, 5, "5 s", "5 s"},
	{1, 10, "10 s", "10 s"},
	{1, 20, "20 s", "20 s"},
	{1, 30, "30 s", "30 s"},
}

var presetsByType = map[TimeSelectorType][]TimePreset{
	SelectorTimeOnOff: timeOnOffPresets,
	SelectorDelay:     delayPresets,
	SelectorRampOnOff: rampOnOffPresets,
}

// DecodeTimeValue converts a base/factor pair to seconds. Decoding is
// always exact. Unknown base values decode with a unit of one second.
func DecodeTimeValue(base, factor int) float64 {
	unit, ok := timeBaseUnits[base]
	if !ok {
		unit = 1.0
	}
	return unit * float64(factor)
}

// EncodeTimeValue finds the base/factor preset closest to the given
// duration for a selector type. A preset that reconstructs the duration
// exactly wins at the smallest base; otherwise the nearest preset by
// absolute difference is chosen. Encoding may therefore lose precision
// even though decoding never does.
func EncodeTimeValue(seconds float64, selectorType TimeSelectorType) (base, factor int) {
	bestDiff := math.Inf(1)
	for _, preset := range presetsByType[selectorType] {
		diff := math.Abs(DecodeTimeValue(preset.Base, preset.Factor) - seconds)
		if diff < bestDiff {
			bestDiff = diff
			base, factor = preset.Base, preset.Factor
		}
	}
	return base, factor
}

// Presets returns the preset options for a selector type with labels for
// the requested locale. German labels are used for "de", English for
// everything else.
func Presets(selectorType TimeSelectorType, locale string) []PresetOption {
	presets := presetsByType[selectorType]
	options := make([]PresetOption, 0, len(presets))
	for _, preset := range presets {
		label := preset.LabelEN
		if locale == "de" {
			label = preset.LabelDE
		}
		options = append(options, PresetOption{Base: preset.Base, Factor: preset.Factor, Label: label})
	}
	return options
}
