package profile

import (
	"fmt"
	"html"
	"sort"
	"strconv"

	"easyconfd/internal/paramset"
)

// DefaultLocale is the fallback locale for profile names and descriptions.
const DefaultLocale = "en"

// ExpertProfileID is the synthesized "no predefined profile matches"
// sentinel. It never appears in a loaded catalog.
const ExpertProfileID = 0

// Def is a raw profile definition from the catalog source.
type Def struct {
	ID          int
	Name        map[string]string
	Description map[string]string
	Params      map[string]Constraint
}

// Resolved is a profile projected for one locale, ready for UI rendering.
type Resolved struct {
	ID             int                `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	EditableParams []string           `json:"editable_params"`
	FixedParams    map[string]float64 `json:"fixed_params"`
	DefaultValues  map[string]float64 `json:"default_values"`
}

// ChannelPair identifies a sender/receiver channel type combination.
type ChannelPair struct {
	SenderChannelType   string
	ReceiverChannelType string
}

// Catalog is the immutable set of profile definitions per channel type
// pair. The per-pair order is a priority order and is preserved from
// the definition source. A catalog is safe for concurrent readers.
type Catalog struct {
	sets map[ChannelPair][]Def
}

// NewCatalog builds a catalog from already-validated definitions. Use a
// Loader to construct one from definition files; NewCatalog itself only
// rejects the reserved expert id, which must never be stored.
func NewCatalog(sets map[ChannelPair][]Def) (*Catalog, error) {
	copied := make(map[ChannelPair][]Def, len(sets))
	for pair, defs := range sets {
		for _, def := range defs {
			if def.ID == ExpertProfileID {
				return nil, fmt.Errorf("%w: profile id %d is reserved (pair %s/%s)",
					ErrInvalidCatalog, ExpertProfileID, pair.SenderChannelType, pair.ReceiverChannelType)
			}
		}
		copied[pair] = append([]Def(nil), defs...)
	}
	return &Catalog{sets: copied}, nil
}

// Pairs returns all channel type pairs the catalog defines, in no
// particular order.
func (c *Catalog) Pairs() []ChannelPair {
	pairs := make([]ChannelPair, 0, len(c.sets))
	for pair := range c.sets {
		pairs = append(pairs, pair)
	}
	return pairs
}

// GetProfiles returns the resolved profiles for a channel type pair in
// catalog order. The second return value is false when the catalog has no
// entry for the pair at all; this is distinct from a pair mapped to an
// empty profile list, and callers must branch on it.
func (c *Catalog) GetProfiles(receiverChannelType, senderChannelType, locale string) ([]Resolved, bool) {
	defs, ok := c.sets[ChannelPair{SenderChannelType: senderChannelType, ReceiverChannelType: receiverChannelType}]
	if !ok {
		return nil, false
	}
	resolved := make([]Resolved, 0, len(defs))
	for _, def := range defs {
		resolved = append(resolved, resolve(def, locale))
	}
	return resolved, true
}

// MatchActiveProfile returns the id of the first profile, in catalog
// order, whose every constraint is satisfied by the current values.
// Returns ExpertProfileID when no profile matches or when the pair is
// unknown. First match wins even when a later profile constrains a
// superset of the parameters.
func (c *Catalog) MatchActiveProfile(receiverChannelType, senderChannelType string, currentValues paramset.ValueSet) int {
	defs, ok := c.sets[ChannelPair{SenderChannelType: senderChannelType, ReceiverChannelType: receiverChannelType}]
	if !ok {
		return ExpertProfileID
	}
	for _, def := range defs {
		if len(def.Params) == 0 {
			continue
		}
		if matches(def.Params, currentValues) {
			return def.ID
		}
	}
	return ExpertProfileID
}

// matches reports whether current values satisfy every constraint. A
// constrained parameter that is absent, or whose value is not numeric,
// fails the profile.
func matches(params map[string]Constraint, currentValues paramset.ValueSet) bool {
	for paramID, constraint := range params {
		raw, present := currentValues[paramID]
		if !present {
			return false
		}
		num, numeric := asNumber(raw)
		if !constraint.Matches(num, numeric) {
			return false
		}
	}
	return true
}

// asNumber coerces a parameter value for constraint comparison. Booleans
// compare as 0/1 and numeric strings are parsed, matching how devices
// report switch and enum parameters.
func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return paramset.AsFloat(v)
}

// resolve projects a definition for one locale, falling back to the
// default locale when the requested one is absent.
func resolve(def Def, locale string) Resolved {
	editable := make([]string, 0)
	fixed := make(map[string]float64)
	defaults := make(map[string]float64)

	for paramID, constraint := range def.Params {
		switch c := constraint.(type) {
		case Fixed:
			fixed[paramID] = c.Value
		case List:
			editable = append(editable, paramID)
			defaults[paramID] = c.Default
		case Range:
			editable = append(editable, paramID)
			defaults[paramID] = c.Default
		}
	}
	sort.Strings(editable)

	name := def.Name[locale]
	if name == "" {
		name = def.Name[DefaultLocale]
	}
	if name == "" {
		name = fmt.Sprintf("Profile %d", def.ID)
	}
	description := def.Description[locale]
	if description == "" {
		description = def.Description[DefaultLocale]
	}

	return Resolved{
		ID:             def.ID,
		Name:           html.UnescapeString(name),
		Description:    html.UnescapeString(description),
		EditableParams: editable,
		FixedParams:    fixed,
		DefaultValues:  defaults,
	}
}
