// Package session tracks a user's in-progress edits to a device paramset.
//
// A ConfigSession holds the initial and current values for one editing
// session and provides undo/redo, dirty-state detection, validation and
// export of the changed subset for a partial device write. A session is
// meant for one editing context at a time; callers sharing a session
// across goroutines must serialize access themselves.
package session

import (
	"easyconfd/internal/paramset"
)

// undoEntry is a single undo/redo record.
type undoEntry struct {
	parameter string
	oldValue  any
	newValue  any
}

// ConfigSession tracks changes during a configuration editing session.
//
// The undo history is unbounded: sessions are short-lived and edits are
// user-paced, so an explicit cap buys nothing in practice.
type ConfigSession struct {
	descriptions  paramset.Descriptions
	validate      paramset.ValidateFunc
	initialValues paramset.ValueSet
	currentValues paramset.ValueSet
	undoStack     []undoEntry
	redoStack     []undoEntry
}

// Option configures a ConfigSession.
type Option func(*ConfigSession)

// WithValidator overrides the per-value validation function. The default
// is paramset.ValidateValue.
func WithValidator(fn paramset.ValidateFunc) Option {
	return func(s *ConfigSession) { s.validate = fn }
}

// New creates a session over the given descriptors and initial values.
// Both inputs are copied; later mutation by the caller does not affect
// the session.
func New(descriptions paramset.Descriptions, initialValues paramset.ValueSet, opts ...Option) *ConfigSession {
	s := &ConfigSession{
		descriptions:  descriptions,
		validate:      paramset.ValidateValue,
		initialValues: paramset.CloneValueSet(initialValues),
		currentValues: paramset.CloneValueSet(initialValues),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set records a new value for a parameter. Setting a parameter to its
// current value is a no-op. Any real change is pushed onto the undo stack
// and clears the redo stack, since the edit diverges from the redo path.
//
// Parameters absent from the initial values are accepted: the session owns
// value state, not the parameter catalog. Validation and diffing surface
// such additions.
func (s *ConfigSession) Set(parameter string, value any) {
	oldValue, ok := s.currentValues[parameter]
	if ok && paramset.ValuesEqual(oldValue, value) {
		return
	}
	if !ok && value == nil {
		return
	}
	s.undoStack = append(s.undoStack, undoEntry{parameter: parameter, oldValue: oldValue, newValue: value})
	s.redoStack = s.redoStack[:0]
	s.currentValues[parameter] = value
}

// Undo reverts the most recent change. Returns false when there is
// nothing to undo.
func (s *ConfigSession) Undo() bool {
	if len(s.undoStack) == 0 {
		return false
	}
	entry := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.redoStack = append(s.redoStack, entry)
	s.currentValues[entry.parameter] = entry.oldValue
	return true
}

// Redo re-applies the most recently undone change. Returns false when
// there is nothing to redo.
func (s *ConfigSession) Redo() bool {
	if len(s.redoStack) == 0 {
		return false
	}
	entry := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.undoStack = append(s.undoStack, entry)
	s.currentValues[entry.parameter] = entry.newValue
	return true
}

// CanUndo reports whether an undo is possible.
func (s *ConfigSession) CanUndo() bool { return len(s.undoStack) > 0 }

// CanRedo reports whether a redo is possible.
func (s *ConfigSession) CanRedo() bool { return len(s.redoStack) > 0 }

// IsDirty reports whether any parameter differs from its initial value.
func (s *ConfigSession) IsDirty() bool {
	return !paramset.ValueSetsEqual(s.currentValues, s.initialValues)
}

// CurrentValue returns the current value of a parameter, or nil if the
// parameter is unknown to this session.
func (s *ConfigSession) CurrentValue(parameter string) any {
	return s.currentValues[parameter]
}

// CurrentValues returns a copy of all current values.
func (s *ConfigSession) CurrentValues() paramset.ValueSet {
	return paramset.CloneValueSet(s.currentValues)
}

// GetChanges returns only the parameters whose current value differs from
// the initial value, keyed by parameter id. The result is suitable for a
// partial device write.
func (s *ConfigSession) GetChanges() paramset.ValueSet {
	changes := make(paramset.ValueSet)
	for param, value := range s.currentValues {
		if initial, ok := s.initialValues[param]; !ok || !paramset.ValuesEqual(initial, value) {
			changes[param] = value
		}
	}
	return changes
}

// GetChangedParameters returns a detailed old/new diff between initial and
// current values, coerced against the parameter descriptions.
func (s *ConfigSession) GetChangedParameters() paramset.ChangeDiff {
	return paramset.DiffSet(s.descriptions, s.initialValues, s.currentValues)
}

// Validate checks all current values against their descriptions and
// returns only the failures, keyed by parameter id. An empty map means
// every value is valid.
func (s *ConfigSession) Validate() map[string]paramset.ValidationResult {
	return paramset.ValidateSet(s.descriptions, s.currentValues, s.validate)
}

// ValidateChanges validates only the values that differ from their
// initial state.
func (s *ConfigSession) ValidateChanges() map[string]paramset.ValidationResult {
	changes := s.GetChanges()
	if len(changes) == 0 {
		return map[string]paramset.ValidationResult{}
	}
	return paramset.ValidateSet(s.descriptions, changes, s.validate)
}

// ResetToDefaults sets every parameter that has a descriptor default and is
// present in the current values back to that default. Each reset goes
// through Set, so it participates in undo history like any other edit.
func (s *ConfigSession) ResetToDefaults() {
	for param, desc := range s.descriptions {
		if desc.Default == nil {
			continue
		}
		if _, ok := s.currentValues[param]; !ok {
			continue
		}
		s.Set(param, desc.Default)
	}
}

// Discard drops all changes and reverts to the initial values. Both undo
// and redo stacks are cleared; a discard is not itself undoable.
func (s *ConfigSession) Discard() {
	s.currentValues = paramset.CloneValueSet(s.initialValues)
	s.undoStack = s.undoStack[:0]
	s.redoStack = s.redoStack[:0]
}
