// Package changelog keeps a FIFO-capped history of committed paramset
// changes for audit and display.
//
// The log is a plain in-memory value holder: callers that share one log
// across goroutines must serialize Add and ClearByEntryID themselves. A
// single mutex around the log is enough given its small, bounded size.
package changelog

import (
	"time"

	"easyconfd/internal/paramset"
)

// DefaultMaxEntries is the default capacity of a change log.
const DefaultMaxEntries = 500

// Entry is a single committed configuration change record. Entries are
// immutable after creation.
type Entry struct {
	Timestamp      string              `json:"timestamp"`
	EntryID        string              `json:"entry_id"`
	InterfaceID    string              `json:"interface_id"`
	ChannelAddress string              `json:"channel_address"`
	DeviceName     string              `json:"device_name"`
	DeviceModel    string              `json:"device_model"`
	ParamsetKey    string              `json:"paramset_key"`
	Changes        paramset.ChangeDiff `json:"changes"`
	Source         string              `json:"source"`
}

// AddRequest carries the caller-supplied fields of a new entry. The
// timestamp is stamped by the log itself.
type AddRequest struct {
	EntryID        string
	InterfaceID    string
	ChannelAddress string
	DeviceName     string
	DeviceModel    string
	ParamsetKey    string
	Changes        paramset.ChangeDiff
	Source         string
}

// Filter narrows GetEntries results. Zero fields match everything.
type Filter struct {
	EntryID        string
	ChannelAddress string
	Limit          int
}

// Log is a FIFO-capped log of configuration change entries. When full,
// the oldest entry is evicted to admit a new one.
type Log struct {
	maxEntries int
	entries    []Entry
	now        func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// New creates a change log. A maxEntries of zero or less falls back to
// DefaultMaxEntries.
func New(maxEntries int, opts ...Option) *Log {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	l := &Log{maxEntries: maxEntries, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MaxEntries returns the capacity of the log.
func (l *Log) MaxEntries() int { return l.maxEntries }

// Len returns the current number of entries.
func (l *Log) Len() int { return len(l.entries) }

// Add stamps the current time, appends a new entry, and evicts the single
// oldest entry if the log would exceed its capacity. Entries only ever
// arrive one at a time, so one eviction per add is all it takes.
func (l *Log) Add(req AddRequest) Entry {
	entry := Entry{
		Timestamp:      l.now().UTC().Format(time.RFC3339Nano),
		EntryID:        req.EntryID,
		InterfaceID:    req.InterfaceID,
		ChannelAddress: req.ChannelAddress,
		DeviceName:     req.DeviceName,
		DeviceModel:    req.DeviceModel,
		ParamsetKey:    req.ParamsetKey,
		Changes:        req.Changes,
		Source:         req.Source,
	}
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}
	return entry
}

// GetEntries returns entries matching the filter, most recent first, and
// the total number of matches before the limit was applied.
func (l *Log) GetEntries(filter Filter) ([]Entry, int) {
	filtered := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if filter.EntryID != "" && e.EntryID != filter.EntryID {
			continue
		}
		if filter.ChannelAddress != "" && e.ChannelAddress != filter.ChannelAddress {
			continue
		}
		filtered = append(filtered, e)
	}
	total := len(filtered)

	if filter.Limit > 0 && len(filtered) > filter.Limit {
		filtered = filtered[len(filtered)-filter.Limit:]
	}

	// Newest first.
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}
	return filtered, total
}

// ClearByEntryID removes all entries matching the given entry id and
// returns how many were removed. Remaining entries keep their order.
func (l *Log) ClearByEntryID(entryID string) int {
	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.EntryID != entryID {
			kept = append(kept, e)
		}
	}
	removed := len(l.entries) - len(kept)
	l.entries = kept
	return removed
}

// Entries returns a copy of the full entry list, oldest first. This is
// the serialization hook for persistence callers.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// LoadEntries replaces the in-memory log wholesale with previously
// serialized entries, re-applying the capacity cap by keeping only the
// most recent entries. Missing optional fields in legacy records are
// already the zero value after decoding, so no substitution is needed
// beyond a nil-changes fixup.
func (l *Log) LoadEntries(entries []Entry) {
	loaded := make([]Entry, len(entries))
	copy(loaded, entries)
	for i := range loaded {
		if loaded[i].Changes == nil {
			loaded[i].Changes = paramset.ChangeDiff{}
		}
	}
	if len(loaded) > l.maxEntries {
		loaded = loaded[len(loaded)-l.maxEntries:]
	}
	l.entries = loaded
}
