package changelog

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"easyconfd/internal/paramset"
)

func testRequest(entryID string) AddRequest {
	return AddRequest{
		EntryID:        entryID,
		InterfaceID:    "BidCos-RF",
		ChannelAddress: "ABC1234567:1",
		DeviceName:     "Hallway Light",
		DeviceModel:    "HM-LC-Sw1-FM",
		ParamsetKey:    "MASTER",
		Changes: paramset.ChangeDiff{
			"LEVEL": {Old: 0.5, New: 0.8},
		},
		Source: "test",
	}
}

func TestAddStampsTimestamp(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	log := New(10, WithClock(func() time.Time { return fixed }))

	entry := log.Add(testRequest("e1"))

	if entry.Timestamp != "2026-03-01T12:00:00Z" {
		t.Errorf("unexpected timestamp %q", entry.Timestamp)
	}
	if log.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", log.Len())
	}
}

func TestFIFOEviction(t *testing.T) {
	const maxEntries = 5
	const extra = 3
	log := New(maxEntries)

	for i := 0; i < maxEntries+extra; i++ {
		log.Add(testRequest(fmt.Sprintf("e%d", i)))
	}

	if log.Len() != maxEntries {
		t.Fatalf("expected %d entries after eviction, got %d", maxEntries, log.Len())
	}

	// Survivors are the extra-th through last added, original order.
	entries := log.Entries()
	for i, e := range entries {
		want := fmt.Sprintf("e%d", extra+i)
		if e.EntryID != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, e.EntryID)
		}
	}
}

func TestGetEntriesNewestFirst(t *testing.T) {
	log := New(10)
	log.Add(testRequest("first"))
	log.Add(testRequest("second"))
	log.Add(testRequest("third"))

	entries, total := log.GetEntries(Filter{})

	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if entries[0].EntryID != "third" || entries[2].EntryID != "first" {
		t.Errorf("expected newest-first order, got %v", entryIDs(entries))
	}
}

func TestGetEntriesFilterAndLimit(t *testing.T) {
	log := New(20)
	for i := 0; i < 4; i++ {
		log.Add(testRequest("dev-a"))
	}
	req := testRequest("dev-b")
	req.ChannelAddress = "XYZ0000001:2"
	log.Add(req)

	entries, total := log.GetEntries(Filter{EntryID: "dev-a", Limit: 2})
	if total != 4 {
		t.Errorf("total must count matches before truncation, got %d", total)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries after limit, got %d", len(entries))
	}

	entries, total = log.GetEntries(Filter{ChannelAddress: "XYZ0000001:2"})
	if total != 1 || len(entries) != 1 || entries[0].EntryID != "dev-b" {
		t.Errorf("channel filter failed: total=%d entries=%v", total, entryIDs(entries))
	}
}

func TestClearByEntryID(t *testing.T) {
	log := New(10)
	log.Add(testRequest("keep"))
	log.Add(testRequest("drop"))
	log.Add(testRequest("keep"))
	log.Add(testRequest("drop"))

	removed := log.ClearByEntryID("drop")

	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if log.Len() != 2 {
		t.Errorf("expected 2 remaining, got %d", log.Len())
	}
	for _, e := range log.Entries() {
		if e.EntryID != "keep" {
			t.Errorf("unexpected surviving entry %s", e.EntryID)
		}
	}
}

func TestClearByEntryIDNoMatch(t *testing.T) {
	log := New(10)
	log.Add(testRequest("e1"))

	if removed := log.ClearByEntryID("absent"); removed != 0 {
		t.Errorf("expected 0 removed, got %d", removed)
	}
}

func TestLoadEntriesReplacesAndRecaps(t *testing.T) {
	log := New(2)
	log.Add(testRequest("old"))

	loaded := []Entry{
		{EntryID: "a"},
		{EntryID: "b"},
		{EntryID: "c"},
	}
	log.LoadEntries(loaded)

	entries := log.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected cap of 2 after load, got %d", len(entries))
	}
	if entries[0].EntryID != "b" || entries[1].EntryID != "c" {
		t.Errorf("expected most recent entries to survive, got %v", entryIDs(entries))
	}
	if entries[0].Changes == nil {
		t.Error("expected nil changes to be replaced by an empty diff")
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	log := New(10)
	log.Add(testRequest("e1"))
	log.Add(testRequest("e2"))

	data, err := json.Marshal(log.Entries())
	if err != nil {
		t.Fatalf("marshal entries: %v", err)
	}

	var decoded []Entry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal entries: %v", err)
	}

	restored := New(10)
	restored.LoadEntries(decoded)

	if restored.Len() != 2 {
		t.Fatalf("expected 2 entries after round trip, got %d", restored.Len())
	}
	entry := restored.Entries()[0]
	if entry.EntryID != "e1" || entry.DeviceName != "Hallway Light" {
		t.Errorf("entry fields lost in round trip: %+v", entry)
	}
	change, ok := entry.Changes["LEVEL"]
	if !ok {
		t.Fatal("expected LEVEL change after round trip")
	}
	if change.Old != 0.5 || change.New != 0.8 {
		t.Errorf("change values lost in round trip: %+v", change)
	}
}

func TestLoadEntriesToleratesPartialRecords(t *testing.T) {
	// Legacy records may miss optional fields entirely.
	raw := []byte(`[{"entry_id": "legacy"}]`)

	var decoded []Entry
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal legacy record: %v", err)
	}

	log := New(10)
	log.LoadEntries(decoded)

	entry := log.Entries()[0]
	if entry.EntryID != "legacy" || entry.DeviceName != "" {
		t.Errorf("unexpected legacy entry: %+v", entry)
	}
	if entry.Changes == nil {
		t.Error("expected empty changes map for legacy entry")
	}
}

func TestDefaultCapacity(t *testing.T) {
	if got := New(0).MaxEntries(); got != DefaultMaxEntries {
		t.Errorf("expected default capacity %d, got %d", DefaultMaxEntries, got)
	}
}

func entryIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.EntryID
	}
	return ids
}
