package store

import (
	"path/filepath"
	"testing"

	"easyconfd/internal/changelog"
	"easyconfd/internal/paramset"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "changelog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testEntry(entryID, channel string) changelog.Entry {
	return changelog.Entry{
		Timestamp:      "2026-03-01T12:00:00Z",
		EntryID:        entryID,
		InterfaceID:    "BidCos-RF",
		ChannelAddress: channel,
		DeviceName:     "Living room dimmer",
		DeviceModel:    "HmIP-BDT",
		ParamsetKey:    "MASTER",
		Changes: paramset.ChangeDiff{
			"SHORT_ON_LEVEL": {Old: 0.5, New: 0.8},
		},
		Source: "session",
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "changelog.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	st.Close()
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := openTestStore(t)

	entries := []changelog.Entry{
		testEntry("e1", "ABC1234567:4"),
		testEntry("e2", "DEF0000001:1"),
	}
	if err := st.SaveEntries(entries); err != nil {
		t.Fatalf("SaveEntries: %v", err)
	}

	loaded, err := st.LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded))
	}
	if loaded[0].EntryID != "e1" || loaded[1].EntryID != "e2" {
		t.Errorf("order not preserved: %s, %s", loaded[0].EntryID, loaded[1].EntryID)
	}

	got := loaded[0]
	want := entries[0]
	if got.Timestamp != want.Timestamp || got.InterfaceID != want.InterfaceID ||
		got.ChannelAddress != want.ChannelAddress || got.DeviceName != want.DeviceName ||
		got.DeviceModel != want.DeviceModel || got.ParamsetKey != want.ParamsetKey ||
		got.Source != want.Source {
		t.Errorf("entry fields not preserved:\ngot  %+v\nwant %+v", got, want)
	}
	change, ok := got.Changes["SHORT_ON_LEVEL"]
	if !ok {
		t.Fatal("changes not preserved")
	}
	if change.Old != 0.5 || change.New != 0.8 {
		t.Errorf("change diff: got %+v", change)
	}
}

func TestSaveEntriesReplacesWholesale(t *testing.T) {
	st := openTestStore(t)

	if err := st.SaveEntries([]changelog.Entry{testEntry("old", "A:1")}); err != nil {
		t.Fatalf("SaveEntries: %v", err)
	}
	if err := st.SaveEntries([]changelog.Entry{testEntry("new", "B:1")}); err != nil {
		t.Fatalf("SaveEntries: %v", err)
	}

	loaded, err := st.LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries: %v", err)
	}
	if len(loaded) != 1 || loaded[0].EntryID != "new" {
		t.Errorf("expected single replacement entry, got %+v", loaded)
	}
}

func TestAppendEntry(t *testing.T) {
	st := openTestStore(t)

	if err := st.AppendEntry(testEntry("e1", "A:1")); err != nil {
		t.Fatalf("AppendEntry: %v", err)
	}
	if err := st.AppendEntry(testEntry("e2", "A:1")); err != nil {
		t.Fatalf("AppendEntry: %v", err)
	}

	n, err := st.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}
}

func TestDeleteByEntryID(t *testing.T) {
	st := openTestStore(t)

	err := st.SaveEntries([]changelog.Entry{
		testEntry("keep", "A:1"),
		testEntry("drop", "A:1"),
		testEntry("drop", "B:1"),
	})
	if err != nil {
		t.Fatalf("SaveEntries: %v", err)
	}

	removed, err := st.DeleteByEntryID("drop")
	if err != nil {
		t.Fatalf("DeleteByEntryID: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	loaded, err := st.LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries: %v", err)
	}
	if len(loaded) != 1 || loaded[0].EntryID != "keep" {
		t.Errorf("expected only kept entry, got %+v", loaded)
	}

	removed, err = st.DeleteByEntryID("missing")
	if err != nil {
		t.Fatalf("DeleteByEntryID: %v", err)
	}
	if removed != 0 {
		t.Errorf("expected 0 removed for unknown id, got %d", removed)
	}
}

func TestEmptyStore(t *testing.T) {
	st := openTestStore(t)

	loaded, err := st.LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected no entries, got %d", len(loaded))
	}

	n, err := st.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected count 0, got %d", n)
	}
}

func TestRoundTripThroughLog(t *testing.T) {
	st := openTestStore(t)

	log := changelog.New(10)
	log.Add(changelog.AddRequest{
		EntryID:        "e1",
		InterfaceID:    "BidCos-RF",
		ChannelAddress: "ABC1234567:4",
		DeviceName:     "Dimmer",
		DeviceModel:    "HmIP-BDT",
		ParamsetKey:    "MASTER",
		Changes:        paramset.ChangeDiff{"LEVEL": {Old: 0.1, New: 0.9}},
		Source:         "session",
	})

	if err := st.SaveEntries(log.Entries()); err != nil {
		t.Fatalf("SaveEntries: %v", err)
	}

	loaded, err := st.LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries: %v", err)
	}

	restored := changelog.New(10)
	restored.LoadEntries(loaded)
	if restored.Len() != 1 {
		t.Fatalf("expected 1 restored entry, got %d", restored.Len())
	}
	entries, total := restored.GetEntries(changelog.Filter{})
	if total != 1 || entries[0].EntryID != "e1" {
		t.Errorf("restored log mismatch: total=%d entries=%+v", total, entries)
	}
}
