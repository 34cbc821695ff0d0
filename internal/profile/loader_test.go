package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCatalogFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog file: %v", err)
	}
}

const validDimmerCatalog = `{
  "KEY": {
    "profiles": [
      {
        "id": 1,
        "name": {"en": "Toggle"},
        "description": {"en": "Short press toggles"},
        "params": {
          "SHORT_ACTION_TYPE": {"constraint_type": "fixed", "value": 1},
          "SHORT_ON_LEVEL": {"constraint_type": "range", "min_value": 0, "max_value": 1, "default": 1},
          "RAMP_ON_TIME_BASE": {"constraint_type": "list", "values": [0, 1, 2], "default": 1}
        }
      },
      {
        "id": 2,
        "name": {"en": "On only"},
        "description": {"en": "Short press switches on"},
        "params": {
          "SHORT_ACTION_TYPE": {"constraint_type": "fixed", "value": 2}
        }
      }
    ]
  }
}`

func TestLoadCatalogDir(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "DIMMER.json", validDimmerCatalog)

	catalog, err := LoadCatalogDir(dir)
	if err != nil {
		t.Fatalf("LoadCatalogDir: %v", err)
	}

	profiles, ok := catalog.GetProfiles("DIMMER", "KEY", "en")
	if !ok {
		t.Fatal("expected KEY/DIMMER pair in catalog")
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].ID != 1 || profiles[1].ID != 2 {
		t.Errorf("file order not preserved: got ids %d, %d", profiles[0].ID, profiles[1].ID)
	}
	if got := profiles[0].FixedParams["SHORT_ACTION_TYPE"]; got != 1 {
		t.Errorf("fixed param: got %v, want 1", got)
	}
	if len(profiles[0].EditableParams) != 2 {
		t.Errorf("expected list and range params editable, got %v", profiles[0].EditableParams)
	}
}

func TestLoadCatalogDirSkipsNonJSON(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "DIMMER.json", validDimmerCatalog)
	writeCatalogFile(t, dir, "README.md", "not a catalog")

	catalog, err := LoadCatalogDir(dir)
	if err != nil {
		t.Fatalf("LoadCatalogDir: %v", err)
	}
	if len(catalog.Pairs()) != 1 {
		t.Errorf("expected 1 pair, got %d", len(catalog.Pairs()))
	}
}

func TestLoadCatalogDirMissing(t *testing.T) {
	if _, err := LoadCatalogDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoadCatalogInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			"malformed json",
			`{"KEY": {"profiles": [`,
		},
		{
			"schema violation",
			`{"KEY": {"profiles": [{"id": "one", "name": {}, "description": {}}]}}`,
		},
		{
			"missing profiles key",
			`{"KEY": {}}`,
		},
		{
			"reserved id",
			`{"KEY": {"profiles": [{"id": 0, "name": {"en": "Expert"}, "description": {}}]}}`,
		},
		{
			"fixed without value",
			`{"KEY": {"profiles": [{"id": 1, "name": {}, "description": {},
			  "params": {"P": {"constraint_type": "fixed"}}}]}}`,
		},
		{
			"list default not a member",
			`{"KEY": {"profiles": [{"id": 1, "name": {}, "description": {},
			  "params": {"P": {"constraint_type": "list", "values": [0, 1], "default": 5}}}]}}`,
		},
		{
			"range min above max",
			`{"KEY": {"profiles": [{"id": 1, "name": {}, "description": {},
			  "params": {"P": {"constraint_type": "range", "min_value": 2, "max_value": 1, "default": 1}}}]}}`,
		},
		{
			"range default outside bounds",
			`{"KEY": {"profiles": [{"id": 1, "name": {}, "description": {},
			  "params": {"P": {"constraint_type": "range", "min_value": 0, "max_value": 1, "default": 3}}}]}}`,
		},
		{
			"unknown constraint type",
			`{"KEY": {"profiles": [{"id": 1, "name": {}, "description": {},
			  "params": {"P": {"constraint_type": "fuzzy"}}}]}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeCatalogFile(t, dir, "SWITCH.json", tc.content)

			_, err := LoadCatalogDir(dir)
			if err == nil {
				t.Fatal("expected load to fail")
			}
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}
