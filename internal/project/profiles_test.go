package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/ProfilePack/internal/model"
)

func TestSaveAndLoadProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib", "profiles.json")
	profiles := model.SampleProfiles()

	if err := SaveProfiles(path, profiles); err != nil {
		t.Fatalf("SaveProfiles failed: %v", err)
	}

	loaded, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(loaded))
	}
	if loaded[0] != profiles[0] || loaded[1] != profiles[1] {
		t.Errorf("profiles changed in round trip: %+v", loaded)
	}
}

func TestLoadProfilesMissingFile(t *testing.T) {
	loaded, err := LoadProfiles(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if loaded == nil || len(loaded) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", loaded)
	}
}

func TestLoadProfilesAssignsMissingIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	data := `[{"name":"Bare","linear_weight_kg_per_m":1,"cross_width_mm":20,"cross_height_mm":20,"cut_length_mm":600}]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles failed: %v", err)
	}
	if loaded[0].ID == "" {
		t.Error("expected an ID to be assigned")
	}
	if loaded[0].CutLength != 600 {
		t.Errorf("expected cut length 600, got %f", loaded[0].CutLength)
	}
}

func TestLoadProfilesInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := os.WriteFile(path, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfiles(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestMergeProfiles(t *testing.T) {
	a := model.NewProfileSpec("A", 1, 10, 10, 100)
	b := model.NewProfileSpec("B", 1, 10, 10, 100)
	c := model.NewProfileSpec("C", 1, 10, 10, 100)

	merged := MergeProfiles([]model.ProfileSpec{a, b}, []model.ProfileSpec{b, c})

	if len(merged) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(merged))
	}
	if merged[2].ID != c.ID {
		t.Errorf("expected C appended last, got %s", merged[2].Name)
	}
}

func TestDefaultProfilesPath(t *testing.T) {
	path, err := DefaultProfilesPath()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if filepath.Base(path) != "profiles.json" {
		t.Errorf("unexpected path %s", path)
	}
}
