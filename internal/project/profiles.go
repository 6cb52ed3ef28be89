package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/piwi3910/ProfilePack/internal/model"
)

// DefaultProfilesPath returns the default file path for the profile library.
// This is located at ~/.profilepack/profiles.json.
func DefaultProfilesPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".profilepack", "profiles.json"), nil
}

// SaveProfiles writes a profile library to a JSON file.
// It creates parent directories if they do not exist.
func SaveProfiles(path string, profiles []model.ProfileSpec) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadProfiles reads a profile library from a JSON file.
// Returns an empty slice if the file does not exist. Entries without an
// ID are given one.
func LoadProfiles(path string) ([]model.ProfileSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.ProfileSpec{}, nil
		}
		return nil, err
	}

	var profiles []model.ProfileSpec
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID == "" {
			profiles[i].ID = model.NewID()
		}
	}
	if profiles == nil {
		profiles = []model.ProfileSpec{}
	}
	return profiles, nil
}

// MergeProfiles appends the profiles in imported whose IDs are not already
// present in existing. Order is preserved.
func MergeProfiles(existing, imported []model.ProfileSpec) []model.ProfileSpec {
	ids := make(map[string]bool, len(existing))
	for _, p := range existing {
		ids[p.ID] = true
	}
	for _, p := range imported {
		if ids[p.ID] {
			continue
		}
		existing = append(existing, p)
		ids[p.ID] = true
	}
	return existing
}
