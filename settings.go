package main

import (
	"fmt"
	"os"
	"path/filepath"

	"question-bank/segment"
)

// loadProfiles reads the segmentation profiles from path, creating the
// file with the built-in defaults if it doesn't exist.
func loadProfiles(path string) (segment.ProfileSet, error) {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		log.Infof("Profile file not found at %s, creating with default values.", path)
		defaults := segment.DefaultProfiles()
		if err := saveProfiles(path, defaults); err != nil {
			log.Warnf("Failed to write default profile file: %v", err)
		}
		return defaults, nil
	}
	if err != nil {
		return segment.ProfileSet{}, fmt.Errorf("failed to read profile file: %w", err)
	}

	set, err := segment.LoadProfiles(path)
	if err != nil {
		return segment.ProfileSet{}, fmt.Errorf("failed to parse %s, please check its format: %w", path, err)
	}
	log.Infof("Successfully loaded profiles from %s", path)
	return set, nil
}

// saveProfiles writes set to path as YAML.
func saveProfiles(path string, set segment.ProfileSet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := segment.MarshalProfiles(set)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
