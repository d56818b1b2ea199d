package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pathwise/internal/types"
)

// loadProfile reads a profile from YAML or JSON. Keys follow the JSON field
// names (ownerId, yearsExperience, ...).
func loadProfile(path string) (types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	normalized, err := json.Marshal(doc)
	if err != nil {
		return types.Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	var p types.Profile
	if err := json.Unmarshal(normalized, &p); err != nil {
		return types.Profile{}, fmt.Errorf("invalid profile: %w", err)
	}
	return p, nil
}
