package rig

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LoadBones reads a skeleton definition JSON file: an ordered array of
// {name, head, tail, parent} records.
func LoadBones(path string) ([]BoneDef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rig: read %s: %w", path, err)
	}
	defer f.Close()

	defs, err := ParseBones(f)
	if err != nil {
		return nil, fmt.Errorf("rig: parse %s: %w", path, err)
	}
	return defs, nil
}

// ParseBones decodes bone definitions from r.
func ParseBones(r io.Reader) ([]BoneDef, error) {
	var defs []BoneDef
	if err := json.NewDecoder(r).Decode(&defs); err != nil {
		return nil, err
	}
	for i, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("bone %d: missing name", i)
		}
	}
	return defs, nil
}
