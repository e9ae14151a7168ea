package world

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlAreaFile is the top-level YAML structure for area files.
type yamlAreaFile struct {
	Area Area `yaml:"area"`
}

// LoadAreaFromFile reads and validates a single area YAML file.
//
// Precondition: path must point to a valid YAML area file.
// Postcondition: Returns a validated Area or a non-nil error.
func LoadAreaFromFile(path string) (*Area, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading area file %s: %w", path, err)
	}
	return LoadAreaFromBytes(data)
}

// LoadAreaFromBytes parses and validates an area from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the area schema.
// Postcondition: Returns a validated Area or a non-nil error.
func LoadAreaFromBytes(data []byte) (*Area, error) {
	var file yamlAreaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing area YAML: %w", err)
	}

	area := file.Area
	if err := area.Validate(); err != nil {
		return nil, fmt.Errorf("validating area: %w", err)
	}
	return &area, nil
}

// LoadAreasFromDir loads all YAML files in a directory as areas.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated areas or the first error encountered.
func LoadAreasFromDir(dir string) ([]*Area, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading area directory %s: %w", dir, err)
	}

	var areas []*Area
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		area, err := LoadAreaFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading area from %s: %w", name, err)
		}
		areas = append(areas, area)
	}

	if len(areas) == 0 {
		return nil, fmt.Errorf("no area files found in %s", dir)
	}
	return areas, nil
}
