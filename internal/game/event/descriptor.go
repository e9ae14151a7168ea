// Package event fires scripted narrative encounters: weighted random
// encounters behind a cooldown, and location, combat, relationship, and
// progression events gated by conditions over the narrative state.
package event

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/duskborne/internal/game/narrative"
)

// Category groups descriptors by how they are triggered.
type Category string

const (
	CategoryRandom       Category = "random"
	CategoryLocation     Category = "location"
	CategoryCombat       Category = "combat"
	CategoryRelationship Category = "relationship"
	CategoryProgression  Category = "progression"
)

// Categories lists every category in evaluation order.
var Categories = []Category{
	CategoryRandom, CategoryLocation, CategoryCombat, CategoryRelationship, CategoryProgression,
}

func (c Category) valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Descriptor is one event definition.
type Descriptor struct {
	ID         string                 `yaml:"id"`
	Category   Category               `yaml:"category"`
	Areas      []string               `yaml:"areas"`
	Weight     int                    `yaml:"weight"`
	Once       bool                   `yaml:"once"`
	Conditions []Condition            `yaml:"conditions"`
	Dialogue   narrative.Dialogue     `yaml:"dialogue"`
	Choices    []narrative.ChoiceSpec `yaml:"choices"`
}

// Validate checks required fields and condition shapes.
func (d *Descriptor) Validate() error {
	if d.ID == "" {
		return errors.New("event.Descriptor: ID must not be empty")
	}
	var errs []string
	if !d.Category.valid() {
		errs = append(errs, fmt.Sprintf("unknown category %q", d.Category))
	}
	if d.Weight < 0 {
		errs = append(errs, "weight must be >= 0")
	}
	if d.Category == CategoryLocation && len(d.Areas) == 0 {
		errs = append(errs, "location events need at least one area")
	}
	if d.Dialogue.Text == "" && len(d.Choices) == 0 {
		errs = append(errs, "event needs dialogue text or choices")
	}
	for i, c := range d.Conditions {
		if err := c.validate(); err != nil {
			errs = append(errs, fmt.Sprintf("conditions[%d]: %v", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("event.Descriptor %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// EffectiveWeight returns Weight, defaulting to 1 when unset.
func (d *Descriptor) EffectiveWeight() int {
	if d.Weight == 0 {
		return 1
	}
	return d.Weight
}

// AreaKey normalizes an area name for location matching: lowercased with
// whitespace removed.
func AreaKey(area string) string {
	return strings.Join(strings.Fields(strings.ToLower(area)), "")
}

func (d *Descriptor) inArea(key string) bool {
	for _, a := range d.Areas {
		if AreaKey(a) == key {
			return true
		}
	}
	return false
}

// Catalog holds descriptors grouped by category in load order.
type Catalog struct {
	byCategory map[Category][]*Descriptor
	byID       map[string]*Descriptor
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byCategory: make(map[Category][]*Descriptor),
		byID:       make(map[string]*Descriptor),
	}
}

// Add validates and stores d.
//
// Postcondition: returns error on an invalid descriptor or a duplicate ID.
func (c *Catalog) Add(d *Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, ok := c.byID[d.ID]; ok {
		return fmt.Errorf("event.Catalog: event %q already registered", d.ID)
	}
	c.byID[d.ID] = d
	c.byCategory[d.Category] = append(c.byCategory[d.Category], d)
	return nil
}

// In returns the descriptors of category in load order.
func (c *Catalog) In(category Category) []*Descriptor { return c.byCategory[category] }

// Get returns the descriptor with id.
func (c *Catalog) Get(id string) (*Descriptor, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Len returns the number of descriptors.
func (c *Catalog) Len() int { return len(c.byID) }

type yamlEventFile struct {
	Events []*Descriptor `yaml:"events"`
}

// Parse adds every descriptor in one YAML document.
func (c *Catalog) Parse(data []byte) error {
	var f yamlEventFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing events: %w", err)
	}
	for _, d := range f.Events {
		if err := c.Add(d); err != nil {
			return err
		}
	}
	return nil
}

// LoadCatalog reads all *.yaml files from dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any file fails to parse or validate.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("event.LoadCatalog: reading %q: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	c := NewCatalog()
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("event.LoadCatalog: reading %s: %w", name, err)
		}
		if err := c.Parse(data); err != nil {
			return nil, fmt.Errorf("event.LoadCatalog: %s: %w", name, err)
		}
	}
	return c, nil
}
