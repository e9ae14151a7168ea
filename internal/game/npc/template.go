// Package npc provides NPC dialogue definitions and live instance management.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/duskborne/internal/game/narrative"
)

// GenericGreeting is spoken by NPCs with no definition.
const GenericGreeting = "Hello, traveler."

// Followup is what an NPC says after the player picks one of its choices.
type Followup struct {
	Text          string                 `yaml:"text"`
	Relationships map[string]int         `yaml:"relationships"`
	Flags         map[string]bool        `yaml:"flags"`
	Choices       []narrative.ChoiceSpec `yaml:"choices"`
}

// Definition is one NPC's dialogue tree, keyed by the name used in area spawn data.
type Definition struct {
	Name      string                 `yaml:"name"`
	Speaker   string                 `yaml:"speaker"`
	Text      string                 `yaml:"text"`
	Choices   []narrative.ChoiceSpec `yaml:"choices"`
	Followups map[string]Followup    `yaml:"followups"`
}

// Validate checks that the definition satisfies basic invariants.
//
// Precondition: d must not be nil.
// Postcondition: Returns nil iff Name and Text are non-empty, choice IDs are
// unique, and every followup key names one of the choices.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("npc definition: name must not be empty")
	}
	if d.Text == "" {
		return fmt.Errorf("npc definition %q: text must not be empty", d.Name)
	}
	ids := make(map[string]bool, len(d.Choices))
	for _, c := range d.Choices {
		if c.ID == "" {
			return fmt.Errorf("npc definition %q: choice id must not be empty", d.Name)
		}
		if ids[c.ID] {
			return fmt.Errorf("npc definition %q: duplicate choice %q", d.Name, c.ID)
		}
		ids[c.ID] = true
	}
	for key, fu := range d.Followups {
		if !ids[key] {
			return fmt.Errorf("npc definition %q: followup %q matches no choice", d.Name, key)
		}
		if fu.Text == "" {
			return fmt.Errorf("npc definition %q: followup %q has no text", d.Name, key)
		}
	}
	return nil
}

// SpeakerName returns Speaker, or Name when Speaker is unset.
func (d *Definition) SpeakerName() string {
	if d.Speaker != "" {
		return d.Speaker
	}
	return d.Name
}

// Catalog indexes definitions by NPC name.
type Catalog struct {
	defs   map[string]*Definition
	logger *zap.Logger
}

// NewCatalog returns an empty catalog.
//
// Precondition: logger must be non-nil.
func NewCatalog(logger *zap.Logger) *Catalog {
	return &Catalog{defs: make(map[string]*Definition), logger: logger}
}

// Add validates and stores d.
//
// Postcondition: returns error on an invalid definition or a duplicate name.
func (c *Catalog) Add(d *Definition) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, ok := c.defs[d.Name]; ok {
		return fmt.Errorf("npc.Catalog: %q already registered", d.Name)
	}
	c.defs[d.Name] = d
	return nil
}

// Lookup returns the definition for name. Unknown names get a generic greeting
// with no choices, logged at Warn.
//
// Postcondition: Returns a non-nil definition.
func (c *Catalog) Lookup(name string) *Definition {
	if d, ok := c.defs[name]; ok {
		return d
	}
	c.logger.Warn("unknown npc", zap.String("npc", name))
	return &Definition{Name: name, Text: GenericGreeting}
}

// Names returns every defined NPC name, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.defs))
	for n := range c.defs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

type yamlNPCFile struct {
	NPCs []*Definition `yaml:"npcs"`
}

// LoadDefinitionsFromBytes parses the definitions in one YAML document.
//
// Postcondition: Returns validated definitions, or an error.
func LoadDefinitionsFromBytes(data []byte) ([]*Definition, error) {
	var f yamlNPCFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing npc YAML: %w", err)
	}
	for _, d := range f.NPCs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return f.NPCs, nil
}

// LoadCatalog reads all *.yaml files in dir into a catalog.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the catalog or an error on the first parse, validate,
// or duplicate failure.
func LoadCatalog(dir string, logger *zap.Logger) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	c := NewCatalog(logger)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		defs, err := LoadDefinitionsFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		for _, d := range defs {
			if err := c.Add(d); err != nil {
				return nil, fmt.Errorf("loading %q: %w", path, err)
			}
		}
	}
	return c, nil
}
