package reference

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// DistributorType is one entry of the closed distributor-type code set.
type DistributorType struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
}

// Data is the reference configuration used to validate uploaded records.
// It is read-only once loaded.
type Data struct {
	Zones             []string            `yaml:"zones" json:"zones"`
	ZoneStates        map[string][]string `yaml:"zone_states" json:"zoneStateMapping"`
	DistributorTypes  []DistributorType   `yaml:"distributor_types" json:"distributorTypes"`
	ArticleCategories map[string]string   `yaml:"-" json:"articleCategories,omitempty"`
}

// Default returns the built-in reference data.
func Default() *Data {
	d, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("reference: embedded default is invalid: %v", err))
	}
	return d
}

// Load reads reference data from a YAML file. An empty path yields Default().
func Load(path string) (*Data, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference file: %w", err)
	}
	return Parse(b)
}

// Parse decodes and checks reference data.
func Parse(b []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("parsing reference data: %w", err)
	}
	if len(d.Zones) == 0 {
		return nil, fmt.Errorf("reference data has no zones")
	}
	if len(d.DistributorTypes) == 0 {
		return nil, fmt.Errorf("reference data has no distributor types")
	}
	// Lookups use the canonical zone spelling, so keys are rewritten to it.
	states := make(map[string][]string, len(d.ZoneStates))
	for key, list := range d.ZoneStates {
		zone, ok := d.Zone(key)
		if !ok {
			return nil, fmt.Errorf("zone_states references unknown zone %q", key)
		}
		if _, dup := states[zone]; dup {
			return nil, fmt.Errorf("zone_states lists zone %q more than once", zone)
		}
		states[zone] = list
	}
	d.ZoneStates = states
	return &d, nil
}

// Zone returns the canonical spelling of zone, matched case-insensitively.
func (d *Data) Zone(zone string) (string, bool) {
	for _, z := range d.Zones {
		if strings.EqualFold(z, zone) {
			return z, true
		}
	}
	return "", false
}

// StatesFor returns the states of a zone, nil when the zone has no state list.
func (d *Data) StatesFor(zone string) []string {
	return d.ZoneStates[zone]
}

// State returns the canonical spelling of state within zone.
func (d *Data) State(zone, state string) (string, bool) {
	for _, s := range d.ZoneStates[zone] {
		if strings.EqualFold(s, state) {
			return s, true
		}
	}
	return "", false
}

// DistributorType returns the canonical type code, matched case-insensitively.
func (d *Data) DistributorType(code string) (string, bool) {
	for _, t := range d.DistributorTypes {
		if strings.EqualFold(t.Code, code) {
			return t.Code, true
		}
	}
	return "", false
}

// TypeCodes lists the distributor type codes in configuration order.
func (d *Data) TypeCodes() []string {
	codes := make([]string, len(d.DistributorTypes))
	for i, t := range d.DistributorTypes {
		codes[i] = t.Code
	}
	return codes
}

// WithArticleCategories returns a copy of d carrying the article→category mapping.
func (d *Data) WithArticleCategories(m map[string]string) *Data {
	cp := *d
	cp.ArticleCategories = m
	return &cp
}

// CategoryOf returns the category of an article, "" when unknown.
func (d *Data) CategoryOf(articleID string) string {
	return d.ArticleCategories[articleID]
}
