package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v2"
)

//go:embed catalog.yaml
var embedded []byte

// Option is a stored value with its display label.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Catalog holds the closed vocabularies a listing is validated against.
type Catalog struct {
	Categories       []Option `yaml:"categories" json:"categories"`
	ExperienceLevels []Option `yaml:"experience_levels" json:"experience_levels"`
	Cities           []string `yaml:"cities" json:"cities"`

	categorySet   map[string]struct{}
	experienceSet map[string]struct{}
	citySet       map[string]struct{}
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		cat, err := Parse(embedded)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCat = cat
	})
	return defaultCat
}

// Parse decodes a YAML catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.UnmarshalStrict(raw, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(cat.Categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}
	if len(cat.Cities) == 0 {
		return nil, fmt.Errorf("catalog has no cities")
	}

	cat.categorySet = optionSet(cat.Categories)
	cat.experienceSet = optionSet(cat.ExperienceLevels)
	cat.citySet = make(map[string]struct{}, len(cat.Cities))
	for _, city := range cat.Cities {
		if _, dup := cat.citySet[city]; dup {
			return nil, fmt.Errorf("duplicate city %q", city)
		}
		cat.citySet[city] = struct{}{}
	}
	return &cat, nil
}

// HasCategory reports whether value is a known category.
func (c *Catalog) HasCategory(value string) bool {
	_, ok := c.categorySet[value]
	return ok
}

// HasExperienceLevel reports whether value is a known experience level.
func (c *Catalog) HasExperienceLevel(value string) bool {
	_, ok := c.experienceSet[value]
	return ok
}

// HasCity reports whether value is in the gazetteer.
func (c *Catalog) HasCity(value string) bool {
	_, ok := c.citySet[value]
	return ok
}

// CategoryLabel returns the display label, falling back to the raw value.
func (c *Catalog) CategoryLabel(value string) string {
	for _, opt := range c.Categories {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

func optionSet(opts []Option) map[string]struct{} {
	set := make(map[string]struct{}, len(opts))
	for _, opt := range opts {
		set[opt.Value] = struct{}{}
	}
	return set
}
