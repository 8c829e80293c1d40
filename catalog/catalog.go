// Package catalog holds the declarative definitions of every report category:
// the fields a form collects, its complaint domains, its feedback ratings and
// how its location is fingerprinted for duplicate detection. The client form
// engine and the API server both read the same catalog.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// OptionType is the kind of report a student is filing.
type OptionType string

const (
	OptionComplaint  OptionType = "Complaint"
	OptionFeedback   OptionType = "Feedback"
	OptionSuggestion OptionType = "Suggestion"
)

// ParseOptionType accepts the option type case-insensitively.
func ParseOptionType(s string) (OptionType, bool) {
	for _, o := range []OptionType{OptionComplaint, OptionFeedback, OptionSuggestion} {
		if strings.EqualFold(strings.TrimSpace(s), string(o)) {
			return o, true
		}
	}
	return "", false
}

// LocationMode says which location parts identify a duplicate.
type LocationMode string

const (
	LocationBlockFloor LocationMode = "block_floor"
	LocationBlock      LocationMode = "block"
	LocationNone       LocationMode = "none"
)

// Well-known field names.
const (
	FieldBlock    = "block"
	FieldFloor    = "floor"
	FieldRoom     = "room"
	FieldComments = "comments"
)

// RatingField names one rating slot of a category. Valid values are exactly
// the rating names declared for that category.
type RatingField string

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidCatalog  = errors.New("invalid catalog")
)

// Field is one text input of a form.
type Field struct {
	Name     string `yaml:"name" json:"name" validate:"required"`
	Label    string `yaml:"label" json:"label" validate:"required"`
	Required bool   `yaml:"required" json:"required"`
}

// Rating is one feedback score of a form.
type Rating struct {
	Name  RatingField `yaml:"name" json:"name" validate:"required"`
	Label string      `yaml:"label" json:"label" validate:"required"`
}

// Category is the declarative definition of one report form.
type Category struct {
	Key            string       `yaml:"key" json:"key" validate:"required"`
	ActionItem     string       `yaml:"action_item" json:"action_item" validate:"required"`
	Title          string       `yaml:"title" json:"title" validate:"required"`
	Icon           string       `yaml:"icon" json:"icon,omitempty"`
	SortOrder      int          `yaml:"sort_order" json:"sort_order"`
	Location       LocationMode `yaml:"location" json:"location" validate:"required,oneof=block_floor block none"`
	AllowAnonymous bool         `yaml:"allow_anonymous" json:"allow_anonymous"`
	DuplicateCheck bool         `yaml:"duplicate_check" json:"duplicate_check"`
	Bookkeeping    bool         `yaml:"bookkeeping" json:"bookkeeping"`
	Options        []OptionType `yaml:"options" json:"options" validate:"dive,oneof=Complaint Feedback Suggestion"`
	Fields         []Field      `yaml:"fields" json:"fields" validate:"required,min=1,dive"`
	Domains        []string     `yaml:"domains" json:"domains" validate:"required,min=1,dive,required"`
	RatingScale    int          `yaml:"rating_scale" json:"rating_scale" validate:"omitempty,min=2,max=10"`
	Ratings        []Rating     `yaml:"ratings" json:"ratings" validate:"dive"`
}

// HasField reports whether the category collects the named field.
func (c *Category) HasField(name string) bool {
	for _, f := range c.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Field returns the definition of the named field.
func (c *Category) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasRating reports whether r is one of the category's rating fields.
func (c *Category) HasRating(r RatingField) bool {
	for _, rt := range c.Ratings {
		if rt.Name == r {
			return true
		}
	}
	return false
}

// AllowsOption reports whether the category accepts the option type.
func (c *Category) AllowsOption(o OptionType) bool {
	for _, opt := range c.Options {
		if opt == o {
			return true
		}
	}
	return false
}

// HasDomain reports whether d is one of the category's complaint domains.
func (c *Category) HasDomain(d string) bool {
	for _, dom := range c.Domains {
		if dom == d {
			return true
		}
	}
	return false
}

// LocationFields lists the fields that make up the duplicate fingerprint.
func (c *Category) LocationFields() []string {
	switch c.Location {
	case LocationBlockFloor:
		return []string{FieldBlock, FieldFloor}
	case LocationBlock:
		return []string{FieldBlock}
	default:
		return nil
	}
}

// UsesFloor reports whether floors take part in duplicate matching.
func (c *Category) UsesFloor() bool {
	return c.Location == LocationBlockFloor
}

// Catalog is the ordered set of category definitions.
type Catalog struct {
	Categories []Category `yaml:"categories" validate:"required,min=1,dive"`

	byKey map[string]*Category
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// FromCategories builds a catalog from definitions received over the API.
func FromCategories(cats []Category) (*Catalog, error) {
	c := Catalog{Categories: append([]Category(nil), cats...)}
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) normalize() error {
	c.byKey = make(map[string]*Category, len(c.Categories))
	sort.SliceStable(c.Categories, func(i, j int) bool {
		return c.Categories[i].SortOrder < c.Categories[j].SortOrder
	})

	for i := range c.Categories {
		cat := &c.Categories[i]
		if _, dup := c.byKey[cat.Key]; dup {
			return fmt.Errorf("%w: duplicate category key %q", ErrInvalidCatalog, cat.Key)
		}
		c.byKey[cat.Key] = cat

		if len(cat.Options) == 0 {
			cat.Options = []OptionType{OptionComplaint, OptionFeedback, OptionSuggestion}
		}
		if cat.RatingScale == 0 {
			cat.RatingScale = 5
		}
		if cat.AllowsOption(OptionFeedback) && len(cat.Ratings) == 0 {
			return fmt.Errorf("%w: category %q offers feedback without ratings", ErrInvalidCatalog, cat.Key)
		}

		seen := make(map[string]bool)
		for _, f := range cat.Fields {
			if seen[f.Name] {
				return fmt.Errorf("%w: category %q repeats field %q", ErrInvalidCatalog, cat.Key, f.Name)
			}
			seen[f.Name] = true
		}
		for _, r := range cat.Ratings {
			if seen[string(r.Name)] {
				return fmt.Errorf("%w: category %q repeats name %q", ErrInvalidCatalog, cat.Key, r.Name)
			}
			seen[string(r.Name)] = true
		}
		for _, name := range cat.LocationFields() {
			if !cat.HasField(name) {
				return fmt.Errorf("%w: category %q needs a %q field for %s matching", ErrInvalidCatalog, cat.Key, name, cat.Location)
			}
		}
	}
	return nil
}

// Get returns the category with the given key.
func (c *Catalog) Get(key string) (*Category, error) {
	if cat, ok := c.byKey[key]; ok {
		return cat, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
}

// ByActionItem finds a category by its action item tag, ignoring case.
func (c *Catalog) ByActionItem(tag string) (*Category, bool) {
	for i := range c.Categories {
		if strings.EqualFold(c.Categories[i].ActionItem, tag) {
			return &c.Categories[i], true
		}
	}
	return nil, false
}

// Keys returns every category key in display order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		keys = append(keys, cat.Key)
	}
	return keys
}
