package models

import (
	"sort"
	"strings"
)

// Tag is a recipe attribute drawn from a closed vocabulary.
type Tag string

const (
	TagVegan      Tag = "vegan"
	TagVegetarian Tag = "vegetarian"
	TagGlutenFree Tag = "gluten_free"
	TagDairyFree  Tag = "dairy_free"
	TagDessert    Tag = "dessert"
	TagBreakfast  Tag = "breakfast"
	TagLunch      Tag = "lunch"
	TagDinner     Tag = "dinner"
	TagSnack      Tag = "snack"
	TagQuick      Tag = "quick"
	TagSpicy      Tag = "spicy"
	TagHealthy    Tag = "healthy"
)

var knownTags = map[Tag]struct{}{
	TagVegan:      {},
	TagVegetarian: {},
	TagGlutenFree: {},
	TagDairyFree:  {},
	TagDessert:    {},
	TagBreakfast:  {},
	TagLunch:      {},
	TagDinner:     {},
	TagSnack:      {},
	TagQuick:      {},
	TagSpicy:      {},
	TagHealthy:    {},
}

// KnownTags returns the vocabulary in lexical order.
func KnownTags() []Tag {
	out := make([]Tag, 0, len(knownTags))
	for t := range knownTags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsKnown reports whether t belongs to the vocabulary.
func (t Tag) IsKnown() bool {
	_, ok := knownTags[t]
	return ok
}

// ParseTags normalizes raw tag names and rejects anything outside the vocabulary.
// Blank entries are skipped and duplicates collapse.
func ParseTags(raw []string) ([]Tag, error) {
	seen := make(map[Tag]struct{}, len(raw))
	out := make([]Tag, 0, len(raw))
	for _, r := range raw {
		name := strings.ToLower(strings.TrimSpace(r))
		if name == "" {
			continue
		}
		t := Tag(name)
		if !t.IsKnown() {
			return nil, NewValidationError("Unknown tag: " + name)
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// TagSet is the set of tags currently true on a post. It is stored as a JSON array.
type TagSet []Tag

// NewTagSet validates raw names and builds a sorted, de-duplicated set.
func NewTagSet(raw []string) (TagSet, error) {
	tags, err := ParseTags(raw)
	if err != nil {
		return nil, err
	}
	return TagSet(tags), nil
}

// Has reports whether the tag is set.
func (s TagSet) Has(t Tag) bool {
	for _, v := range s {
		if v == t {
			return true
		}
	}
	return false
}

// HasAll reports whether every tag in want is set.
func (s TagSet) HasAll(want []Tag) bool {
	for _, t := range want {
		if !s.Has(t) {
			return false
		}
	}
	return true
}
