// Package category defines the closed, versioned vocabulary of category tags
// used to classify catalog items and guest interests. The vocabulary is an
// immutable value injected explicitly into the mapper and ranking engine, so
// tests can run against small synthetic vocabularies.
package category

import "strings"

// Tag is one value from the fixed vocabulary.
type Tag string

// Entry pairs a tag with the keyword list used by the deterministic fallback.
// Declaration order is significant: it is the tie-break order for keyword
// matching.
type Entry struct {
	Tag      Tag
	Keywords []string
}

// Vocabulary is a closed set of tags with keyword lists and a
// service-kind lookup. Zero value is empty and matches nothing.
type Vocabulary struct {
	version      string
	entries      []Entry
	serviceKinds map[string]Tag
}

// New builds a vocabulary from entries and a service-kind lookup table.
func New(version string, entries []Entry, serviceKinds map[string]Tag) Vocabulary {
	kinds := make(map[string]Tag, len(serviceKinds))
	for k, v := range serviceKinds {
		kinds[strings.ToLower(k)] = v
	}
	return Vocabulary{version: version, entries: entries, serviceKinds: kinds}
}

// Version returns the vocabulary version identifier.
func (v Vocabulary) Version() string { return v.version }

// Tags returns all tags in declaration order.
func (v Vocabulary) Tags() []Tag {
	tags := make([]Tag, len(v.entries))
	for i, e := range v.entries {
		tags[i] = e.Tag
	}
	return tags
}

// Contains reports whether the tag is part of the vocabulary.
func (v Vocabulary) Contains(tag Tag) bool {
	for _, e := range v.entries {
		if e.Tag == tag {
			return true
		}
	}
	return false
}

// Parse resolves a raw string to a vocabulary tag, case-insensitive.
// Unknown values are discarded by the caller.
func (v Vocabulary) Parse(raw string) (Tag, bool) {
	candidate := Tag(strings.ToLower(strings.TrimSpace(raw)))
	if v.Contains(candidate) {
		return candidate, true
	}
	return "", false
}

// KeywordMatch resolves free text to tags via case-insensitive substring
// matching against each entry's keyword list. Tags are collected in
// declaration order and capped at max. Returns nil when nothing matches.
func (v Vocabulary) KeywordMatch(text string, max int) []Tag {
	if max <= 0 {
		return nil
	}
	lower := strings.ToLower(text)

	var matched []Tag
	for _, e := range v.entries {
		for _, kw := range e.Keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, e.Tag)
				break
			}
		}
		if len(matched) == max {
			break
		}
	}
	return matched
}

// ServiceKindTag maps a venue service kind (e.g. "spa", "gym") to its
// equivalent category tag.
func (v Vocabulary) ServiceKindTag(kind string) (Tag, bool) {
	tag, ok := v.serviceKinds[strings.ToLower(kind)]
	return tag, ok
}

// Index returns the declaration position of a tag, or len(tags) for unknown
// tags. Used as the final deterministic tie-break in ranking and preference
// ordering.
func (v Vocabulary) Index(tag Tag) int {
	for i, e := range v.entries {
		if e.Tag == tag {
			return i
		}
	}
	return len(v.entries)
}
