// Package locale holds the user-visible strings of the portal and the
// calendar metadata used by date pickers.
//
// A Table maps string keys to display text for one language. Tables chain to
// the default language, so a key missing from a partial translation falls
// back to English before the caller's placeholder is used.
package locale

import (
	"golang.org/x/text/language"
)

// Placeholders rendered when a key cannot be resolved.
const (
	HeaderPlaceholder = "Select an option"
	KeyNotFound       = "Key not found"
)

// Table is a key to string lookup for one language.
type Table struct {
	tag      language.Tag
	entries  map[string]string
	fallback *Table
}

// NewTable creates a table for tag. The map is used as is.
func NewTable(tag language.Tag, entries map[string]string) *Table {
	if entries == nil {
		entries = map[string]string{}
	}
	return &Table{tag: tag, entries: entries}
}

// Tag returns the language of the table.
func (t *Table) Tag() language.Tag {
	if t == nil {
		return language.Und
	}
	return t.tag
}

// Len returns the number of keys defined directly in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Lookup resolves key, consulting the fallback chain. Empty strings count as
// missing.
func (t *Table) Lookup(key string) (string, bool) {
	for cur := t; cur != nil; cur = cur.fallback {
		if v, ok := cur.entries[key]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Text resolves key or returns placeholder.
func (t *Table) Text(key, placeholder string) string {
	if key == "" {
		return placeholder
	}
	if v, ok := t.Lookup(key); ok {
		return v
	}
	return placeholder
}

// Keys returns the keys defined directly in the table.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	return keys
}
