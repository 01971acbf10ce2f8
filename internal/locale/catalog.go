package locale

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when a visitor asks for nothing or for a language
// the portal does not ship.
var DefaultLanguage = language.English

// Catalog holds one Table per supported language.
type Catalog struct {
	def     language.Tag
	tags    []language.Tag
	tables  map[language.Tag]*Table
	matcher language.Matcher
}

// NewCatalog builds a catalog from tables. A table for def is required; every
// other table falls back to it.
func NewCatalog(def language.Tag, tables ...*Table) (*Catalog, error) {
	c := &Catalog{
		def:    def,
		tables: make(map[language.Tag]*Table, len(tables)),
	}

	for _, t := range tables {
		if _, dup := c.tables[t.tag]; dup {
			return nil, fmt.Errorf("duplicate string table for %s", t.tag)
		}
		c.tables[t.tag] = t
	}

	base, ok := c.tables[def]
	if !ok {
		return nil, fmt.Errorf("no string table for default language %s", def)
	}

	// The matcher prefers its first tag when nothing fits.
	c.tags = append(c.tags, def)
	others := make([]language.Tag, 0, len(tables))
	for tag, t := range c.tables {
		if tag == def {
			continue
		}
		t.fallback = base
		others = append(others, tag)
	}
	sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
	c.tags = append(c.tags, others...)
	c.matcher = language.NewMatcher(c.tags)

	return c, nil
}

// Default returns the default language table.
func (c *Catalog) Default() *Table {
	return c.tables[c.def]
}

// Tags lists the supported languages, default first.
func (c *Catalog) Tags() []language.Tag {
	out := make([]language.Tag, len(c.tags))
	copy(out, c.tags)
	return out
}

// Resolve picks the table best matching lang, a BCP 47 tag or an
// Accept-Language style list. Unparseable or unsupported input yields the
// default table.
func (c *Catalog) Resolve(lang string) *Table {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return c.Default()
	}

	wanted, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(wanted) == 0 {
		return c.Default()
	}

	_, idx, conf := c.matcher.Match(wanted...)
	if conf == language.No {
		return c.Default()
	}
	return c.tables[c.tags[idx]]
}

// Code returns the query-string spelling of the table's language.
func Code(t *Table) string {
	return t.Tag().String()
}
