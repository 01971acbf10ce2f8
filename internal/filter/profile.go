package filter

import (
	"fmt"
	"sort"
	"strings"
)

// Column describes one filterable column of a table profile.
type Column struct {
	// ID is the dropdown element id and the datastar signal name.
	ID string `koanf:"id"`
	// Field names the resource attribute shown in this column.
	Field string `koanf:"field"`
	// Label is the locale key of the column heading.
	Label string `koanf:"label"`
}

// Profile is one deployment variant of the filterable table: which dropdowns
// exist, which fields feed them and how criteria are matched.
type Profile struct {
	Name      string          `koanf:"name"`
	Title     string          `koanf:"title"`
	Mode      MatchMode       `koanf:"mode"`
	Delimiter string          `koanf:"delimiter"`
	Columns   [Columns]Column `koanf:"columns"`
}

// Filter returns the filter configured by the profile.
func (p Profile) Filter() Filter {
	f := New(p.Mode)
	if p.Delimiter != "" {
		f.Delimiter = p.Delimiter
	}
	return f
}

// Validate checks that every column is named and ids are unique.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("table profile has no name")
	}
	seen := make(map[string]bool, Columns)
	for i, col := range p.Columns {
		if col.ID == "" || col.Field == "" {
			return fmt.Errorf("table %q: column %d needs id and field", p.Name, i)
		}
		if seen[col.ID] {
			return fmt.Errorf("table %q: duplicate column id %q", p.Name, col.ID)
		}
		seen[col.ID] = true
	}
	return nil
}

// CriteriaFrom builds criteria by looking up each column id with get.
func (p Profile) CriteriaFrom(get func(id string) string) Criteria {
	var c Criteria
	for i, col := range p.Columns {
		c[i] = strings.TrimSpace(get(col.ID))
	}
	return c
}

// Options returns the sorted distinct dropdown values of column i.
// In token mode each token of a multi-valued cell is its own option. Values
// keep their original spelling; case variants collapse onto the first seen.
func (p Profile) Options(i int, rows []Row) []string {
	if i < 0 || i >= Columns {
		return nil
	}
	f := p.Filter()
	seen := make(map[string]bool)
	var out []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		key := v
		if f.Mode == MatchToken {
			key = strings.ToLower(v)
		}
		if v == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, v)
	}
	for _, row := range rows {
		if f.Mode == MatchToken {
			for _, part := range f.Split(row.Cells[i]) {
				add(part)
			}
			continue
		}
		add(row.Cells[i])
	}
	sort.Strings(out)
	return out
}

// DefaultProfiles returns the built-in table variants.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:  "health",
			Title: "health_title",
			Mode:  MatchExact,
			Columns: [Columns]Column{
				{ID: "street_address", Field: "street_address", Label: "street_address"},
				{ID: "zip_code", Field: "zip_code", Label: "zip_code"},
				{ID: "city", Field: "city", Label: "city"},
				{ID: "state", Field: "state", Label: "state"},
			},
		},
		{
			Name:      "supplies",
			Title:     "supplies_title",
			Mode:      MatchToken,
			Delimiter: DefaultDelimiter,
			Columns: [Columns]Column{
				{ID: "supplies", Field: "supplies", Label: "supplies"},
				{ID: "neighborhood", Field: "neighborhood", Label: "neighborhood"},
				{ID: "languages", Field: "languages", Label: "languages"},
				{ID: "hours", Field: "hours", Label: "hours"},
			},
		},
	}
}

// FindProfile returns the profile called name.
func FindProfile(profiles []Profile, name string) (Profile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
