// Package filter implements the row filter behind the resource tables.
//
// A table has four filterable columns. Each column gets an optional criterion
// (the value of its dropdown); a row stays visible only when every non-empty
// criterion matches its cell. Two match modes exist: exact equality, and a
// case-insensitive substring test against the delimiter-separated tokens of
// multi-valued cells such as "meals, showers".
package filter

import (
	"fmt"
	"strings"
)

// Columns is the number of filterable columns in a table.
const Columns = 4

// DefaultDelimiter separates tokens in multi-valued cells.
const DefaultDelimiter = ", "

// MatchMode selects how a criterion is compared to a cell.
type MatchMode int

const (
	// MatchExact hides rows whose cell is not exactly the criterion.
	MatchExact MatchMode = iota
	// MatchToken hides rows where no lower-cased token contains the criterion.
	MatchToken
)

// String returns the config spelling of the mode.
func (m MatchMode) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchToken:
		return "token"
	default:
		return fmt.Sprintf("MatchMode(%d)", int(m))
	}
}

// ParseMatchMode parses "exact" or "token".
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact", "":
		return MatchExact, nil
	case "token":
		return MatchToken, nil
	default:
		return MatchExact, fmt.Errorf("unknown match mode %q (want exact or token)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m MatchMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MatchMode) UnmarshalText(text []byte) error {
	mode, err := ParseMatchMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Criteria holds one optional value per column. An empty value imposes no
// constraint on its column.
type Criteria [Columns]string

// IsEmpty reports whether no column is constrained.
func (c Criteria) IsEmpty() bool {
	for _, v := range c {
		if v != "" {
			return false
		}
	}
	return true
}

// Row is one table row: an identifier plus the text of its four cells.
type Row struct {
	ID    string
	Cells [Columns]string
}

// Filter evaluates criteria against rows.
type Filter struct {
	Mode      MatchMode
	Delimiter string
}

// New returns a filter for mode using the default delimiter.
func New(mode MatchMode) Filter {
	return Filter{Mode: mode, Delimiter: DefaultDelimiter}
}

// Match reports whether row passes every column constraint.
func (f Filter) Match(c Criteria, row Row) bool {
	for i, want := range c {
		if want == "" {
			continue
		}
		if !f.matchCell(row.Cells[i], want) {
			return false
		}
	}
	return true
}

// Apply returns the visibility of each row, in order.
func (f Filter) Apply(c Criteria, rows []Row) []bool {
	visible := make([]bool, len(rows))
	for i, row := range rows {
		visible[i] = f.Match(c, row)
	}
	return visible
}

// Visible returns the rows that pass, preserving order.
func (f Filter) Visible(c Criteria, rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if f.Match(c, row) {
			out = append(out, row)
		}
	}
	return out
}

func (f Filter) matchCell(cell, want string) bool {
	if f.Mode == MatchExact {
		return strings.TrimSpace(cell) == want
	}
	want = strings.ToLower(want)
	for _, token := range f.Tokens(cell) {
		if strings.Contains(token, want) {
			return true
		}
	}
	return false
}

// Tokens lower-cases cell and splits it on the filter's delimiter.
func (f Filter) Tokens(cell string) []string {
	return f.Split(strings.ToLower(cell))
}

// Split breaks cell on the filter's delimiter, keeping its case.
func (f Filter) Split(cell string) []string {
	return strings.Split(cell, f.Separator())
}

// Separator returns the delimiter multi-valued cells are built with.
func (f Filter) Separator() string {
	if f.Delimiter == "" {
		return DefaultDelimiter
	}
	return f.Delimiter
}
