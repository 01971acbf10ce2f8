// Package directory stores the organizations and locations listed in the
// portal's resource tables.
package directory

import (
	"fmt"
	"strings"
	"time"

	"github.com/new-arrivals-chi/arrivals/internal/filter"
)

// Status controls whether a resource is shown publicly.
type Status string

// Resource statuses.
const (
	StatusActive    Status = "ACTIVE"
	StatusHidden    Status = "HIDDEN"
	StatusSuspended Status = "SUSPENDED"
)

// ParseStatus accepts a status in any case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusActive, StatusHidden, StatusSuspended:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Toggled returns the status after an administrator flips visibility:
// ACTIVE becomes SUSPENDED and anything else becomes ACTIVE.
func (s Status) Toggled() Status {
	if s == StatusActive {
		return StatusSuspended
	}
	return StatusActive
}

// Resource is one organization location.
type Resource struct {
	ID            string    `yaml:"id" json:"id"`
	Name          string    `yaml:"name" json:"name"`
	Phone         string    `yaml:"phone" json:"phone"`
	StreetAddress string    `yaml:"street_address" json:"street_address"`
	ZipCode       string    `yaml:"zip_code" json:"zip_code"`
	City          string    `yaml:"city" json:"city"`
	State         string    `yaml:"state" json:"state"`
	Neighborhood  string    `yaml:"neighborhood" json:"neighborhood"`
	Supplies      []string  `yaml:"supplies" json:"supplies"`
	Hours         string    `yaml:"hours" json:"hours"`
	Languages     []string  `yaml:"languages" json:"languages"`
	Status        Status    `yaml:"status" json:"status"`
	CreatedAt     time.Time `yaml:"-" json:"created_at"`
	UpdatedAt     time.Time `yaml:"-" json:"updated_at"`
}

// Field returns the display value of a named attribute. List attributes are
// joined with filter.DefaultDelimiter. Unknown names yield "".
func (r *Resource) Field(name string) string {
	return r.field(name, filter.DefaultDelimiter)
}

func (r *Resource) field(name, sep string) string {
	switch name {
	case "id":
		return r.ID
	case "name", "organization":
		return r.Name
	case "phone":
		return r.Phone
	case "street_address":
		return r.StreetAddress
	case "zip_code":
		return r.ZipCode
	case "city":
		return r.City
	case "state":
		return r.State
	case "neighborhood":
		return r.Neighborhood
	case "supplies":
		return strings.Join(r.Supplies, sep)
	case "hours":
		return r.Hours
	case "languages":
		return strings.Join(r.Languages, sep)
	case "status":
		return string(r.Status)
	}
	return ""
}

// Row projects the resource onto the columns of a table profile. Cells are
// trimmed and list attributes are joined with the profile's delimiter.
func (r *Resource) Row(p filter.Profile) filter.Row {
	sep := p.Filter().Separator()
	row := filter.Row{ID: r.ID}
	for i, col := range p.Columns {
		row.Cells[i] = strings.TrimSpace(r.field(col.Field, sep))
	}
	return row
}

// Rows projects every resource onto p, keeping order.
func Rows(p filter.Profile, resources []*Resource) []filter.Row {
	rows := make([]filter.Row, len(resources))
	for i, r := range resources {
		rows[i] = r.Row(p)
	}
	return rows
}

// Validate checks the fields a listing cannot do without.
func (r *Resource) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("resource %q: name is required", r.ID)
	}
	if _, err := ParseStatus(string(r.Status)); err != nil {
		return fmt.Errorf("resource %q: %w", r.Name, err)
	}
	return nil
}
