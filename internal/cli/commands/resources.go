package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/new-arrivals-chi/arrivals/internal/cli/output"
	"github.com/new-arrivals-chi/arrivals/internal/directory"
	"github.com/new-arrivals-chi/arrivals/internal/filter"
)

// ResourcesListOptions holds options for the resources list command.
type ResourcesListOptions struct {
	Table  string
	Status string
	Where  []string
}

// ResourceRow is one resource in JSON output.
type ResourceRow struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Status directory.Status  `json:"status"`
	Cells  map[string]string `json:"cells,omitempty"`
}

// NewResourcesCommand creates the resources command group.
func NewResourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Inspect and manage the resource directory",
	}
	cmd.AddCommand(newResourcesListCommand())
	cmd.AddCommand(newResourcesFilterCommand())
	cmd.AddCommand(newResourcesToggleCommand())
	return cmd
}

func newResourcesListCommand() *cobra.Command {
	opts := &ResourcesListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources, optionally through a table's filter",
		Long: `List resources in the directory.

With --table the rows are built the way the web table builds them and
--where criteria are matched with that table's rules (exact or token).
Without --table every resource is listed.`,
		Example: `  # Everything
  arrivals resources list

  # Health locations in one zip code
  arrivals resources list --table health --where zip_code=60608

  # Supplies containing "cloth", as JSON
  arrivals resources list --table supplies --where supplies=cloth --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResourcesList(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "Table profile whose columns and matching rules to use")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Only resources with this status (ACTIVE|HIDDEN|SUSPENDED)")
	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, "Criterion column=value (repeatable, needs --table)")
	cmd.Flags().String("format", "table", "Output format (table|json)")

	return cmd
}

func runResourcesList(cmd *cobra.Command, opts *ResourcesListOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	var profile *filter.Profile
	if opts.Table != "" {
		p, ok := filter.FindProfile(cmdCtx.Cfg.Profiles(), opts.Table)
		if !ok {
			return fmt.Errorf("unknown table %q (have %s)", opts.Table, profileNames(cmdCtx.Cfg.Profiles()))
		}
		profile = &p
	} else if len(opts.Where) > 0 {
		return fmt.Errorf("--where needs --table")
	}

	listOpts := directory.ListOptions{}
	switch {
	case opts.Status != "":
		st, err := directory.ParseStatus(opts.Status)
		if err != nil {
			return err
		}
		listOpts.Status = st
	case profile != nil:
		listOpts.Status = directory.StatusActive
	}

	store, err := cmdCtx.OpenStore(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	resources, err := store.List(cmd.Context(), listOpts)
	if err != nil {
		return err
	}

	if profile == nil {
		renderResources(cmdCtx.Renderer, resources)
		return nil
	}

	criteria, err := parseWhere(*profile, opts.Where)
	if err != nil {
		return err
	}
	return renderTable(cmdCtx.Renderer, *profile, criteria, resources)
}

// parseWhere turns column=value pairs into criteria for p.
func parseWhere(p filter.Profile, where []string) (filter.Criteria, error) {
	values := make(map[string]string, len(where))
	for _, w := range where {
		col, val, ok := strings.Cut(w, "=")
		if !ok {
			return filter.Criteria{}, fmt.Errorf("criterion %q: want column=value", w)
		}
		col = strings.TrimSpace(col)
		if columnIndex(p, col) < 0 {
			return filter.Criteria{}, fmt.Errorf("table %q has no column %q (have %s)", p.Name, col, columnIDs(p))
		}
		values[col] = val
	}
	return p.CriteriaFrom(func(id string) string { return values[id] }), nil
}

func columnIndex(p filter.Profile, id string) int {
	for i, c := range p.Columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func columnIDs(p filter.Profile) string {
	ids := make([]string, 0, filter.Columns)
	for _, c := range p.Columns {
		ids = append(ids, c.ID)
	}
	return strings.Join(ids, ", ")
}

func profileNames(profiles []filter.Profile) string {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

// renderResources writes the plain directory listing.
func renderResources(r *output.Renderer, resources []*directory.Resource) {
	if r.Mode() == output.ModeJSON {
		rows := make([]ResourceRow, 0, len(resources))
		for _, res := range resources {
			rows = append(rows, ResourceRow{ID: res.ID, Name: res.Name, Status: res.Status})
		}
		_ = r.JSON(rows)
		return
	}

	rows := make([][]string, 0, len(resources))
	for _, res := range resources {
		rows = append(rows, []string{res.ID, res.Name, string(res.Status), res.ZipCode, res.Neighborhood})
	}
	r.Table([]string{"ID", "NAME", "STATUS", "ZIP", "NEIGHBORHOOD"}, rows)
}

// renderTable writes the rows of p that pass criteria.
func renderTable(r *output.Renderer, p filter.Profile, criteria filter.Criteria, resources []*directory.Resource) error {
	rows := directory.Rows(p, resources)
	visible := p.Filter().Apply(criteria, rows)

	if r.Mode() == output.ModeJSON {
		out := make([]ResourceRow, 0, len(rows))
		for i, row := range rows {
			if !visible[i] {
				continue
			}
			cells := make(map[string]string, filter.Columns)
			for j, c := range p.Columns {
				cells[c.ID] = row.Cells[j]
			}
			out = append(out, ResourceRow{ID: row.ID, Name: resources[i].Name, Status: resources[i].Status, Cells: cells})
		}
		return r.JSON(out)
	}

	upper := cases.Upper(language.Und)
	header := []string{"ID", "NAME"}
	for _, c := range p.Columns {
		header = append(header, upper.String(strings.ReplaceAll(c.ID, "_", " ")))
	}

	var out [][]string
	for i, row := range rows {
		if !visible[i] {
			continue
		}
		line := []string{row.ID, resources[i].Name}
		line = append(line, row.Cells[:]...)
		out = append(out, line)
	}
	r.Table(header, out)
	return nil
}

func newResourcesToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Switch a resource between ACTIVE and SUSPENDED",
		Long: `Switch a resource between ACTIVE and SUSPENDED. A HIDDEN resource becomes
ACTIVE.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			store, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			status, err := toggleResource(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("%s is now %s", args[0], status))
			return nil
		},
	}
}

func toggleResource(ctx context.Context, store directory.Store, id string) (directory.Status, error) {
	status, err := store.ToggleStatus(ctx, id)
	if err != nil {
		return "", fmt.Errorf("toggle %s: %w", id, err)
	}
	return status, nil
}
