package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/new-arrivals-chi/arrivals/internal/cli/output"
	"github.com/new-arrivals-chi/arrivals/internal/directory"
	"github.com/new-arrivals-chi/arrivals/internal/filter"
)

func newResourcesFilterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "filter <table>",
		Short: "Filter a table interactively",
		Long: `Start an interactive session over one table. Set a criterion with
column=value, clear one with column=, and the visible rows are printed
after every change.`,
		Example: `  arrivals resources filter supplies
  supplies> supplies=food
  supplies> neighborhood=pilsen
  supplies> .clear`,
		Args: cobra.ExactArgs(1),
		RunE: runResourcesFilter,
	}
}

func runResourcesFilter(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	profile, ok := filter.FindProfile(cmdCtx.Cfg.Profiles(), args[0])
	if !ok {
		return fmt.Errorf("unknown table %q (have %s)", args[0], profileNames(cmdCtx.Cfg.Profiles()))
	}

	store, err := cmdCtx.OpenStore(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	resources, err := store.List(cmd.Context(), directory.ListOptions{Status: directory.StatusActive})
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          profile.Name + "> ",
		HistoryFile:     historyPath(cmdCtx.Cfg.ProjectRoot),
		AutoComplete:    newColumnCompleter(profile),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cmdCtx.Renderer
	r.Header(fmt.Sprintf("Filtering %s (%d active resources)", profile.Name, len(resources)))
	r.Muted("Type .help for commands, .quit to exit")
	r.Println()

	session := newFilterSession(profile, resources)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if session.handle(r, line) {
			return nil
		}
	}
}

// historyPath returns the project-local REPL history file.
func historyPath(root string) string {
	if root == "" {
		root, _ = os.Getwd()
	}
	dir := filepath.Join(root, ".arrivals")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "filter_history")
}

func newColumnCompleter(p filter.Profile) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, c := range p.Columns {
		items = append(items, readline.PcItem(c.ID+"="))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".show"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}

// filterSession holds the criteria of an interactive filter.
type filterSession struct {
	profile   filter.Profile
	resources []*directory.Resource
	values    map[string]string
}

func newFilterSession(p filter.Profile, resources []*directory.Resource) *filterSession {
	return &filterSession{profile: p, resources: resources, values: make(map[string]string)}
}

func (s *filterSession) criteria() filter.Criteria {
	return s.profile.CriteriaFrom(func(id string) string { return s.values[id] })
}

// handle processes one input line. It reports whether the session should end.
func (s *filterSession) handle(r *output.Renderer, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if strings.HasPrefix(line, ".") {
		switch strings.ToLower(strings.Fields(line)[0]) {
		case ".quit", ".exit":
			return true
		case ".help":
			printFilterHelp(r.Out(), s.profile)
		case ".show":
			s.show(r)
		case ".clear":
			clear(s.values)
			s.render(r)
		default:
			r.Error(fmt.Sprintf("unknown command: %s (type .help for commands)", line))
		}
		return false
	}

	col, val, ok := strings.Cut(line, "=")
	if !ok {
		r.Error("want column=value or a dot-command")
		return false
	}
	col = strings.TrimSpace(col)
	if columnIndex(s.profile, col) < 0 {
		r.Error(fmt.Sprintf("no column %q (have %s)", col, columnIDs(s.profile)))
		return false
	}
	if val = strings.TrimSpace(val); val == "" {
		delete(s.values, col)
	} else {
		s.values[col] = val
	}
	s.render(r)
	return false
}

func (s *filterSession) show(r *output.Renderer) {
	c := s.criteria()
	if c.IsEmpty() {
		r.Muted("no criteria")
		return
	}
	for i, col := range s.profile.Columns {
		if c[i] != "" {
			r.Printf("%s = %s\n", col.ID, c[i])
		}
	}
}

func (s *filterSession) render(r *output.Renderer) {
	if err := renderTable(r, s.profile, s.criteria(), s.resources); err != nil {
		r.Error(err.Error())
	}
}

func printFilterHelp(w io.Writer, p filter.Profile) {
	help := `
Commands:
  column=value    Keep rows whose column matches value
  column=         Drop the criterion on column
  .show           Print the current criteria
  .clear          Drop every criterion
  .quit / .exit   Exit

Columns: %s
Matching: %s
`
	_, _ = fmt.Fprintf(w, help, columnIDs(p), p.Mode)
}
