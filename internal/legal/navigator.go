package legal

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/new-arrivals-chi/arrivals/internal/locale"
)

// DefaultLocaleParam is the query parameter carrying the visitor's language.
const DefaultLocaleParam = "lang"

// Options are the behavioural switches of the navigator.
type Options struct {
	// RestoreParentThemeOnBack restores the theme that was active before the
	// last descend. When false the child level's theme stays in effect after
	// going back.
	RestoreParentThemeOnBack bool `koanf:"restore_parent_theme_on_back"`
	// AppendLocaleParam adds the visitor's language to leaf links.
	AppendLocaleParam bool `koanf:"append_locale_param"`
	// LocaleParam names the language query parameter.
	LocaleParam string `koanf:"locale_param"`
}

// DefaultOptions matches the deployed portal: leaf links carry ?lang= and
// going back keeps the current theme.
func DefaultOptions() Options {
	return Options{
		RestoreParentThemeOnBack: false,
		AppendLocaleParam:        true,
		LocaleParam:              DefaultLocaleParam,
	}
}

// OutcomeKind tells the caller what activating an option did.
type OutcomeKind int

const (
	// OutcomeDescend means the state moved into a branch; re-render.
	OutcomeDescend OutcomeKind = iota
	// OutcomeNavigate means a leaf was chosen; send the visitor to URL and
	// render nothing further.
	OutcomeNavigate
)

// Outcome is the result of Activate.
type Outcome struct {
	Kind OutcomeKind
	URL  string
}

// Navigator runs the decision-tree state machine over a Tree. It holds no
// per-visitor data; every call takes the visitor's State.
type Navigator struct {
	tree *Tree
	opts Options
}

// NewNavigator creates a navigator.
func NewNavigator(tree *Tree, opts Options) *Navigator {
	if opts.LocaleParam == "" {
		opts.LocaleParam = DefaultLocaleParam
	}
	return &Navigator{tree: tree, opts: opts}
}

// Tree returns the tree being navigated.
func (n *Navigator) Tree() *Tree {
	return n.tree
}

// Options returns the navigator's options.
func (n *Navigator) Options() Options {
	return n.opts
}

// Start returns the initial state: at the root with an empty stack.
func (n *Navigator) Start(lang string) State {
	return State{Theme: n.tree.DefaultTheme, Lang: lang}
}

// Activate selects child name of the current level. Branches are descended
// into; leaves produce a navigation outcome and leave s unchanged.
func (n *Navigator) Activate(s *State, name string) (Outcome, error) {
	cur, err := n.tree.Walk(s.Path)
	if err != nil {
		return Outcome{}, err
	}
	child, ok := cur.Child(name)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}

	switch c := child.(type) {
	case *Branch:
		s.push(name, n.childTheme(name, s.Theme))
		return Outcome{Kind: OutcomeDescend}, nil
	case *Leaf:
		u, err := ResolveLink(c.Link, s.Lang, n.opts)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeNavigate, URL: u}, nil
	default:
		return Outcome{}, fmt.Errorf("%w: %q has unsupported node type %T", ErrInvalidTree, name, child)
	}
}

// Back pops the navigation stack. It reports false, and does nothing, when
// the stack is empty.
func (n *Navigator) Back(s *State) bool {
	parent, ok := s.pop()
	if !ok {
		return false
	}
	if n.opts.RestoreParentThemeOnBack && parent != "" {
		s.Theme = parent
	}
	return true
}

// Toggle opens or closes the description block of child name and returns
// whether it is now open.
func (n *Navigator) Toggle(s *State, name string) (bool, error) {
	cur, err := n.tree.Walk(s.Path)
	if err != nil {
		return false, err
	}
	if _, ok := cur.Child(name); !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	return s.toggle(name), nil
}

// childTheme is the category theme of name, or inherited when it has none.
func (n *Navigator) childTheme(name string, inherited Theme) Theme {
	if theme, ok := n.tree.ThemeFor(name); ok {
		return theme
	}
	if inherited == "" {
		return n.tree.DefaultTheme
	}
	return inherited
}

// ResolveLink turns a leaf link into the navigation target, adding the
// language parameter when enabled.
func ResolveLink(link, lang string, opts Options) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("resolve link %q: %w", link, err)
	}
	if opts.AppendLocaleParam && lang != "" {
		param := opts.LocaleParam
		if param == "" {
			param = DefaultLocaleParam
		}
		q := u.Query()
		q.Set(param, lang)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Level is the rendered view of the current branch.
type Level struct {
	Header    string
	Theme     Theme
	Buttons   []Button
	ShowBack  bool
	BackLabel string
	Depth     int
}

// Button is one option of a level.
type Button struct {
	Name        string
	Label       string
	Theme       Theme
	IsLeaf      bool
	Description []string
	Expanded    bool
	ToggleLabel string
}

// HasDescription reports whether the button gets an expandable block.
func (b Button) HasDescription() bool {
	return len(b.Description) > 0
}

// Render builds the view of the level s points at, resolving every label
// through t.
func (n *Navigator) Render(s State, t *locale.Table) (Level, error) {
	cur, err := n.tree.Walk(s.Path)
	if err != nil {
		return Level{}, err
	}

	theme := s.Theme
	if theme == "" {
		theme = n.tree.DefaultTheme
	}

	lvl := Level{
		Header:    t.Text(cur.Header, locale.HeaderPlaceholder),
		Theme:     theme,
		Buttons:   make([]Button, 0, len(cur.Children)),
		ShowBack:  s.CanGoBack(),
		BackLabel: t.Text("back", "Back"),
		Depth:     s.Depth(),
	}

	for _, c := range cur.Children {
		_, leaf := c.Node.(*Leaf)
		b := Button{
			Name:        c.Name,
			Label:       t.Text(c.Node.Key(), locale.KeyNotFound),
			Theme:       n.childTheme(c.Name, theme),
			IsLeaf:      leaf,
			Description: descriptionLines(t, c.Node.Description()),
		}
		if b.HasDescription() {
			b.Expanded = s.IsExpanded(c.Name)
			if b.Expanded {
				b.ToggleLabel = t.Text("hide_options", "Hide options")
			} else {
				b.ToggleLabel = t.Text("see_options", "See options")
			}
		}
		lvl.Buttons = append(lvl.Buttons, b)
	}
	return lvl, nil
}

// descriptionLines resolves a description key and splits it into list items.
func descriptionLines(t *locale.Table, key string) []string {
	if key == "" {
		return nil
	}
	text, ok := t.Lookup(key)
	if !ok || strings.TrimSpace(text) == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}
