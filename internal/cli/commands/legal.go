package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/new-arrivals-chi/arrivals/internal/cli/output"
	"github.com/new-arrivals-chi/arrivals/internal/legal"
	"github.com/new-arrivals-chi/arrivals/internal/locale"
)

// LegalNode is one option of the decision tree in JSON output.
type LegalNode struct {
	Name     string      `json:"name"`
	Label    string      `json:"label"`
	Theme    legal.Theme `json:"theme,omitempty"`
	Link     string      `json:"link,omitempty"`
	Children []LegalNode `json:"children,omitempty"`
}

// NewLegalCommand creates the legal command group.
func NewLegalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "legal",
		Short: "Explore the legal help decision tree",
		Long: `Explore the legal help decision tree. Labels are shown in the language
chosen with --lang.`,
	}

	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the whole decision tree",
		Example: `  arrivals legal tree
  arrivals legal tree --lang es
  arrivals legal tree --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLegalTree(cmd)
		},
	}
	treeCmd.Flags().String("format", "table", "Output format (table|json)")

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Walk the decision tree interactively",
		Long: `Walk the decision tree the way the web navigator does. Choosing a
final option prints the page it links to. When output is not a terminal
the whole tree is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLegalBrowse(cmd)
		},
	}

	cmd.AddCommand(treeCmd, browseCmd)
	return cmd
}

// legalSetup loads the content and resolves the label language.
func legalSetup(cmd *cobra.Command) (*CommandContext, *legal.Tree, *locale.Table, error) {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	src, err := cmdCtx.LoadSource()
	if err != nil {
		return nil, nil, nil, err
	}
	b := src.Bundle()

	return cmdCtx, b.Tree, b.Catalog.Resolve(cmdCtx.Cfg.DefaultLanguage), nil
}

func runLegalTree(cmd *cobra.Command) error {
	cmdCtx, tree, t, err := legalSetup(cmd)
	if err != nil {
		return err
	}

	navOpts := cmdCtx.Cfg.Navigator
	lang := locale.Code(t)

	if cmdCtx.Renderer.Mode() == output.ModeJSON {
		nodes, err := legalNodes(tree, tree.Root, tree.DefaultTheme, t, lang, navOpts)
		if err != nil {
			return err
		}
		return cmdCtx.Renderer.JSON(nodes)
	}

	out, err := renderLegalTree(cmdCtx.Renderer, tree, t, navOpts)
	if err != nil {
		return err
	}
	cmdCtx.Renderer.Header(t.Text(tree.Root.Header, locale.HeaderPlaceholder))
	cmdCtx.Renderer.Println(out)
	return nil
}

// themeColors maps the stylesheet themes to terminal colours.
var themeColors = map[legal.Theme]lipgloss.Color{
	legal.ThemeBlue:   lipgloss.Color("33"),
	legal.ThemeYellow: lipgloss.Color("220"),
	legal.ThemeGreen:  lipgloss.Color("34"),
	legal.ThemeOrange: lipgloss.Color("208"),
}

func themeStyle(r *lipgloss.Renderer, theme legal.Theme) lipgloss.Style {
	s := r.NewStyle()
	if c, ok := themeColors[theme]; ok {
		s = s.Foreground(c)
	}
	return s
}

// childTheme is the theme a child button is drawn in: its category theme
// if it has one, otherwise the theme of its level.
func childTheme(tree *legal.Tree, name string, inherited legal.Theme) legal.Theme {
	if theme, ok := tree.ThemeFor(name); ok {
		return theme
	}
	return inherited
}

// renderLegalTree draws every option as an indented list.
func renderLegalTree(r *output.Renderer, tree *legal.Tree, t *locale.Table, opts legal.Options) (string, error) {
	lw := list.NewWriter()
	lw.SetStyle(list.StyleConnectedLight)

	var walk func(b *legal.Branch, theme legal.Theme) error
	walk = func(b *legal.Branch, theme legal.Theme) error {
		for _, c := range b.Children {
			ct := childTheme(tree, c.Name, theme)
			label := themeStyle(r.Lipgloss(), ct).Render(t.Text(c.Node.Key(), locale.KeyNotFound))

			switch n := c.Node.(type) {
			case *legal.Leaf:
				link, err := legal.ResolveLink(n.Link, locale.Code(t), opts)
				if err != nil {
					return err
				}
				lw.AppendItem(label + " " + r.Styles().Muted.Render("→ "+link))
			case *legal.Branch:
				lw.AppendItem(label)
				lw.Indent()
				if err := walk(n, ct); err != nil {
					return err
				}
				lw.UnIndent()
			}
		}
		return nil
	}
	if err := walk(tree.Root, tree.DefaultTheme); err != nil {
		return "", err
	}
	return lw.Render(), nil
}

func legalNodes(tree *legal.Tree, b *legal.Branch, theme legal.Theme, t *locale.Table, lang string, opts legal.Options) ([]LegalNode, error) {
	nodes := make([]LegalNode, 0, len(b.Children))
	for _, c := range b.Children {
		ct := childTheme(tree, c.Name, theme)
		node := LegalNode{
			Name:  c.Name,
			Label: t.Text(c.Node.Key(), locale.KeyNotFound),
			Theme: ct,
		}
		switch n := c.Node.(type) {
		case *legal.Leaf:
			link, err := legal.ResolveLink(n.Link, lang, opts)
			if err != nil {
				return nil, err
			}
			node.Link = link
		case *legal.Branch:
			children, err := legalNodes(tree, n, ct, t, lang, opts)
			if err != nil {
				return nil, err
			}
			node.Children = children
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func runLegalBrowse(cmd *cobra.Command) error {
	if !isTerminal(cmd) {
		return runLegalTree(cmd)
	}

	cmdCtx, tree, t, err := legalSetup(cmd)
	if err != nil {
		return err
	}

	nav := legal.NewNavigator(tree, cmdCtx.Cfg.Navigator)
	m, err := newBrowseModel(nav, t, cmdCtx.Renderer.Lipgloss())
	if err != nil {
		return err
	}

	final, err := runBrowseProgram(cmd, m)
	if err != nil {
		return err
	}
	if final.chosen != "" {
		cmdCtx.Renderer.Success(fmt.Sprintf("%s: %s", final.chosenLabel, final.chosen))
	}
	return nil
}

// isTerminal reports whether cmd writes to an interactive terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
