package legal

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sentinel errors.
var (
	// ErrInvalidTree is wrapped by every parse failure.
	ErrInvalidTree = errors.New("invalid decision tree")
	// ErrUnknownOption is returned when a selected option does not exist at
	// the current level.
	ErrUnknownOption = errors.New("unknown option")
	// ErrStaleState is returned when a saved navigation path no longer
	// resolves, typically after the tree was reloaded.
	ErrStaleState = errors.New("navigation state does not match the tree")
)

type treeFile struct {
	DefaultTheme string            `yaml:"default_theme"`
	Themes       map[string]string `yaml:"themes"`
	Root         yaml.Node         `yaml:"root"`
}

type nodeFile struct {
	Key      string    `yaml:"key"`
	Header   string    `yaml:"header"`
	Desc     string    `yaml:"desc"`
	Link     string    `yaml:"link"`
	Children yaml.Node `yaml:"children"`
}

// Parse reads a tree file.
func Parse(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read decision tree: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses a tree file. Children keep their file order.
func ParseBytes(data []byte) (*Tree, error) {
	var f treeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTree, err)
	}
	if f.Root.Kind == 0 {
		return nil, fmt.Errorf("%w: missing root", ErrInvalidTree)
	}

	node, err := parseNode(&f.Root, "root")
	if err != nil {
		return nil, err
	}
	root, ok := node.(*Branch)
	if !ok {
		return nil, fmt.Errorf("%w: root must have children", ErrInvalidTree)
	}

	tree := &Tree{Root: root, Themes: DefaultThemes(), DefaultTheme: ThemeBlue}
	if f.DefaultTheme != "" {
		theme, err := ParseTheme(f.DefaultTheme)
		if err != nil {
			return nil, fmt.Errorf("%w: default_theme: %v", ErrInvalidTree, err)
		}
		tree.DefaultTheme = theme
	}
	if len(f.Themes) > 0 {
		tree.Themes = make(map[string]Theme, len(f.Themes))
		for name, s := range f.Themes {
			theme, err := ParseTheme(s)
			if err != nil {
				return nil, fmt.Errorf("%w: themes.%s: %v", ErrInvalidTree, name, err)
			}
			tree.Themes[name] = theme
		}
	}
	return tree, nil
}

func parseNode(n *yaml.Node, path string) (Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: expected a mapping (line %d)", ErrInvalidTree, path, n.Line)
	}

	var raw nodeFile
	if err := n.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTree, path, err)
	}
	if raw.Key == "" {
		return nil, fmt.Errorf("%w: %s: key is required (line %d)", ErrInvalidTree, path, n.Line)
	}

	hasChildren := raw.Children.Kind != 0
	hasLink := raw.Link != ""
	switch {
	case hasChildren && hasLink:
		return nil, fmt.Errorf("%w: %s: has both children and link (line %d)", ErrInvalidTree, path, n.Line)
	case !hasChildren && !hasLink:
		return nil, fmt.Errorf("%w: %s: has neither children nor link (line %d)", ErrInvalidTree, path, n.Line)
	}

	if hasLink {
		if err := validateLink(raw.Link); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTree, path, err)
		}
		return &Leaf{LabelKey: raw.Key, Desc: raw.Desc, Link: raw.Link}, nil
	}

	children := &raw.Children
	if children.Kind != yaml.MappingNode || len(children.Content) == 0 {
		return nil, fmt.Errorf("%w: %s: children must be a non-empty mapping (line %d)", ErrInvalidTree, path, children.Line)
	}

	branch := &Branch{LabelKey: raw.Key, Header: raw.Header, Desc: raw.Desc}
	seen := make(map[string]bool, len(children.Content)/2)
	for i := 0; i+1 < len(children.Content); i += 2 {
		name := children.Content[i].Value
		if seen[name] {
			return nil, fmt.Errorf("%w: %s: duplicate option %q", ErrInvalidTree, path, name)
		}
		seen[name] = true

		child, err := parseNode(children.Content[i+1], path+"."+name)
		if err != nil {
			return nil, err
		}
		branch.Children = append(branch.Children, Child{Name: name, Node: child})
	}
	return branch, nil
}

func validateLink(link string) error {
	if !strings.HasPrefix(link, "/") || strings.HasPrefix(link, "//") {
		return fmt.Errorf("link %q must be a root-relative path", link)
	}
	if _, err := url.Parse(link); err != nil {
		return fmt.Errorf("link %q: %v", link, err)
	}
	return nil
}
