// Package legal implements the legal-resource decision tree: a static tree of
// options rendered one level at a time, with a back stack and leaf links that
// send the visitor to a topic page.
//
// The tree is a tagged variant. A Branch has ordered children and renders as
// a menu level; a Leaf has a root-relative link and ends the walk. Parse
// rejects any node that is neither, so every option is actionable.
package legal

import "fmt"

// Node is either a *Branch or a *Leaf.
type Node interface {
	// Key is the locale key of the node's button label.
	Key() string
	// Description is the locale key of the optional description block.
	Description() string
	isNode()
}

// Child is a named entry of a branch. Name is unique within its branch and
// selects the category theme.
type Child struct {
	Name string
	Node Node
}

// Branch is a menu level.
type Branch struct {
	LabelKey string
	Header   string
	Desc     string
	Children []Child
}

// Key implements Node.
func (b *Branch) Key() string { return b.LabelKey }

// Description implements Node.
func (b *Branch) Description() string { return b.Desc }

func (*Branch) isNode() {}

// Child returns the child called name.
func (b *Branch) Child(name string) (Node, bool) {
	for _, c := range b.Children {
		if c.Name == name {
			return c.Node, true
		}
	}
	return nil, false
}

// Leaf is a terminal option.
type Leaf struct {
	LabelKey string
	Desc     string
	Link     string
}

// Key implements Node.
func (l *Leaf) Key() string { return l.LabelKey }

// Description implements Node.
func (l *Leaf) Description() string { return l.Desc }

func (*Leaf) isNode() {}

// Tree is a parsed decision tree with its category themes.
type Tree struct {
	Root         *Branch
	Themes       map[string]Theme
	DefaultTheme Theme
}

// ThemeFor returns the category theme for a child name, if it has one.
func (t *Tree) ThemeFor(name string) (Theme, bool) {
	theme, ok := t.Themes[name]
	return theme, ok
}

// Walk resolves a path of child names from the root. Every element must name
// a branch.
func (t *Tree) Walk(path []string) (*Branch, error) {
	cur := t.Root
	for i, name := range path {
		child, ok := cur.Child(name)
		if !ok {
			return nil, fmt.Errorf("%w: no option %q at depth %d", ErrStaleState, name, i)
		}
		branch, ok := child.(*Branch)
		if !ok {
			return nil, fmt.Errorf("%w: option %q is not a menu", ErrStaleState, name)
		}
		cur = branch
	}
	return cur, nil
}

// Leaves returns every leaf link in depth-first order.
func (t *Tree) Leaves() []*Leaf {
	var out []*Leaf
	var walk func(b *Branch)
	walk = func(b *Branch) {
		for _, c := range b.Children {
			switch n := c.Node.(type) {
			case *Branch:
				walk(n)
			case *Leaf:
				out = append(out, n)
			}
		}
	}
	walk(t.Root)
	return out
}
