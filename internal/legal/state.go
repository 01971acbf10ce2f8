package legal

import (
	"encoding/json"
	"fmt"
	"slices"
)

// State is one visitor's position in the tree. Path is the navigation stack:
// each descend pushes the selected branch's name, and Themes records the
// theme that was active before that push.
type State struct {
	Path     []string `json:"path,omitempty"`
	Themes   []Theme  `json:"themes,omitempty"`
	Theme    Theme    `json:"theme"`
	Expanded []string `json:"expanded,omitempty"`
	Lang     string   `json:"lang,omitempty"`
}

// Depth returns the number of frames on the navigation stack.
func (s State) Depth() int {
	return len(s.Path)
}

// CanGoBack reports whether the back control should be shown.
func (s State) CanGoBack() bool {
	return len(s.Path) > 0
}

// IsExpanded reports whether the description of child name is open.
func (s State) IsExpanded(name string) bool {
	return slices.Contains(s.Expanded, name)
}

// Encode serializes the state for a session cookie.
func (s State) Encode() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode navigation state: %w", err)
	}
	return string(b), nil
}

// DecodeState parses a value produced by Encode.
func DecodeState(v string) (State, error) {
	var s State
	if err := json.Unmarshal([]byte(v), &s); err != nil {
		return State{}, fmt.Errorf("decode navigation state: %w", err)
	}
	if len(s.Themes) != len(s.Path) {
		return State{}, fmt.Errorf("%w: %d frames but %d saved themes", ErrStaleState, len(s.Path), len(s.Themes))
	}
	return s, nil
}

func (s *State) push(name string, next Theme) {
	s.Path = append(slices.Clip(s.Path), name)
	s.Themes = append(slices.Clip(s.Themes), s.Theme)
	s.Theme = next
	s.Expanded = nil
}

func (s *State) pop() (Theme, bool) {
	if len(s.Path) == 0 {
		return "", false
	}
	last := len(s.Path) - 1
	var parent Theme
	if last < len(s.Themes) {
		parent = s.Themes[last]
		s.Themes = s.Themes[:last]
	}
	s.Path = s.Path[:last]
	s.Expanded = nil
	return parent, true
}

func (s *State) toggle(name string) bool {
	if i := slices.Index(s.Expanded, name); i >= 0 {
		s.Expanded = slices.Delete(slices.Clone(s.Expanded), i, i+1)
		return false
	}
	s.Expanded = append(slices.Clip(s.Expanded), name)
	return true
}
