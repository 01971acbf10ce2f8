package legal

import "fmt"

// Theme is the colour of a group of buttons.
type Theme string

// Themes known to the stylesheet.
const (
	ThemeBlue   Theme = "blue"
	ThemeYellow Theme = "yellow"
	ThemeGreen  Theme = "green"
	ThemeOrange Theme = "orange"
)

// CSSClass returns the button class for the theme.
func (t Theme) CSSClass() string {
	return "button-" + string(t)
}

// Valid reports whether the stylesheet knows the theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeBlue, ThemeYellow, ThemeGreen, ThemeOrange:
		return true
	}
	return false
}

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	t := Theme(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown theme %q", s)
	}
	return t, nil
}

// DefaultThemes is the category map used when a tree file has none.
func DefaultThemes() map[string]Theme {
	return map[string]Theme{
		"work_auth":      ThemeBlue,
		"work_rights":    ThemeYellow,
		"renters_rights": ThemeGreen,
		"something_else": ThemeOrange,
	}
}
