package locale

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Direction values for Calendar.Directionality.
const (
	LTR = "LTR"
	RTL = "RTL"
)

// Calendar is the per-locale metadata consumed by the date picker. Field
// names follow the date picker's locale record so the JSON can be handed to
// it unchanged.
type Calendar struct {
	Texts          map[string]string `yaml:"texts" json:"texts"`
	Directionality string            `yaml:"directionality" json:"directionality"`

	MonthNames            []string `yaml:"month_names" json:"month_names"`
	MonthNamesAbbreviated []string `yaml:"month_names_abbreviated" json:"month_names_abbreviated"`
	MonthNamesNarrow      []string `yaml:"month_names_narrow" json:"month_names_narrow"`

	DayNames            []string `yaml:"day_names" json:"day_names"`
	DayNamesAbbreviated []string `yaml:"day_names_abbreviated" json:"day_names_abbreviated"`
	DayNamesShort       []string `yaml:"day_names_short" json:"day_names_short"`
	DayNamesNarrow      []string `yaml:"day_names_narrow" json:"day_names_narrow"`

	DayPeriods            map[string]string `yaml:"day_periods" json:"day_periods"`
	DayPeriodsAbbreviated map[string]string `yaml:"day_periods_abbreviated" json:"day_periods_abbreviated"`
	DayPeriodsNarrow      map[string]string `yaml:"day_periods_narrow" json:"day_periods_narrow"`

	QuarterNames            []string `yaml:"quarter_names" json:"quarter_names"`
	QuarterNamesAbbreviated []string `yaml:"quarter_names_abbreviated" json:"quarter_names_abbreviated"`
	QuarterNamesNarrow      []string `yaml:"quarter_names_narrow" json:"quarter_names_narrow"`

	EraNames            []string `yaml:"era_names" json:"era_names"`
	EraNamesAbbreviated []string `yaml:"era_names_abbreviated" json:"era_names_abbreviated"`
	EraNamesNarrow      []string `yaml:"era_names_narrow" json:"era_names_narrow"`

	FullFormat   string `yaml:"full_format" json:"full_format"`
	LongFormat   string `yaml:"long_format" json:"long_format"`
	MediumFormat string `yaml:"medium_format" json:"medium_format"`
	ShortFormat  string `yaml:"short_format" json:"short_format"`

	// FirstDayOfWeek is 0 for Sunday.
	FirstDayOfWeek int `yaml:"firstday_of_week" json:"firstday_of_week"`
}

// Validate checks array lengths and enumerated fields.
func (c *Calendar) Validate() error {
	switch c.Directionality {
	case LTR, RTL:
	default:
		return fmt.Errorf("directionality must be %s or %s, got %q", LTR, RTL, c.Directionality)
	}

	lengths := []struct {
		name string
		got  []string
		want int
	}{
		{"month_names", c.MonthNames, 12},
		{"month_names_abbreviated", c.MonthNamesAbbreviated, 12},
		{"month_names_narrow", c.MonthNamesNarrow, 12},
		{"day_names", c.DayNames, 7},
		{"day_names_abbreviated", c.DayNamesAbbreviated, 7},
		{"day_names_short", c.DayNamesShort, 7},
		{"day_names_narrow", c.DayNamesNarrow, 7},
		{"quarter_names", c.QuarterNames, 4},
		{"quarter_names_abbreviated", c.QuarterNamesAbbreviated, 4},
		{"quarter_names_narrow", c.QuarterNamesNarrow, 4},
	}
	for _, l := range lengths {
		if len(l.got) != l.want {
			return fmt.Errorf("%s: want %d entries, got %d", l.name, l.want, len(l.got))
		}
	}

	if len(c.EraNames) != 2 || len(c.EraNamesAbbreviated) != 2 || len(c.EraNamesNarrow) != 2 {
		return fmt.Errorf("era names: want 2 entries in every width")
	}
	if c.FirstDayOfWeek < 0 || c.FirstDayOfWeek > 6 {
		return fmt.Errorf("firstday_of_week must be 0..6, got %d", c.FirstDayOfWeek)
	}
	for name, pattern := range map[string]string{
		"full_format":   c.FullFormat,
		"long_format":   c.LongFormat,
		"medium_format": c.MediumFormat,
		"short_format":  c.ShortFormat,
	} {
		if pattern == "" {
			return fmt.Errorf("%s is empty", name)
		}
	}
	return nil
}

// Weekdays returns the full day names starting at FirstDayOfWeek.
func (c *Calendar) Weekdays() []string {
	out := make([]string, 0, len(c.DayNames))
	for i := range c.DayNames {
		out = append(out, c.DayNames[(c.FirstDayOfWeek+i)%len(c.DayNames)])
	}
	return out
}

// Style selects one of the calendar's date format patterns.
type Style string

// Format styles.
const (
	StyleFull   Style = "full"
	StyleLong   Style = "long"
	StyleMedium Style = "medium"
	StyleShort  Style = "short"
)

// Pattern returns the pattern for style.
func (c *Calendar) Pattern(style Style) (string, error) {
	switch style {
	case StyleFull:
		return c.FullFormat, nil
	case StyleLong:
		return c.LongFormat, nil
	case StyleMedium:
		return c.MediumFormat, nil
	case StyleShort:
		return c.ShortFormat, nil
	default:
		return "", fmt.Errorf("unknown date style %q", style)
	}
}

// Format renders t with the pattern selected by style.
func (c *Calendar) Format(t time.Time, style Style) (string, error) {
	pattern, err := c.Pattern(style)
	if err != nil {
		return "", err
	}
	return c.FormatPattern(t, pattern), nil
}

// FormatPattern renders t with a CLDR-style pattern. Supported fields are
// G y Q M L E d a h H m s; text in single quotes is copied literally and ''
// is a quote. Unknown letters are copied as is.
func (c *Calendar) FormatPattern(t time.Time, pattern string) string {
	var b strings.Builder
	runes := []rune(pattern)

	for i := 0; i < len(runes); {
		r := runes[i]

		if r == '\'' {
			if i+1 < len(runes) && runes[i+1] == '\'' {
				b.WriteRune('\'')
				i += 2
				continue
			}
			j := i + 1
			for j < len(runes) && runes[j] != '\'' {
				b.WriteRune(runes[j])
				j++
			}
			i = j + 1
			continue
		}

		if !isPatternLetter(r) {
			b.WriteRune(r)
			i++
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == r {
			n++
		}
		b.WriteString(c.field(t, r, n))
		i += n
	}
	return b.String()
}

func isPatternLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func (c *Calendar) field(t time.Time, letter rune, n int) string {
	switch letter {
	case 'G':
		era := 1
		if t.Year() <= 0 {
			era = 0
		}
		w := 1
		switch {
		case n == 4:
			w = 2
		case n >= 5:
			w = 3
		}
		return pick(width(w, c.EraNamesAbbreviated, c.EraNames, c.EraNamesNarrow), era)
	case 'y':
		if n == 2 {
			return pad(t.Year()%100, 2)
		}
		return pad(t.Year(), n)
	case 'Q':
		q := (int(t.Month()) - 1) / 3
		if n <= 2 {
			return pad(q+1, n)
		}
		return pick(width(n-2, c.QuarterNamesAbbreviated, c.QuarterNames, c.QuarterNamesNarrow), q)
	case 'M', 'L':
		m := int(t.Month()) - 1
		if n <= 2 {
			return pad(m+1, n)
		}
		return pick(width(n-2, c.MonthNamesAbbreviated, c.MonthNames, c.MonthNamesNarrow), m)
	case 'E':
		d := int(t.Weekday())
		switch {
		case n <= 3:
			return pick(c.DayNamesAbbreviated, d)
		case n == 4:
			return pick(c.DayNames, d)
		case n == 5:
			return pick(c.DayNamesNarrow, d)
		default:
			return pick(c.DayNamesShort, d)
		}
	case 'd':
		return pad(t.Day(), n)
	case 'a':
		key := "am"
		if t.Hour() >= 12 {
			key = "pm"
		}
		if v := c.DayPeriodsAbbreviated[key]; v != "" {
			return v
		}
		return strings.ToUpper(key)
	case 'h':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		return pad(h, n)
	case 'H':
		return pad(t.Hour(), n)
	case 'm':
		return pad(t.Minute(), n)
	case 's':
		return pad(t.Second(), n)
	default:
		return strings.Repeat(string(letter), n)
	}
}

// width maps a 1..3 width count to abbreviated, wide and narrow name lists.
func width(n int, abbreviated, wide, narrow []string) []string {
	switch {
	case n <= 1:
		return abbreviated
	case n == 2:
		return wide
	default:
		return narrow
	}
}

func pick(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return ""
	}
	return names[i]
}

func pad(v, n int) string {
	s := strconv.Itoa(v)
	for len(s) < n {
		s = "0" + s
	}
	return s
}
