package locale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	en := NewTable(language.English, map[string]string{
		"legal":        "Legal help",
		"see_options":  "See options",
		"hide_options": "Hide options",
		"only_en":      "English only",
	})
	es := NewTable(language.Spanish, map[string]string{
		"legal":       "Ayuda legal",
		"see_options": "Ver opciones",
		"empty":       "",
	})
	c, err := NewCatalog(language.English, en, es)
	require.NoError(t, err)
	return c
}

func TestTable_Text(t *testing.T) {
	c := testCatalog(t)
	es := c.Resolve("es")

	tests := []struct {
		name        string
		key         string
		placeholder string
		want        string
	}{
		{name: "translated key", key: "legal", placeholder: KeyNotFound, want: "Ayuda legal"},
		{name: "falls back to default language", key: "only_en", placeholder: KeyNotFound, want: "English only"},
		{name: "missing everywhere", key: "nope", placeholder: KeyNotFound, want: KeyNotFound},
		{name: "empty string counts as missing", key: "empty", placeholder: KeyNotFound, want: KeyNotFound},
		{name: "empty key", key: "", placeholder: HeaderPlaceholder, want: HeaderPlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, es.Text(tt.key, tt.placeholder))
		})
	}
}

func TestTable_NilIsEmpty(t *testing.T) {
	var tbl *Table
	_, ok := tbl.Lookup("x")
	assert.False(t, ok)
	assert.Equal(t, KeyNotFound, tbl.Text("x", KeyNotFound))
	assert.Equal(t, 0, tbl.Len())
}

func TestCatalog_Resolve(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		lang string
		want string
	}{
		{lang: "", want: "en"},
		{lang: "en", want: "en"},
		{lang: "es", want: "es"},
		{lang: "es-MX", want: "es"},
		{lang: "fr", want: "en"},
		{lang: "fr;q=0.9, es;q=0.8", want: "es"},
		{lang: "!!", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(c.Resolve(tt.lang)))
		})
	}
}

func TestNewCatalog_Errors(t *testing.T) {
	_, err := NewCatalog(language.English, NewTable(language.Spanish, nil))
	assert.ErrorContains(t, err, "default language")

	_, err = NewCatalog(language.English,
		NewTable(language.English, nil),
		NewTable(language.English, nil),
	)
	assert.ErrorContains(t, err, "duplicate")
}

func TestCatalog_Tags(t *testing.T) {
	c := testCatalog(t)
	tags := c.Tags()
	require.Len(t, tags, 2)
	assert.Equal(t, "en", tags[0].String())
	assert.Equal(t, "es", tags[1].String())
}

func deAT() *Calendar {
	return &Calendar{
		Directionality:          LTR,
		MonthNames:              []string{"Jänner", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
		MonthNamesAbbreviated:   []string{"Jän.", "Feb.", "März", "Apr.", "Mai", "Juni", "Juli", "Aug.", "Sep.", "Okt.", "Nov.", "Dez."},
		MonthNamesNarrow:        []string{"J", "F", "M", "A", "M", "J", "J", "A", "S", "O", "N", "D"},
		DayNames:                []string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		DayNamesAbbreviated:     []string{"So.", "Mo.", "Di.", "Mi.", "Do.", "Fr.", "Sa."},
		DayNamesShort:           []string{"So.", "Mo.", "Di.", "Mi.", "Do.", "Fr.", "Sa."},
		DayNamesNarrow:          []string{"S", "M", "D", "M", "D", "F", "S"},
		DayPeriodsAbbreviated:   map[string]string{"am": "vorm.", "pm": "nachm."},
		QuarterNames:            []string{"1. Quartal", "2. Quartal", "3. Quartal", "4. Quartal"},
		QuarterNamesAbbreviated: []string{"Q1", "Q2", "Q3", "Q4"},
		QuarterNamesNarrow:      []string{"1", "2", "3", "4"},
		EraNames:                []string{"v. Chr.", "n. Chr."},
		EraNamesAbbreviated:     []string{"v. Chr.", "n. Chr."},
		EraNamesNarrow:          []string{"v. Chr.", "n. Chr."},
		FullFormat:              "EEEE, d. MMMM y",
		LongFormat:              "d. MMMM y",
		MediumFormat:            "dd.MM.y",
		ShortFormat:             "dd.MM.yy",
		FirstDayOfWeek:          1,
	}
}

func TestCalendar_Format(t *testing.T) {
	cal := deAT()
	require.NoError(t, cal.Validate())
	date := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

	tests := []struct {
		style Style
		want  string
	}{
		{StyleFull, "Dienstag, 5. März 2024"},
		{StyleLong, "5. März 2024"},
		{StyleMedium, "05.03.2024"},
		{StyleShort, "05.03.24"},
	}

	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			got, err := cal.Format(date, tt.style)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := cal.Format(date, Style("huge"))
	assert.Error(t, err)
}

func TestCalendar_FormatPattern(t *testing.T) {
	cal := deAT()
	date := time.Date(2024, time.January, 7, 0, 5, 0, 0, time.UTC)

	tests := []struct {
		pattern string
		want    string
	}{
		{"EEE d. MMM", "So. 7. Jän."},
		{"QQQ yyyy G", "Q1 2024 n. Chr."},
		{"h:mm a", "12:05 vorm."},
		{"HH:mm:ss", "00:05:00"},
		{"'Tag' d", "Tag 7"},
		{"d''M", "7'1"},
		{"MMMMM", "J"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.FormatPattern(date, tt.pattern))
		})
	}
}

func TestCalendar_Weekdays(t *testing.T) {
	cal := deAT()
	days := cal.Weekdays()
	assert.Equal(t, "Montag", days[0])
	assert.Equal(t, "Sonntag", days[6])

	cal.FirstDayOfWeek = 0
	assert.Equal(t, "Sonntag", cal.Weekdays()[0])
}

func TestCalendar_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Calendar)
		wantErr string
	}{
		{name: "bad direction", mutate: func(c *Calendar) { c.Directionality = "up" }, wantErr: "directionality"},
		{name: "short month list", mutate: func(c *Calendar) { c.MonthNames = c.MonthNames[:11] }, wantErr: "month_names"},
		{name: "first day out of range", mutate: func(c *Calendar) { c.FirstDayOfWeek = 7 }, wantErr: "firstday_of_week"},
		{name: "missing format", mutate: func(c *Calendar) { c.ShortFormat = "" }, wantErr: "short_format"},
		{name: "eras", mutate: func(c *Calendar) { c.EraNames = nil }, wantErr: "era names"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := deAT()
			tt.mutate(cal)
			assert.ErrorContains(t, cal.Validate(), tt.wantErr)
		})
	}
}
