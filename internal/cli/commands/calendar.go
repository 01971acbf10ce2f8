package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/new-arrivals-chi/arrivals/internal/cli/output"
	"github.com/new-arrivals-chi/arrivals/internal/locale"
)

// CalendarShowOptions holds options for the calendar show command.
type CalendarShowOptions struct {
	Date string
}

// CalendarOutput is the JSON form of calendar show.
type CalendarOutput struct {
	Tag      string            `json:"tag"`
	Date     string            `json:"date"`
	Formats  map[string]string `json:"formats"`
	Months   []string          `json:"months"`
	Weekdays []string          `json:"weekdays"`
}

var calendarStyles = []locale.Style{locale.StyleFull, locale.StyleLong, locale.StyleMedium, locale.StyleShort}

// NewCalendarCommand creates the calendar command group.
func NewCalendarCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Inspect the date picker calendars",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the calendar locales",
		Args:  cobra.NoArgs,
		RunE:  runCalendarList,
	}
	listCmd.Flags().String("format", "table", "Output format (table|json)")

	opts := &CalendarShowOptions{}
	showCmd := &cobra.Command{
		Use:   "show <tag>",
		Short: "Show names and date formats of a calendar",
		Long: `Show the month and day names of a calendar and a date rendered in every
format style. A language without its own calendar falls back to the
closest regional one.`,
		Example: `  arrivals calendar show es-US
  arrivals calendar show de --date 2024-01-05`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalendarShow(cmd, args[0], opts)
		},
	}
	showCmd.Flags().StringVar(&opts.Date, "date", "", "Date to format, YYYY-MM-DD (default today)")
	showCmd.Flags().String("format", "table", "Output format (table|json)")

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

func runCalendarList(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	src, err := cmdCtx.LoadSource()
	if err != nil {
		return err
	}
	b := src.Bundle()

	tags := b.CalendarTags()
	if cmdCtx.Renderer.Mode() == output.ModeJSON {
		return cmdCtx.Renderer.JSON(tags)
	}

	rows := make([][]string, 0, len(tags))
	for _, tag := range tags {
		cal, _ := b.Calendar(tag)
		rows = append(rows, []string{tag, cal.Directionality, cal.DayNames[cal.FirstDayOfWeek]})
	}
	cmdCtx.Renderer.Table([]string{"TAG", "DIRECTION", "WEEK STARTS"}, rows)
	return nil
}

func runCalendarShow(cmd *cobra.Command, lang string, opts *CalendarShowOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	date := time.Now()
	if opts.Date != "" {
		date, err = parseDate(opts.Date)
		if err != nil {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", opts.Date)
		}
	}

	src, err := cmdCtx.LoadSource()
	if err != nil {
		return err
	}
	tag, cal, ok := src.Bundle().CalendarFor(lang)
	if !ok {
		return fmt.Errorf("no calendar for %q (have %s)", lang, strings.Join(src.Bundle().CalendarTags(), ", "))
	}

	formats := make(map[string]string, len(calendarStyles))
	for _, style := range calendarStyles {
		s, err := cal.Format(date, style)
		if err != nil {
			return err
		}
		formats[string(style)] = s
	}

	if cmdCtx.Renderer.Mode() == output.ModeJSON {
		return cmdCtx.Renderer.JSON(CalendarOutput{
			Tag:      tag,
			Date:     date.Format(time.DateOnly),
			Formats:  formats,
			Months:   cal.MonthNames,
			Weekdays: cal.Weekdays(),
		})
	}

	r := cmdCtx.Renderer
	caser := cases.Title(language.Make(tag))

	r.Header(fmt.Sprintf("Calendar %s", tag))
	r.Println()

	rows := make([][]string, 0, len(calendarStyles))
	for _, style := range calendarStyles {
		pattern, _ := cal.Pattern(style)
		rows = append(rows, []string{string(style), pattern, formats[string(style)]})
	}
	r.Table([]string{"STYLE", "PATTERN", date.Format(time.DateOnly)}, rows)
	r.Println()

	months := make([]string, len(cal.MonthNames))
	for i, m := range cal.MonthNames {
		months[i] = caser.String(m)
	}
	r.Printf("%s %s\n", r.Styles().Bold.Render("Months:"), strings.Join(months, ", "))

	weekdays := cal.Weekdays()
	for i, d := range weekdays {
		weekdays[i] = caser.String(d)
	}
	r.Printf("%s %s\n", r.Styles().Bold.Render("Weekdays:"), strings.Join(weekdays, ", "))
	r.Println()

	r.Header(caser.String(cal.FormatPattern(date, "LLLL y")))
	r.Table(monthGrid(cal, date))
	return nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

// monthGrid lays out the month of date in weeks starting at the calendar's
// first day.
func monthGrid(cal *locale.Calendar, date time.Time) ([]string, [][]string) {
	header := make([]string, 7)
	for i := range header {
		header[i] = cal.DayNamesShort[(cal.FirstDayOfWeek+i)%7]
	}

	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) - cal.FirstDayOfWeek + 7) % 7
	days := first.AddDate(0, 1, -1).Day()

	var rows [][]string
	week := make([]string, 7)
	col := offset
	for day := 1; day <= days; day++ {
		week[col] = strconv.Itoa(day)
		col++
		if col == 7 {
			rows = append(rows, week)
			week = make([]string, 7)
			col = 0
		}
	}
	if col > 0 {
		rows = append(rows, week)
	}
	return header, rows
}
