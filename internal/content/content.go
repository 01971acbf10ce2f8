// Package content loads the static content of the portal: the legal decision
// tree, the string tables and the calendar metadata.
//
// Content is read from an fs.FS laid out as
//
//	legal.yaml
//	locales/<tag>.yaml
//	calendars/<tag>.yaml
//
// The default bundle is embedded in the binary. A content directory on disk
// with the same layout replaces it and can be reloaded while serving.
package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/new-arrivals-chi/arrivals/internal/legal"
	"github.com/new-arrivals-chi/arrivals/internal/locale"
)

// File and directory names inside a content FS.
const (
	TreeFile     = "legal.yaml"
	LocalesDir   = "locales"
	CalendarsDir = "calendars"
)

//go:embed data
var embedded embed.FS

// Embedded returns the content bundled with the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Bundle is one consistent snapshot of all content.
type Bundle struct {
	Tree      *legal.Tree
	Catalog   *locale.Catalog
	Calendars map[string]*locale.Calendar

	calendarTags []language.Tag
	calendarMtch language.Matcher
}

// Load reads and validates a bundle. def is the language every other string
// table falls back to; it must have a file under locales/.
func Load(fsys fs.FS, def language.Tag) (*Bundle, error) {
	data, err := fs.ReadFile(fsys, TreeFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TreeFile, err)
	}
	tree, err := legal.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", TreeFile, err)
	}

	tables, err := loadTables(fsys)
	if err != nil {
		return nil, err
	}
	catalog, err := locale.NewCatalog(def, tables...)
	if err != nil {
		return nil, err
	}

	calendars, err := loadCalendars(fsys)
	if err != nil {
		return nil, err
	}

	b := &Bundle{Tree: tree, Catalog: catalog, Calendars: calendars}
	for _, tag := range b.CalendarTags() {
		b.calendarTags = append(b.calendarTags, language.Make(tag))
	}
	if len(b.calendarTags) > 0 {
		b.calendarMtch = language.NewMatcher(b.calendarTags)
	}
	return b, nil
}

// CalendarTags returns the tags of all calendars, sorted.
func (b *Bundle) CalendarTags() []string {
	tags := make([]string, 0, len(b.Calendars))
	for tag := range b.Calendars {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Calendar returns the calendar stored under exactly tag.
func (b *Bundle) Calendar(tag string) (*locale.Calendar, bool) {
	c, ok := b.Calendars[tag]
	return c, ok
}

// CalendarFor returns the calendar that best matches lang, which may be a
// bare language ("es") or a full tag ("de-AT").
func (b *Bundle) CalendarFor(lang string) (string, *locale.Calendar, bool) {
	if c, ok := b.Calendars[lang]; ok {
		return lang, c, true
	}
	if b.calendarMtch == nil {
		return "", nil, false
	}
	wanted, err := language.Parse(lang)
	if err != nil {
		return "", nil, false
	}
	_, idx, conf := b.calendarMtch.Match(wanted)
	if conf == language.No {
		return "", nil, false
	}
	tag := b.calendarTags[idx].String()
	c, ok := b.Calendars[tag]
	return tag, c, ok
}

func loadTables(fsys fs.FS) ([]*locale.Table, error) {
	files, err := yamlFiles(fsys, LocalesDir)
	if err != nil {
		return nil, err
	}
	tables := make([]*locale.Table, 0, len(files))
	for _, name := range files {
		tag, err := tagOf(name)
		if err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, path.Join(LocalesDir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var entries map[string]string
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("%s/%s: %w", LocalesDir, name, err)
		}
		tables = append(tables, locale.NewTable(tag, entries))
	}
	return tables, nil
}

func loadCalendars(fsys fs.FS) (map[string]*locale.Calendar, error) {
	files, err := yamlFiles(fsys, CalendarsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]*locale.Calendar{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := make(map[string]*locale.Calendar, len(files))
	for _, name := range files {
		tag, err := tagOf(name)
		if err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, path.Join(CalendarsDir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var cal locale.Calendar
		if err := yaml.Unmarshal(data, &cal); err != nil {
			return nil, fmt.Errorf("%s/%s: %w", CalendarsDir, name, err)
		}
		if err := cal.Validate(); err != nil {
			return nil, fmt.Errorf("%s/%s: %w", CalendarsDir, name, err)
		}
		out[tag.String()] = &cal
	}
	return out, nil
}

func yamlFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := path.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func tagOf(name string) (language.Tag, error) {
	base := strings.TrimSuffix(name, path.Ext(name))
	tag, err := language.Parse(base)
	if err != nil {
		return language.Und, fmt.Errorf("%s: file name is not a language tag: %w", name, err)
	}
	return tag, nil
}
