package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

// Kind classifies a changelog line.
type Kind string

const (
	KindFeature Kind = "feature"
	KindFix     Kind = "fix"
	KindProject Kind = "project"
	KindRetired Kind = "retired"
)

// Kinds lists the accepted changelog kinds in menu order.
var Kinds = []Kind{KindFeature, KindFix, KindProject, KindRetired}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ChangelogEntry is a single line in the daily changelog.
type ChangelogEntry struct {
	Title   string
	Link    string
	Kind    Kind
	Message string
}

// Line renders the entry as a Markdown list item.
func (e ChangelogEntry) Line() string {
	line := fmt.Sprintf("- [%s](%s) [%s] %s", e.Title, e.Link, e.Kind, strings.TrimSpace(e.Message))
	return strings.TrimRight(line, " ")
}

type changelogMatter struct {
	Title     string    `yaml:"title"`
	Permalink string    `yaml:"permalink"`
	Date      timestamp `yaml:"date"`
}

// Changelog appends e to today's changelog file, creating the file with its
// front matter first if needed. created reports whether a new file was made.
func (w *Writer) Changelog(e ChangelogEntry) (path string, created bool, err error) {
	if !e.Kind.Valid() {
		return "", false, fmt.Errorf("unknown changelog kind %q", e.Kind)
	}

	now := w.now()
	day := now.Format(dayFormat)
	path = w.ChangelogPath(now)

	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		matter := changelogMatter{
			Title:     "Project Changelog " + day,
			Permalink: fmt.Sprintf("/log/%s/index.html", day),
			Date:      timestamp(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)),
		}
		return path, true, createExclusive(path, matter, e.Line())
	case err != nil:
		return path, false, fmt.Errorf("reading changelog: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return path, false, err
	}
	line := e.Line() + "\n"
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		line = "\n" + line
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return path, false, fmt.Errorf("appending to %s: %w", path, err)
	}
	return path, false, f.Close()
}

// ChangelogPath returns the file the entry for t would be written to.
func (w *Writer) ChangelogPath(t time.Time) string {
	t = t.UTC()
	return w.datedPath(changelogSection, t, t.Format(dayFormat))
}
