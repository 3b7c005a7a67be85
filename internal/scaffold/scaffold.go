// Package scaffold writes new content files (posts, link posts and changelog
// entries) into the Markdown corpus.
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrExists is returned when the file a post or link would be written to
	// is already present. The existing file is left untouched.
	ErrExists = errors.New("file already exists")
	// ErrEmptySlug is returned when a post or link has no usable slug.
	ErrEmptySlug = errors.New("slug is required")

	reNonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

const (
	dayFormat  = "2006-01-02"
	dateFormat = "2006-01-02T15:04:05.000Z07:00"

	postsSection     = "blog"
	linksSection     = "links"
	changelogSection = "changelog"
)

// Slugify lower-cases s, drops everything that is not a letter, digit,
// underscore or whitespace and joins the remaining words with hyphens.
func Slugify(s string) string {
	s = reNonWord.ReplaceAllString(strings.ToLower(s), "")
	return strings.Join(strings.Fields(s), "-")
}

// Writer creates files below ContentDir. Now is the clock used for file names
// and dates; it defaults to time.Now.
type Writer struct {
	ContentDir string
	Now        func() time.Time
}

// NewWriter returns a Writer for contentDir using the wall clock.
func NewWriter(contentDir string) *Writer {
	return &Writer{ContentDir: contentDir, Now: time.Now}
}

func (w *Writer) now() time.Time {
	if w.Now == nil {
		return time.Now().UTC()
	}
	return w.Now().UTC()
}

// timestamp is written as an unquoted YAML timestamp that always carries
// milliseconds.
type timestamp time.Time

func (t timestamp) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!timestamp",
		Value: time.Time(t).UTC().Format(dateFormat),
	}, nil
}

type postMatter struct {
	Title     string    `yaml:"title"`
	Permalink string    `yaml:"permalink"`
	Date      timestamp `yaml:"date"`
	Excerpt   string    `yaml:"excerpt"`
	Layout    string    `yaml:"layout"`
	Tags      []string  `yaml:"tags"`
}

// Post writes an empty blog post and returns its path.
func (w *Writer) Post(title, slug string) (string, error) {
	if slug == "" {
		return "", ErrEmptySlug
	}
	now := w.now()
	matter := postMatter{
		Title:     title,
		Permalink: fmt.Sprintf("/blog/%s/index.html", slug),
		Date:      timestamp(now),
		Excerpt:   "",
		Layout:    "post",
	}
	path := w.datedPath(postsSection, now, now.Format(dayFormat)+"-"+slug)
	return path, createExclusive(path, matter, "")
}

// LinkPost describes a link post. Excerpt, when set, is quoted in the body.
type LinkPost struct {
	URL     string
	Title   string
	Slug    string
	Excerpt string
}

type linkMatter struct {
	Title     string    `yaml:"title"`
	Permalink string    `yaml:"permalink"`
	Link      string    `yaml:"link"`
	Date      timestamp `yaml:"date"`
}

// Link writes a link post and returns its path.
func (w *Writer) Link(l LinkPost) (string, error) {
	if l.Slug == "" {
		return "", ErrEmptySlug
	}
	now := w.now()
	matter := linkMatter{
		Title:     l.Title,
		Permalink: fmt.Sprintf("/links/%s/index.html", l.Slug),
		Link:      l.URL,
		Date:      timestamp(now),
	}
	path := w.datedPath(linksSection, now, now.Format(dayFormat)+"-"+l.Slug)
	return path, createExclusive(path, matter, blockquote(l.Excerpt))
}

func (w *Writer) datedPath(section string, now time.Time, name string) string {
	return filepath.Join(w.ContentDir, section, now.Format("2006"), name+".md")
}

func createExclusive(path string, matter interface{}, body string) error {
	data, err := document(matter, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// document renders front matter followed by an optional body.
func document(matter interface{}, body string) ([]byte, error) {
	fm, err := yaml.Marshal(matter)
	if err != nil {
		return nil, fmt.Errorf("marshaling front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(strings.TrimRight(body, "\n"))
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

func blockquote(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight("> "+line, " ")
	}
	return strings.Join(lines, "\n")
}
