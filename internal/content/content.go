// Package content loads the Markdown corpus into model.ContentItems.
package content

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Bitlatte/quill/internal/model"
)

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// defaultLayouts is the layout an item gets when its front matter names none.
var defaultLayouts = map[string]string{
	"blog":      "post",
	"links":     "link",
	"changelog": "changelog",
	"notes":     "note",
	"almanac":   "almanac",
}

type loader struct {
	root  string
	md    goldmark.Markdown
	title cases.Caser
}

// Load walks contentDir and returns every .md file as a ContentItem, newest
// first. Items without a date sort last.
func Load(contentDir string) ([]*model.ContentItem, error) {
	if _, err := os.Stat(contentDir); err != nil {
		return nil, fmt.Errorf("content directory: %w", err)
	}

	l := &loader{
		root: contentDir,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
			),
		),
		title: cases.Title(language.English),
	}

	var items []*model.ContentItem
	err := filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path '%s' during walk: %w", path, err)
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		item, err := l.file(path)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	SortNewestFirst(items)
	log.Debug().Int("items", len(items)).Str("dir", contentDir).Msg("content loaded")
	return items, nil
}

func (l *loader) file(path string) (*model.ContentItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	var fm map[string]interface{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not parse front matter, treating as pure markdown")
		body = raw
		fm = nil
	}
	if fm == nil {
		fm = make(map[string]interface{})
	}

	var html bytes.Buffer
	if err := l.md.Convert(body, &html); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML for file '%s': %w", path, err)
	}

	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	section := ""
	if dir := filepath.ToSlash(filepath.Dir(rel)); dir != "." {
		section = dir
	}
	itemType := "page"
	if section != "" {
		itemType, _, _ = strings.Cut(section, "/")
	}
	if t := stringField(fm, "type"); t != "" {
		itemType = t
	}

	item := &model.ContentItem{
		Title:       stringField(fm, "title"),
		Date:        l.date(fm, path),
		Type:        itemType,
		Section:     section,
		SourcePath:  path,
		Permalink:   permalink(stringField(fm, "permalink"), rel),
		ContentHTML: template.HTML(html.String()),
		Frontmatter: fm,
		Summary:     firstNonEmpty(stringField(fm, "excerpt"), stringField(fm, "summary")),
		Layout:      stringField(fm, "layout"),
		Tags:        stringsField(fm, "tags"),
		RSSClub:     boolField(fm, "rssClub"),
		Project:     stringField(fm, "project"),
		Link:        stringField(fm, "link"),
	}
	if item.Title == "" {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		item.Title = l.title.String(strings.NewReplacer("-", " ", "_", " ").Replace(name))
	}
	if item.Layout == "" {
		item.Layout = defaultLayouts[item.Type]
	}
	return item, nil
}

func (l *loader) date(fm map[string]interface{}, path string) time.Time {
	switch v := fm["date"].(type) {
	case time.Time:
		return v
	case string:
		if t, ok := ParseDate(v); ok {
			return t
		}
		log.Warn().Str("path", path).Str("date", v).Msg("could not parse date, use YYYY-MM-DD or RFC 3339")
	case nil:
	default:
		log.Warn().Str("path", path).Interface("date", v).Msg("unsupported date value")
	}
	return time.Time{}
}

// ParseDate parses s with the date layouts front matter may use.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// permalink normalises a front matter permalink ("/blog/x/index.html") to a
// directory URL ("/blog/x/"), or derives one from the relative source path.
func permalink(fromMatter, rel string) string {
	p := fromMatter
	if p == "" {
		p = strings.TrimSuffix(rel, filepath.Ext(rel))
	}
	p = strings.TrimSuffix(p, "index.html")
	p = path.Clean("/" + p)
	if p == "/" {
		return p
	}
	return p + "/"
}

// SortNewestFirst orders items by date, newest first, undated items last.
func SortNewestFirst(items []*model.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date.IsZero() {
			return false
		}
		if items[j].Date.IsZero() {
			return true
		}
		return items[i].Date.After(items[j].Date)
	})
}

// ByType groups items by Type, keeping their order.
func ByType(items []*model.ContentItem) map[string][]*model.ContentItem {
	out := make(map[string][]*model.ContentItem)
	for _, item := range items {
		out[item.Type] = append(out[item.Type], item)
	}
	return out
}

func stringField(fm map[string]interface{}, key string) string {
	switch v := fm[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func boolField(fm map[string]interface{}, key string) bool {
	b, _ := fm[key].(bool)
	return b
}

func stringsField(fm map[string]interface{}, key string) []string {
	switch v := fm[key].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s := strings.TrimSpace(fmt.Sprint(e)); s != "" && e != nil {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		if v = strings.TrimSpace(v); v != "" {
			return []string{v}
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
