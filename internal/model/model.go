package model

import (
	"html/template"
	"strings"
	"time"
)

// ContentItem represents a single Markdown file of the corpus (post, link,
// changelog entry, note, almanac entry).
type ContentItem struct {
	Title       string
	Date        time.Time
	Type        string // first path segment under the content dir, or front matter "type"
	Section     string // slash-separated directory relative to the content dir, e.g. "blog/2024"
	SourcePath  string
	Permalink   string
	ContentHTML template.HTML
	Frontmatter map[string]interface{}
	Summary     string
	Layout      string
	Tags        []string
	RSSClub     bool
	Project     string
	Link        string
}

// InSection reports whether the item lives in section or one of its
// sub-directories.
func (c *ContentItem) InSection(section string) bool {
	return c.Section == section || strings.HasPrefix(c.Section, section+"/")
}

// SiteData holds all site-wide data, including configuration and content.
type SiteData struct {
	Config       map[string]interface{}
	ContentItems []*ContentItem
	// ContentByType groups items by Type, each group sorted newest first.
	ContentByType map[string][]*ContentItem
	Collections   *Collections
}
