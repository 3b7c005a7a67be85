// Package collections builds the named listings (posts, links, changelog,
// almanac, tags, stats) from the loaded content.
package collections

import (
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Bitlatte/quill/internal/content"
	"github.com/Bitlatte/quill/internal/model"
	"github.com/Bitlatte/quill/internal/stats"
)

const (
	firstPostsCount = 5
	// Outside production the almanac is cut to this many entries.
	almanacPreview = 10
)

// feedCutoff excludes the earliest archive posts from the blog feed.
var feedCutoff = time.Date(2012, 12, 12, 0, 0, 0, 0, time.UTC)

var everythingLayouts = map[string]bool{
	"post":      true,
	"link":      true,
	"almanac":   true,
	"changelog": true,
	"note":      true,
}

type Options struct {
	// Production builds use every year; otherwise section collections only
	// hold the current year.
	Production bool
	Now        time.Time
	// Extract measures a blog post for PostStats; nil reads the source file.
	Extract stats.Extractor
}

// Build computes every collection from items. items is not modified.
func Build(items []*model.ContentItem, opts Options) *model.Collections {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	sorted := make([]*model.ContentItem, len(items))
	copy(sorted, items)
	content.SortNewestFirst(sorted)

	b := builder{items: sorted, opts: opts}
	blog := b.section("blog")

	c := &model.Collections{
		Everything:     filter(sorted, func(it *model.ContentItem) bool { return everythingLayouts[it.Layout] }),
		Posts:          filter(blog, func(it *model.ContentItem) bool { return !it.RSSClub }),
		PostsForFeed:   filter(blog, func(it *model.ContentItem) bool { return it.Date.After(feedCutoff) }),
		Links:          b.section("links"),
		Changelog:      b.section("changelog"),
		Notes:          b.section("notes"),
		Almanac:        filter(sorted, func(it *model.ContentItem) bool { return it.InSection("almanac") }),
		AlmanacMovies:  b.section("almanac/movies"),
		AlmanacTV:      b.section("almanac/tv"),
		AlmanacBooks:   b.section("almanac/books"),
		AlmanacGames:   b.section("almanac/games"),
		BlogTags:       tags(blog),
		PostsByProject: byProject(blog),
		PostStats:      postStats(blog, opts.Extract),
	}

	c.FirstPosts = head(c.Posts, firstPostsCount)
	if !opts.Production {
		c.Almanac = head(c.Almanac, almanacPreview)
	}

	startOfDay := time.Date(opts.Now.Year(), opts.Now.Month(), opts.Now.Day(), 0, 0, 0, 0, opts.Now.Location())
	c.ChangelogForFeed = filter(c.Changelog, func(it *model.ContentItem) bool { return it.Date.Before(startOfDay) })

	log.Debug().
		Int("posts", len(c.Posts)).
		Int("links", len(c.Links)).
		Int("changelog", len(c.Changelog)).
		Int("almanac", len(c.Almanac)).
		Bool("production", opts.Production).
		Msg("collections built")
	return c
}

type builder struct {
	items []*model.ContentItem
	opts  Options
}

// section returns the items under dir, limited to dir/<current year> outside
// production.
func (b builder) section(dir string) []*model.ContentItem {
	if !b.opts.Production {
		dir += "/" + strconv.Itoa(b.opts.Now.Year())
	}
	return filter(b.items, func(it *model.ContentItem) bool { return it.InSection(dir) })
}

func filter(items []*model.ContentItem, keep func(*model.ContentItem) bool) []*model.ContentItem {
	out := []*model.ContentItem{}
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func head(items []*model.ContentItem, n int) []*model.ContentItem {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// tags returns the distinct tags of posts in order of first appearance.
func tags(posts []*model.ContentItem) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range posts {
		for _, tag := range p.Tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	return out
}

// byProject groups posts by their project, oldest first. Undated posts go
// last.
func byProject(posts []*model.ContentItem) map[string][]*model.ContentItem {
	out := make(map[string][]*model.ContentItem)
	for _, p := range posts {
		if p.Project != "" {
			out[p.Project] = append(out[p.Project], p)
		}
	}
	for _, group := range out {
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Date.IsZero() {
				return false
			}
			if group[j].Date.IsZero() {
				return true
			}
			return group[i].Date.Before(group[j].Date)
		})
	}
	return out
}

func postStats(posts []*model.ContentItem, extract stats.Extractor) stats.Stats {
	in := make([]stats.Post, 0, len(posts))
	for _, p := range posts {
		if p.Date.IsZero() {
			log.Warn().Str("path", p.SourcePath).Msg("post has no date, left out of stats")
			continue
		}
		in = append(in, stats.Post{Date: p.Date, Path: p.SourcePath})
	}
	return stats.NewAggregator(extract).Aggregate(in)
}
