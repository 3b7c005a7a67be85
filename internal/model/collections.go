package model

import "github.com/Bitlatte/quill/internal/stats"

// Collections are the named listings layouts iterate over. Item slices are
// newest first unless noted.
type Collections struct {
	Everything       []*ContentItem
	Posts            []*ContentItem
	FirstPosts       []*ContentItem
	PostsForFeed     []*ContentItem
	Links            []*ContentItem
	Changelog        []*ContentItem
	ChangelogForFeed []*ContentItem
	Notes            []*ContentItem
	Almanac          []*ContentItem
	AlmanacMovies    []*ContentItem
	AlmanacTV        []*ContentItem
	AlmanacBooks     []*ContentItem
	AlmanacGames     []*ContentItem

	BlogTags []string
	// PostsByProject lists blog posts per project, oldest first.
	PostsByProject map[string][]*ContentItem
	PostStats      stats.Stats
}

// Lists returns the item collections by name, as used for list-<name>.html.
func (c *Collections) Lists() map[string][]*ContentItem {
	return map[string][]*ContentItem{
		"everything":       c.Everything,
		"posts":            c.Posts,
		"firstPosts":       c.FirstPosts,
		"postsForFeed":     c.PostsForFeed,
		"links":            c.Links,
		"changelog":        c.Changelog,
		"changelogForFeed": c.ChangelogForFeed,
		"notes":            c.Notes,
		"almanac":          c.Almanac,
		"almanacMovies":    c.AlmanacMovies,
		"almanacTV":        c.AlmanacTV,
		"almanacBooks":     c.AlmanacBooks,
		"almanacGames":     c.AlmanacGames,
	}
}
