package model

import "github.com/Bitlatte/quill/internal/stats"

// PageData is the value every layout is executed with. Item is set for
// single pages, Collection and Name for listing pages. Stats holds the
// writing statistics and is always present.
type PageData struct {
	Site       *SiteData
	Item       *ContentItem
	Name       string
	Collection []*ContentItem
	Stats      stats.Stats
}
