// Package stats aggregates writing statistics over a corpus of blog posts:
// running averages, a per-year breakdown and a posts-per-day histogram.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// Post is one input record. Posts are never modified by the aggregator.
type Post struct {
	Date time.Time
	Path string
}

// YearStats summarises the posts of a single calendar year.
type YearStats struct {
	Year              int     `json:"year"`
	DaysInYear        int     `json:"daysInYear"`
	PostCount         int     `json:"postCount"`
	WordCount         int     `json:"wordCount"`
	CodeBlockCount    int     `json:"codeBlockCount"`
	AvgDays           float64 `json:"avgDays"`
	AvgCharacterCount float64 `json:"avgCharacterCount"`
	AvgCodeBlockCount float64 `json:"avgCodeBlockCount"`
	AvgParagraphCount float64 `json:"avgParagraphCount"`
	AvgWordCount      float64 `json:"avgWordCount"`
}

// Stats is the aggregate over every post.
type Stats struct {
	AvgDays             float64        `json:"avgDays"`
	AvgCharacterCount   float64        `json:"avgCharacterCount"`
	AvgCodeBlockCount   float64        `json:"avgCodeBlockCount"`
	AvgParagraphCount   float64        `json:"avgParagraphCount"`
	AvgWordCount        float64        `json:"avgWordCount"`
	TotalWordCount      int            `json:"totalWordCount"`
	TotalCodeBlockCount int            `json:"totalCodeBlockCount"`
	PostCount           int            `json:"postCount"`
	FirstPostDate       time.Time      `json:"firstPostDate"`
	LastPostDate        time.Time      `json:"lastPostDate"`
	HighPostCount       int            `json:"highPostCount"`
	Years               []YearStats    `json:"years"`
	PostsByDay          map[string]int `json:"postsByDay"`
}

// Empty returns the result reported when there are no posts.
func Empty() Stats {
	return Stats{
		Years:      []YearStats{},
		PostsByDay: map[string]int{},
	}
}

// DaysInYear applies the proleptic Gregorian leap year rule.
func DaysInYear(year int) int {
	if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
		return 366
	}
	return 365
}

// DayKey is the postsByDay key for t: "{year}-{dayOfYear}".
func DayKey(t time.Time) string {
	return fmt.Sprintf("%d-%d", t.Year(), t.YearDay())
}

// Aggregator folds posts into Stats, measuring each one with its extractor.
type Aggregator struct {
	extract Extractor
}

// NewAggregator returns an aggregator using extract, or FileExtractor when
// extract is nil.
func NewAggregator(extract Extractor) *Aggregator {
	if extract == nil {
		extract = FileExtractor
	}
	return &Aggregator{extract: extract}
}

// Aggregate computes the statistics for posts. The input is sorted by date
// (stable) into a private copy first, so callers may pass posts in any order.
// It never fails: a post that cannot be measured contributes zero metrics.
func (a *Aggregator) Aggregate(posts []Post) Stats {
	if len(posts) == 0 {
		log.Info().Msg("no posts found")
		return Empty()
	}

	sorted := make([]Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	acc := newAccumulator(sorted[0])
	for _, p := range sorted {
		acc.add(p, a.measure(p))
	}
	return acc.result()
}

func (a *Aggregator) measure(p Post) (m Metrics) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("path", p.Path).Interface("panic", r).Msg("measuring post panicked")
			m = Metrics{}
		}
	}()

	var err error
	m, err = a.extract(p)
	if err != nil {
		log.Error().Err(err).Str("path", p.Path).Msg("could not measure post")
		return Metrics{}
	}
	return m
}

// tally holds running sums for one scope (the whole corpus or a year).
type tally struct {
	posts      int
	days       float64
	characters int
	codeBlocks int
	paragraphs int
	words      int
}

func (t *tally) add(m Metrics, days float64) {
	t.posts++
	t.days += days
	t.characters += m.CharacterCount
	t.codeBlocks += m.CodeBlockCount
	t.paragraphs += m.ParagraphCount
	t.words += m.WordCount
}

func (t tally) avg(sum float64) float64 {
	if t.posts == 0 {
		return 0
	}
	return round2(sum / float64(t.posts))
}

type accumulator struct {
	total       tally
	year        tally
	currentYear int
	prev        time.Time
	first       time.Time
	last        time.Time
	high        int
	years       []YearStats
	byDay       map[string]int
}

func newAccumulator(first Post) *accumulator {
	return &accumulator{
		currentYear: first.Date.Year(),
		prev:        first.Date,
		first:       first.Date,
		years:       []YearStats{},
		byDay:       map[string]int{},
	}
}

func (acc *accumulator) add(p Post, m Metrics) {
	acc.byDay[DayKey(p.Date)]++

	days := float64(p.Date.Sub(acc.prev)) / float64(day)
	if y := p.Date.Year(); y != acc.currentYear {
		acc.flushYear()
		acc.currentYear = y
	}
	acc.prev = p.Date
	acc.last = p.Date

	acc.total.add(m, days)
	acc.year.add(m, days)
}

// flushYear closes the current year. The first post of the next year carries
// the gap since the previous post into its own year's day sum.
func (acc *accumulator) flushYear() {
	if acc.year.posts == 0 {
		return
	}
	y := acc.year
	acc.years = append(acc.years, YearStats{
		Year:              acc.currentYear,
		DaysInYear:        DaysInYear(acc.currentYear),
		PostCount:         y.posts,
		WordCount:         y.words,
		CodeBlockCount:    y.codeBlocks,
		AvgDays:           y.avg(y.days),
		AvgCharacterCount: y.avg(float64(y.characters)),
		AvgCodeBlockCount: y.avg(float64(y.codeBlocks)),
		AvgParagraphCount: y.avg(float64(y.paragraphs)),
		AvgWordCount:      y.avg(float64(y.words)),
	})
	if y.posts > acc.high {
		acc.high = y.posts
	}
	acc.year = tally{}
}

func (acc *accumulator) result() Stats {
	acc.flushYear()

	t := acc.total
	return Stats{
		AvgDays:             t.avg(t.days),
		AvgCharacterCount:   t.avg(float64(t.characters)),
		AvgCodeBlockCount:   t.avg(float64(t.codeBlocks)),
		AvgParagraphCount:   t.avg(float64(t.paragraphs)),
		AvgWordCount:        t.avg(float64(t.words)),
		TotalWordCount:      t.words,
		TotalCodeBlockCount: t.codeBlocks,
		PostCount:           t.posts,
		FirstPostDate:       acc.first,
		LastPostDate:        acc.last,
		HighPostCount:       acc.high,
		Years:               acc.years,
		PostsByDay:          acc.byDay,
	}
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
