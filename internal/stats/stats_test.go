package stats

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// fixedExtractor returns the same metrics for every post.
func fixedExtractor(m Metrics) Extractor {
	return func(Post) (Metrics, error) { return m, nil }
}

var typical = Metrics{CharacterCount: 500, WordCount: 100, ParagraphCount: 2}

func TestDaysInYear(t *testing.T) {
	tests := []struct {
		year int
		want int
	}{
		{2000, 366},
		{1900, 365},
		{2024, 366},
		{2023, 365},
		{2100, 365},
		{2400, 366},
	}
	for _, tt := range tests {
		if got := DaysInYear(tt.year); got != tt.want {
			t.Errorf("DaysInYear(%d) = %d, want %d", tt.year, got, tt.want)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	a := NewAggregator(fixedExtractor(typical))

	got := a.Aggregate(nil)
	if !reflect.DeepEqual(got, Empty()) {
		t.Errorf("Aggregate(nil) = %+v, want %+v", got, Empty())
	}
	if got.PostCount != 0 || got.HighPostCount != 0 || len(got.Years) != 0 {
		t.Errorf("expected zero-valued stats, got %+v", got)
	}
}

func TestAggregateThreePosts(t *testing.T) {
	posts := []Post{
		{Date: date("2023-01-01"), Path: "a.md"},
		{Date: date("2023-01-11"), Path: "b.md"},
		{Date: date("2024-01-01"), Path: "c.md"},
	}
	got := NewAggregator(fixedExtractor(typical)).Aggregate(posts)

	if got.PostCount != 3 {
		t.Errorf("PostCount = %d, want 3", got.PostCount)
	}
	if got.TotalWordCount != 300 {
		t.Errorf("TotalWordCount = %d, want 300", got.TotalWordCount)
	}
	if got.AvgWordCount != 100 {
		t.Errorf("AvgWordCount = %v, want 100", got.AvgWordCount)
	}
	if got.AvgCharacterCount != 500 {
		t.Errorf("AvgCharacterCount = %v, want 500", got.AvgCharacterCount)
	}
	// (0 + 10 + 355) / 3
	if got.AvgDays != 121.67 {
		t.Errorf("AvgDays = %v, want 121.67", got.AvgDays)
	}
	if len(got.Years) != 2 {
		t.Fatalf("len(Years) = %d, want 2", len(got.Years))
	}

	y2023 := got.Years[0]
	if y2023.Year != 2023 || y2023.PostCount != 2 || y2023.AvgDays != 5 {
		t.Errorf("2023 = %+v, want year 2023 with 2 posts and avgDays 5", y2023)
	}
	if y2023.DaysInYear != 365 {
		t.Errorf("2023 DaysInYear = %d, want 365", y2023.DaysInYear)
	}
	if y2023.WordCount != 200 || y2023.AvgParagraphCount != 2 {
		t.Errorf("2023 = %+v, want 200 words and 2 paragraphs per post", y2023)
	}

	y2024 := got.Years[1]
	if y2024.Year != 2024 || y2024.PostCount != 1 || y2024.DaysInYear != 366 {
		t.Errorf("2024 = %+v, want year 2024 with 1 post in a leap year", y2024)
	}
	if y2024.AvgDays != 355 {
		t.Errorf("2024 AvgDays = %v, want 355 (gap carried from 2023)", y2024.AvgDays)
	}

	if got.HighPostCount != 2 {
		t.Errorf("HighPostCount = %d, want 2", got.HighPostCount)
	}
	if !got.FirstPostDate.Equal(date("2023-01-01")) || !got.LastPostDate.Equal(date("2024-01-01")) {
		t.Errorf("first/last = %v/%v", got.FirstPostDate, got.LastPostDate)
	}
}

func TestAggregateYearInvariants(t *testing.T) {
	posts := []Post{
		{Date: date("2019-03-01")},
		{Date: date("2020-02-29")},
		{Date: date("2020-05-01")},
		{Date: date("2020-05-02")},
		{Date: date("2022-12-31")},
		{Date: date("2023-01-01")},
		{Date: date("2023-06-15")},
	}
	got := NewAggregator(fixedExtractor(typical)).Aggregate(posts)

	sum, high := 0, 0
	for _, y := range got.Years {
		sum += y.PostCount
		if y.PostCount > high {
			high = y.PostCount
		}
	}
	if sum != got.PostCount {
		t.Errorf("sum of year post counts = %d, want %d", sum, got.PostCount)
	}
	if high != got.HighPostCount {
		t.Errorf("HighPostCount = %d, want %d", got.HighPostCount, high)
	}

	var years []int
	for _, y := range got.Years {
		years = append(years, y.Year)
	}
	if want := []int{2019, 2020, 2022, 2023}; !reflect.DeepEqual(years, want) {
		t.Errorf("years = %v, want %v", years, want)
	}
}

func TestAggregateSingleFinalYearIsFlushed(t *testing.T) {
	posts := []Post{{Date: date("2021-07-04")}}
	got := NewAggregator(fixedExtractor(typical)).Aggregate(posts)

	if len(got.Years) != 1 || got.Years[0].PostCount != 1 {
		t.Fatalf("Years = %+v, want one year with one post", got.Years)
	}
	if got.HighPostCount != 1 {
		t.Errorf("HighPostCount = %d, want 1", got.HighPostCount)
	}
	if got.AvgDays != 0 {
		t.Errorf("AvgDays = %v, want 0", got.AvgDays)
	}
}

func TestAggregateSortsCopyOfInput(t *testing.T) {
	posts := []Post{
		{Date: date("2024-01-01"), Path: "c.md"},
		{Date: date("2023-01-01"), Path: "a.md"},
		{Date: date("2023-01-11"), Path: "b.md"},
	}
	original := make([]Post, len(posts))
	copy(original, posts)

	got := NewAggregator(fixedExtractor(typical)).Aggregate(posts)

	if !reflect.DeepEqual(posts, original) {
		t.Errorf("input was modified: %v", posts)
	}
	if got.Years[0].Year != 2023 || got.Years[0].AvgDays != 5 {
		t.Errorf("unsorted input gave Years[0] = %+v", got.Years[0])
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	posts := []Post{
		{Date: date("2022-01-01")},
		{Date: date("2022-01-03")},
		{Date: date("2023-04-05")},
	}
	a := NewAggregator(fixedExtractor(typical))

	first := a.Aggregate(posts)
	second := a.Aggregate(posts)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestAggregatePostsByDay(t *testing.T) {
	morning := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 2, 1, 20, 0, 0, 0, time.UTC)
	posts := []Post{{Date: morning}, {Date: evening}, {Date: date("2024-12-31")}}

	got := NewAggregator(fixedExtractor(typical)).Aggregate(posts)

	if len(got.PostsByDay) != 2 {
		t.Errorf("PostsByDay = %v, want 2 keys", got.PostsByDay)
	}
	if got.PostsByDay["2024-32"] != 2 {
		t.Errorf(`PostsByDay["2024-32"] = %d, want 2`, got.PostsByDay["2024-32"])
	}
	if got.PostsByDay["2024-366"] != 1 {
		t.Errorf(`PostsByDay["2024-366"] = %d, want 1`, got.PostsByDay["2024-366"])
	}
}

func TestAggregateFractionalDays(t *testing.T) {
	posts := []Post{
		{Date: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, 2, 1, 20, 0, 0, 0, time.UTC)},
	}

	got := NewAggregator(fixedExtractor(typical)).Aggregate(posts)

	// half a day over two posts
	if got.AvgDays != 0.25 {
		t.Errorf("AvgDays = %v, want 0.25", got.AvgDays)
	}
}

func TestAggregateDegradesFailedExtraction(t *testing.T) {
	extract := func(p Post) (Metrics, error) {
		switch p.Path {
		case "broken.md":
			return Metrics{}, errors.New("unreadable")
		case "panics.md":
			panic("boom")
		}
		return typical, nil
	}
	posts := []Post{
		{Date: date("2023-01-01"), Path: "ok.md"},
		{Date: date("2023-01-02"), Path: "broken.md"},
		{Date: date("2023-01-03"), Path: "panics.md"},
		{Date: date("2023-01-04"), Path: "ok.md"},
	}

	got := NewAggregator(extract).Aggregate(posts)

	if got.PostCount != 4 {
		t.Errorf("PostCount = %d, want 4", got.PostCount)
	}
	if got.TotalWordCount != 200 {
		t.Errorf("TotalWordCount = %d, want 200", got.TotalWordCount)
	}
	if got.AvgWordCount != 50 {
		t.Errorf("AvgWordCount = %v, want 50", got.AvgWordCount)
	}
}

func TestAggregateProseFreePosts(t *testing.T) {
	codeOnly := Metrics{CodeBlockCount: 1}
	posts := []Post{{Date: date("2023-01-01")}, {Date: date("2023-02-01")}}

	got := NewAggregator(fixedExtractor(codeOnly)).Aggregate(posts)

	if got.AvgWordCount != 0 || got.AvgCharacterCount != 0 {
		t.Errorf("averages = %v/%v, want 0", got.AvgWordCount, got.AvgCharacterCount)
	}
	if got.AvgCodeBlockCount != 1 || got.TotalCodeBlockCount != 2 {
		t.Errorf("code blocks = %v/%d, want 1/2", got.AvgCodeBlockCount, got.TotalCodeBlockCount)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.005, 1.01},
		{2.344, 2.34},
		{2.345, 2.35},
		{-2.345, -2.35},
		{10.0 / 3.0, 3.33},
		{0, 0},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
