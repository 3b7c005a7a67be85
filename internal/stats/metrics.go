package stats

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
)

var (
	reBlankLine = regexp.MustCompile(`(?m)^\s*[\r\n]`)
	reCodeBlock = regexp.MustCompile("(?s)```.*?```")
)

// Metrics are the prose measurements of a single post.
type Metrics struct {
	CharacterCount int `json:"characterCount"`
	CodeBlockCount int `json:"codeBlockCount"`
	ParagraphCount int `json:"paragraphCount"`
	WordCount      int `json:"wordCount"`
}

// Extractor produces the metrics of one post. Implementations may do I/O.
type Extractor func(Post) (Metrics, error)

// FileExtractor reads the post's source file and measures it.
func FileExtractor(p Post) (Metrics, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return Metrics{}, fmt.Errorf("read %s: %w", p.Path, err)
	}
	return Measure(string(data))
}

// Measure strips the front matter, blank lines and fenced code blocks from a
// Markdown document and counts what is left. Code blocks are counted before
// they are removed.
func Measure(text string) (Metrics, error) {
	var matter map[string]interface{}
	body, err := frontmatter.Parse(strings.NewReader(text), &matter)
	if err != nil {
		return Metrics{}, fmt.Errorf("parse front matter: %w", err)
	}

	prose := reBlankLine.ReplaceAllString(string(body), "")
	codeBlocks := len(reCodeBlock.FindAllStringIndex(prose, -1))
	prose = reCodeBlock.ReplaceAllString(prose, "")

	m := countProse(prose)
	m.CodeBlockCount = codeBlocks
	return m, nil
}

// countProse treats every non-empty line as a paragraph.
func countProse(prose string) Metrics {
	var m Metrics
	for _, line := range strings.Split(prose, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m.ParagraphCount++
		m.WordCount += len(strings.Fields(line))
		m.CharacterCount += utf8.RuneCountInString(line)
	}
	return m
}
