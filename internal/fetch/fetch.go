// Package fetch retrieves remote pages and files for the authoring wizard.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// MaxDownloadSize caps the bytes Download will read.
const MaxDownloadSize = 10 << 20

const defaultUserAgent = "quill/1.0 (+https://github.com/Bitlatte/quill)"

type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// Page is the metadata extracted from an HTML document.
type Page struct {
	URL         string
	Title       string
	Description string
	// Excerpt is the first paragraph of the main content as Markdown.
	Excerpt string
}

type Client struct {
	HTTP      *http.Client
	UserAgent string
}

// New returns a Client whose requests time out after timeout.
func New(timeout time.Duration) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: defaultUserAgent,
	}
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}
	return resp, nil
}

// Page fetches url and extracts its title, description and excerpt.
func (c *Client) Page(ctx context.Context, url string) (*Page, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, MaxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}

	page := &Page{
		URL:         url,
		Title:       firstNonEmpty(doc.Find("title").First().Text(), meta(doc, "property", "og:title")),
		Description: firstNonEmpty(meta(doc, "name", "description"), meta(doc, "property", "og:description")),
	}

	excerpt, err := firstParagraph(doc, url)
	if err != nil {
		return nil, err
	}
	page.Excerpt = excerpt
	return page, nil
}

func firstParagraph(doc *goquery.Document, url string) (string, error) {
	for _, scope := range []string{"article", "main", "body"} {
		var found *goquery.Selection
		doc.Find(scope + " p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if strings.TrimSpace(s.Text()) != "" {
				found = s
				return false
			}
			return true
		})
		if found == nil {
			continue
		}

		html, err := goquery.OuterHtml(found)
		if err != nil {
			return "", err
		}
		markdown, err := md.NewConverter(domainOf(url), true, nil).ConvertString(html)
		if err != nil {
			return "", fmt.Errorf("converting HTML to markdown: %w", err)
		}
		return strings.TrimSpace(markdown), nil
	}
	return "", nil
}

// Download returns the body of url. Bodies larger than MaxDownloadSize are
// rejected.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(data) > MaxDownloadSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", url, MaxDownloadSize)
	}
	return data, nil
}

func meta(doc *goquery.Document, attr, value string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[%s=%q]`, attr, value)).First().Attr("content")
	return content
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// domainOf returns scheme and host of url, used to absolutise relative links.
func domainOf(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return ""
	}
	host, _, _ := strings.Cut(rest, "/")
	return scheme + "://" + host
}
