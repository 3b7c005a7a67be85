package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Bitlatte/quill/internal/model"
	"github.com/Bitlatte/quill/internal/stats"
)

func layouts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestNewRequiresBase(t *testing.T) {
	dir := layouts(t, map[string]string{"home.html": "home"})
	if _, err := New(dir, t.TempDir()); err == nil {
		t.Error("expected an error without base.html")
	}
}

func TestLayoutFor(t *testing.T) {
	dir := layouts(t, map[string]string{
		"base.html":         "base",
		"single.html":       "single",
		"single-links.html": "single links",
		"post.html":         "post",
	})
	r, err := New(dir, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		item model.ContentItem
		want string
	}{
		{model.ContentItem{Layout: "post", Type: "blog"}, "post.html"},
		{model.ContentItem{Layout: "post.html"}, "post.html"},
		{model.ContentItem{Layout: "missing", Type: "links"}, "single-links.html"},
		{model.ContentItem{Type: "notes"}, "single.html"},
	}
	for _, tt := range tests {
		if got := r.LayoutFor(&tt.item); got != tt.want {
			t.Errorf("LayoutFor(%+v) = %q, want %q", tt.item, got, tt.want)
		}
	}

	bare, err := New(layouts(t, map[string]string{"base.html": "base"}), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got := bare.LayoutFor(&model.ContentItem{Type: "blog"}); got != "base.html" {
		t.Errorf("LayoutFor() = %q, want base.html", got)
	}
}

func TestSite(t *testing.T) {
	dir := layouts(t, map[string]string{
		"base.html":            `{{define "head"}}<title>{{.Site.Config.siteTitle}}</title>{{end}}`,
		"partials/footer.html": `{{define "footer"}}<footer>{{.Stats.PostCount}} posts</footer>{{end}}`,
		"post.html":            `{{template "head" .}}<h1>{{.Item.Title}}</h1>{{.Item.ContentHTML}}{{template "footer" .}}`,
		"home.html":            `{{template "head" .}}{{range .Site.Collections.FirstPosts}}<a href="{{.Permalink}}">{{.Title}}</a>{{end}}`,
		"list-posts.html":      `{{.Name}}:{{len .Collection}}`,
		"stats.html":           `avg {{.Stats.AvgWordCount}}`,
	})
	out := t.TempDir()
	r, err := New(dir, out)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	post := &model.ContentItem{Title: "Hello", Layout: "post", Permalink: "/blog/hello/", ContentHTML: "<p>hi</p>"}
	site := &model.SiteData{
		Config:       map[string]interface{}{"siteTitle": "Quill"},
		ContentItems: []*model.ContentItem{post},
		Collections:  &model.Collections{
			Posts:      []*model.ContentItem{post},
			FirstPosts: []*model.ContentItem{post},
			PostStats:  stats.Stats{PostCount: 1, AvgWordCount: 12.5},
		},
	}
	if err := r.Site(site); err != nil {
		t.Fatalf("Site() error = %v", err)
	}

	checks := map[string]string{
		"blog/hello/index.html": "<title>Quill</title><h1>Hello</h1><p>hi</p><footer>1 posts</footer>",
		"index.html":            `<title>Quill</title><a href="/blog/hello/">Hello</a>`,
		"posts/index.html":      "posts:1",
		"stats/index.html":      "avg 12.5",
	}
	for rel, want := range checks {
		if got := read(t, filepath.Join(out, rel)); got != want {
			t.Errorf("%s = %q, want %q", rel, got, want)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "links", "index.html")); !os.IsNotExist(err) {
		t.Error("list page written without a list layout")
	}
}

func TestSiteRejectsPermalinkOutsideOutput(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "site", "public")
	r, err := New(layouts(t, map[string]string{"base.html": "x", "home.html": "home"}), out)
	if err != nil {
		t.Fatal(err)
	}

	for _, permalink := range []string{"/../../escaped/", "../x", ".."} {
		item := &model.ContentItem{Title: "Escape", Permalink: permalink, SourcePath: "blog/escape.md"}
		err := r.Site(&model.SiteData{ContentItems: []*model.ContentItem{item}})
		if err == nil || !strings.Contains(err.Error(), "outside the output directory") {
			t.Errorf("Site() with permalink %q error = %v", permalink, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "escaped")); !os.IsNotExist(err) {
		t.Error("page written outside the output directory")
	}
}

func TestItemPath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "public")
	r := &Renderer{OutputDir: out}
	tests := []struct {
		permalink string
		want      string
	}{
		{"/", filepath.Join(out, "index.html")},
		{"/blog/hello/", filepath.Join(out, "blog", "hello", "index.html")},
		{"/blog/../about/", filepath.Join(out, "about", "index.html")},
		{"/..foo/", filepath.Join(out, "..foo", "index.html")},
	}
	for _, tt := range tests {
		got, err := r.itemPath(tt.permalink)
		if err != nil || got != tt.want {
			t.Errorf("itemPath(%q) = %q, %v; want %q", tt.permalink, got, err, tt.want)
		}
	}
}

func TestSiteRequiresHome(t *testing.T) {
	r, err := New(layouts(t, map[string]string{"base.html": "x"}), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	err = r.Site(&model.SiteData{})
	if err == nil || !strings.Contains(err.Error(), "home.html") {
		t.Errorf("Site() error = %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tags.json")
	if err := WriteJSON(path, []string{"go", "web"}); err != nil {
		t.Fatal(err)
	}
	var got []string
	if err := json.Unmarshal([]byte(read(t, path)), &got); err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "go,web" {
		t.Errorf("tags = %v", got)
	}
}
