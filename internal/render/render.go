// Package render executes the html/template layouts for every page of the
// site and writes the results to the output directory.
package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Bitlatte/quill/internal/model"
)

const (
	baseLayout   = "base.html"
	homeLayout   = "home.html"
	singleLayout = "single.html"
	statsLayout  = "stats.html"
)

type Renderer struct {
	OutputDir string
	templates *template.Template
}

// New parses the layouts in layoutsDir: base.html and partials/ first, then
// the remaining layouts, home.html last.
func New(layoutsDir, outputDir string) (*Renderer, error) {
	var layoutFiles []string
	err := filepath.WalkDir(layoutsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			layoutFiles = append(layoutFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find layout files in '%s': %w", layoutsDir, err)
	}

	var basePath, homePath string
	var partials, others []string
	partialsDir := filepath.Join(layoutsDir, "partials")
	for _, f := range layoutFiles {
		dir := filepath.Dir(f)
		switch {
		case filepath.Base(f) == baseLayout && dir == filepath.Clean(layoutsDir):
			basePath = f
		case filepath.Base(f) == homeLayout && dir == filepath.Clean(layoutsDir):
			homePath = f
		case dir == partialsDir || strings.HasPrefix(dir, partialsDir+string(filepath.Separator)):
			partials = append(partials, f)
		default:
			others = append(others, f)
		}
	}
	if basePath == "" {
		return nil, fmt.Errorf("%s not found directly in layouts directory '%s'", baseLayout, layoutsDir)
	}

	templates, err := template.ParseFiles(append([]string{basePath}, partials...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base.html and partials: %w", err)
	}
	if len(others) > 0 {
		if templates, err = templates.ParseFiles(others...); err != nil {
			return nil, fmt.Errorf("failed to parse page layouts: %w", err)
		}
	}
	if homePath != "" {
		if templates, err = templates.ParseFiles(homePath); err != nil {
			return nil, fmt.Errorf("failed to parse home.html: %w", err)
		}
	}

	log.Debug().Int("layouts", len(layoutFiles)).Str("dir", layoutsDir).Msg("layouts parsed")
	return &Renderer{OutputDir: outputDir, templates: templates}, nil
}

// Has reports whether a layout called name was parsed.
func (r *Renderer) Has(name string) bool {
	return r.templates.Lookup(name) != nil
}

// LayoutFor picks the layout for item: its front matter layout, then
// single-<type>.html, then single.html, then base.html.
func (r *Renderer) LayoutFor(item *model.ContentItem) string {
	if item.Layout != "" {
		name := item.Layout
		if !strings.HasSuffix(name, ".html") {
			name += ".html"
		}
		if r.Has(name) {
			return name
		}
		log.Debug().Str("layout", name).Str("item", item.SourcePath).Msg("front matter layout not found, falling back")
	}
	if name := "single-" + item.Type + ".html"; r.Has(name) {
		return name
	}
	if r.Has(singleLayout) {
		return singleLayout
	}
	return baseLayout
}

// Site writes every item page, the home page, the list pages that have a
// list-<collection>.html layout and the stats page.
func (r *Renderer) Site(site *model.SiteData) error {
	data := func(item *model.ContentItem, name string, collection []*model.ContentItem) model.PageData {
		pd := model.PageData{Site: site, Item: item, Name: name, Collection: collection}
		if site.Collections != nil {
			pd.Stats = site.Collections.PostStats
		}
		return pd
	}

	for _, item := range site.ContentItems {
		layout := r.LayoutFor(item)
		path, err := r.itemPath(item.Permalink)
		if err != nil {
			return fmt.Errorf("rendering '%s': %w", item.SourcePath, err)
		}
		if err := r.page(path, layout, data(item, "", nil)); err != nil {
			return fmt.Errorf("rendering '%s': %w", item.SourcePath, err)
		}
	}

	if !r.Has(homeLayout) {
		return fmt.Errorf("homepage layout '%s' not found. Please create it in the layouts directory", homeLayout)
	}
	if err := r.page(filepath.Join(r.OutputDir, "index.html"), homeLayout, data(nil, "home", nil)); err != nil {
		return err
	}

	if site.Collections != nil {
		lists := site.Collections.Lists()
		names := make([]string, 0, len(lists))
		for name := range lists {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			layout := "list-" + name + ".html"
			if !r.Has(layout) {
				continue
			}
			path := filepath.Join(r.OutputDir, name, "index.html")
			if err := r.page(path, layout, data(nil, name, lists[name])); err != nil {
				return err
			}
		}
	}

	if r.Has(statsLayout) {
		if err := r.page(filepath.Join(r.OutputDir, "stats", "index.html"), statsLayout, data(nil, "stats", nil)); err != nil {
			return err
		}
	}
	return nil
}

// itemPath maps a permalink to its index.html under OutputDir. Permalinks
// that resolve outside OutputDir are rejected.
func (r *Renderer) itemPath(permalink string) (string, error) {
	path := filepath.Join(r.OutputDir, filepath.FromSlash(permalink), "index.html")
	rel, err := filepath.Rel(r.OutputDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("permalink %q is outside the output directory", permalink)
	}
	return path, nil
}

func (r *Renderer) page(path, layout string, data model.PageData) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file '%s': %w", path, err)
	}
	if err := r.templates.ExecuteTemplate(f, layout, data); err != nil {
		f.Close()
		return fmt.Errorf("failed to execute template '%s' for '%s': %w", layout, path, err)
	}
	log.Debug().Str("path", path).Str("layout", layout).Msg("page written")
	return f.Close()
}

// WriteJSON writes v as indented JSON to path, creating parent directories.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
