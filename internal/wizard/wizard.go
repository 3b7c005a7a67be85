// Package wizard implements the interactive authoring flows: new posts, link
// posts, changelog entries and projects.
package wizard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Bitlatte/quill/internal/fetch"
	"github.com/Bitlatte/quill/internal/images"
	"github.com/Bitlatte/quill/internal/projects"
	"github.com/Bitlatte/quill/internal/prompt"
	"github.com/Bitlatte/quill/internal/scaffold"
)

// Fetcher is the part of fetch.Client the wizard uses.
type Fetcher interface {
	Page(ctx context.Context, url string) (*fetch.Page, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

type Wizard struct {
	Prompter prompt.Prompter
	Fetcher  Fetcher
	Writer   *scaffold.Writer

	ProjectsFile string
	ImageDir     string
	ImageWidth   int

	// Site is offered as the first project in the changelog menu.
	Site projects.Project
	Out  io.Writer
}

const banner = `
  ....................................
  ..........  q u i l l  .............
  ....................................
`

var actions = []prompt.Choice{
	{Name: "Create a new post", Value: "post", Description: "Create a new post"},
	{Name: "Create a new link post", Value: "link", Description: "Create a new link post"},
	{Name: "Create a new changelog entry", Value: "changelog", Description: "Create a new changelog entry"},
	{Name: "Add a project", Value: "project", Description: "Add a project to projects.json"},
}

var kindChoices = []prompt.Choice{
	{Name: "Feature", Value: string(scaffold.KindFeature), Description: "A new feature"},
	{Name: "Fix", Value: string(scaffold.KindFix), Description: "A bug fix"},
	{Name: "Project", Value: string(scaffold.KindProject), Description: "A new project"},
	{Name: "Retired", Value: string(scaffold.KindRetired), Description: "Retire a project"},
}

// Run greets the user and dispatches to the chosen flow.
func (w *Wizard) Run(ctx context.Context) error {
	fmt.Fprint(w.out(), prompt.Banner(banner))
	if w.Site.Link != "" {
		fmt.Fprintf(w.out(), "  %s\n\n", w.Site.Link)
	}

	i, err := w.Prompter.Select("What do you want to do?", actions, 0)
	if err != nil {
		return err
	}
	switch actions[i].Value {
	case "post":
		return w.Post(ctx)
	case "link":
		return w.Link(ctx)
	case "changelog":
		return w.Changelog(ctx)
	case "project":
		return w.Project(ctx)
	}
	return fmt.Errorf("unknown action %q", actions[i].Value)
}

// Post asks for a title and slug and writes an empty post.
func (w *Wizard) Post(ctx context.Context) error {
	title, err := w.required("Post title", "")
	if err != nil {
		return err
	}
	slug, err := w.Prompter.Input("Post slug", scaffold.Slugify(title))
	if err != nil {
		return err
	}

	path, err := w.Writer.Post(title, slug)
	if err != nil {
		return err
	}
	fmt.Fprintf(w.out(), "Created %s\n", path)
	return nil
}

// Link asks for a URL, prefills title and excerpt from the page and writes a
// link post. A page that cannot be fetched only loses the prefill.
func (w *Wizard) Link(ctx context.Context) error {
	url, err := w.required("Link", "")
	if err != nil {
		return err
	}

	fmt.Fprintln(w.out(), "Fetching link title...")
	page, err := w.Fetcher.Page(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("could not fetch link metadata")
		page = &fetch.Page{URL: url}
	}

	title, err := w.required("Link title", page.Title)
	if err != nil {
		return err
	}
	slug, err := w.Prompter.Input("Post slug", scaffold.Slugify(title))
	if err != nil {
		return err
	}

	path, err := w.Writer.Link(scaffold.LinkPost{URL: url, Title: title, Slug: slug, Excerpt: page.Excerpt})
	if err != nil {
		return err
	}
	fmt.Fprintf(w.out(), "Created %s\n", path)
	return nil
}

// Changelog records a changelog line for one of the registered projects.
func (w *Wizard) Changelog(ctx context.Context) error {
	reg, err := projects.Load(w.ProjectsFile)
	if err != nil {
		return err
	}
	all := reg.Choices(w.Site)
	choices := make([]prompt.Choice, len(all))
	for i, p := range all {
		choices[i] = prompt.Choice{Name: p.Title, Value: p.Link, Description: p.Description}
	}

	pi, err := w.Prompter.Select("Select Project", choices, 15)
	if err != nil {
		return err
	}
	ki, err := w.Prompter.Select("Select Type", kindChoices, 0)
	if err != nil {
		return err
	}
	message, err := w.Prompter.Input("Changelog Message", "")
	if err != nil {
		return err
	}

	entry := scaffold.ChangelogEntry{
		Title:   all[pi].Title,
		Link:    all[pi].Link,
		Kind:    scaffold.Kind(kindChoices[ki].Value),
		Message: message,
	}
	path, created, err := w.Writer.Changelog(entry)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(w.out(), "Created %s\n", path)
	} else {
		fmt.Fprintf(w.out(), "Updated %s\n", path)
	}
	return nil
}

// Project adds a project to the registry, optionally with an image that is
// downloaded and resized.
func (w *Wizard) Project(ctx context.Context) error {
	reg, err := projects.Load(w.ProjectsFile)
	if err != nil {
		return err
	}

	title, err := w.required("Project title", "")
	if err != nil {
		return err
	}
	link, err := w.required("Project link", "")
	if err != nil {
		return err
	}
	description, err := w.Prompter.Input("Description", "")
	if err != nil {
		return err
	}

	groups := make([]prompt.Choice, len(projects.Groups))
	for i, g := range projects.Groups {
		groups[i] = prompt.Choice{Name: g, Value: g}
	}
	gi, err := w.Prompter.Select("Group", groups, 0)
	if err != nil {
		return err
	}
	imageURL, err := w.Prompter.Input("Image URL (optional)", "")
	if err != nil {
		return err
	}

	p := projects.Project{Title: title, Link: link, Description: strings.TrimSpace(description)}
	if imageURL = strings.TrimSpace(imageURL); imageURL != "" {
		image, err := w.projectImage(ctx, imageURL, scaffold.Slugify(title))
		if err != nil {
			log.Warn().Err(err).Str("url", imageURL).Msg("skipping project image")
		} else {
			p.Image = image
		}
	}

	if err := reg.Add(groups[gi].Value, p); err != nil {
		return err
	}
	if err := reg.Save(w.ProjectsFile); err != nil {
		return err
	}
	fmt.Fprintf(w.out(), "Added %s to %s\n", title, groups[gi].Value)
	return nil
}

func (w *Wizard) projectImage(ctx context.Context, url, slug string) (string, error) {
	data, err := w.Fetcher.Download(ctx, url)
	if err != nil {
		return "", err
	}
	resized, info, err := images.Resize(bytes.NewReader(data), w.ImageWidth)
	if err != nil {
		return "", err
	}
	path, err := images.Save(w.ImageDir, slug, resized)
	if err != nil {
		return "", err
	}
	log.Debug().Str("path", path).Int("width", info.Width).Int("height", info.Height).Int("bytes", info.Size).Msg("saved project image")
	return SitePath(path), nil
}

// SitePath turns a path below the source tree into the URL path it is
// published at: src/assets/img/x.jpg becomes /assets/img/x.jpg.
func SitePath(path string) string {
	p := filepath.ToSlash(filepath.Clean(path))
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "src/")
	return "/" + strings.TrimPrefix(p, "/")
}

// required keeps asking until a non-empty answer is given.
func (w *Wizard) required(label, def string) (string, error) {
	for {
		v, err := w.Prompter.Input(label, def)
		if err != nil {
			return "", err
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
		fmt.Fprintf(w.out(), "%s is required\n", label)
	}
}

func (w *Wizard) out() io.Writer {
	if w.Out == nil {
		return io.Discard
	}
	return w.Out
}

// IsAbort reports whether err means the user left the wizard.
func IsAbort(err error) bool {
	return errors.Is(err, prompt.ErrAborted)
}
