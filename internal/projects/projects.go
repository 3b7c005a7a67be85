// Package projects reads and writes the project registry (projects.json)
// that the site lists and the changelog wizard offers.
package projects

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// ErrUnknownGroup is returned by Add for a group the registry doesn't have.
var ErrUnknownGroup = errors.New("unknown project group")

// Group names in the order they are listed.
const (
	GroupCurrent  = "current"
	GroupPodcasts = "podcasts"
	GroupProfile  = "profile"
	GroupStJude   = "stjude"
)

// Groups lists every registry group in display order.
var Groups = []string{GroupCurrent, GroupPodcasts, GroupProfile, GroupStJude}

type Project struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Registry is the parsed projects.json. Save writes back what Load read in
// file order, including fields Project doesn't model and groups outside Groups.
type Registry struct {
	Current  []Project
	Podcasts []Project
	Profile  []Project
	StJude   []Project

	keys  []string
	raw   map[string][]json.RawMessage
	extra map[string]json.RawMessage
}

// Load reads the registry at path. A missing file yields an empty registry.
func Load(path string) (*Registry, error) {
	r := &Registry{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading projects: %w", err)
	}
	if err := r.decode(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return r, nil
}

func (r *Registry) decode(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return errors.New("registry is not a JSON object")
	}
	r.raw = make(map[string][]json.RawMessage)
	r.extra = make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("group %q: %w", key, err)
		}
		if _, seen := r.raw[key]; !seen {
			if _, seen := r.extra[key]; !seen {
				r.keys = append(r.keys, key)
			}
		}

		g, err := r.group(key)
		if err != nil {
			r.extra[key] = value
			continue
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(value, &entries); err != nil {
			return fmt.Errorf("group %q: %w", key, err)
		}
		*g = make([]Project, len(entries))
		for i, e := range entries {
			if err := json.Unmarshal(e, &(*g)[i]); err != nil {
				return fmt.Errorf("group %q entry %d: %w", key, i, err)
			}
		}
		r.raw[key] = entries
	}
	_, err = dec.Token()
	return err
}

// Save writes the registry to path as indented JSON. Empty groups are
// written as [].
func (r *Registry) Save(path string) error {
	data, err := r.encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func (r *Registry) encode() ([]byte, error) {
	keys := append([]string(nil), r.keys...)
	for _, name := range Groups {
		if !slices.Contains(keys, name) {
			keys = append(keys, name)
		}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')

		value, ok := r.extra[key]
		if !ok {
			if value, err = r.encodeGroup(key); err != nil {
				return nil, err
			}
		}
		buf.Write(value)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// encodeGroup writes an entry read from disk as it was read unless its
// Project value has changed since. Added projects are marshaled.
func (r *Registry) encodeGroup(name string) (json.RawMessage, error) {
	g, err := r.group(name)
	if err != nil {
		return nil, err
	}
	read := r.raw[name]
	out := make([]json.RawMessage, 0, len(*g))
	for i, p := range *g {
		if i < len(read) {
			var was Project
			if json.Unmarshal(read[i], &was) == nil && was == p {
				out = append(out, read[i])
				continue
			}
		}
		data, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return json.Marshal(out)
}

func (r *Registry) group(name string) (*[]Project, error) {
	switch name {
	case GroupCurrent:
		return &r.Current, nil
	case GroupPodcasts:
		return &r.Podcasts, nil
	case GroupProfile:
		return &r.Profile, nil
	case GroupStJude:
		return &r.StJude, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
}

// Add appends p to group. A project whose link is already in the group is
// rejected.
func (r *Registry) Add(group string, p Project) error {
	g, err := r.group(group)
	if err != nil {
		return err
	}
	if p.Title == "" || p.Link == "" {
		return errors.New("project needs a title and a link")
	}
	for _, existing := range *g {
		if existing.Link == p.Link {
			return fmt.Errorf("project %q already in %s", p.Link, group)
		}
	}
	*g = append(*g, p)
	return nil
}

// All returns every project, group by group.
func (r *Registry) All() []Project {
	all := make([]Project, 0, len(r.Current)+len(r.Podcasts)+len(r.Profile)+len(r.StJude))
	all = append(all, r.Current...)
	all = append(all, r.Podcasts...)
	all = append(all, r.Profile...)
	return append(all, r.StJude...)
}

// Choices is the site itself followed by every registered project.
func (r *Registry) Choices(self Project) []Project {
	return append([]Project{self}, r.All()...)
}
