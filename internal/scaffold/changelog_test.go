package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestChangelogEntryLine(t *testing.T) {
	tests := []struct {
		name  string
		entry ChangelogEntry
		want  string
	}{
		{
			name:  "with message",
			entry: ChangelogEntry{Title: "Quill", Link: "https://example.com/quill", Kind: KindFeature, Message: "Added stats page"},
			want:  "- [Quill](https://example.com/quill) [feature] Added stats page",
		},
		{
			name:  "without message",
			entry: ChangelogEntry{Title: "Old", Link: "/old", Kind: KindRetired},
			want:  "- [Old](/old) [retired]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Line(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriterChangelog(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{ContentDir: dir, Now: fixedClock("2024-06-01T15:04:05Z")}

	first := ChangelogEntry{Title: "A", Link: "/a", Kind: KindFix, Message: "one"}
	path, created, err := w.Changelog(first)
	if err != nil {
		t.Fatalf("Changelog() error = %v", err)
	}
	if !created {
		t.Error("first entry should create the file")
	}
	if want := filepath.Join(dir, "changelog", "2024", "2024-06-01.md"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if path != w.ChangelogPath(w.Now()) {
		t.Errorf("ChangelogPath() disagrees with Changelog()")
	}

	second := ChangelogEntry{Title: "B", Link: "/b", Kind: KindProject, Message: "two"}
	if _, created, err = w.Changelog(second); err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second entry should append")
	}

	data, _ := os.ReadFile(path)
	s := string(data)
	for _, want := range []string{
		"title: Project Changelog 2024-06-01",
		"permalink: /log/2024-06-01/index.html",
		"date: 2024-06-01T00:00:00.000Z\n",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in:\n%s", want, s)
		}
	}
	if !strings.HasSuffix(s, first.Line()+"\n"+second.Line()+"\n") {
		t.Errorf("entries not appended in order:\n%s", s)
	}
}

func TestWriterChangelogAppendsAfterUnterminatedLine(t *testing.T) {
	w := &Writer{ContentDir: t.TempDir(), Now: fixedClock("2024-06-01T08:00:00Z")}
	path := w.ChangelogPath(w.Now())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("---\ntitle: x\n---\n\n- existing"), 0644); err != nil {
		t.Fatal(err)
	}

	entry := ChangelogEntry{Title: "C", Link: "/c", Kind: KindFeature}
	if _, _, err := w.Changelog(entry); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.HasSuffix(string(data), "- existing\n"+entry.Line()+"\n") {
		t.Errorf("unexpected content:\n%s", data)
	}
}

func TestWriterChangelogRejectsUnknownKind(t *testing.T) {
	w := &Writer{ContentDir: t.TempDir()}
	if _, _, err := w.Changelog(ChangelogEntry{Title: "x", Link: "/x", Kind: "misc"}); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}
