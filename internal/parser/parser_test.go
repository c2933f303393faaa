package parser

import (
	"testing"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	r := Parse([]byte("---\ntitle: Hello\ntags:\n  - go\n  - notes\n---\n# Hello\nBody text.\n"))
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if len(r.Tags) != 2 || r.Tags[0] != "go" || r.Tags[1] != "notes" {
		t.Errorf("tags = %v, want [go notes]", r.Tags)
	}
	if r.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	r := Parse([]byte("# Just a heading\nSome text.\n"))
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := "---\n: invalid: yaml: {{{\n---\nBody\n"
	r := Parse([]byte(input))
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if r.Body != input {
		t.Errorf("body = %q, want whole input", r.Body)
	}
}

func TestExtractLinks(t *testing.T) {
	links := extractLinks("See [[Note A]] and [[Note B|alias]].\nAlso [[Note A]] again, [[ ]] and [[|x]].")
	if len(links) != 2 || links[0] != "Note A" || links[1] != "Note B" {
		t.Errorf("links = %v", links)
	}
}

func TestExtractTags_InlineAndFrontmatter(t *testing.T) {
	fm := map[string]any{"tags": []any{"alpha"}}
	tags := extractTags("Some text #beta and #alpha again.", fm)
	if len(tags) != 2 || tags[0] != "alpha" || tags[1] != "beta" {
		t.Errorf("tags = %v, want [alpha beta]", tags)
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	if title := deriveTitle(map[string]any{"title": "FM Title"}, "# H1 Title\ntext"); title != "FM Title" {
		t.Errorf("title = %q, want %q", title, "FM Title")
	}
}

func TestLinkAt(t *testing.T) {
	line := "see [[Groceries]] or [[Trip plan|the trip]] - [[ ]]"
	cases := []struct {
		col    int
		target string
		ok     bool
	}{
		{0, "", false},
		{4, "Groceries", true},
		{10, "Groceries", true},
		{16, "Groceries", true},
		{17, "", false},
		{21, "Trip plan", true},
		{40, "Trip plan", true},
		{49, "", false},
		{-1, "", false},
		{500, "", false},
	}
	for _, c := range cases {
		got, ok := LinkAt(line, c.col)
		if got != c.target || ok != c.ok {
			t.Errorf("LinkAt(col %d) = %q, %v; want %q, %v", c.col, got, ok, c.target, c.ok)
		}
	}
}

func TestLinkAt_RuneColumns(t *testing.T) {
	line := "ünïcode [[Café]]"
	if got, ok := LinkAt(line, 8); !ok || got != "Café" {
		t.Errorf("LinkAt = %q, %v", got, ok)
	}
}
