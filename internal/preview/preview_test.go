package preview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newPreviewer(t *testing.T, opts Options) *Previewer {
	t.Helper()
	p, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestParseEngine(t *testing.T) {
	t.Parallel()
	cases := map[string]Engine{"": EngineBasic, "basic": EngineBasic, " GFM ": EngineGFM}
	for in, want := range cases {
		got, err := ParseEngine(in)
		if err != nil || got != want {
			t.Fatalf("ParseEngine(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseEngine("commonmark"); err == nil {
		t.Fatal("expected error for unknown engine")
	}
	if _, err := New(Options{Engine: "nope"}); err == nil {
		t.Fatal("New should reject unknown engines")
	}
}

func TestContentKinds(t *testing.T) {
	t.Parallel()
	p := newPreviewer(t, Options{})
	tests := []struct {
		name     string
		file     string
		content  string
		kind     Kind
		contains []string
		absent   []string
	}{
		{
			name:     "markdown",
			file:     "README.md",
			content:  "###### six",
			kind:     KindMarkdown,
			contains: []string{"<h6>six</h6>"},
		},
		{
			name:     "markdown extension is case insensitive",
			file:     "NOTES.MARKDOWN",
			content:  "**bold**",
			kind:     KindMarkdown,
			contains: []string{"<strong>bold</strong>"},
		},
		{
			name:     "json pretty printed and escaped",
			file:     "tasks.json",
			content:  `{"a":1,"b":"<x>"}`,
			kind:     KindJSON,
			contains: []string{`<pre class="json"><code>`, "&quot;a&quot;: 1", "&lt;x&gt;"},
			absent:   []string{"<x>"},
		},
		{
			name:     "invalid json falls back to raw text",
			file:     "broken.json",
			content:  `{"a": <`,
			kind:     KindJSON,
			contains: []string{"<pre>{&quot;a&quot;: &lt;</pre>"},
		},
		{
			name:     "plain text",
			file:     "notes.txt",
			content:  "<script>alert(1)</script>",
			kind:     KindText,
			contains: []string{"<pre>&lt;script&gt;alert(1)&lt;/script&gt;</pre>"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := p.Content(tc.file, tc.content)
			if got.Kind != tc.kind || got.Name != tc.file {
				t.Fatalf("unexpected preview header %+v", got)
			}
			for _, want := range tc.contains {
				if !strings.Contains(got.HTML, want) {
					t.Fatalf("expected %q in %q", want, got.HTML)
				}
			}
			for _, bad := range tc.absent {
				if strings.Contains(got.HTML, bad) {
					t.Fatalf("unexpected %q in %q", bad, got.HTML)
				}
			}
		})
	}
}

func TestMarkdownFrontMatterAndSanitize(t *testing.T) {
	t.Parallel()
	src := "---\ntitle: Doc\n---\n[x](javascript:alert(1)) and [y](https://example.com)"
	p := newPreviewer(t, Options{StripFrontMatter: true, Sanitize: true})
	got := p.Content("doc.md", src).HTML
	if strings.Contains(got, "title: Doc") {
		t.Fatalf("front matter should be stripped: %q", got)
	}
	if strings.Contains(got, "javascript:") {
		t.Fatalf("sanitizer should drop javascript links: %q", got)
	}
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Fatalf("expected safe link to survive: %q", got)
	}
}

func TestGFMEngine(t *testing.T) {
	t.Parallel()
	p := newPreviewer(t, Options{Engine: EngineGFM, StripFrontMatter: true})
	if p.Engine() != EngineGFM {
		t.Fatalf("unexpected engine %q", p.Engine())
	}
	src := "+++\ntitle = \"Doc\"\n+++\n# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n\n<script>alert(1)</script>\n"
	got := p.Content("doc.md", src)
	if got.Kind != KindMarkdown {
		t.Fatalf("unexpected kind %q", got.Kind)
	}
	for _, want := range []string{`<h1 id="title">Title</h1>`, "<table>", "<del>gone</del>"} {
		if !strings.Contains(got.HTML, want) {
			t.Fatalf("expected %q in %q", want, got.HTML)
		}
	}
	if strings.Contains(got.HTML, "<script>") || strings.Contains(got.HTML, "title = ") {
		t.Fatalf("unexpected raw content in %q", got.HTML)
	}
}

func TestFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "spec.md")
	if err := os.WriteFile(path, []byte("*hi*"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := newPreviewer(t, Options{})
	got := p.File(path)
	if got.Kind != KindMarkdown || got.Name != "spec.md" || !strings.Contains(got.HTML, "<em>hi</em>") {
		t.Fatalf("unexpected preview %+v", got)
	}

	missing := p.File(filepath.Join(dir, "missing<x>.md"))
	if missing.Kind != KindError {
		t.Fatalf("expected error preview, got %+v", missing)
	}
	if !strings.HasPrefix(missing.HTML, `<div class="preview-error">Failed to load file: `) || strings.Contains(missing.HTML, "<x>") {
		t.Fatalf("error preview must be escaped: %q", missing.HTML)
	}
}

func TestContentSizeLimit(t *testing.T) {
	t.Parallel()
	p := newPreviewer(t, Options{MaxBytes: 4})
	got := p.Content("big.txt", "12345")
	if got.Kind != KindError || !strings.Contains(got.HTML, "preview limit") {
		t.Fatalf("expected size error, got %+v", got)
	}
	if ok := p.Content("ok.txt", "1234"); ok.Kind != KindText {
		t.Fatalf("expected text preview, got %+v", ok)
	}
}
