package mdhtml

import (
	"strings"
	"testing"
)

func TestExtractFrontMatterFormats(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		src    string
		format string
		title  string
		body   string
	}{
		{
			name:   "yaml",
			src:    "---\ntitle: Post\nphase: Phase 1\n---\n\n# Hello\n",
			format: "yaml",
			title:  "Post",
			body:   "\n# Hello\n",
		},
		{
			name:   "toml",
			src:    "+++\ntitle = \"Post\"\n+++\n# Hello\n",
			format: "toml",
			title:  "Post",
			body:   "# Hello\n",
		},
		{
			name:   "json",
			src:    ";;;\n{\"title\": \"Post\"}\n;;;\n# Hello",
			format: "json",
			title:  "Post",
			body:   "# Hello",
		},
		{
			name:   "bom and crlf",
			src:    "\uFEFF---\r\ntitle: Post\r\n---\r\nBody",
			format: "yaml",
			title:  "Post",
			body:   "Body",
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fm, body, ok := ExtractFrontMatter(tc.src)
			if !ok {
				t.Fatalf("expected front matter in %q", tc.src)
			}
			if fm.Format != tc.format {
				t.Fatalf("format=%q want %q", fm.Format, tc.format)
			}
			if fm.Title() != tc.title {
				t.Fatalf("title=%q want %q", fm.Title(), tc.title)
			}
			if body != tc.body {
				t.Fatalf("body=%q want %q", body, tc.body)
			}
		})
	}
}

func TestExtractFrontMatterRejects(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"# No front matter\n",
		"---\n\nJust a rule above\n",
		"---\ntitle: unterminated\n",
		"---\ntitle: [broken\n---\n",
		"+++\ntitle = \n+++\n",
		"",
	}
	for _, src := range inputs {
		_, body, ok := ExtractFrontMatter(src)
		if ok {
			t.Fatalf("unexpected front matter in %q", src)
		}
		if body != src {
			t.Fatalf("body changed for %q: %q", src, body)
		}
	}
}

func TestRenderStringStripsFrontMatter(t *testing.T) {
	t.Parallel()
	src := "---\ntitle: Spec\n---\n# Heading\n"
	out := RenderString(src, WithFrontMatter(true))
	if strings.Contains(out, "title") || strings.Contains(out, "<hr>") {
		t.Fatalf("front matter leaked: %q", out)
	}
	if !strings.Contains(out, "<h1>Heading</h1>") {
		t.Fatalf("missing heading: %q", out)
	}

	kept := RenderString(src)
	if !strings.Contains(kept, "<hr>") {
		t.Fatalf("front matter should render as text when not stripped: %q", kept)
	}
}

func TestRenderStringDocumentUsesFrontMatterTitle(t *testing.T) {
	t.Parallel()
	out := RenderString("---\ntitle: A <b> Spec\n---\nbody\n", WithFrontMatter(true), WithDocument(""))
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Fatalf("missing doctype: %q", out)
	}
	if !strings.Contains(out, "<title>A &lt;b&gt; Spec</title>") {
		t.Fatalf("missing escaped title: %q", out)
	}
	override := RenderString("---\ntitle: A\n---\nbody\n", WithFrontMatter(true), WithDocument("B"))
	if !strings.Contains(override, "<title>B</title>") {
		t.Fatalf("explicit title ignored: %q", override)
	}
}
