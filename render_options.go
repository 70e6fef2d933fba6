package mdhtml

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// RenderOption configures rendering behavior for Convert and RenderString.
type RenderOption func(*renderConfig)

type renderConfig struct {
	stripFrontMatter bool
	policy           *bluemonday.Policy
	document         bool
	title            string
}

// WithFrontMatter enables or disables stripping of a leading front matter block.
func WithFrontMatter(strip bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.stripFrontMatter = strip
	}
}

// WithSanitizer runs the rendered fragment through policy. A nil policy
// disables sanitizing.
func WithSanitizer(policy *bluemonday.Policy) RenderOption {
	return func(cfg *renderConfig) {
		cfg.policy = policy
	}
}

// WithDocument wraps the fragment in a standalone HTML document. An empty
// title falls back to the front matter title, if any.
func WithDocument(title string) RenderOption {
	return func(cfg *renderConfig) {
		cfg.document = true
		cfg.title = title
	}
}

func newRenderConfig(opts []RenderOption) renderConfig {
	cfg := renderConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// RenderString renders text with options applied. Like Render it never fails.
func RenderString(text string, opts ...RenderOption) string {
	cfg := newRenderConfig(opts)
	return cfg.render(text)
}

func (cfg renderConfig) render(text string) string {
	title := cfg.title
	if cfg.stripFrontMatter {
		if fm, body, ok := ExtractFrontMatter(text); ok {
			text = body
			if title == "" {
				title = fm.Title()
			}
		}
	}
	out := Render(text)
	if cfg.policy != nil {
		out = cfg.policy.Sanitize(out)
	}
	if cfg.document {
		out = wrapDocument(title, out)
	}
	return out
}

func wrapDocument(title, body string) string {
	var b strings.Builder
	b.Grow(len(body) + 128)
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(EscapeHTML(title))
	b.WriteString("</title>\n</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
