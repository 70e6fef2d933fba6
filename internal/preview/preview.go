// Package preview renders project files for the preview pane: Markdown is
// rendered to HTML, JSON is pretty printed and everything else is shown as
// escaped preformatted text.
package preview

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"pkt.systems/mdhtml"
	"pkt.systems/mdhtml/internal/sdd"
)

// Kind classifies a preview.
type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindJSON     Kind = "json"
	KindText     Kind = "text"
	KindError    Kind = "error"
)

// Engine selects the Markdown renderer.
type Engine string

const (
	// EngineBasic is the package's own lightweight renderer.
	EngineBasic Engine = "basic"
	// EngineGFM is goldmark with GitHub Flavored Markdown extensions.
	EngineGFM Engine = "gfm"
)

// ParseEngine validates an engine name. Empty selects EngineBasic.
func ParseEngine(name string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(name))); e {
	case "":
		return EngineBasic, nil
	case EngineBasic, EngineGFM:
		return e, nil
	default:
		return "", fmt.Errorf("preview: unknown engine %q", name)
	}
}

// Options configures a Previewer.
type Options struct {
	Engine Engine
	// Sanitize runs rendered Markdown through mdhtml.SanitizePolicy.
	Sanitize bool
	// StripFrontMatter hides a leading front matter block in Markdown files.
	StripFrontMatter bool
	// MaxBytes caps previewed content; zero uses sdd.MaxFileBytes.
	MaxBytes int64
}

// Preview is the rendered form of one file.
type Preview struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	HTML string `json:"html"`
	// Error holds the failure message of a KindError preview.
	Error string `json:"error,omitempty"`
}

// Previewer renders previews. It is safe for concurrent use.
type Previewer struct {
	engine   Engine
	policy   *bluemonday.Policy
	strip    bool
	maxBytes int64
	gfm      goldmark.Markdown
}

// New builds a Previewer from opts.
func New(opts Options) (*Previewer, error) {
	engine, err := ParseEngine(string(opts.Engine))
	if err != nil {
		return nil, err
	}
	p := &Previewer{
		engine:   engine,
		strip:    opts.StripFrontMatter,
		maxBytes: opts.MaxBytes,
	}
	if p.maxBytes <= 0 {
		p.maxBytes = sdd.MaxFileBytes
	}
	if opts.Sanitize {
		p.policy = mdhtml.SanitizePolicy()
	}
	if engine == EngineGFM {
		p.gfm = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		)
	}
	return p, nil
}

// Engine reports the configured Markdown engine.
func (p *Previewer) Engine() Engine { return p.engine }

// File reads path and renders it. Read failures become an error preview.
func (p *Previewer) File(path string) Preview {
	name := filepath.Base(path)
	content, err := sdd.ReadFile(path)
	if err != nil {
		return errorPreview(name, err)
	}
	return p.Content(name, content)
}

// Content renders content as if it were read from a file called name.
func (p *Previewer) Content(name, content string) Preview {
	if int64(len(content)) > p.maxBytes {
		return errorPreview(name, fmt.Errorf("%d bytes exceeds the %d byte preview limit", len(content), p.maxBytes))
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		html, err := p.markdown(content)
		if err != nil {
			return errorPreview(name, err)
		}
		return Preview{Name: name, Kind: KindMarkdown, HTML: html}
	case ".json":
		return Preview{Name: name, Kind: KindJSON, HTML: jsonBlock(content)}
	default:
		return Preview{Name: name, Kind: KindText, HTML: preBlock(content)}
	}
}

func (p *Previewer) markdown(content string) (string, error) {
	if p.engine == EngineBasic {
		return mdhtml.RenderString(content,
			mdhtml.WithFrontMatter(p.strip),
			mdhtml.WithSanitizer(p.policy),
		), nil
	}
	if p.strip {
		if _, body, ok := mdhtml.ExtractFrontMatter(content); ok {
			content = body
		}
	}
	var buf bytes.Buffer
	if err := p.gfm.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	if p.policy != nil {
		return p.policy.Sanitize(buf.String()), nil
	}
	return buf.String(), nil
}

// jsonBlock pretty prints valid JSON; anything else is shown raw.
func jsonBlock(content string) string {
	if !gjson.Valid(content) {
		return preBlock(content)
	}
	formatted := pretty.PrettyOptions([]byte(content), &pretty.Options{Width: 80, Indent: "  "})
	return `<pre class="json"><code>` + mdhtml.EscapeHTML(strings.TrimRight(string(formatted), "\n")) + `</code></pre>`
}

func preBlock(content string) string {
	return "<pre>" + mdhtml.EscapeHTML(content) + "</pre>"
}

func errorPreview(name string, err error) Preview {
	return Preview{
		Name:  name,
		Kind:  KindError,
		Error: err.Error(),
		HTML:  `<div class="preview-error">Failed to load file: ` + mdhtml.EscapeHTML(err.Error()) + `</div>`,
	}
}
