package mdhtml

import (
	"regexp"
	"strings"
)

var (
	fencePattern    = regexp.MustCompile("(?s)```(.*?)```")
	codeSpanPattern = regexp.MustCompile("`([^`\n]+)`")
)

// Render converts Markdown text to an HTML fragment.
//
// All literal text is escaped before markup is synthesized around it. Render
// never fails: constructs it does not recognize are kept as escaped text. It
// is safe for concurrent use.
func Render(text string) string {
	var r renderer
	return r.render(text)
}

// renderer carries the per-call protected span table.
type renderer struct {
	spans spanTable
}

func (r *renderer) render(text string) string {
	html := EscapeHTML(normalizeInput(text))
	html = r.protectFences(html)
	html = r.protectCodeSpans(html)
	html = renderHeadings(html)
	html = r.renderLinks(html)
	html = r.renderImages(html)
	html = renderTables(html)
	html = renderEmphasis(html)
	html = renderStrikethrough(html)
	html = renderRules(html)
	html = renderLists(html)
	html = renderBlockquotes(html)
	html = wrapParagraphs(html)
	return r.spans.restore(html)
}

// protectFences extracts ```fenced``` blocks. The first closing fence ends a
// block, so fences cannot nest.
func (r *renderer) protectFences(s string) string {
	return replaceSubmatches(fencePattern, s, func(_ int, m []string) string {
		lang, code := splitInfoString(m[1])
		var b strings.Builder
		b.Grow(len(code) + 32)
		b.WriteString("<pre><code")
		if lang != "" {
			b.WriteString(` class="language-`)
			b.WriteString(attrSafe(lang))
			b.WriteString(`"`)
		}
		b.WriteString(">")
		b.WriteString(code)
		b.WriteString("</code></pre>")
		return r.spans.protect(spanBlock, b.String())
	})
}

// splitInfoString separates a single-word info string on the opening fence
// line from the code. A bare newline after the fence is dropped.
func splitInfoString(body string) (string, string) {
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return "", body
	}
	info := strings.TrimSpace(body[:nl])
	if info == "" {
		return "", body[nl+1:]
	}
	if strings.ContainsAny(info, " \t") {
		return "", body
	}
	return info, body[nl+1:]
}

func (r *renderer) protectCodeSpans(s string) string {
	return replaceSubmatches(codeSpanPattern, s, func(_ int, m []string) string {
		return r.spans.protect(spanInline, "<code>"+m[1]+"</code>")
	})
}
