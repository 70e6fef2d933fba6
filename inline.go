package mdhtml

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	linkPattern  = regexp.MustCompile(`\[([^\[\]\n]+)\]\(([^)\s\x{E000}\x{E001}]+)(?:[ \t]+&quot;([^\n\x{E000}\x{E001}]*?)&quot;)?\)`)
	imagePattern = regexp.MustCompile(`!\[([^\]\n\x{E000}\x{E001}]*)\]\(([^)\s\x{E000}\x{E001}]+)\)`)

	strongStarPattern  = regexp.MustCompile(`\*\*([^*\s](?:[^*\n]*[^*\s])?)\*\*`)
	strongUnderPattern = regexp.MustCompile(`__([^_\s](?:[^_\n]*[^_\s])?)__`)
	emStarPattern      = regexp.MustCompile(`\*([^*\s](?:[^*\n]*[^*\s])?)\*`)
	emUnderPattern     = regexp.MustCompile(`_([^_\s](?:[^_\n]*[^_\s])?)_`)
	strikePattern      = regexp.MustCompile(`~~([^~\n]+)~~`)
)

const linkTargetAttrs = ` target="_blank" rel="noopener noreferrer"`

// renderLinks turns [text](url "title") into an anchor that opens in a new
// browsing context. The opening tag is protected so later passes never see
// the URL; the link text stays open to inline formatting.
func (r *renderer) renderLinks(s string) string {
	return replaceSubmatches(linkPattern, s, func(start int, m []string) string {
		if start > 0 && s[start-1] == '!' {
			return m[0]
		}
		open := `<a href="` + attrSafe(m[2]) + `"`
		if m[3] != "" {
			open += ` title="` + attrSafe(m[3]) + `"`
		}
		open += linkTargetAttrs + ">"
		return r.spans.protect(spanAnchor, open) + m[1] + "</a>"
	})
}

func (r *renderer) renderImages(s string) string {
	return replaceSubmatches(imagePattern, s, func(_ int, m []string) string {
		return r.spans.protect(spanInline, `<img src="`+attrSafe(m[2])+`" alt="`+attrSafe(m[1])+`" />`)
	})
}

// renderEmphasis runs the double-marker pass before the single-marker pass so
// **bold** is never split by the italic rule.
func renderEmphasis(s string) string {
	s = wrapMatches(strongStarPattern, s, "strong", false)
	s = wrapMatches(strongUnderPattern, s, "strong", true)
	s = wrapMatches(emStarPattern, s, "em", false)
	s = wrapMatches(emUnderPattern, s, "em", true)
	return s
}

func renderStrikethrough(s string) string {
	return wrapMatches(strikePattern, s, "del", false)
}

// wrapMatches wraps group 1 of every match in tag. With intraword set, a match
// that opens directly after a letter or digit is left alone (snake_case_name).
// A match whose content would split markup made by an earlier pass (a table
// cell, an anchor) is left alone too.
func wrapMatches(re *regexp.Regexp, s, tag string, intraword bool) string {
	return replaceSubmatches(re, s, func(start int, m []string) string {
		if !balancedMarkup(m[1]) {
			return m[0]
		}
		if intraword && start > 0 {
			prev, _ := utf8.DecodeLastRuneInString(s[:start])
			if unicode.IsLetter(prev) || unicode.IsDigit(prev) {
				return m[0]
			}
		}
		return "<" + tag + ">" + m[1] + "</" + tag + ">"
	})
}

// generatedTagPattern finds markup produced by earlier passes. Literal angle
// brackets are escaped before any pass runs, so every '<' here is generated.
var generatedTagPattern = regexp.MustCompile(`<(/?)([a-z][a-z0-9]*)[^>]*>|\x{E000}A[0-9]+\x{E001}`)

// balancedMarkup reports whether every generated element opened in s is
// closed in s and every closing tag in s matches an element opened in s.
func balancedMarkup(s string) bool {
	if !strings.ContainsAny(s, "<\uE000") {
		return true
	}
	var open []string
	for _, m := range generatedTagPattern.FindAllStringSubmatch(s, -1) {
		switch {
		case m[2] == "":
			open = append(open, "a")
		case strings.HasSuffix(m[0], "/>") || m[2] == "hr" || m[2] == "br":
		case m[1] == "/":
			if len(open) == 0 || open[len(open)-1] != m[2] {
				return false
			}
			open = open[:len(open)-1]
		default:
			open = append(open, m[2])
		}
	}
	return len(open) == 0
}
