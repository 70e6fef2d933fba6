package mdhtml

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	headingPattern = regexp.MustCompile(`(?m)^(#{1,6}) +(.*)$`)
	rulePattern    = regexp.MustCompile(`(?m)^(?:---|\*\*\*)$`)
)

const quotePrefix = "&gt; "

// renderHeadings matches the marker greedily, so a six-hash line is always
// an h6 and never an h1 wrapping "#####".
func renderHeadings(s string) string {
	return replaceSubmatches(headingPattern, s, func(_ int, m []string) string {
		tag := "h" + strconv.Itoa(len(m[1]))
		return "<" + tag + ">" + m[2] + "</" + tag + ">"
	})
}

func renderRules(s string) string {
	return rulePattern.ReplaceAllString(s, "<hr>")
}

// renderBlockquotes merges each run of adjacent quote lines into one element.
func renderBlockquotes(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); {
		if !isQuoteLine(lines[i]) {
			out = append(out, lines[i])
			i++
			continue
		}
		var quoted []string
		for i < len(lines) && isQuoteLine(lines[i]) {
			quoted = append(quoted, strings.TrimPrefix(lines[i], quotePrefix))
			i++
		}
		out = append(out, "<blockquote>"+strings.Join(quoted, "\n")+"</blockquote>")
	}
	return strings.Join(out, "\n")
}

func isQuoteLine(line string) bool {
	return len(line) > len(quotePrefix) && strings.HasPrefix(line, quotePrefix)
}

var blockPrefixes = []string{
	"<h1>", "<h2>", "<h3>", "<h4>", "<h5>", "<h6>",
	"<ul>", "<ol>", "<li>", "</ul>", "</ol>", "</li>",
	"<table>", "<blockquote>", "<hr>", "<pre>",
}

func isBlockLine(trimmed string) bool {
	if trimmed == "" || isBlockPlaceholder(trimmed) {
		return true
	}
	for _, p := range blockPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// wrapParagraphs wraps each run of non-block lines in a paragraph. Lines of a
// multi-line blockquote stay block-level until its closing tag.
func wrapParagraphs(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines)+8)
	inParagraph, inQuote := false, false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		block := inQuote || isBlockLine(trimmed)
		switch {
		case inQuote:
			inQuote = !strings.Contains(trimmed, "</blockquote>")
		case strings.HasPrefix(trimmed, "<blockquote>"):
			inQuote = !strings.Contains(trimmed, "</blockquote>")
		}
		if block {
			if inParagraph {
				out = append(out, "</p>")
				inParagraph = false
			}
			out = append(out, line)
			continue
		}
		if !inParagraph {
			out = append(out, "<p>")
			inParagraph = true
		}
		out = append(out, line)
	}
	if inParagraph {
		out = append(out, "</p>")
	}
	return strings.Join(out, "\n")
}
