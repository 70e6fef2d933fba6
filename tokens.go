package mdhtml

import (
	"regexp"
	"strconv"
	"strings"
)

// spanKind tags a protected span placeholder.
type spanKind byte

const (
	// spanBlock marks a fenced code block; its placeholder is a block-level line.
	spanBlock spanKind = 'B'
	// spanInline marks code spans and images.
	spanInline spanKind = 'I'
	// spanAnchor marks a synthesized <a> opening tag. Its </a> stays in the text.
	spanAnchor spanKind = 'A'
)

// Placeholder sentinels are private-use runes. normalizeInput strips them from
// the source, so a placeholder can only ever come from spanTable.protect.
const (
	sentinelOpen  = '\uE000'
	sentinelClose = '\uE001'
)

var placeholderPattern = regexp.MustCompile("\uE000[BIA]([0-9]+)\uE001")

// spanTable holds HTML shielded from the transformation passes of one Render call.
type spanTable struct {
	spans []string
}

func (t *spanTable) protect(kind spanKind, html string) string {
	idx := len(t.spans)
	t.spans = append(t.spans, html)
	var b strings.Builder
	b.Grow(12)
	b.WriteRune(sentinelOpen)
	b.WriteByte(byte(kind))
	b.WriteString(strconv.Itoa(idx))
	b.WriteRune(sentinelClose)
	return b.String()
}

func (t *spanTable) restore(s string) string {
	if len(t.spans) == 0 {
		return s
	}
	return replaceSubmatches(placeholderPattern, s, func(_ int, m []string) string {
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 0 || idx >= len(t.spans) {
			return m[0]
		}
		return t.spans[idx]
	})
}

func isBlockPlaceholder(line string) bool {
	return strings.HasPrefix(line, string(sentinelOpen)+string(spanBlock))
}

// replaceSubmatches is ReplaceAllStringFunc with access to the submatches and
// the byte offset of each match.
func replaceSubmatches(re *regexp.Regexp, s string, fn func(start int, m []string) string) string {
	locs := re.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, loc := range locs {
		b.WriteString(s[last:loc[0]])
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = s[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(fn(loc[0], groups))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
