package format

import (
	"strings"
	"unicode/utf8"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

const (
	ellipsis  = "…"
	ansiReset = "\x1b[0m"
)

// Truncate shortens text to at most limit terminal cells, ending in an
// ellipsis when anything was cut. Wide runes count as two cells and ANSI
// sequences as none; a color left open by the cut is reset.
func Truncate(text string, limit int) string {
	if ansi.PrintableRuneWidth(text) <= limit {
		return text
	}
	if limit <= 0 {
		return ""
	}
	out := truncate.StringWithTail(text, uint(limit), ellipsis)
	if strings.ContainsRune(text, ansi.Marker) && !strings.HasSuffix(out, ansiReset) {
		out += ansiReset
	}
	return out
}

// TruncateLeft keeps the tail of text, which is the useful end of a path,
// measuring cells the same way as Truncate.
func TruncateLeft(text string, limit int) string {
	if ansi.PrintableRuneWidth(text) <= limit {
		return text
	}
	if limit <= 0 {
		return ""
	}
	budget := limit - ansi.PrintableRuneWidth(ellipsis)
	segs := segments(text)
	start := len(segs)
	for start > 0 {
		w := segs[start-1].width
		if w > budget {
			break
		}
		budget -= w
		start--
	}
	var b strings.Builder
	b.WriteString(ellipsis)
	for _, seg := range segs[start:] {
		b.WriteString(seg.text)
	}
	return b.String()
}

// segment is one printable rune or one whole ANSI escape sequence.
type segment struct {
	text  string
	width int
}

func segments(text string) []segment {
	segs := make([]segment, 0, len(text))
	inSeq, start := false, 0
	for i, r := range text {
		switch {
		case r == ansi.Marker:
			inSeq, start = true, i
		case inSeq:
			if ansi.IsTerminator(r) {
				inSeq = false
				segs = append(segs, segment{text: text[start : i+utf8.RuneLen(r)]})
			}
		default:
			s := string(r)
			segs = append(segs, segment{text: s, width: ansi.PrintableRuneWidth(s)})
		}
	}
	if inSeq {
		segs = append(segs, segment{text: text[start:]})
	}
	return segs
}

// PadRight pads text with spaces to width printable cells.
func PadRight(text string, width int) string {
	if gap := width - ansi.PrintableRuneWidth(text); gap > 0 {
		return text + strings.Repeat(" ", gap)
	}
	return text
}
