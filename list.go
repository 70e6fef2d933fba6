package mdhtml

import (
	"regexp"
	"strings"
)

var listItemPattern = regexp.MustCompile(`^(\s*)([-*+]|\d+\.)\s+(.*)$`)

// listIndentUnit is the number of indentation bytes per nesting level. Tabs
// count as a single byte.
const listIndentUnit = 2

type listKind uint8

const (
	unorderedList listKind = iota
	orderedList
)

func (k listKind) tag() string {
	if k == orderedList {
		return "ol"
	}
	return "ul"
}

// listFrame is one open list container.
type listFrame struct {
	kind     listKind
	depth    int
	itemOpen bool
}

// listBuilder rebuilds nested lists line by line. Frame depths strictly
// increase from the bottom of the stack to the top.
type listBuilder struct {
	out   []string
	stack []listFrame
}

func renderLists(s string) string {
	lines := strings.Split(s, "\n")
	b := listBuilder{out: make([]string, 0, len(lines)+8)}
	for _, line := range lines {
		m := listItemPattern.FindStringSubmatch(line)
		if m == nil {
			b.text(line)
			continue
		}
		kind := unorderedList
		if m[2][0] >= '0' && m[2][0] <= '9' {
			kind = orderedList
		}
		b.item(kind, len(m[1])/listIndentUnit, m[3])
	}
	b.closeAll()
	return strings.Join(b.out, "\n")
}

func (b *listBuilder) item(kind listKind, depth int, content string) {
	for len(b.stack) > 0 && b.top().depth > depth {
		b.pop()
	}
	switch {
	case len(b.stack) == 0 || b.top().depth < depth:
		b.push(kind, depth)
	case b.top().kind != kind:
		b.pop()
		b.push(kind, depth)
	case b.top().itemOpen:
		b.out = append(b.out, "</li>")
	}
	b.out = append(b.out, "<li>"+content)
	b.top().itemOpen = true
}

func (b *listBuilder) text(line string) {
	b.closeAll()
	b.out = append(b.out, line)
}

func (b *listBuilder) top() *listFrame {
	return &b.stack[len(b.stack)-1]
}

func (b *listBuilder) push(kind listKind, depth int) {
	b.out = append(b.out, "<"+kind.tag()+">")
	b.stack = append(b.stack, listFrame{kind: kind, depth: depth})
}

func (b *listBuilder) pop() {
	f := b.stack[len(b.stack)-1]
	if f.itemOpen {
		b.out = append(b.out, "</li>")
	}
	b.out = append(b.out, "</"+f.kind.tag()+">")
	b.stack = b.stack[:len(b.stack)-1]
}

func (b *listBuilder) closeAll() {
	for len(b.stack) > 0 {
		b.pop()
	}
}
