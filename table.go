package mdhtml

import "strings"

// Alignment is the text alignment of a table column.
type Alignment string

const (
	// AlignLeft is the default when a separator cell has no trailing colon.
	AlignLeft Alignment = "left"
	// AlignCenter is selected by a separator cell like ":-:".
	AlignCenter Alignment = "center"
	// AlignRight is selected by a separator cell like "-:".
	AlignRight Alignment = "right"
)

// renderTables collapses each header/separator/body run of pipe rows into a
// single <table> line.
func renderTables(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); {
		if i+2 < len(lines) && isTableRow(lines[i]) && isSeparatorRow(lines[i+1]) && isTableRow(lines[i+2]) {
			end := i + 3
			for end < len(lines) && isTableRow(lines[end]) {
				end++
			}
			out = append(out, buildTable(lines[i], lines[i+1], lines[i+2:end]))
			i = end
			continue
		}
		out = append(out, lines[i])
		i++
	}
	return strings.Join(out, "\n")
}

func isTableRow(line string) bool {
	t := strings.TrimSpace(line)
	return len(t) >= 2 && t[0] == '|' && t[len(t)-1] == '|'
}

func isSeparatorRow(line string) bool {
	if !isTableRow(line) {
		return false
	}
	t := strings.TrimSpace(line)
	return strings.Contains(t, "-") && strings.Trim(t, "|:- \t") == ""
}

func splitCells(line string) []string {
	t := strings.TrimSpace(line)
	t = t[1 : len(t)-1]
	cells := strings.Split(t, "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// columnAlignment reads one separator cell: ":-:" is center, "-:" is right,
// anything else is left.
func columnAlignment(cell string) Alignment {
	starts := strings.HasPrefix(cell, ":")
	ends := strings.HasSuffix(cell, ":")
	switch {
	case starts && ends:
		return AlignCenter
	case ends:
		return AlignRight
	default:
		return AlignLeft
	}
}

func buildTable(header, separator string, body []string) string {
	seps := splitCells(separator)
	aligns := make([]Alignment, len(seps))
	for i, c := range seps {
		aligns[i] = columnAlignment(c)
	}

	var b strings.Builder
	b.WriteString("<table><thead><tr>")
	for _, cell := range splitCells(header) {
		b.WriteString("<th>")
		b.WriteString(cell)
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range body {
		b.WriteString("<tr>")
		for i, cell := range splitCells(row) {
			align := AlignLeft
			if i < len(aligns) {
				align = aligns[i]
			}
			b.WriteString(`<td style="text-align: `)
			b.WriteString(string(align))
			b.WriteString(`">`)
			b.WriteString(cell)
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}
