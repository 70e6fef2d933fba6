// Package specview holds the state of the specs table: the active filter,
// the sort column and direction, and the selected spec. State values are
// immutable; every update returns a new State.
package specview

import (
	"fmt"
	"sort"
	"strings"

	"pkt.systems/mdhtml/internal/format"
	"pkt.systems/mdhtml/internal/sdd"
)

// Column identifies a sortable specs table column.
type Column string

const (
	ColumnStatus   Column = "status"
	ColumnFeature  Column = "feature"
	ColumnPhase    Column = "phase"
	ColumnDate     Column = "date"
	ColumnProgress Column = "progress"
	ColumnSize     Column = "size"
	ColumnModified Column = "modified"
)

// ParseColumn accepts a column name. "effort" is an alias for size.
func ParseColumn(name string) (Column, error) {
	switch c := Column(strings.ToLower(strings.TrimSpace(name))); c {
	case ColumnStatus, ColumnFeature, ColumnPhase, ColumnDate, ColumnProgress, ColumnSize, ColumnModified:
		return c, nil
	case "effort":
		return ColumnSize, nil
	default:
		return "", fmt.Errorf("unknown sort column %q", name)
	}
}

// Filter narrows the spec list. Zero fields do not filter.
type Filter struct {
	// Search is matched case-insensitively against feature, phase, status
	// and every task name and description.
	Search string
	Phase  string
	Status string
}

// Match reports whether spec passes the filter.
func (f Filter) Match(spec sdd.Spec) bool {
	if needle := strings.ToLower(f.Search); needle != "" {
		fields := make([]string, 0, 3+2*len(spec.Tasks))
		fields = append(fields, spec.Feature, spec.Phase, string(spec.Status))
		for _, task := range spec.Tasks {
			fields = append(fields, task.Name)
		}
		for _, task := range spec.Tasks {
			fields = append(fields, task.Description)
		}
		if !strings.Contains(strings.ToLower(strings.Join(fields, " ")), needle) {
			return false
		}
	}
	if f.Phase != "" && spec.Phase != f.Phase {
		return false
	}
	if f.Status != "" && string(spec.Status) != f.Status {
		return false
	}
	return true
}

// Apply returns the specs that match, preserving order.
func (f Filter) Apply(specs []sdd.Spec) []sdd.Spec {
	out := make([]sdd.Spec, 0, len(specs))
	for _, spec := range specs {
		if f.Match(spec) {
			out = append(out, spec)
		}
	}
	return out
}

// Sort is the active sort column and direction. A zero Sort keeps input order.
type Sort struct {
	Column    Column
	Ascending bool
}

// Toggle returns the sort after clicking column: the same column flips the
// direction, a new column starts ascending.
func (s Sort) Toggle(column Column) Sort {
	if s.Column == column {
		return Sort{Column: column, Ascending: !s.Ascending}
	}
	return Sort{Column: column, Ascending: true}
}

// Apply returns a stably sorted copy of specs.
func (s Sort) Apply(specs []sdd.Spec) []sdd.Spec {
	out := append([]sdd.Spec(nil), specs...)
	if s.Column == "" {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(s.Column, out[i], out[j])
		if s.Ascending {
			return c < 0
		}
		return c > 0
	})
	return out
}

func compare(column Column, a, b sdd.Spec) int {
	switch column {
	case ColumnStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case ColumnFeature:
		return strings.Compare(a.Feature, b.Feature)
	case ColumnPhase:
		return strings.Compare(a.Phase, b.Phase)
	case ColumnDate:
		return strings.Compare(a.Created, b.Created)
	case ColumnProgress:
		return compareFloat(a.Progress(), b.Progress())
	case ColumnSize:
		return compareInt(a.SizeBytes, b.SizeBytes)
	case ColumnModified:
		return a.LastModified.Compare(b.LastModified)
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// State is the full specs table state.
type State struct {
	Specs    []sdd.Spec
	Filter   Filter
	Sort     Sort
	Selected string
}

// View returns the specs to display: filtered, then sorted.
func (s State) View() []sdd.Spec {
	return s.Sort.Apply(s.Filter.Apply(s.Specs))
}

// WithSpecs replaces the loaded specs. The selection is dropped when the
// selected spec no longer exists.
func (s State) WithSpecs(specs []sdd.Spec) State {
	s.Specs = specs
	if _, ok := s.Selection(); !ok {
		s.Selected = ""
	}
	return s
}

// WithFilter replaces the filter.
func (s State) WithFilter(f Filter) State {
	s.Filter = f
	return s
}

// SortBy toggles the sort on column.
func (s State) SortBy(column Column) State {
	s.Sort = s.Sort.Toggle(column)
	return s
}

// Select marks the spec with id as selected. Unknown ids clear the selection.
func (s State) Select(id string) State {
	s.Selected = id
	if _, ok := s.Selection(); !ok {
		s.Selected = ""
	}
	return s
}

// Selection returns the selected spec.
func (s State) Selection() (sdd.Spec, bool) {
	if s.Selected == "" {
		return sdd.Spec{}, false
	}
	for _, spec := range s.Specs {
		if spec.ID == s.Selected {
			return spec, true
		}
	}
	return sdd.Spec{}, false
}

// Row is one formatted specs table row.
type Row struct {
	ID         string `json:"id"`
	StatusIcon string `json:"status_icon"`
	Status     string `json:"status"`
	Feature    string `json:"feature"`
	Phase      string `json:"phase"`
	Created    string `json:"created"`
	Progress   int    `json:"progress"`
	Tasks      string `json:"tasks"`
	Size       string `json:"size"`
	Modified   string `json:"modified"`
}

// Rows formats specs for display.
func Rows(specs []sdd.Spec) []Row {
	rows := make([]Row, 0, len(specs))
	for _, spec := range specs {
		rows = append(rows, Row{
			ID:         spec.ID,
			StatusIcon: format.StatusIcon(string(spec.Status)),
			Status:     string(spec.Status),
			Feature:    spec.Feature,
			Phase:      spec.Phase,
			Created:    format.Date(spec.Created),
			Progress:   format.Percent(spec.CompletedTasks, spec.TaskCount),
			Tasks:      fmt.Sprintf("%d/%d", spec.CompletedTasks, spec.TaskCount),
			Size:       format.Size(spec.SizeBytes),
			Modified:   format.Time(spec.LastModified),
		})
	}
	return rows
}
