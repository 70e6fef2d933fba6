package specview

import (
	"strings"
	"testing"
	"time"

	"pkt.systems/mdhtml/internal/sdd"
)

func sampleSpecs() []sdd.Spec {
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	return []sdd.Spec{
		{
			ID: "auth", Feature: "Auth", Phase: "Build", Status: sdd.SpecInProgress, Created: "2024-03-01",
			TaskCount: 4, CompletedTasks: 1, SizeBytes: 300, LastModified: base,
			Tasks: []sdd.Task{{Name: "Login form"}, {Name: "Session", Description: "Rotate tokens"}},
		},
		{
			ID: "billing", Feature: "Billing", Phase: "Plan", Status: sdd.SpecPending, Created: "2024-05-01",
			TaskCount: 0, SizeBytes: 100, LastModified: base.Add(time.Hour),
		},
		{
			ID: "search", Feature: "Search", Phase: "Build", Status: sdd.SpecCompleted, Created: "2024-01-15",
			TaskCount: 2, CompletedTasks: 2, SizeBytes: 200,
		},
	}
}

func ids(specs []sdd.Spec) string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.ID
	}
	return strings.Join(out, ",")
}

func TestFilter(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"empty", Filter{}, "auth,billing,search"},
		{"feature", Filter{Search: "bill"}, "billing"},
		{"case insensitive", Filter{Search: "SEARCH"}, "search"},
		{"task name", Filter{Search: "login"}, "auth"},
		{"task description", Filter{Search: "rotate"}, "auth"},
		{"status text", Filter{Search: "in_progress"}, "auth"},
		{"phase", Filter{Phase: "Build"}, "auth,search"},
		{"status", Filter{Status: "completed"}, "search"},
		{"combined", Filter{Search: "a", Phase: "Build", Status: "in_progress"}, "auth"},
		{"no match", Filter{Search: "zzz"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ids(tc.filter.Apply(sampleSpecs())); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSortToggle(t *testing.T) {
	t.Parallel()
	s := Sort{}.Toggle(ColumnFeature)
	if s != (Sort{Column: ColumnFeature, Ascending: true}) {
		t.Fatalf("unexpected first toggle %+v", s)
	}
	s = s.Toggle(ColumnFeature)
	if s.Ascending {
		t.Fatal("expected second toggle to flip to descending")
	}
	s = s.Toggle(ColumnSize)
	if s != (Sort{Column: ColumnSize, Ascending: true}) {
		t.Fatalf("new column should start ascending, got %+v", s)
	}
}

func TestSortApply(t *testing.T) {
	t.Parallel()
	cases := []struct {
		sort Sort
		want string
	}{
		{Sort{}, "auth,billing,search"},
		{Sort{Column: ColumnFeature, Ascending: false}, "search,billing,auth"},
		{Sort{Column: ColumnDate, Ascending: true}, "search,auth,billing"},
		{Sort{Column: ColumnProgress, Ascending: true}, "billing,auth,search"},
		{Sort{Column: ColumnSize, Ascending: true}, "billing,search,auth"},
		{Sort{Column: ColumnModified, Ascending: true}, "search,auth,billing"},
		{Sort{Column: ColumnStatus, Ascending: true}, "search,auth,billing"},
		{Sort{Column: ColumnPhase, Ascending: true}, "auth,search,billing"},
	}
	for _, tc := range cases {
		specs := sampleSpecs()
		if got := ids(tc.sort.Apply(specs)); got != tc.want {
			t.Fatalf("%+v: got %q, want %q", tc.sort, got, tc.want)
		}
		if ids(specs) != "auth,billing,search" {
			t.Fatal("Apply must not reorder its input")
		}
	}
}

func TestParseColumn(t *testing.T) {
	t.Parallel()
	if c, err := ParseColumn(" Feature "); err != nil || c != ColumnFeature {
		t.Fatalf("ParseColumn = %q, %v", c, err)
	}
	if c, err := ParseColumn("effort"); err != nil || c != ColumnSize {
		t.Fatalf("ParseColumn(effort) = %q, %v", c, err)
	}
	if _, err := ParseColumn("bogus"); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestStateTransitions(t *testing.T) {
	t.Parallel()
	s := State{Specs: sampleSpecs()}
	s = s.WithFilter(Filter{Phase: "Build"}).SortBy(ColumnFeature).SortBy(ColumnFeature)
	if got := ids(s.View()); got != "search,auth" {
		t.Fatalf("View = %q", got)
	}

	s = s.Select("billing")
	spec, ok := s.Selection()
	if !ok || spec.Feature != "Billing" {
		t.Fatalf("Selection = %+v, %v", spec, ok)
	}
	if cleared := s.Select("missing"); cleared.Selected != "" {
		t.Fatal("unknown id should clear selection")
	}
	if reloaded := s.WithSpecs(sampleSpecs()[:1]); reloaded.Selected != "" {
		t.Fatal("selection should drop when the spec disappears")
	}
	if kept := s.WithSpecs(sampleSpecs()); kept.Selected != "billing" {
		t.Fatal("selection should survive a reload containing the spec")
	}
}

func TestRows(t *testing.T) {
	t.Parallel()
	rows := Rows(sampleSpecs())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	auth := rows[0]
	if auth.StatusIcon != "⏳" || auth.Created != "Mar 1, 2024" || auth.Progress != 25 || auth.Tasks != "1/4" || auth.Size != "300 B" || auth.Modified != "Jun 1, 2024" {
		t.Fatalf("unexpected row %+v", auth)
	}
	if rows[1].Progress != 0 || rows[1].Tasks != "0/0" {
		t.Fatalf("unexpected empty-task row %+v", rows[1])
	}
	if rows[2].Modified != "-" {
		t.Fatalf("zero modified time should render as -, got %q", rows[2].Modified)
	}
}
