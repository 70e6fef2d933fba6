package registry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "registry.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	clock := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func TestAddListRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	a, err := s.Add(ctx, "/work/alpha", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if a.ID == "" || a.Label != "alpha" || a.Path != filepath.Clean("/work/alpha") {
		t.Fatalf("unexpected project %+v", a)
	}
	again, err := s.Add(ctx, "/work/alpha/", "Alpha")
	if err != nil {
		t.Fatalf("re-Add: %v", err)
	}
	if again.ID != a.ID || again.Label != "Alpha" {
		t.Fatalf("re-adding should keep the id and update the label: %+v", again)
	}
	if _, err := s.Add(ctx, "/work/beta", "Beta"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Label != "Alpha" || list[1].Label != "Beta" {
		t.Fatalf("unexpected list %+v", list)
	}

	if err := s.Remove(ctx, a.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Add(ctx, "  ", ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	if _, ok, err := s.Selected(ctx); err != nil || ok {
		t.Fatalf("expected no selection, got ok=%v err=%v", ok, err)
	}
	if _, err := s.Select(ctx, "/nowhere"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	a, _ := s.Add(ctx, "/work/alpha", "")
	b, _ := s.Add(ctx, "/work/beta", "")
	if _, err := s.Select(ctx, "/work/beta"); err != nil {
		t.Fatalf("Select by path: %v", err)
	}
	selected, err := s.Select(ctx, a.ID)
	if err != nil {
		t.Fatalf("Select by id: %v", err)
	}
	if selected.LastOpened.IsZero() {
		t.Fatal("Select should stamp last opened")
	}
	got, ok, err := s.Selected(ctx)
	if err != nil || !ok || got.ID != a.ID {
		t.Fatalf("Selected = %+v, %v, %v", got, ok, err)
	}

	list, _ := s.List(ctx)
	if list[0].ID != a.ID || list[1].ID != b.ID {
		t.Fatalf("most recently opened should list first: %+v", list)
	}

	if err := s.Remove(ctx, a.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := s.Selected(ctx); ok {
		t.Fatal("removing the selected project should clear the selection")
	}
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p, err := s.Add(ctx, "/work/alpha", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := s.Select(ctx, p.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if s.Path() != path {
		t.Fatalf("unexpected path %q", s.Path())
	}
	got, ok, err := s.Selected(ctx)
	if err != nil || !ok || got.ID != p.ID {
		t.Fatalf("Selected after reopen = %+v, %v, %v", got, ok, err)
	}
}
