package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// touchUntil keeps writing to paths until a change arrives, since the
// watcher may not be registered yet when the first writes happen.
func touchUntil(t *testing.T, got <-chan []string, paths ...string) []string {
	t.Helper()
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for i := 0; ; i++ {
		select {
		case changed := <-got:
			return changed
		case <-deadline:
			t.Fatal("timed out waiting for change")
		case <-tick.C:
			for _, p := range paths {
				if err := os.WriteFile(p, []byte{byte('a' + i%26)}, 0o644); err != nil {
					t.Fatalf("write: %v", err)
				}
			}
		}
	}
}

func TestWatchFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	target := filepath.Join(dir, "doc.md")
	other := filepath.Join(dir, "other.md")
	for _, p := range []string{target, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan []string, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{target}, 30*time.Millisecond, func(changed []string) {
			got <- changed
		})
	}()

	changed := touchUntil(t, got, other, target)
	want, _ := filepath.Abs(target)
	if len(changed) != 1 || changed[0] != want {
		t.Fatalf("expected only %s, got %v", want, changed)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestWatchDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan []string, 16)
	go func() {
		_ = Watcher{Debounce: 30 * time.Millisecond}.Run(ctx, []string{dir}, func(changed []string) {
			got <- changed
		})
	}()

	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	changed := touchUntil(t, got, a, b)
	if len(changed) == 0 {
		t.Fatal("expected changed paths")
	}
	for _, p := range changed {
		if filepath.Dir(p) != filepath.Clean(dir) {
			t.Fatalf("unexpected path %s", p)
		}
	}
}

func TestWatchErrors(t *testing.T) {
	t.Parallel()
	if err := Watch(context.Background(), nil, 0, func([]string) {}); !errors.Is(err, ErrNoPaths) {
		t.Fatalf("expected ErrNoPaths, got %v", err)
	}
	missing := filepath.Join(t.TempDir(), "missing.md")
	if err := Watch(context.Background(), []string{missing}, 0, func([]string) {}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
