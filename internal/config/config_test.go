package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, EnvPrefix+"_") {
			key, _, _ := strings.Cut(kv, "=")
			t.Setenv(key, "")
		}
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Preview.Engine != "basic" || cfg.Preview.MaxBytes != 10<<20 || cfg.Preview.Sanitize {
		t.Fatalf("unexpected preview defaults %+v", cfg.Preview)
	}
	if !cfg.Render.FrontMatter || cfg.Server.Addr != "127.0.0.1:7878" || cfg.Watch.Debounce != 300*time.Millisecond {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadUserConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "mdhtml", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "preview:\n  engine: gfm\n  sanitize: true\nwatch:\n  debounce: 1s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if UserConfigPath() != path {
		t.Fatalf("UserConfigPath = %q, want %q", UserConfigPath(), path)
	}
	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Preview.Engine != "gfm" || !cfg.Preview.Sanitize || cfg.Watch.Debounce != time.Second {
		t.Fatalf("config file not applied: %+v", cfg)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: file:1\nregistry:\n  path: /from/file.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MDHTML_SERVER_ADDR", "env:2")
	t.Setenv("MDHTML_REGISTRY_PATH", "/from/env.db")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", "flag-default", "")
	fs.String("registry", "", "")
	if err := fs.Parse([]string{"--addr", "flag:3"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(Options{
		File: path,
		Flags: map[string]*pflag.Flag{
			"server.addr":   fs.Lookup("addr"),
			"registry.path": fs.Lookup("registry"),
		},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "flag:3" {
		t.Fatalf("changed flag should win, got %q", cfg.Server.Addr)
	}
	if cfg.Registry.Path != "/from/env.db" {
		t.Fatalf("env should beat the config file, got %q", cfg.Registry.Path)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(Options{File: filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("preview:\n  engine: fancy\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(Options{File: bad}); err == nil || !strings.Contains(err.Error(), "preview.engine") {
		t.Fatalf("expected engine validation error, got %v", err)
	}
}
