package sdd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tidwall/gjson"
)

// Scanner reads Agent-SDD content from disk. Problems with individual specs
// or files are logged and skipped; only failures of the top-level directory
// are returned as errors.
type Scanner struct {
	logger *slog.Logger
}

// NewScanner returns a Scanner logging to logger, or discarding logs when
// logger is nil.
func NewScanner(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{logger: logger}
}

// ScanSpecs lists every spec under <projectPath>/.agent-sdd/specs, newest
// created first. A missing specs directory yields an empty list.
func (s *Scanner) ScanSpecs(projectPath string) ([]Spec, error) {
	specsDir := filepath.Join(projectPath, AgentSDDDir, "specs")
	info, err := os.Stat(specsDir)
	if err != nil || !info.IsDir() {
		return []Spec{}, nil
	}
	entries, err := os.ReadDir(specsDir)
	if err != nil {
		return nil, fmt.Errorf("read specs directory: %w", err)
	}
	specs := make([]Spec, 0, len(entries))
	for _, entry := range entries {
		dir := filepath.Join(specsDir, entry.Name())
		if !isDir(dir) {
			continue
		}
		spec, ok := s.scanSpec(dir)
		if ok {
			specs = append(specs, spec)
		}
	}
	sort.SliceStable(specs, func(i, j int) bool {
		return specs[i].Created > specs[j].Created
	})
	return specs, nil
}

func (s *Scanner) scanSpec(dir string) (Spec, bool) {
	tasksFile := filepath.Join(dir, "tasks.json")
	data, err := os.ReadFile(tasksFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("read tasks.json", "spec", dir, "err", err)
		}
		return Spec{}, false
	}
	if !gjson.ValidBytes(data) {
		s.logger.Warn("parse tasks.json", "spec", dir, "err", "invalid JSON")
		return Spec{}, false
	}
	doc := gjson.ParseBytes(data)
	spec := Spec{
		ID:      filepath.Base(dir),
		Feature: stringOr(doc.Get("feature"), "Unknown"),
		Phase:   stringOr(doc.Get("phase"), "Unknown"),
		Status:  SpecStatus(stringOr(doc.Get("status"), string(SpecPending))),
		Created: stringOr(doc.Get("created"), "Unknown"),
		Path:    dir,
		Tasks:   []Task{},
	}
	spec.Name = spec.Feature

	if tasks := doc.Get("tasks"); tasks.IsArray() {
		for _, raw := range tasks.Array() {
			task := parseTask(raw)
			if task.Status == TaskCompleted {
				spec.CompletedTasks++
			}
			spec.Tasks = append(spec.Tasks, task)
		}
	}
	spec.TaskCount = len(spec.Tasks)
	spec.SizeBytes, spec.LastModified = directoryStats(dir)
	return spec, true
}

func parseTask(raw gjson.Result) Task {
	task := Task{
		ID:           idString(raw.Get("id")),
		Name:         stringOr(raw.Get("name"), ""),
		Description:  stringOr(raw.Get("description"), ""),
		Status:       TaskStatus(stringOr(raw.Get("status"), string(TaskPending))),
		Completed:    stringOr(raw.Get("completed"), ""),
		Effort:       Effort(stringOr(raw.Get("effort"), "")),
		Dependencies: []string{},
	}
	for _, dep := range raw.Get("dependencies").Array() {
		if dep.Type == gjson.String {
			task.Dependencies = append(task.Dependencies, dep.Str)
		}
	}
	switch reviewed := raw.Get("ux_ui_reviewed"); reviewed.Type {
	case gjson.True, gjson.False:
		v := reviewed.Bool()
		task.UXUIReviewed = &v
	}
	return task
}

// stringOr returns r as a string when it holds a JSON string, fallback otherwise.
func stringOr(r gjson.Result, fallback string) string {
	if r.Type == gjson.String {
		return r.Str
	}
	return fallback
}

// idString accepts numeric ids as well as strings.
func idString(r gjson.Result) string {
	switch r.Type {
	case gjson.String, gjson.Number:
		return r.String()
	default:
		return ""
	}
}

// directoryStats sums regular file sizes below dir and returns the newest
// modification time. Unreadable entries are skipped.
func directoryStats(dir string) (int64, time.Time) {
	var (
		total  int64
		latest time.Time
	)
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		total += info.Size()
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	return total, latest
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
