package sdd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanProject reports which .agent-sdd sections exist under projectPath and
// the files they contain. Unreadable entries become warnings rather than
// errors.
func (s *Scanner) ScanProject(projectPath string) (ProjectReport, error) {
	report := ProjectReport{
		Sections: make(map[string]SectionInfo, len(Sections)),
		Warnings: []string{},
	}
	info, err := os.Stat(projectPath)
	if err != nil {
		return report, fmt.Errorf("scan project: %w", err)
	}
	if !info.IsDir() {
		return report, fmt.Errorf("scan project: %s: %w", projectPath, ErrNotDirectory)
	}
	root := filepath.Join(projectPath, AgentSDDDir)
	report.HasAgentSDD = isDir(root)
	if !report.HasAgentSDD {
		report.Warnings = append(report.Warnings, "No .agent-sdd directory found")
	}
	for _, name := range Sections {
		section, warnings := s.scanSection(filepath.Join(root, name), name)
		report.Sections[name] = section
		report.Warnings = append(report.Warnings, warnings...)
	}
	return report, nil
}

func (s *Scanner) scanSection(dir, name string) (SectionInfo, []string) {
	section := SectionInfo{Files: []FileInfo{}}
	if !isDir(dir) {
		return section, nil
	}
	section.Exists = true
	var warnings []string
	warn := func(path string, err error) {
		s.logger.Warn("scan section entry", "section", name, "path", path, "err", err)
		warnings = append(warnings, fmt.Sprintf("%s: %s: %v", name, path, err))
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			warn(path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			warn(path, err)
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = d.Name()
		}
		section.Files = append(section.Files, FileInfo{
			RelPath:  filepath.ToSlash(rel),
			FullPath: path,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
		section.Summary.Total++
		section.Summary.Bytes += info.Size()
		if info.ModTime().After(section.Summary.Latest) {
			section.Summary.Latest = info.ModTime()
		}
		return nil
	})
	sort.Slice(section.Files, func(i, j int) bool {
		return section.Files[i].RelPath < section.Files[j].RelPath
	})
	return section, warnings
}

// ListChildDirectories returns the non-hidden directories directly below
// base, sorted by name.
func ListChildDirectories(base string) ([]DirectoryInfo, error) {
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("list directories: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("list directories: %s: %w", base, ErrNotDirectory)
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("list directories: %w", err)
	}
	dirs := make([]DirectoryInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(base, name)
		if !isDir(full) {
			continue
		}
		dirs = append(dirs, DirectoryInfo{Name: name, FullPath: full})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	return dirs, nil
}
