// Package sdd reads Agent-SDD project trees: the .agent-sdd sections, the
// specs under .agent-sdd/specs and their tasks.json task lists.
package sdd

import "time"

// AgentSDDDir is the project-relative directory holding Agent-SDD content.
const AgentSDDDir = ".agent-sdd"

// Sections are the standard .agent-sdd subdirectories reported by ScanProject.
var Sections = []string{"standards", "product", "specs", "instructions", "agents"}

// SpecStatus is the overall state of a spec.
type SpecStatus string

const (
	SpecCompleted  SpecStatus = "completed"
	SpecInProgress SpecStatus = "in_progress"
	SpecPending    SpecStatus = "pending"
)

// Valid reports whether s is a known spec status.
func (s SpecStatus) Valid() bool {
	switch s {
	case SpecCompleted, SpecInProgress, SpecPending:
		return true
	default:
		return false
	}
}

// TaskStatus is the state of a single task.
type TaskStatus string

const (
	TaskCompleted  TaskStatus = "completed"
	TaskInProgress TaskStatus = "in_progress"
	TaskPending    TaskStatus = "pending"
	TaskBlocked    TaskStatus = "blocked"
	TaskCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskCompleted, TaskInProgress, TaskPending, TaskBlocked, TaskCancelled:
		return true
	default:
		return false
	}
}

// Effort is a t-shirt size estimate.
type Effort string

const (
	EffortXS Effort = "XS"
	EffortS  Effort = "S"
	EffortM  Effort = "M"
	EffortL  Effort = "L"
	EffortXL Effort = "XL"
)

// Valid reports whether e is a known effort size.
func (e Effort) Valid() bool {
	switch e {
	case EffortXS, EffortS, EffortM, EffortL, EffortXL:
		return true
	default:
		return false
	}
}

// Spec is one directory under .agent-sdd/specs with a tasks.json file.
type Spec struct {
	// ID is the spec directory name.
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Feature        string     `json:"feature"`
	Phase          string     `json:"phase"`
	Status         SpecStatus `json:"status"`
	Created        string     `json:"created"`
	Path           string     `json:"path"`
	TaskCount      int        `json:"task_count"`
	CompletedTasks int        `json:"completed_tasks"`
	// SizeBytes is the total size of all files in the spec directory tree.
	SizeBytes int64 `json:"size_bytes"`
	// LastModified is the newest file modification time in the tree.
	LastModified time.Time `json:"last_modified,omitzero"`
	Tasks        []Task    `json:"tasks"`
}

// Progress returns the completed fraction in [0, 1]; zero when there are no tasks.
func (s Spec) Progress() float64 {
	if s.TaskCount <= 0 {
		return 0
	}
	return float64(s.CompletedTasks) / float64(s.TaskCount)
}

// Task is one entry of a spec's tasks.json.
type Task struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Status       TaskStatus `json:"status"`
	Completed    string     `json:"completed,omitempty"`
	Dependencies []string   `json:"dependencies"`
	Effort       Effort     `json:"effort"`
	UXUIReviewed *bool      `json:"ux_ui_reviewed,omitempty"`
}

// DirectoryInfo is a child directory of a base path.
type DirectoryInfo struct {
	Name     string `json:"name"`
	FullPath string `json:"full_path"`
}

// ProjectReport summarizes the .agent-sdd tree of a project.
type ProjectReport struct {
	HasAgentSDD bool                   `json:"has_agent_sdd"`
	Sections    map[string]SectionInfo `json:"sections"`
	Warnings    []string               `json:"warnings"`
}

// SectionInfo describes one .agent-sdd section directory.
type SectionInfo struct {
	Exists  bool           `json:"exists"`
	Summary SectionSummary `json:"summary"`
	Files   []FileInfo     `json:"files"`
}

// SectionSummary aggregates the files of a section.
type SectionSummary struct {
	Total  int       `json:"total"`
	Bytes  int64     `json:"bytes"`
	Latest time.Time `json:"latest,omitzero"`
}

// FileInfo is a regular file inside a section.
type FileInfo struct {
	RelPath  string    `json:"rel_path"`
	FullPath string    `json:"full_path"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mtime,omitzero"`
}
