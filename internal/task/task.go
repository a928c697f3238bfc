// Package task defines the immutable identifying data for one unit of triage
// work and the canonical schema of externally computed patch results.
package task

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Info identifies the originating issue for one unit of work. It is created
// once from the issue event and carried unchanged through the pipeline
type Info struct {
	RepoOwner      string `json:"repo_owner"`
	RepoName       string `json:"repo_name"`
	IssueNumber    int    `json:"issue_number"`
	IssueTitle     string `json:"issue_title"`
	InstallationID int64  `json:"installation_id"`
}

// QualifiedRepo returns the owner/name form of the target repository
func (i Info) QualifiedRepo() string {
	return fmt.Sprintf("%s/%s", i.RepoOwner, i.RepoName)
}

func (i Info) Validate() error {
	if i.RepoOwner == "" || i.RepoName == "" {
		return fmt.Errorf("task is missing repository identification")
	}
	if i.IssueNumber <= 0 {
		return fmt.Errorf("task has invalid issue number %d", i.IssueNumber)
	}
	return nil
}

// PatchedFile is one pre-applied file change. TargetPath may differ from
// SourcePath, e.g. for renames; Content is the full resulting file content
type PatchedFile struct {
	SourcePath string `json:"sourceFilePath"`
	TargetPath string `json:"targetFilePath"`
	Content    string `json:"targetFileContent"`
}

// Outcome is the externally computed patch outcome. Exactly one of UnifiedDiff
// or Files is the authoritative representation of changes; a non-empty Error
// means the upstream computation failed or produced nothing usable
type Outcome struct {
	UnifiedDiff string        `json:"unifiedDiff,omitempty"`
	Files       []PatchedFile `json:"patchedFiles,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// HasChanges reports whether the outcome carries any change set at all
func (o Outcome) HasChanges() bool {
	return len(o.Files) > 0 || strings.TrimSpace(o.UnifiedDiff) != ""
}

// PatchResult is one incoming result message, keyed by the task's installation
// for authorization scoping
type PatchResult struct {
	Task    Info    `json:"taskInfo"`
	Outcome Outcome `json:"lastPatchResult"`
}

// UnmarshalJSON accepts the canonical schema and migrates the legacy shape
// that named the task "issueInfo". Any other divergence is rejected here so
// the rest of the pipeline never branches on field presence
func (r *PatchResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Task       *Info   `json:"taskInfo"`
		LegacyTask *Info   `json:"issueInfo"`
		Outcome    Outcome `json:"lastPatchResult"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.Task != nil:
		r.Task = *raw.Task
	case raw.LegacyTask != nil:
		r.Task = *raw.LegacyTask
	default:
		return fmt.Errorf("patch result has no task info")
	}
	r.Outcome = raw.Outcome
	return nil
}

// Validate enforces the canonical-schema rules at the boundary
func (r PatchResult) Validate() error {
	if err := r.Task.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Outcome.UnifiedDiff) != "" && len(r.Outcome.Files) > 0 {
		return fmt.Errorf("patch result carries both a unified diff and pre-applied files; exactly one representation is allowed")
	}
	for _, f := range r.Outcome.Files {
		if f.TargetPath == "" {
			return fmt.Errorf("patched file is missing a target path")
		}
	}
	return nil
}
