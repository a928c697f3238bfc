package bot

import (
	"fmt"

	"github.com/mathlilypeng/github-app/internal/patch"
	"github.com/mathlilypeng/github-app/internal/task"
)

// change is one file mutation in either representation: a parsed file patch to
// apply against fetched content, or pre-applied full content
type change struct {
	sourcePath string
	targetPath string

	content   string           // pre-applied representation
	filePatch *patch.FilePatch // diff-based representation
}

func (c change) isNewFile() bool {
	return c.filePatch != nil && c.filePatch.IsNew()
}

// collectChanges normalizes the outcome's authoritative representation into a
// flat change set. Diff parsing happens here, before any remote mutation, so a
// malformed diff aborts the run with nothing created
func collectChanges(outcome task.Outcome) ([]change, error) {
	if len(outcome.Files) > 0 {
		changes := make([]change, 0, len(outcome.Files))
		for _, f := range outcome.Files {
			sourcePath := f.SourcePath
			if sourcePath == "" {
				sourcePath = f.TargetPath
			}
			changes = append(changes, change{
				sourcePath: sourcePath,
				targetPath: f.TargetPath,
				content:    f.Content,
			})
		}
		return changes, nil
	}

	filePatches, err := patch.Parse(outcome.UnifiedDiff)
	if err != nil {
		return nil, err
	}
	if len(filePatches) == 0 {
		return nil, fmt.Errorf("unified diff contains no file sections")
	}

	changes := make([]change, 0, len(filePatches))
	for _, fp := range filePatches {
		changes = append(changes, change{
			sourcePath: fp.OldName,
			targetPath: fp.Path(),
			filePatch:  &fp,
		})
	}
	return changes, nil
}
