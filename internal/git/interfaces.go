// Package git provides the remote repository operations the pipeline needs,
// backed by the repository-hosting API.
package git

import (
	"context"
	"fmt"
)

// ErrFileNotFound is returned by GetFile when no file exists at the path
var ErrFileNotFound error = fmt.Errorf("file not found")

// RemoteFile is a file read from the remote repository. BlobSHA is the
// content-addressed revision token required for a conditional write; it is
// fetched immediately before each write to bound the staleness window
type RemoteFile struct {
	Path    string
	Content string
	BlobSHA string
}

// Repo provides the ordered remote operations of one pipeline run
type Repo interface {
	// GetBranchHead resolves a branch name to its head commit sha
	GetBranchHead(ctx context.Context, branch string) (string, error)

	// CreateBranch creates a new branch at the given commit sha
	CreateBranch(ctx context.Context, name string, sha string) error

	// GetFile reads a file's content and blob sha at the given ref
	GetFile(ctx context.Context, path string, ref string) (RemoteFile, error)

	// PutFile writes content to a path on a branch. A non-empty blobSHA makes
	// the write conditional on that revision; an empty blobSHA creates the file
	PutFile(ctx context.Context, branch string, path string, content string, message string, blobSHA string) error
}
