package git

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v72/github"
)

// githubRepo implements Repo against the GitHub API. It manipulates the remote
// repository directly; e.g. file writes appear on the remote without a push
type githubRepo struct {
	git          *github.GitService          // For low-level ref operations
	reposService *github.RepositoriesService // For content operations

	owner string
	repo  string
}

// NewGithubRepo creates a new GitHub-backed Repo
func NewGithubRepo(gitService *github.GitService, reposService *github.RepositoriesService, owner string, repo string) Repo {
	return &githubRepo{
		git:          gitService,
		reposService: reposService,
		owner:        owner,
		repo:         repo,
	}
}

// NewGithubRepoFromClient creates a GitHub-backed Repo from a client
func NewGithubRepoFromClient(client *github.Client, owner string, repo string) Repo {
	return NewGithubRepo(client.Git, client.Repositories, owner, repo)
}

func (gr *githubRepo) GetBranchHead(ctx context.Context, branch string) (string, error) {
	ref, resp, err := gr.git.GetRef(ctx, gr.owner, gr.repo, fmt.Sprintf("refs/heads/%s", branch))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", &RefNotFoundError{Ref: branch}
		}
		return "", fmt.Errorf("failed to get branch reference: %w", err)
	}
	return ref.Object.GetSHA(), nil
}

func (gr *githubRepo) CreateBranch(ctx context.Context, name string, sha string) error {
	newRef := &github.Reference{
		Ref: github.Ptr(fmt.Sprintf("refs/heads/%s", name)),
		Object: &github.GitObject{
			SHA: github.Ptr(sha),
		},
	}

	_, _, err := gr.git.CreateRef(ctx, gr.owner, gr.repo, newRef)
	if err != nil {
		return &BranchCreateError{Branch: name, Err: err}
	}
	return nil
}

func (gr *githubRepo) GetFile(ctx context.Context, path string, ref string) (RemoteFile, error) {
	fileContent, _, resp, err := gr.reposService.GetContents(ctx, gr.owner, gr.repo, path, &github.RepositoryContentGetOptions{
		Ref: ref,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return RemoteFile{}, ErrFileNotFound
		}
		return RemoteFile{}, &ContentFetchError{Path: path, Err: err}
	}

	if fileContent == nil {
		return RemoteFile{}, &ContentFetchError{Path: path, Err: fmt.Errorf("path is a directory")}
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return RemoteFile{}, &ContentFetchError{Path: path, Err: fmt.Errorf("failed to decode content: %w", err)}
	}

	return RemoteFile{
		Path:    path,
		Content: content,
		BlobSHA: fileContent.GetSHA(),
	}, nil
}

func (gr *githubRepo) PutFile(ctx context.Context, branch string, path string, content string, message string, blobSHA string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: []byte(content),
		Branch:  github.Ptr(branch),
	}

	if blobSHA == "" {
		_, resp, err := gr.reposService.CreateFile(ctx, gr.owner, gr.repo, path, opts)
		if err != nil {
			if isConflict(resp) {
				// The path already exists; a create without a sha is a stale view
				return &ConflictError{Path: path, Err: err}
			}
			return fmt.Errorf("failed to create file %q: %w", path, err)
		}
		return nil
	}

	opts.SHA = github.Ptr(blobSHA)
	_, resp, err := gr.reposService.UpdateFile(ctx, gr.owner, gr.repo, path, opts)
	if err != nil {
		if isConflict(resp) {
			return &ConflictError{Path: path, Err: err}
		}
		return fmt.Errorf("failed to update file %q: %w", path, err)
	}
	return nil
}

// isConflict detects a rejected conditional write. The contents API reports a
// stale sha as 409, and as 422 on some code paths
func isConflict(resp *github.Response) bool {
	return resp != nil && (resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity)
}
