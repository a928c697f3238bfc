// Package github wraps the GitHub pull request and issue comment operations
// the pipeline produces.
package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v72/github"
)

// PRCreateError indicates pull request creation failed. The branch and its
// commits are already durable when this happens; only the visible pull
// request is missing
type PRCreateError struct {
	Head string
	Err  error
}

func (e *PRCreateError) Error() string {
	return fmt.Sprintf("failed to create pull request from %q: %v", e.Head, e.Err)
}

func (e *PRCreateError) Unwrap() error { return e.Err }

// PullRequestService handles GitHub pull request operations
type PullRequestService interface {
	CreatePullRequest(ctx context.Context, owner, repo, baseBranch, sourceBranch, title, body string) (*github.PullRequest, error)
}

// pullRequestService implements PullRequestService using the GitHub API
type pullRequestService struct {
	client *github.Client
}

// NewPullRequestService creates a new PullRequestService
func NewPullRequestService(client *github.Client) PullRequestService {
	return &pullRequestService{
		client: client,
	}
}

func (prs *pullRequestService) CreatePullRequest(ctx context.Context, owner, repo, baseBranch, sourceBranch, title, body string) (*github.PullRequest, error) {
	newPR := &github.NewPullRequest{
		Title:               github.Ptr(title),
		Head:                github.Ptr(sourceBranch),
		Base:                github.Ptr(baseBranch),
		Body:                github.Ptr(body),
		MaintainerCanModify: github.Ptr(true),
	}

	pr, _, err := prs.client.PullRequests.Create(ctx, owner, repo, newPR)
	if err != nil {
		return nil, &PRCreateError{Head: sourceBranch, Err: err}
	}

	return pr, nil
}
