package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v72/github"
)

// CommentPostError indicates that posting an issue comment failed. Comments
// are posted once and never retried, to avoid comment storms on an already
// degraded channel
type CommentPostError struct {
	IssueNumber int
	Err         error
}

func (e *CommentPostError) Error() string {
	return fmt.Sprintf("failed to post comment on issue #%d: %v", e.IssueNumber, e.Err)
}

func (e *CommentPostError) Unwrap() error { return e.Err }

// IssueCommentService posts comments on issues
type IssueCommentService interface {
	CreateComment(ctx context.Context, owner, repo string, issueNumber int, body string) error
}

type issueCommentService struct {
	client *github.Client
}

// NewIssueCommentService creates a new IssueCommentService
func NewIssueCommentService(client *github.Client) IssueCommentService {
	return &issueCommentService{
		client: client,
	}
}

func (ics *issueCommentService) CreateComment(ctx context.Context, owner, repo string, issueNumber int, body string) error {
	comment := &github.IssueComment{
		Body: github.Ptr(body),
	}

	_, _, err := ics.client.Issues.CreateComment(ctx, owner, repo, issueNumber, comment)
	if err != nil {
		return &CommentPostError{IssueNumber: issueNumber, Err: err}
	}
	return nil
}
