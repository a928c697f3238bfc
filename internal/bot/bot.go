// Package bot routes incoming patch results and turns them into repository
// mutations or diagnostic comments.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mathlilypeng/github-app/internal/git"
	githubpkg "github.com/mathlilypeng/github-app/internal/github"
	"github.com/mathlilypeng/github-app/internal/patch"
	"github.com/mathlilypeng/github-app/internal/queue"
	"github.com/mathlilypeng/github-app/internal/task"
)

const defaultMaxConcurrentFiles = 4

// Services are the remote operations for one task's target repository, scoped
// to that task's installation
type Services struct {
	Repo         git.Repo
	PullRequests githubpkg.PullRequestService
	Comments     githubpkg.IssueCommentService
}

// ServiceFactory builds installation-scoped services for a task
type ServiceFactory interface {
	ServicesFor(ctx context.Context, info task.Info) (Services, error)
}

// Bot consumes externally computed patch results and ends every task in
// exactly one of: an opened pull request, a diagnostic comment, or a neutral
// "no changes" comment
type Bot struct {
	services           ServiceFactory
	baseBranch         string
	maxConcurrentFiles int
	tracer             trace.Tracer
}

// Option configures a Bot
type Option func(*Bot)

// WithBaseBranch sets the branch new branches are cut from and pull requests
// target. Defaults to main
func WithBaseBranch(branch string) Option {
	return func(b *Bot) { b.baseBranch = branch }
}

// WithMaxConcurrentFiles bounds the per-task file write fan-out
func WithMaxConcurrentFiles(n int) Option {
	return func(b *Bot) {
		if n > 0 {
			b.maxConcurrentFiles = n
		}
	}
}

// New creates a new Bot
func New(services ServiceFactory, opts ...Option) *Bot {
	b := &Bot{
		services:           services,
		baseBranch:         "main",
		maxConcurrentFiles: defaultMaxConcurrentFiles,
		tracer:             otel.Tracer("triagebot"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// HandleResult processes one patch result end to end. It always acknowledges:
// failures end in a terminal diagnostic, never in an implicit retry, since the
// queue owns redelivery policy and branch names are collision-proof anyway
func (b *Bot) HandleResult(ctx context.Context, res task.PatchResult) queue.AckDecision {
	ctx, span := b.tracer.Start(ctx, "HandleResult", trace.WithAttributes(
		attribute.String("repo", res.Task.QualifiedRepo()),
		attribute.Int("issue", res.Task.IssueNumber),
	))
	defer span.End()

	log := clog.FromContext(ctx).With(
		"repo", res.Task.QualifiedRepo(),
		"issue", res.Task.IssueNumber,
	)
	ctx = clog.WithLogger(ctx, log)

	if err := res.Validate(); err != nil {
		// With no trustworthy task identification there is nowhere to post a
		// diagnostic; rejection is logged and the message is consumed
		log.With("error", err).Error("Rejecting malformed patch result")
		return queue.Ack
	}

	svcs, err := b.services.ServicesFor(ctx, res.Task)
	if err != nil {
		log.With("error", err).Error("Failed to build installation-scoped services")
		return queue.Ack
	}

	decision := Decide(res)
	log.With("decision", decision.String()).Info("Classified patch result")

	switch decision {
	case ReportFailure:
		var body string
		if strings.TrimSpace(res.Outcome.Error) != "" {
			body = upstreamFailureBody(res.Outcome)
		} else {
			body = noChangesBody()
		}
		b.postComment(ctx, svcs, res.Task, body)

	case GeneratePullRequest:
		report := b.generatePullRequest(ctx, svcs, res.Task, res.Outcome)
		if report.succeeded() {
			log.With("pull_request", report.pullRequestURL).Info("Opened pull request")
			break
		}

		// PRCreateError is terminal-but-cosmetic: the branch and commits are
		// durable, so the diagnostic points at them instead of a PR
		b.postComment(ctx, svcs, res.Task, runFailureBody(report))
	}

	return queue.Ack
}

// runReport is the outcome of one mutation pipeline run
type runReport struct {
	branch         string
	pullRequestURL string

	// fatal is set by steps that abort the whole run: diff parsing, base ref
	// resolution, branch creation, and pull request creation
	fatal error

	// fileFailures are per-file errors from the fan-out, aggregated rather
	// than propagated individually
	fileFailures []fileFailure
}

type fileFailure struct {
	path string
	err  error
}

func (r runReport) succeeded() bool {
	return r.fatal == nil && len(r.fileFailures) == 0
}

// generatePullRequest runs the mutation state machine: resolve base, create
// branch, fan out file writes behind a join barrier, gate on their outcomes,
// then open the pull request. Each step is terminal on first fatal failure;
// nothing already written is rolled back
func (b *Bot) generatePullRequest(ctx context.Context, svcs Services, info task.Info, outcome task.Outcome) runReport {
	log := clog.FromContext(ctx)

	changes, err := collectChanges(outcome)
	if err != nil {
		return runReport{fatal: err}
	}

	baseSHA, err := svcs.Repo.GetBranchHead(ctx, b.baseBranch)
	if err != nil {
		return runReport{fatal: err}
	}

	branch := newBranchName(info.IssueNumber)
	if err := svcs.Repo.CreateBranch(ctx, branch, baseSHA); err != nil {
		return runReport{fatal: err}
	}
	log.With("branch", branch, "base_sha", baseSHA).Info("Created branch")

	failures := b.applyChanges(ctx, svcs.Repo, branch, info, changes)
	if len(failures) > 0 {
		return runReport{branch: branch, fileFailures: failures}
	}

	pr, err := svcs.PullRequests.CreatePullRequest(ctx, info.RepoOwner, info.RepoName,
		b.baseBranch, branch, pullRequestTitle(info), pullRequestBody(info))
	if err != nil {
		return runReport{branch: branch, fatal: err}
	}

	return runReport{branch: branch, pullRequestURL: pr.GetHTMLURL()}
}

// applyChanges dispatches all file writes concurrently, bounded by the
// configured width, and waits for every outcome before returning. A file's
// failure never short-circuits its siblings; partial progress information is
// preserved for the diagnostic
func (b *Bot) applyChanges(ctx context.Context, repo git.Repo, branch string, info task.Info, changes []change) []fileFailure {
	outcomes := make([]error, len(changes))

	var g errgroup.Group
	g.SetLimit(b.maxConcurrentFiles)
	for i, ch := range changes {
		g.Go(func() error {
			outcomes[i] = b.applyChange(ctx, repo, branch, info, ch)
			return nil
		})
	}
	_ = g.Wait() // join barrier; workers report through outcomes, never through errors

	var failures []fileFailure
	for i, err := range outcomes {
		if err != nil {
			failures = append(failures, fileFailure{path: changes[i].targetPath, err: err})
		}
	}
	return failures
}

// applyChange performs the fetch/apply/write sequence for one file. The blob
// sha presented to the conditional write is read in this same run, immediately
// before the write
func (b *Bot) applyChange(ctx context.Context, repo git.Repo, branch string, info task.Info, ch change) error {
	message := commitMessage(info, ch.targetPath)

	// Newly added files carry no original content; their content comes
	// entirely from the patch and the write is an unconditional create
	if ch.isNewFile() {
		content, err := patch.Apply("", *ch.filePatch)
		if err != nil {
			return err
		}
		return repo.PutFile(ctx, branch, ch.targetPath, content, message, "")
	}

	source, err := repo.GetFile(ctx, ch.sourcePath, branch)
	if err != nil {
		if errors.Is(err, git.ErrFileNotFound) {
			if ch.filePatch != nil {
				// A diff against a file that does not exist cannot apply
				return &git.ContentFetchError{Path: ch.sourcePath, Err: err}
			}
			// Pre-applied content for a path that does not exist yet: create it
			return repo.PutFile(ctx, branch, ch.targetPath, ch.content, message, "")
		}
		return err
	}

	content := ch.content
	if ch.filePatch != nil {
		content, err = patch.Apply(source.Content, *ch.filePatch)
		if err != nil {
			return err
		}
	}

	blobSHA, err := b.targetBlobSHA(ctx, repo, branch, ch, source)
	if err != nil {
		return err
	}

	return repo.PutFile(ctx, branch, ch.targetPath, content, message, blobSHA)
}

// targetBlobSHA resolves the revision token for the path being written. For a
// rename the write lands on the target path, so the source's sha is not the
// right token; the target is read separately and an absent target means an
// unconditional create
func (b *Bot) targetBlobSHA(ctx context.Context, repo git.Repo, branch string, ch change, source git.RemoteFile) (string, error) {
	if ch.targetPath == ch.sourcePath {
		return source.BlobSHA, nil
	}

	target, err := repo.GetFile(ctx, ch.targetPath, branch)
	if err != nil {
		if errors.Is(err, git.ErrFileNotFound) {
			return "", nil
		}
		return "", err
	}
	return target.BlobSHA, nil
}

func (b *Bot) postComment(ctx context.Context, svcs Services, info task.Info, body string) {
	log := clog.FromContext(ctx)

	// Single attempt. A failed comment is logged, never escalated into a
	// second comment attempt
	if err := svcs.Comments.CreateComment(ctx, info.RepoOwner, info.RepoName, info.IssueNumber, body); err != nil {
		log.With("error", err).Error("Failed to post diagnostic comment")
		return
	}
	log.Info("Posted diagnostic comment")
}

func commitMessage(info task.Info, path string) string {
	return fmt.Sprintf("Update %s for issue #%d", path, info.IssueNumber)
}

func pullRequestTitle(info task.Info) string {
	title := strings.TrimSpace(info.IssueTitle)
	if title == "" {
		return fmt.Sprintf("Automated fix for issue #%d", info.IssueNumber)
	}
	return fmt.Sprintf("Fix issue #%d: %s", info.IssueNumber, title)
}

func pullRequestBody(info task.Info) string {
	return fmt.Sprintf("This pull request was generated automatically from the patch computed for issue #%d.\n\nCloses #%d", info.IssueNumber, info.IssueNumber)
}
