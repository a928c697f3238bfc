package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chainguard-dev/clog"

	"github.com/mathlilypeng/github-app/internal/bot"
	"github.com/mathlilypeng/github-app/internal/ghauth"
	"github.com/mathlilypeng/github-app/internal/git"
	githubpkg "github.com/mathlilypeng/github-app/internal/github"
	"github.com/mathlilypeng/github-app/internal/task"
	"github.com/mathlilypeng/github-app/internal/telemetry"
)

func setupContext() context.Context {
	logger := clog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := clog.WithLogger(context.Background(), logger)
	ctx, cancel := context.WithCancel(ctx)

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		logger.Info("Interrupt signal detected, shutting down gracefully...")
		cancel()
		<-interrupt
		clog.FatalContextf(ctx, "Forcing shutdown")
	}()

	return ctx
}

func newTelemetryProvider(ctx context.Context) (*telemetry.Provider, error) {
	return telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:      cfg.TelemetryEnabled,
		OTLPEndpoint: cfg.TelemetryOTLPEndpoint,
		Version:      version,
	})
}

func newBot(ctx context.Context) *bot.Bot {
	var clients ghauth.ClientFactory
	if cfg.UsesAppAuth() {
		clients = ghauth.NewAppClientFactory(cfg.GitHubAppID, cfg.GitHubAppPrivateKey)
	} else {
		clients = ghauth.NewTokenClientFactory(ctx, cfg.GitHubToken)
	}

	return bot.New(
		&githubServiceFactory{clients: clients},
		bot.WithBaseBranch(cfg.BaseBranch),
		bot.WithMaxConcurrentFiles(cfg.MaxConcurrentFiles),
	)
}

// githubServiceFactory builds the per-task repository services from an
// installation-scoped GitHub client
type githubServiceFactory struct {
	clients ghauth.ClientFactory
}

func (f *githubServiceFactory) ServicesFor(ctx context.Context, info task.Info) (bot.Services, error) {
	client, err := f.clients.ClientFor(ctx, info.InstallationID)
	if err != nil {
		return bot.Services{}, err
	}

	return bot.Services{
		Repo:         git.NewGithubRepoFromClient(client, info.RepoOwner, info.RepoName),
		PullRequests: githubpkg.NewPullRequestService(client),
		Comments:     githubpkg.NewIssueCommentService(client),
	}, nil
}
