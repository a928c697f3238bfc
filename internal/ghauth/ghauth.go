// Package ghauth builds GitHub clients scoped to the authorization context of
// a task: per-installation clients for GitHub App credentials, or a shared
// token client.
package ghauth

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v72/github"
	"golang.org/x/oauth2"

	"github.com/mathlilypeng/github-app/internal/transport"
)

// ClientFactory provides a GitHub client authorized for an installation
type ClientFactory interface {
	ClientFor(ctx context.Context, installationID int64) (*github.Client, error)
}

// appClientFactory authenticates as a GitHub App, minting and caching one
// installation-scoped client per installation id
type appClientFactory struct {
	appID          int64
	privateKeyPath string

	mu      sync.Mutex
	clients map[int64]*github.Client
}

// NewAppClientFactory creates a factory backed by GitHub App credentials
func NewAppClientFactory(appID int64, privateKeyPath string) ClientFactory {
	return &appClientFactory{
		appID:          appID,
		privateKeyPath: privateKeyPath,
		clients:        make(map[int64]*github.Client),
	}
}

func (f *appClientFactory) ClientFor(_ context.Context, installationID int64) (*github.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[installationID]; ok {
		return client, nil
	}

	itr, err := ghinstallation.NewKeyFromFile(transport.WithRateLimiting(nil), f.appID, installationID, f.privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation transport for installation %d: %w", installationID, err)
	}

	client := github.NewClient(&http.Client{Transport: itr})
	f.clients[installationID] = client
	return client, nil
}

// tokenClientFactory ignores the installation and authenticates every request
// with a single static token
type tokenClientFactory struct {
	client *github.Client
}

// NewTokenClientFactory creates a factory that always returns a token-backed
// client
func NewTokenClientFactory(ctx context.Context, token string) ClientFactory {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, tokenSource)
	httpClient.Transport = transport.WithRateLimiting(httpClient.Transport)
	return &tokenClientFactory{client: github.NewClient(httpClient)}
}

func (f *tokenClientFactory) ClientFor(context.Context, int64) (*github.Client, error) {
	return f.client, nil
}
