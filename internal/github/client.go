package github

import (
	"context"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// Client defines the GitHub API methods used by this application.
type Client interface {
	ListStargazers(ctx context.Context, owner, repo string, opts *gh.ListOptions) ([]*gh.Stargazer, *gh.Response, error)
	ListStarred(ctx context.Context, user string, opts *gh.ActivityListStarredOptions) ([]*gh.StarredRepository, *gh.Response, error)
}

// realClient wraps the go-github client to implement Client.
type realClient struct {
	inner *gh.Client
}

// NewClient creates a new GitHub API client authenticated with the given token.
func NewClient(token string) Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	return &realClient{inner: gh.NewClient(httpClient)}
}

// Wrap adapts an already configured go-github client, e.g. one pointed at a
// GitHub Enterprise base URL or a test server.
func Wrap(c *gh.Client) Client {
	return &realClient{inner: c}
}

func (c *realClient) ListStargazers(ctx context.Context, owner, repo string, opts *gh.ListOptions) ([]*gh.Stargazer, *gh.Response, error) {
	return c.inner.Activity.ListStargazers(ctx, owner, repo, opts)
}

func (c *realClient) ListStarred(ctx context.Context, user string, opts *gh.ActivityListStarredOptions) ([]*gh.StarredRepository, *gh.Response, error) {
	return c.inner.Activity.ListStarred(ctx, user, opts)
}
