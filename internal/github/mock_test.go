package github

import (
	"context"
	"errors"
	"net/http"

	gh "github.com/google/go-github/v68/github"
)

// mockClient implements Client for testing.
type mockClient struct {
	listStargazersFn func(ctx context.Context, owner, repo string, opts *gh.ListOptions) ([]*gh.Stargazer, *gh.Response, error)
	listStarredFn    func(ctx context.Context, user string, opts *gh.ActivityListStarredOptions) ([]*gh.StarredRepository, *gh.Response, error)
}

func (m *mockClient) ListStargazers(ctx context.Context, owner, repo string, opts *gh.ListOptions) ([]*gh.Stargazer, *gh.Response, error) {
	return m.listStargazersFn(ctx, owner, repo, opts)
}

func (m *mockClient) ListStarred(ctx context.Context, user string, opts *gh.ActivityListStarredOptions) ([]*gh.StarredRepository, *gh.Response, error) {
	return m.listStarredFn(ctx, user, opts)
}

func okResponse() *gh.Response {
	return &gh.Response{Response: &http.Response{StatusCode: http.StatusOK}}
}

// notFound mimics go-github, which returns both the response and an
// *ErrorResponse for a 404.
func notFound() (*gh.Response, error) {
	resp := &gh.Response{Response: &http.Response{StatusCode: http.StatusNotFound}}
	return resp, &gh.ErrorResponse{Response: resp.Response, Message: "Not Found"}
}

func makeStargazer(login string) *gh.Stargazer {
	return &gh.Stargazer{User: &gh.User{Login: gh.Ptr(login)}}
}

func makeStarred(owner, name string) *gh.StarredRepository {
	return &gh.StarredRepository{
		Repository: &gh.Repository{
			Owner: &gh.User{Login: gh.Ptr(owner)},
			Name:  gh.Ptr(name),
		},
	}
}

var errNetwork = errors.New("connection reset by peer")
