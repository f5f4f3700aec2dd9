package github

import (
	"context"
	"fmt"
	"iter"

	gh "github.com/google/go-github/v68/github"
)

// Stargazers yields the logins of users who starred owner/repo.
// A repository that does not exist yields nothing.
func Stargazers(ctx context.Context, client Client, owner, repo string, opts PageOptions) iter.Seq2[string, error] {
	fetch := func(ctx context.Context, lo gh.ListOptions) ([]*gh.Stargazer, *gh.Response, error) {
		return client.ListStargazers(ctx, owner, repo, &lo)
	}
	return Paginate(ctx, "stargazers", fetch, stargazerLogins, opts)
}

// StarredRepositories yields the "owner/name" of every repository user starred.
// An unknown user yields nothing.
func StarredRepositories(ctx context.Context, client Client, user string, opts PageOptions) iter.Seq2[string, error] {
	fetch := func(ctx context.Context, lo gh.ListOptions) ([]*gh.StarredRepository, *gh.Response, error) {
		return client.ListStarred(ctx, user, &gh.ActivityListStarredOptions{ListOptions: lo})
	}
	return Paginate(ctx, "starred", fetch, starredFullNames, opts)
}

func stargazerLogins(page []*gh.Stargazer) ([]string, error) {
	logins := make([]string, 0, len(page))
	for i, s := range page {
		if s.GetUser().GetLogin() == "" {
			return nil, fmt.Errorf("%w: stargazer %d has no login", ErrMalformedPayload, i)
		}
		logins = append(logins, s.GetUser().GetLogin())
	}
	return logins, nil
}

func starredFullNames(page []*gh.StarredRepository) ([]string, error) {
	names := make([]string, 0, len(page))
	for i, s := range page {
		repo := s.GetRepository()
		owner, name := repo.GetOwner().GetLogin(), repo.GetName()
		if owner == "" || name == "" {
			return nil, fmt.Errorf("%w: starred repository %d has no owner or name", ErrMalformedPayload, i)
		}
		names = append(names, FullName(owner, name))
	}
	return names, nil
}
