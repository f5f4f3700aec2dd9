// Package neighbours finds repositories that share stargazers with a given
// repository.
package neighbours

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	ghub "github.com/stahnma/gh-starneighbours/internal/github"
	"github.com/stahnma/gh-starneighbours/internal/logging"
	"github.com/stahnma/gh-starneighbours/internal/metrics"
)

// Neighbour is a repository sharing stargazers with the looked-up one.
type Neighbour struct {
	Repo       string   `json:"repo"`
	Stargazers []string `json:"stargazers"`
}

// CacheKey is the cache key under which the neighbours of owner/repo are
// stored.
func CacheKey(owner, repo string) string {
	return "neighbours:" + ghub.FullName(owner, repo)
}

// Lookup is implemented by Service and by anything fronting it.
type Lookup interface {
	GetNeighbours(ctx context.Context, owner, repo string) ([]Neighbour, error)
}

// Options tunes the upstream fan-out.
type Options struct {
	Page ghub.PageOptions
	// MaxConcurrency limits concurrent per-stargazer fetches; 0 means no limit.
	MaxConcurrency int
}

// DefaultOptions returns the default page bounds with unlimited concurrency.
func DefaultOptions() Options {
	return Options{Page: ghub.DefaultPageOptions()}
}

// Service computes star neighbours against the GitHub API.
type Service struct {
	client ghub.Client
	opts   Options
	log    zerolog.Logger
}

// NewService creates a Service that shares client across all fetches.
func NewService(client ghub.Client, opts Options) *Service {
	return &Service{
		client: client,
		opts:   opts,
		log:    logging.NewLogger("neighbours"),
	}
}

// userStarred is one stargazer's starred repositories, in fetch order.
type userStarred struct {
	login string
	repos []string
}

// GetNeighbours returns every repository other than owner/repo starred by at
// least one of its stargazers. Results are in order of first discovery and
// each stargazer list is sorted. Any upstream failure fails the whole call.
func (s *Service) GetNeighbours(ctx context.Context, owner, repo string) ([]Neighbour, error) {
	start := time.Now()
	target := ghub.FullName(owner, repo)
	s.log.Debug().Str("repo", target).Msg("Looking up neighbours")

	result, stargazers, err := s.getNeighbours(ctx, owner, repo)
	if err != nil {
		metrics.Lookups.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Str("repo", target).Msg("Neighbour lookup failed")
		return nil, err
	}

	metrics.Lookups.WithLabelValues("ok").Inc()
	metrics.LookupDuration.Observe(time.Since(start).Seconds())
	s.log.Info().
		Str("repo", target).
		Int("stargazers", stargazers).
		Int("neighbours", len(result)).
		Dur("duration", time.Since(start)).
		Msg("Neighbour lookup complete")
	return result, nil
}

func (s *Service) getNeighbours(ctx context.Context, owner, repo string) ([]Neighbour, int, error) {
	stargazers, err := ghub.Collect(ghub.Stargazers(ctx, s.client, owner, repo, s.opts.Page))
	if err != nil {
		return nil, 0, fmt.Errorf("listing stargazers of %s: %w", ghub.FullName(owner, repo), err)
	}
	if len(stargazers) == 0 {
		return []Neighbour{}, 0, nil
	}

	starred, err := s.collectStarred(ctx, stargazers)
	if err != nil {
		return nil, len(stargazers), err
	}
	return group(starred, ghub.FullName(owner, repo)), len(stargazers), nil
}

// collectStarred fetches each stargazer's starred repositories concurrently.
// results[i] belongs to stargazers[i] whatever order the fetches finish in.
func (s *Service) collectStarred(ctx context.Context, stargazers []string) ([]userStarred, error) {
	results := make([]userStarred, len(stargazers))
	g, gctx := errgroup.WithContext(ctx)
	if s.opts.MaxConcurrency > 0 {
		g.SetLimit(s.opts.MaxConcurrency)
	}
	for i, login := range stargazers {
		g.Go(func() error {
			repos, err := ghub.Collect(ghub.StarredRepositories(gctx, s.client, login, s.opts.Page))
			if err != nil {
				return fmt.Errorf("listing repositories starred by %s: %w", login, err)
			}
			results[i] = userStarred{login: login, repos: repos}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// group inverts user -> repos into repo -> users, keeping first-seen repo
// order and dropping target.
func group(starred []userStarred, target string) []Neighbour {
	var order []string
	byRepo := make(map[string]map[string]struct{})
	for _, u := range starred {
		for _, r := range u.repos {
			users, ok := byRepo[r]
			if !ok {
				users = make(map[string]struct{})
				byRepo[r] = users
				order = append(order, r)
			}
			users[u.login] = struct{}{}
		}
	}

	out := make([]Neighbour, 0, len(order))
	for _, r := range order {
		if r == target {
			continue
		}
		logins := make([]string, 0, len(byRepo[r]))
		for login := range byRepo[r] {
			logins = append(logins, login)
		}
		slices.Sort(logins)
		out = append(out, Neighbour{Repo: r, Stargazers: logins})
	}
	return out
}
