package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stahnma/gh-starneighbours/internal/cache"
	"github.com/stahnma/gh-starneighbours/internal/config"
	ghub "github.com/stahnma/gh-starneighbours/internal/github"
	"github.com/stahnma/gh-starneighbours/internal/logging"
	"github.com/stahnma/gh-starneighbours/internal/neighbours"
)

// App holds shared application state.
type App struct {
	Config   config.Config
	Cache    *cache.Cache
	GHClient ghub.Client
	GitSHA   string
	GitDirty string
}

// NewApp creates a new App from the given configuration.
func NewApp(cfg config.Config, gitSHA, gitDirty string) (*App, error) {
	c, err := cache.LoadFromFile(cfg.CacheFile, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("loading cache: %w", err)
	}

	return &App{
		Config:   cfg,
		Cache:    c,
		GitSHA:   gitSHA,
		GitDirty: gitDirty,
	}, nil
}

// ensureClient creates the GitHub client if it doesn't exist.
func (a *App) ensureClient() error {
	if a.GHClient != nil {
		return nil
	}
	if a.Config.GitHubToken == "" {
		return fmt.Errorf("GITHUB_TOKEN must be set")
	}
	a.GHClient = ghub.NewClient(a.Config.GitHubToken)
	return nil
}

// SaveCache saves the cache to disk if caching is enabled.
func (a *App) SaveCache() error {
	if !a.Config.NoCache {
		return a.Cache.SaveToFile(a.Config.CacheFile)
	}
	return nil
}

func (a *App) pageOptions() ghub.PageOptions {
	return ghub.PageOptions{PerPage: a.Config.PerPage, MaxPages: a.Config.MaxPages}
}

func (a *App) newService() *neighbours.Service {
	return neighbours.NewService(a.GHClient, neighbours.Options{
		Page:           a.pageOptions(),
		MaxConcurrency: a.Config.MaxConcurrency,
	})
}

// Neighbours returns the star neighbours of owner/repo, served from the
// cache when an unexpired entry exists.
func (a *App) Neighbours(ctx context.Context, owner, repo string) ([]neighbours.Neighbour, error) {
	if err := a.ensureClient(); err != nil {
		return nil, err
	}
	log := logging.NewLogger("commands")
	key := neighbours.CacheKey(owner, repo)

	if !a.Config.NoCache {
		var cached []neighbours.Neighbour
		found, err := a.Cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Ignoring unreadable cache entry")
		} else if found {
			log.Debug().Str("key", key).Msg("Cache hit")
			return cached, nil
		}
		log.Debug().Str("key", key).Msg("Cache miss")
	}

	result, err := a.newService().GetNeighbours(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	if !a.Config.NoCache {
		if err := a.Cache.Set(ctx, key, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// NewRootCommand creates the root cobra command with all subcommands.
func (a *App) NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   os.Args[0],
		Short: "Find GitHub repositories that share stargazers with a repository.",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&a.Config.NoCache, "no-cache", a.Config.NoCache, "Disable caching")
	flags.IntVar(&a.Config.PerPage, "per-page", a.Config.PerPage, "Items requested per GitHub page (max 100)")
	flags.IntVar(&a.Config.MaxPages, "max-pages", a.Config.MaxPages, "Maximum pages fetched per listing")
	flags.IntVar(&a.Config.MaxConcurrency, "max-concurrency", a.Config.MaxConcurrency, "Maximum concurrent per-stargazer fetches (0 = unlimited)")

	rootCmd.AddCommand(a.newNeighboursCommand())
	rootCmd.AddCommand(a.newStargazersCommand())
	rootCmd.AddCommand(a.newStarredCommand())
	rootCmd.AddCommand(a.newServeCommand())
	rootCmd.AddCommand(a.newVersionCommand())
	rootCmd.AddCommand(a.newClearCacheCommand())

	return rootCmd
}
