package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stahnma/gh-starneighbours/internal/cache"
	"github.com/stahnma/gh-starneighbours/internal/server"
)

func (a *App) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [flags]",
		Short: "Serve the neighbours HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			return a.runServe(cmd, addr)
		},
	}
	cmd.Flags().String("addr", a.Config.ListenAddr, "Address to listen on")
	return cmd
}

func (a *App) runServe(cmd *cobra.Command, addr string) error {
	if a.Config.APIToken == "" {
		return fmt.Errorf("API_TOKEN must be set")
	}
	if err := a.ensureClient(); err != nil {
		return err
	}
	store, closeStore, err := a.responseStore()
	if err != nil {
		return err
	}
	defer closeStore()

	srv := server.New(server.Config{
		APIToken: a.Config.APIToken,
		Lookup:   a.newService(),
		Cache:    store,
		Debug:    a.Config.DebugMode,
	})
	return srv.Run(cmd.Context(), addr)
}

// responseStore picks Redis when REDIS_URL is set and an in-memory cache
// otherwise. It returns a nil store when caching is disabled.
func (a *App) responseStore() (cache.Store, func(), error) {
	noop := func() {}
	if a.Config.NoCache {
		return nil, noop, nil
	}
	if a.Config.RedisURL == "" {
		return cache.New(a.Config.CacheTTL), noop, nil
	}
	rs, err := cache.NewRedisStoreFromURL(a.Config.RedisURL, a.Config.CacheTTL)
	if err != nil {
		return nil, noop, err
	}
	return rs, func() { rs.Close() }, nil
}
