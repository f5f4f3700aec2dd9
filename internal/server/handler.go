package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stahnma/gh-starneighbours/internal/cache"
	"github.com/stahnma/gh-starneighbours/internal/metrics"
	"github.com/stahnma/gh-starneighbours/internal/neighbours"
)

type handler struct {
	lookup neighbours.Lookup
	cache  cache.Store
	log    zerolog.Logger
}

// starNeighbours handles GET /repos/:owner/repo/:repo/starneighbours.
func (h *handler) starNeighbours(c *gin.Context) {
	ctx := c.Request.Context()
	owner, repo := c.Param("owner"), c.Param("repo")
	key := neighbours.CacheKey(owner, repo)

	if h.cache != nil {
		var cached []neighbours.Neighbour
		found, err := h.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			metrics.CacheRequests.WithLabelValues("error").Inc()
			h.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		case found:
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			c.JSON(http.StatusOK, cached)
			return
		default:
			metrics.CacheRequests.WithLabelValues("miss").Inc()
		}
	}

	result, err := h.lookup.GetNeighbours(ctx, owner, repo)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "fetching neighbours from GitHub failed"})
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, result); err != nil {
			metrics.CacheRequests.WithLabelValues("error").Inc()
			h.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	c.JSON(http.StatusOK, result)
}
