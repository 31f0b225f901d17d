package app

import (
	"fmt"
	"os"
	"strings"

	goredis "github.com/stitchfade/boutique-backend/internal/clients/redis"
	"github.com/stitchfade/boutique-backend/internal/platform/logger"
)

type Clients struct {
	TokenCache goredis.TokenCache
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis is optional; without it token resolution always hits postgres.
	var cache goredis.TokenCache
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		c, err := goredis.NewTokenCache(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis token cache: %w", err)
		}
		cache = c
	}

	return Clients{TokenCache: cache}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.TokenCache != nil {
		_ = c.TokenCache.Close()
	}
}
