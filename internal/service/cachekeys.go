package service

import (
	"time"

	"github.com/fiberbill/fiberbill/internal/cache"
)

// routerCacheTTL bounds how stale a cached router credential can be
const routerCacheTTL = 5 * time.Minute

const cacheKeyPrefixRouter = "router"

func cacheKeyRouter(routerID string) string {
	return cache.GenerateKey(cacheKeyPrefixRouter, routerID)
}
