package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is the interface all cache implementations must satisfy
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
	Flush(ctx context.Context)
}

// GenerateKey builds a cache key from a prefix and parts, e.g. router:rtr_01H...
func GenerateKey(prefix string, parts ...interface{}) string {
	sb := strings.Builder{}
	sb.WriteString(prefix)
	for _, part := range parts {
		sb.WriteString(":")
		sb.WriteString(fmt.Sprintf("%v", part))
	}
	return sb.String()
}
