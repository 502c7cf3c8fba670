package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/grapplegraph/pkg/observability"
)

// Instrument wraps c so that every lookup and write is reported to the
// registered observability cache hooks.
func Instrument(c Cache) Cache {
	return instrumented{c}
}

type instrumented struct{ Cache }

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, hit, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}

// KeyType returns "build" or "render" for keys made by a Keyer, scoped or
// not, and "other" for anything else.
func KeyType(key string) string {
	for _, t := range []string{keyTypeBuild, keyTypeRender} {
		if strings.HasPrefix(key, t+":") || strings.Contains(key, ":"+t+":") {
			return t
		}
	}
	return "other"
}
