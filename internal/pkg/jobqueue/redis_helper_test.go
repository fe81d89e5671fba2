package jobqueue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medihub/medihub/internal/pkg/env"
)

// jobqueue tests own this DB so they never touch cache or limiter keys
const isolatedJobQueueTestRedisDB = 14

func redisCandidates() []string {
	port := env.GetEnv("CACHE_PORT", "6379")
	hosts := []string{env.GetEnv("CACHE_HOST", ""), "cache", "medihub-cache", "localhost"}

	seen := map[string]bool{}
	var addrs []string
	for _, h := range hosts {
		if h == "" {
			continue
		}
		addr := fmt.Sprintf("%s:%s", h, port)
		if !seen[addr] {
			seen[addr] = true
			addrs = append(addrs, addr)
		}
	}
	return addrs
}

// newIsolatedRedisClient returns a flushed client on db, or skips the test
// when no Redis is reachable.
func newIsolatedRedisClient(t *testing.T, db int) *redis.Client {
	t.Helper()

	var lastErr error
	for _, addr := range redisCandidates() {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: env.GetEnv("CACHE_PASSWORD", ""),
			DB:       db,
		})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			lastErr = err
			_ = client.Close()
			continue
		}

		if err := client.FlushDB(context.Background()).Err(); err != nil {
			_ = client.Close()
			t.Fatalf("failed to flush redis db %d: %v", db, err)
		}
		t.Cleanup(func() {
			_ = client.FlushDB(context.Background()).Err()
			_ = client.Close()
		})
		return client
	}

	t.Skipf("Skipping Redis-dependent test: no reachable Redis endpoint (%v)", lastErr)
	return nil
}
