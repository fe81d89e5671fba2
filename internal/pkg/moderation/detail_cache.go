package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/medihub/medihub/app/models"
	"github.com/redis/go-redis/v9"
)

const (
	DetailCacheTTL        = 60 * time.Second
	generationTTL         = 24 * time.Hour
	detailKeyPrefix       = "report:detail:"
	reportGenKeyPrefix    = "report:gen:"
	targetIndexKeyPattern = "report:target:%s:%d"
	targetGenKeyPattern   = "report:target-gen:%s:%d"
)

// ErrStaleDetail is returned by Set when the report or its target was
// invalidated after the detail was read.
var ErrStaleDetail = errors.New("report detail invalidated while loading")

// CacheStamp holds the invalidation generations observed before a detail was
// read from the database.
type CacheStamp struct {
	Report int64
	Target int64
}

// DetailCache is a read-through cache for assembled report details.
// Get returns (nil, nil) on a miss. Readers take ReportGeneration before
// loading the report and TargetGeneration before loading target data, and
// Set refuses the write if either moved in between.
type DetailCache interface {
	Get(ctx context.Context, reportID uint) (*ReportDetail, error)
	ReportGeneration(ctx context.Context, reportID uint) (int64, error)
	TargetGeneration(ctx context.Context, targetType models.TargetType, targetID uint) (int64, error)
	Set(ctx context.Context, detail *ReportDetail, stamp CacheStamp) error
	InvalidateReport(ctx context.Context, reportID uint) error
	InvalidateTarget(ctx context.Context, targetType models.TargetType, targetID uint) error
}

func detailKey(reportID uint) string {
	return fmt.Sprintf("%s%d", detailKeyPrefix, reportID)
}

func reportGenKey(reportID uint) string {
	return fmt.Sprintf("%s%d", reportGenKeyPrefix, reportID)
}

func targetIndexKey(targetType models.TargetType, targetID uint) string {
	return fmt.Sprintf(targetIndexKeyPattern, targetType, targetID)
}

func targetGenKey(targetType models.TargetType, targetID uint) string {
	return fmt.Sprintf(targetGenKeyPattern, targetType, targetID)
}

// parseGeneration reads a counter value; a missing key is generation 0.
func parseGeneration(v interface{}) (int64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(val, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected generation value %T", v)
	}
}

// RedisDetailCache keeps details under report:detail:{id} and indexes them in a
// per-target set so a sanction change can drop every detail of that target.
type RedisDetailCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDetailCache(client *redis.Client, ttl time.Duration) *RedisDetailCache {
	if ttl <= 0 {
		ttl = DetailCacheTTL
	}
	return &RedisDetailCache{client: client, ttl: ttl}
}

func (c *RedisDetailCache) Get(ctx context.Context, reportID uint) (*ReportDetail, error) {
	raw, err := c.client.Get(ctx, detailKey(reportID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var detail ReportDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		// Corrupt entry; drop it and treat as a miss
		_ = c.client.Del(ctx, detailKey(reportID)).Err()
		return nil, nil
	}
	return &detail, nil
}

func (c *RedisDetailCache) ReportGeneration(ctx context.Context, reportID uint) (int64, error) {
	return c.generation(ctx, reportGenKey(reportID))
}

func (c *RedisDetailCache) TargetGeneration(ctx context.Context, targetType models.TargetType, targetID uint) (int64, error) {
	return c.generation(ctx, targetGenKey(targetType, targetID))
}

func (c *RedisDetailCache) generation(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Set stores detail unless an invalidation happened since stamp was taken.
func (c *RedisDetailCache) Set(ctx context.Context, detail *ReportDetail, stamp CacheStamp) error {
	if detail == nil || detail.Report == nil {
		return nil
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		return err
	}

	key := detailKey(detail.Report.ID)
	index := targetIndexKey(detail.Report.TargetType, detail.Report.TargetID)
	reportGen := reportGenKey(detail.Report.ID)
	targetGen := targetGenKey(detail.Report.TargetType, detail.Report.TargetID)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		vals, err := tx.MGet(ctx, reportGen, targetGen).Result()
		if err != nil {
			return err
		}
		current := CacheStamp{}
		if current.Report, err = parseGeneration(vals[0]); err != nil {
			return err
		}
		if current.Target, err = parseGeneration(vals[1]); err != nil {
			return err
		}
		if current != stamp {
			return ErrStaleDetail
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.ttl)
			pipe.SAdd(ctx, index, key)
			pipe.Expire(ctx, index, c.ttl)
			return nil
		})
		return err
	}, reportGen, targetGen)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrStaleDetail
	}
	return err
}

func (c *RedisDetailCache) InvalidateReport(ctx context.Context, reportID uint) error {
	gen := reportGenKey(reportID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, gen)
		pipe.Expire(ctx, gen, generationTTL)
		pipe.Del(ctx, detailKey(reportID))
		return nil
	})
	return err
}

// InvalidateTarget bumps the target generation first so in-flight readers of
// any report on this target cannot write back, then drops the indexed details.
func (c *RedisDetailCache) InvalidateTarget(ctx context.Context, targetType models.TargetType, targetID uint) error {
	gen := targetGenKey(targetType, targetID)
	if _, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, gen)
		pipe.Expire(ctx, gen, generationTTL)
		return nil
	}); err != nil {
		return err
	}

	index := targetIndexKey(targetType, targetID)
	keys, err := c.client.SMembers(ctx, index).Result()
	if err != nil {
		return err
	}
	keys = append(keys, index)
	return c.client.Del(ctx, keys...).Err()
}
