package properties

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const viewsHashKey = "properties:views"

// ViewCounter accumulates listing view counts in a Redis hash. The background
// worker drains the hash into the views column on a schedule, so a hot search
// endpoint never writes to Postgres. A nil ViewCounter is a no-op.
type ViewCounter struct {
	client *redis.Client
}

// NewViewCounter constructs a ViewCounter.
func NewViewCounter(client *redis.Client) *ViewCounter {
	return &ViewCounter{client: client}
}

// Touch increments the counter for each listed property.
func (v *ViewCounter) Touch(ctx context.Context, ids []int64) error {
	if v == nil || v.client == nil || len(ids) == 0 {
		return nil
	}
	pipe := v.client.Pipeline()
	for _, id := range ids {
		pipe.HIncrBy(ctx, viewsHashKey, strconv.FormatInt(id, 10), 1)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Restore credits drained counters back into the hash. Used when persisting
// the drained deltas failed, so a retry sees them again.
func (v *ViewCounter) Restore(ctx context.Context, counts map[int64]int64) error {
	if v == nil || v.client == nil || len(counts) == 0 {
		return nil
	}
	pipe := v.client.Pipeline()
	for id, delta := range counts {
		pipe.HIncrBy(ctx, viewsHashKey, strconv.FormatInt(id, 10), delta)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Drain atomically takes the accumulated counters, leaving an empty hash for
// the next interval.
func (v *ViewCounter) Drain(ctx context.Context) (map[int64]int64, error) {
	if v == nil || v.client == nil {
		return nil, nil
	}

	pipe := v.client.TxPipeline()
	getAll := pipe.HGetAll(ctx, viewsHashKey)
	pipe.Del(ctx, viewsHashKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	raw := getAll.Val()
	counts := make(map[int64]int64, len(raw))
	for key, value := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		counts[id] = n
	}
	return counts, nil
}
