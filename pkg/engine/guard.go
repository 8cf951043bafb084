package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskory/taskory/pkg/conditions"
	"github.com/taskory/taskory/pkg/models"
)

// IdempotencyGuard suppresses re-execution of a job that was already seen.
// Acquire returns false when another delivery of the same job already claimed
// the key. Guards are best-effort: an unreachable backend fails open so the
// queue's at-least-once delivery is never turned into at-most-zero.
type IdempotencyGuard interface {
	Acquire(ctx context.Context, job models.TriggerJob) (bool, error)
}

// GuardKey derives the dedup key from the identifying parts of a job: the
// rule, the trigger kind, the affected entity, and its revision when the
// producer includes one.
func GuardKey(job models.TriggerJob) string {
	entityID := ""
	if raw, ok := conditions.Resolve(job.TriggerData, "task.id"); ok {
		entityID, _ = raw.(string)
	}

	revision, _ := job.TriggerData["revision"].(string)

	return fmt.Sprintf("taskory:dedup:%s:%s:%s:%s", job.RuleID, job.TriggerType, entityID, revision)
}

// RedisGuard implements IdempotencyGuard with SETNX and a TTL so keys expire
// on their own once the delivery window has passed.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, job models.TriggerJob) (bool, error) {
	ok, err := g.client.SetNX(ctx, GuardKey(job), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency guard unavailable: %w", err)
	}

	return ok, nil
}
