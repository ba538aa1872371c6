// Package reconciliation keeps track of ledger operations that left balances
// and transaction history out of step, and checks accounts for drift.
package reconciliation

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/pkg/errorspkg"
)

// RedisQueue stores incidents as JSON documents in a Redis list.
type RedisQueue struct {
	client redis.Cmdable
	key    string
}

// NewRedisQueue returns RedisQueue that pushes incidents onto the list under key.
func NewRedisQueue(client redis.Cmdable, key string) *RedisQueue {
	return &RedisQueue{
		client: client,
		key:    key,
	}
}

// Record appends the incident to the tail of the queue.
func (q *RedisQueue) Record(ctx context.Context, inc domain.Incident) error {
	l := zerolog.Ctx(ctx)

	payload, err := json.Marshal(inc)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if err := q.client.RPush(ctx, q.key, payload).Err(); err != nil {
		l.Error().Err(err).Str("queue", q.key).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

// Pending returns the queued incidents, oldest first.
func (q *RedisQueue) Pending(ctx context.Context) ([]domain.Incident, error) {
	l := zerolog.Ctx(ctx)

	raw, err := q.client.LRange(ctx, q.key, 0, -1).Result()
	if err != nil {
		l.Error().Err(err).Str("queue", q.key).Send()
		return nil, errorspkg.ErrInternal
	}

	items := make([]domain.Incident, 0, len(raw))

	for _, r := range raw {
		var inc domain.Incident
		if err := json.Unmarshal([]byte(r), &inc); err != nil {
			l.Warn().Err(err).Str("payload", r).Msg("skipping malformed incident")
			continue
		}

		items = append(items, inc)
	}

	return items, nil
}

// Ack removes the incident with the given id from the queue.
func (q *RedisQueue) Ack(ctx context.Context, id uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	raw, err := q.client.LRange(ctx, q.key, 0, -1).Result()
	if err != nil {
		l.Error().Err(err).Str("queue", q.key).Send()
		return errorspkg.ErrInternal
	}

	for _, r := range raw {
		var inc domain.Incident
		if err := json.Unmarshal([]byte(r), &inc); err != nil || inc.ID != id {
			continue
		}

		if err := q.client.LRem(ctx, q.key, 1, r).Err(); err != nil {
			l.Error().Err(err).Str("queue", q.key).Send()
			return errorspkg.ErrInternal
		}

		return nil
	}

	return domain.ErrIncidentNotFound
}
