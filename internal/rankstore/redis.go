package rankstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis backs the Store contract with a sorted set, leaving durability to
// the redis server's own persistence. Tie ordering for equal scores follows
// redis (member lexicographic within a score), which is stable per instance.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = "rankboard:scores"
	}
	return &Redis{client: client, key: key}
}

func (r *Redis) Upsert(ctx context.Context, id string, delta float64) (float64, error) {
	return r.client.ZIncrBy(ctx, r.key, delta, id).Result()
}

func (r *Redis) SetScore(ctx context.Context, id string, score float64) error {
	return r.client.ZAdd(ctx, r.key, redis.Z{Score: score, Member: id}).Err()
}

func (r *Redis) EnsureEntry(ctx context.Context, id string) (bool, error) {
	added, err := r.client.ZAddNX(ctx, r.key, redis.Z{Score: 0, Member: id}).Result()
	if err != nil {
		return false, err
	}
	return added > 0, nil
}

func (r *Redis) Rank(ctx context.Context, id string) (int64, bool, error) {
	rank, err := r.client.ZRevRank(ctx, r.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rank, true, nil
}

func (r *Redis) ScoreOf(ctx context.Context, id string) (float64, bool, error) {
	score, err := r.client.ZScore(ctx, r.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

func (r *Redis) TopRange(ctx context.Context, offset, limit int64) ([]Entry, error) {
	if limit <= 0 || offset < 0 {
		return []Entry{}, nil
	}
	zs, err := r.client.ZRevRangeWithScores(ctx, r.key, offset, offset+limit-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(zs))
	for _, z := range zs {
		id, _ := z.Member.(string)
		entries = append(entries, Entry{PlayerID: id, Score: z.Score})
	}
	return entries, nil
}

func (r *Redis) Card(ctx context.Context) (int64, error) {
	return r.client.ZCard(ctx, r.key).Result()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
