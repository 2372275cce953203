package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisJobPrefix = "availability:jobs:"
	redisJobIndex  = "availability:jobs:index"
	redisJobTTL    = 7 * 24 * time.Hour
)

// RedisStatusStore общая для всех реплик история прогонов
// Индекс: sorted set по времени старта, обрезается до size записей
type RedisStatusStore struct {
	client *redis.Client
	size   int
}

func NewRedisStatusStore(client *redis.Client, size int) *RedisStatusStore {
	return &RedisStatusStore{client: client, size: size}
}

func (s *RedisStatusStore) Save(ctx context.Context, job *JobStatus) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisJobPrefix+job.ID, data, redisJobTTL)
	pipe.ZAdd(ctx, redisJobIndex, redis.Z{Score: float64(job.StartedAt.UnixNano()), Member: job.ID})
	pipe.ZRemRangeByRank(ctx, redisJobIndex, 0, int64(-s.size-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *RedisStatusStore) Get(ctx context.Context, id string) (*JobStatus, bool, error) {
	data, err := s.client.Get(ctx, redisJobPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get job %s: %w", id, err)
	}

	var job JobStatus
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, false, fmt.Errorf("unmarshal job %s: %w", id, err)
	}
	return &job, true, nil
}

func (s *RedisStatusStore) List(ctx context.Context, limit int) ([]*JobStatus, error) {
	if limit <= 0 || limit > s.size {
		limit = s.size
	}

	ids, err := s.client.ZRevRange(ctx, redisJobIndex, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list job ids: %w", err)
	}
	if len(ids) == 0 {
		return []*JobStatus{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisJobPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}

	jobs := make([]*JobStatus, 0, len(values))
	for _, v := range values {
		// запись истекла по TTL, а индекс еще помнит id
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var job JobStatus
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			continue
		}
		jobs = append(jobs, &job)
	}
	return jobs, nil
}
