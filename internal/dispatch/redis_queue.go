package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"nomorebugs-admin/internal/models"

	"github.com/redis/go-redis/v9"
)

const jobsKey = "dispatch:jobs"

// RedisQueue keeps jobs as JSON values in a single Redis hash so the board
// survives restarts and is shared between API instances.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: jobsKey}
}

func (q *RedisQueue) Save(ctx context.Context, job models.DispatchJob) error {
	type plain models.DispatchJob
	payload, err := json.Marshal(plain(job))
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	return q.rdb.HSet(ctx, q.key, job.ID, payload).Err()
}

func (q *RedisQueue) Get(ctx context.Context, id string) (models.DispatchJob, error) {
	raw, err := q.rdb.HGet(ctx, q.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return models.DispatchJob{}, ErrJobNotFound
	}
	if err != nil {
		return models.DispatchJob{}, err
	}
	return decodeJob(raw)
}

func (q *RedisQueue) List(ctx context.Context) ([]models.DispatchJob, error) {
	all, err := q.rdb.HGetAll(ctx, q.key).Result()
	if err != nil {
		return nil, err
	}

	jobs := make([]models.DispatchJob, 0, len(all))
	for _, raw := range all {
		job, err := decodeJob(raw)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	sortJobs(jobs)
	return jobs, nil
}

func decodeJob(raw string) (models.DispatchJob, error) {
	var job models.DispatchJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return models.DispatchJob{}, fmt.Errorf("decode job: %w", err)
	}
	return job, nil
}
