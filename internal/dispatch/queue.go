package dispatch

import (
	"context"
	"errors"
	"sort"
	"sync"

	"nomorebugs-admin/internal/models"
)

var ErrJobNotFound = errors.New("dispatch job not found")

// JobQueue holds dispatch jobs between approval and dispatch. Save is an
// upsert keyed by job id; the last write wins.
type JobQueue interface {
	Save(ctx context.Context, job models.DispatchJob) error
	Get(ctx context.Context, id string) (models.DispatchJob, error)
	List(ctx context.Context) ([]models.DispatchJob, error)
}

// sortJobs orders jobs oldest first, then by id.
func sortJobs(jobs []models.DispatchJob) {
	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
		}
		return jobs[i].ID < jobs[j].ID
	})
}

type MemoryQueue struct {
	mu   sync.RWMutex
	jobs map[string]models.DispatchJob
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{jobs: map[string]models.DispatchJob{}}
}

func (q *MemoryQueue) Save(ctx context.Context, job models.DispatchJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.jobs[job.ID] = job
	return nil
}

func (q *MemoryQueue) Get(ctx context.Context, id string) (models.DispatchJob, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	job, ok := q.jobs[id]
	if !ok {
		return models.DispatchJob{}, ErrJobNotFound
	}
	return job, nil
}

func (q *MemoryQueue) List(ctx context.Context) ([]models.DispatchJob, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	jobs := make([]models.DispatchJob, 0, len(q.jobs))
	for _, j := range q.jobs {
		jobs = append(jobs, j)
	}
	sortJobs(jobs)
	return jobs, nil
}
