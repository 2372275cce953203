package scheduler

import (
	"context"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryStatusStore последние size прогонов в памяти процесса
type MemoryStatusStore struct {
	jobs *lru.Cache[string, *JobStatus]
}

func NewMemoryStatusStore(size int) (*MemoryStatusStore, error) {
	jobs, err := lru.New[string, *JobStatus](size)
	if err != nil {
		return nil, err
	}
	return &MemoryStatusStore{jobs: jobs}, nil
}

func (s *MemoryStatusStore) Save(_ context.Context, job *JobStatus) error {
	s.jobs.Add(job.ID, job.clone())
	return nil
}

func (s *MemoryStatusStore) Get(_ context.Context, id string) (*JobStatus, bool, error) {
	job, ok := s.jobs.Peek(id)
	if !ok {
		return nil, false, nil
	}
	return job.clone(), true, nil
}

func (s *MemoryStatusStore) List(_ context.Context, limit int) ([]*JobStatus, error) {
	keys := s.jobs.Keys()
	jobs := make([]*JobStatus, 0, len(keys))
	for _, key := range keys {
		if job, ok := s.jobs.Peek(key); ok {
			jobs = append(jobs, job.clone())
		}
	}

	// Add обновляет позицию ключа, поэтому порядок берем по времени старта
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].StartedAt.After(jobs[j].StartedAt)
	})
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}
