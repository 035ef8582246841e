package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/tokowa/commerce-agent/internal/cache"
)

const defaultJobTTL = 24 * time.Hour

// Store persists Job state in the cache fabric, keyed by (tenant, id) so
// job state sits alongside buffer/dedup/conversation hot state per the
// key layout the cache fabric already follows.
type Store struct {
	cache *cache.Client
	ttl   time.Duration
}

// NewStore builds a Store over the given cache client.
func NewStore(c *cache.Client) *Store {
	return &Store{cache: c, ttl: defaultJobTTL}
}

func key(tenantID, jobID string) string {
	return fmt.Sprintf("job:%s:%s", tenantID, jobID)
}

// Create persists a new job.
func (s *Store) Create(ctx context.Context, job *Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "marshal job")
	}
	if err := s.cache.Raw().Set(ctx, key(job.TenantID, job.ID), encoded, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "persist job")
	}
	return nil
}

// Get fetches a job by (tenant, id). Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, tenantID, jobID string) (*Job, error) {
	raw, err := s.cache.Raw().Get(ctx, key(tenantID, jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errors.Wrap(err, "fetch job")
	}
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, errors.Wrap(err, "unmarshal job")
	}
	return &job, nil
}

// Update persists a job's mutated state, refreshing its TTL.
func (s *Store) Update(ctx context.Context, job *Job) error {
	return s.Create(ctx, job)
}
