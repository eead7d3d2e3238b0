package statuscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"creationhub/internal/domain"
)

const (
	statusKeyPrefix = "job:status:"
	statusTTL       = 10 * time.Minute
)

// Cache is the redis surface the status cache depends on.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Snapshot is the cached view of a job's poll state.
type Snapshot struct {
	Status       domain.JobStatus `json:"status"`
	Progress     int              `json:"progress"`
	ResultURL    string           `json:"resultUrl,omitempty"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
}

// StatusCache stores per-job poll snapshots with a TTL so repeated
// status reads do not hit the vendor API on every tick.
type StatusCache struct {
	cache Cache
}

func New(cache Cache) *StatusCache {
	return &StatusCache{cache: cache}
}

func (sc *StatusCache) Get(ctx context.Context, jobID string) (*Snapshot, error) {
	data, err := sc.cache.Get(ctx, statusKeyPrefix+jobID)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("statuscache: decode snapshot: %w", err)
	}
	return &snap, nil
}

func (sc *StatusCache) Set(ctx context.Context, jobID string, snap Snapshot) error {
	snap.Progress = domain.ClampProgress(snap.Progress)
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return sc.cache.Set(ctx, statusKeyPrefix+jobID, data, statusTTL)
}

func (sc *StatusCache) Delete(ctx context.Context, jobID string) error {
	return sc.cache.Del(ctx, statusKeyPrefix+jobID)
}
