package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/homechef-app/homechef-backend/internal/pricing"
	"github.com/homechef-app/homechef-backend/pkg/redis"
)

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	CartSnapshotKey(sessionID string) string
	LocationKey(sessionID, component string) string
}

// RedisStore persists the ledger snapshot as one versioned JSON blob per
// shopper session.
type RedisStore struct {
	kv        kvStore
	sessionID string
}

// NewRedisStore builds a snapshot store bound to one session.
func NewRedisStore(client *redis.Client, sessionID string) *RedisStore {
	return &RedisStore{kv: client, sessionID: sessionID}
}

// Save overwrites the session's snapshot blob.
func (r *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	return r.kv.Set(ctx, r.kv.CartSnapshotKey(r.sessionID), payload, 0)
}

// Load reads the session's snapshot blob. A missing key is not an error.
func (r *RedisStore) Load(ctx context.Context) (Snapshot, bool, error) {
	raw, err := r.kv.Get(ctx, r.kv.CartSnapshotKey(r.sessionID))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("read cart snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return snap, true, nil
}

// RedisLocations reads the last known user coordinates written by the
// address flow. Both components must be present and numeric for a fix.
type RedisLocations struct {
	kv        kvStore
	sessionID string
}

// NewRedisLocations builds a coordinate reader bound to one session.
func NewRedisLocations(client *redis.Client, sessionID string) *RedisLocations {
	return &RedisLocations{kv: client, sessionID: sessionID}
}

// LastKnown returns the stored coordinates, or nil when no usable fix
// exists. Only infrastructure failures surface as errors.
func (r *RedisLocations) LastKnown(ctx context.Context) (*pricing.Coords, error) {
	lat, ok, err := r.component(ctx, "lat")
	if err != nil || !ok {
		return nil, err
	}
	lon, ok, err := r.component(ctx, "lon")
	if err != nil || !ok {
		return nil, err
	}
	return &pricing.Coords{Lat: lat, Lon: lon}, nil
}

func (r *RedisLocations) component(ctx context.Context, name string) (float64, bool, error) {
	raw, err := r.kv.Get(ctx, r.kv.LocationKey(r.sessionID, name))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read location %s: %w", name, err)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, nil
	}
	return value, true, nil
}
