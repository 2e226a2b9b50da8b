package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"
)

type ViolationPolicy string

const (
	// ViolationPolicyPerVisit raises one alert per danger zone per visit.
	ViolationPolicyPerVisit ViolationPolicy = "per_visit"
	// ViolationPolicyEverySample raises an alert for every sample inside a zone.
	ViolationPolicyEverySample ViolationPolicy = "every_sample"
)

func (p ViolationPolicy) Valid() bool {
	return p == ViolationPolicyPerVisit || p == ViolationPolicyEverySample
}

// VisitTracker remembers which danger zones a user is currently inside.
type VisitTracker interface {
	// Enter marks the visit and reports whether it just started.
	Enter(ctx context.Context, userID, geofenceID string) (bool, error)
	// Leave ends the visit so the next entry counts again.
	Leave(ctx context.Context, userID, geofenceID string) error
}

func visitKey(userID, geofenceID string) string {
	return fmt.Sprintf("visit:%s:%s", userID, geofenceID)
}

// RedisVisitTracker keeps visits as expiring keys shared by every instance.
type RedisVisitTracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisVisitTracker(client *redis.Client, ttl time.Duration) *RedisVisitTracker {
	return &RedisVisitTracker{client: client, ttl: ttl}
}

func (rv *RedisVisitTracker) Enter(ctx context.Context, userID, geofenceID string) (bool, error) {
	return rv.client.SetNX(ctx, visitKey(userID, geofenceID), time.Now().Unix(), rv.ttl).Result()
}

func (rv *RedisVisitTracker) Leave(ctx context.Context, userID, geofenceID string) error {
	return rv.client.Del(ctx, visitKey(userID, geofenceID)).Err()
}

// MemoryVisitTracker is the single-process tracker used without Redis.
type MemoryVisitTracker struct {
	visits *cache.Cache
}

func NewMemoryVisitTracker(ttl time.Duration) *MemoryVisitTracker {
	return &MemoryVisitTracker{visits: cache.New(ttl, 2*ttl)}
}

func (mv *MemoryVisitTracker) Enter(_ context.Context, userID, geofenceID string) (bool, error) {
	// Add fails when an unexpired entry exists.
	return mv.visits.Add(visitKey(userID, geofenceID), time.Now(), cache.DefaultExpiration) == nil, nil
}

func (mv *MemoryVisitTracker) Leave(_ context.Context, userID, geofenceID string) error {
	mv.visits.Delete(visitKey(userID, geofenceID))
	return nil
}
