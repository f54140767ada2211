package utils

import (
	"context"
	"log"
	"time"

	"clinicops/config"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

var (
	// CacheClient is the generic cache client (slot cache, booking locks).
	CacheClient *redis.Client
	// AuthCacheClient is the dedicated client for authorization caching.
	AuthCacheClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

func mustPing(client *redis.Client, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	mustPing(CacheClient, "Cache")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitAuthCache initializes the Redis client for authorization caching.
func InitAuthCache() {
	AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB)
	mustPing(AuthCacheClient, "Auth Cache")
}

// GetAuthCacheClient returns the Redis client for authorization caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		InitAuthCache()
	}
	return AuthCacheClient
}

// QueueRedisOpt is the asynq connection for the reminder queue.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// AuthEntry is what the auth cache holds per user: the hash of the current token and the
// identity the middleware hands to services on a cache hit.
type AuthEntry struct {
	TokenHash string
	Role      string
	ProfileID string
}

// SetAuthEntry stores e under auth:<userID> with AuthCacheTTL.
func SetAuthEntry(ctx context.Context, client *redis.Client, userID string, e AuthEntry) error {
	key := AuthCachePrefix + userID
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "tokenHash", e.TokenHash, "role", e.Role, "profileId", e.ProfileID)
		pipe.Expire(ctx, key, AuthCacheTTL)
		return nil
	})
	return err
}

// GetAuthEntry returns the cached entry for userID, or redis.Nil when there is none.
func GetAuthEntry(ctx context.Context, client *redis.Client, userID string) (AuthEntry, error) {
	fields, err := client.HGetAll(ctx, AuthCachePrefix+userID).Result()
	if err != nil {
		return AuthEntry{}, err
	}
	if fields["tokenHash"] == "" {
		return AuthEntry{}, redis.Nil
	}
	return AuthEntry{TokenHash: fields["tokenHash"], Role: fields["role"], ProfileID: fields["profileId"]}, nil
}

// EvictAuthEntry drops the cached entry so the next request rebuilds it from the user record.
func EvictAuthEntry(ctx context.Context, client *redis.Client, userID string) error {
	return client.Del(ctx, AuthCachePrefix+userID).Err()
}
