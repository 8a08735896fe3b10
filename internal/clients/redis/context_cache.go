package redis

import (
  "context"
  "encoding/json"
  "fmt"
  "os"
  "strings"
  "time"

  goredis "github.com/redis/go-redis/v9"

  "github.com/grdops/verificar-backend/internal/logger"
  "github.com/grdops/verificar-backend/internal/services"
  "github.com/grdops/verificar-backend/internal/types"
)

const keyPrefix = "verificar:batch:"

type contextCache struct {
  log *logger.Logger
  rdb *goredis.Client
  ttl time.Duration
}

// NewContextCache connects to Redis and returns a services.ContextCache with
// a time-based expiry. REDIS_ADDR is required; a missing address is an error
// the caller may treat as "run without cache".
func NewContextCache(log *logger.Logger, ttl time.Duration) (services.ContextCache, error) {
  if log == nil {
    return nil, fmt.Errorf("logger required")
  }

  addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
  if addr == "" {
    return nil, fmt.Errorf("missing REDIS_ADDR")
  }
  if ttl <= 0 {
    ttl = 10 * time.Minute
  }

  rdb := goredis.NewClient(&goredis.Options{
    Addr:        addr,
    DialTimeout: 5 * time.Second,
  })

  ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  if err := rdb.Ping(ctx).Err(); err != nil {
    _ = rdb.Close()
    return nil, fmt.Errorf("redis ping: %w", err)
  }

  return &contextCache{
    log: log.With("service", "RedisContextCache"),
    rdb: rdb,
    ttl: ttl,
  }, nil
}

func cacheKey(kind string, start, end time.Time) string {
  return fmt.Sprintf("%s%s:%s:%s", keyPrefix, kind, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

func (cc *contextCache) Get(ctx context.Context, kind string, start, end time.Time) ([]*types.Activity, bool) {
  key := cacheKey(kind, start, end)
  raw, err := cc.rdb.Get(ctx, key).Bytes()
  if err != nil {
    if err != goredis.Nil {
      cc.log.Warn("Cache get failed, treating as miss", "key", key, "error", err)
    }
    return nil, false
  }
  var batch []*types.Activity
  if err := json.Unmarshal(raw, &batch); err != nil {
    cc.log.Warn("Cache entry not decodable, treating as miss", "key", key, "error", err)
    return nil, false
  }
  return batch, true
}

func (cc *contextCache) Set(ctx context.Context, kind string, start, end time.Time, batch []*types.Activity) {
  key := cacheKey(kind, start, end)
  raw, err := json.Marshal(batch)
  if err != nil {
    cc.log.Warn("Cache entry not encodable, skipping", "key", key, "error", err)
    return
  }
  if err := cc.rdb.Set(ctx, key, raw, cc.ttl).Err(); err != nil {
    cc.log.Warn("Cache set failed, skipping", "key", key, "error", err)
  }
}

func (cc *contextCache) Clear(ctx context.Context) error {
  iter := cc.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
  var keys []string
  for iter.Next(ctx) {
    keys = append(keys, iter.Val())
  }
  if err := iter.Err(); err != nil {
    return fmt.Errorf("redis scan: %w", err)
  }
  if len(keys) == 0 {
    return nil
  }
  if err := cc.rdb.Del(ctx, keys...).Err(); err != nil {
    return fmt.Errorf("redis del: %w", err)
  }
  return nil
}
