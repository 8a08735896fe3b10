package services

import (
  "context"
  "time"

  "github.com/grdops/verificar-backend/internal/types"
)

// ContextCache holds loaded batches keyed by query kind and date range. It is
// purely an optimization at the hosting layer: implementations expire entries
// after their TTL, and every method failure must degrade to "cache miss"
// rather than break a render cycle. A nil ContextCache is valid and means no
// caching.
type ContextCache interface {
  Get(ctx context.Context, kind string, start, end time.Time) ([]*types.Activity, bool)
  Set(ctx context.Context, kind string, start, end time.Time, batch []*types.Activity)
  Clear(ctx context.Context) error
}
