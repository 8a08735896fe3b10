package services

import (
  "context"
  "errors"
  "fmt"
  "sort"
  "strings"
  "time"

  "gorm.io/gorm"

  "github.com/grdops/verificar-backend/internal/logger"
  "github.com/grdops/verificar-backend/internal/repos"
  "github.com/grdops/verificar-backend/internal/types"
)

var (
  // ErrInvalidDateRange rejects a window whose start falls after its end,
  // before any query is issued.
  ErrInvalidDateRange = errors.New("start date must not be after end date")
  // ErrDataUnavailable wraps loader failures so callers can show a single
  // "data unavailable" message instead of partial results.
  ErrDataUnavailable = errors.New("activity data unavailable")
)

const (
  cacheKindWindow  = "window"
  cacheKindContext = "context"
)

// ActivityService is the data-loading boundary: it validates the requested
// window, serves batches from the cache when possible and falls back to the
// repo, and carries the client-side filter passes the dashboard applies on a
// loaded batch.
type ActivityService interface {
  LoadWindow(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Activity, error)
  LoadContext(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Activity, error)
  FilterActivities(batch []*types.Activity, filter types.ActivityFilter) []*types.Activity
  FilterOptions(batch []*types.Activity) types.FilterOptions
  RefreshCache(ctx context.Context) error
}

type activityService struct {
  db           *gorm.DB
  log          *logger.Logger
  activityRepo repos.ActivityRepo
  cache        ContextCache
}

func NewActivityService(
  db *gorm.DB,
  baseLog *logger.Logger,
  activityRepo repos.ActivityRepo,
  cache ContextCache,
) ActivityService {
  serviceLog := baseLog.With("service", "ActivityService")
  return &activityService{
    db:           db,
    log:          serviceLog,
    activityRepo: activityRepo,
    cache:        cache,
  }
}

func (as *activityService) LoadWindow(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Activity, error) {
  return as.load(ctx, tx, cacheKindWindow, start, end, as.activityRepo.LoadWindow)
}

func (as *activityService) LoadContext(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Activity, error) {
  return as.load(ctx, tx, cacheKindContext, start, end, as.activityRepo.LoadContext)
}

type loadFunc func(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Activity, error)

func (as *activityService) load(ctx context.Context, tx *gorm.DB, kind string, start, end time.Time, loadFromRepo loadFunc) ([]*types.Activity, error) {
  if start.After(end) {
    return nil, ErrInvalidDateRange
  }

  if as.cache != nil {
    if batch, ok := as.cache.Get(ctx, kind, start, end); ok {
      as.log.Debug("Batch served from cache", "kind", kind, "rows", len(batch))
      return batch, nil
    }
  }

  batch, err := loadFromRepo(ctx, tx, start, end)
  if err != nil {
    as.log.Error("Loading activities failed", "kind", kind, "error", err)
    return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
  }
  normalizeBatch(batch)

  if as.cache != nil {
    as.cache.Set(ctx, kind, start, end, batch)
  }
  return batch, nil
}

// normalizeBatch enforces the loader contract on whatever the view returned:
// id and text are plain strings, a zero timestamp is a missing one.
func normalizeBatch(batch []*types.Activity) {
  for _, a := range batch {
    if a == nil {
      continue
    }
    a.ID = strings.TrimSpace(a.ID)
    if a.Date != nil && a.Date.IsZero() {
      a.Date = nil
    }
  }
}

func (as *activityService) FilterActivities(batch []*types.Activity, filter types.ActivityFilter) []*types.Activity {
  assignees := toSet(filter.Assignees)
  statuses := toSet(filter.Statuses)
  search := strings.ToLower(strings.TrimSpace(filter.Search))

  filtered := make([]*types.Activity, 0, len(batch))
  for _, a := range batch {
    if a == nil {
      continue
    }
    if len(assignees) > 0 && !assignees[a.Assignee] {
      continue
    }
    if len(statuses) > 0 && !statuses[a.Status] {
      continue
    }
    if search != "" && !strings.Contains(strings.ToLower(a.Text), search) {
      continue
    }
    filtered = append(filtered, a)
  }
  return filtered
}

func (as *activityService) FilterOptions(batch []*types.Activity) types.FilterOptions {
  assigneeSet := make(map[string]bool)
  statusSet := make(map[string]bool)
  for _, a := range batch {
    if a == nil {
      continue
    }
    if a.Assignee != "" {
      assigneeSet[a.Assignee] = true
    }
    if a.Status != "" {
      statusSet[a.Status] = true
    }
  }
  return types.FilterOptions{
    Assignees: sortedKeys(assigneeSet),
    Statuses:  sortedKeys(statusSet),
  }
}

func (as *activityService) RefreshCache(ctx context.Context) error {
  if as.cache == nil {
    return nil
  }
  if err := as.cache.Clear(ctx); err != nil {
    as.log.Warn("Cache clear failed", "error", err)
    return fmt.Errorf("clear activity cache: %w", err)
  }
  as.log.Info("Activity cache cleared")
  return nil
}

func sortedKeys(set map[string]bool) []string {
  keys := make([]string, 0, len(set))
  for k := range set {
    keys = append(keys, k)
  }
  sort.Strings(keys)
  return keys
}
