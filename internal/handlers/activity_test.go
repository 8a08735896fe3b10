package handlers

import (
  "context"
  "encoding/json"
  "net/http"
  "net/http/httptest"
  "testing"
  "time"

  "github.com/gin-gonic/gin"
  "go.uber.org/zap"
  "gorm.io/gorm"

  "github.com/grdops/verificar-backend/internal/logger"
  "github.com/grdops/verificar-backend/internal/services"
  "github.com/grdops/verificar-backend/internal/types"
)

func init() {
  gin.SetMode(gin.TestMode)
}

func nopLogger() *logger.Logger {
  return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

type stubActivityService struct {
  batch   []*types.Activity
  loadErr error
}

func (s *stubActivityService) LoadWindow(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Activity, error) {
  if start.After(end) {
    return nil, services.ErrInvalidDateRange
  }
  return s.batch, s.loadErr
}

func (s *stubActivityService) LoadContext(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Activity, error) {
  return s.LoadWindow(ctx, tx, start, end)
}

func (s *stubActivityService) FilterActivities(batch []*types.Activity, filter types.ActivityFilter) []*types.Activity {
  if len(filter.Assignees) == 0 {
    return batch
  }
  allowed := map[string]bool{}
  for _, a := range filter.Assignees {
    allowed[a] = true
  }
  var out []*types.Activity
  for _, a := range batch {
    if allowed[a.Assignee] {
      out = append(out, a)
    }
  }
  return out
}

func (s *stubActivityService) FilterOptions(batch []*types.Activity) types.FilterOptions {
  return types.FilterOptions{Assignees: []string{"Ana"}, Statuses: []string{types.StatusOpen}}
}

func (s *stubActivityService) RefreshCache(ctx context.Context) error {
  return nil
}

func performRequest(t *testing.T, router *gin.Engine, method, target string) *httptest.ResponseRecorder {
  t.Helper()
  req := httptest.NewRequest(method, target, nil)
  rr := httptest.NewRecorder()
  router.ServeHTTP(rr, req)
  return rr
}

func newActivityRouter(svc services.ActivityService) *gin.Engine {
  h := NewActivityHandler(nopLogger(), svc)
  router := gin.New()
  router.GET("/api/activities", h.List)
  router.GET("/api/activities/options", h.Options)
  router.POST("/api/cache/refresh", h.RefreshCache)
  return router
}

func TestActivityListSuccess(t *testing.T) {
  when := time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)
  svc := &stubActivityService{batch: []*types.Activity{
    {ID: "1", Folder: "F1", Assignee: "Ana", Status: types.StatusOpen, Date: &when},
    {ID: "2", Folder: "F2", Assignee: "Rui", Status: "Concluida", Date: &when},
  }}
  router := newActivityRouter(svc)

  rr := performRequest(t, router, http.MethodGet, "/api/activities?start=2026-08-15&end=2026-08-25&assignee=Ana")
  if rr.Code != http.StatusOK {
    t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
  }

  var resp struct {
    Total      int               `json:"total"`
    Matching   int               `json:"matching"`
    Activities []*types.Activity `json:"activities"`
  }
  if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
    t.Fatalf("decode response: %v", err)
  }
  if resp.Total != 2 || resp.Matching != 1 {
    t.Fatalf("counts total=%d matching=%d, want 2/1", resp.Total, resp.Matching)
  }
  if len(resp.Activities) != 1 || resp.Activities[0].Assignee != "Ana" {
    t.Fatalf("unexpected activities payload: %+v", resp.Activities)
  }
}

func TestActivityListEmptyIsNotAnError(t *testing.T) {
  router := newActivityRouter(&stubActivityService{})
  rr := performRequest(t, router, http.MethodGet, "/api/activities?start=2026-08-15&end=2026-08-25")
  if rr.Code != http.StatusOK {
    t.Fatalf("expected 200 for an empty window, got %d", rr.Code)
  }
}

func TestActivityListBadDateParam(t *testing.T) {
  router := newActivityRouter(&stubActivityService{})
  rr := performRequest(t, router, http.MethodGet, "/api/activities?start=20-08-2026")
  if rr.Code != http.StatusBadRequest {
    t.Fatalf("expected 400 for a malformed date, got %d", rr.Code)
  }
}

func TestActivityListInvertedRange(t *testing.T) {
  router := newActivityRouter(&stubActivityService{})
  rr := performRequest(t, router, http.MethodGet, "/api/activities?start=2026-08-25&end=2026-08-15")
  if rr.Code != http.StatusBadRequest {
    t.Fatalf("expected 400 for start after end, got %d", rr.Code)
  }
  var envelope ErrorEnvelope
  if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
    t.Fatalf("decode error envelope: %v", err)
  }
  if envelope.Error.Code != "invalid_date_range" {
    t.Fatalf("error code %q, want invalid_date_range", envelope.Error.Code)
  }
}

func TestActivityListDataUnavailable(t *testing.T) {
  svc := &stubActivityService{loadErr: services.ErrDataUnavailable}
  router := newActivityRouter(svc)
  rr := performRequest(t, router, http.MethodGet, "/api/activities?start=2026-08-15&end=2026-08-25")
  if rr.Code != http.StatusServiceUnavailable {
    t.Fatalf("expected 503 when the database is unavailable, got %d", rr.Code)
  }
}

func TestActivityOptions(t *testing.T) {
  router := newActivityRouter(&stubActivityService{})
  rr := performRequest(t, router, http.MethodGet, "/api/activities/options?start=2026-08-15&end=2026-08-25")
  if rr.Code != http.StatusOK {
    t.Fatalf("expected 200 got %d", rr.Code)
  }
  var opts types.FilterOptions
  if err := json.Unmarshal(rr.Body.Bytes(), &opts); err != nil {
    t.Fatalf("decode options: %v", err)
  }
  if len(opts.Assignees) != 1 || opts.Assignees[0] != "Ana" {
    t.Fatalf("unexpected options: %+v", opts)
  }
}

func TestCacheRefresh(t *testing.T) {
  router := newActivityRouter(&stubActivityService{})
  rr := performRequest(t, router, http.MethodPost, "/api/cache/refresh")
  if rr.Code != http.StatusOK {
    t.Fatalf("expected 200 got %d", rr.Code)
  }
}
