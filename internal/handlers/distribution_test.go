package handlers

import (
  "encoding/json"
  "net/http"
  "testing"
  "time"

  "github.com/gin-gonic/gin"

  "github.com/grdops/verificar-backend/internal/services"
  "github.com/grdops/verificar-backend/internal/types"
)

func newDistributionRouter(svc services.ActivityService) *gin.Engine {
  h := NewDistributionHandler(nopLogger(), svc, services.NewDistributionService(nopLogger()))
  router := gin.New()
  router.GET("/api/distribution", h.List)
  return router
}

func TestDistributionList(t *testing.T) {
  when := time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)
  earlier := when.AddDate(0, 0, -30)
  svc := &stubActivityService{batch: []*types.Activity{
    {ID: "1", Folder: "F1", Assignee: "Ana", Status: types.StatusOpen, Date: &when},
    {ID: "2", Folder: "F1", Assignee: "Rui", Status: "Concluida", Date: &earlier},
    {ID: "3", Folder: "F1", Assignee: "Rui", Status: types.StatusOpen, Date: &earlier},
  }}
  router := newDistributionRouter(svc)

  rr := performRequest(t, router, http.MethodGet, "/api/distribution?start=2026-08-15&end=2026-08-25")
  if rr.Code != http.StatusOK {
    t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
  }

  var resp struct {
    Count  int                    `json:"count"`
    Groups []*types.ActivityGroup `json:"groups"`
  }
  if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
    t.Fatalf("decode response: %v", err)
  }
  if resp.Count != 2 {
    t.Fatalf("count=%d, want 2 open activities", resp.Count)
  }
  for _, g := range resp.Groups {
    if g.Activity.Status != types.StatusOpen {
      t.Fatalf("group carries non-open activity %q", g.Activity.ID)
    }
    if !g.Alert {
      t.Fatalf("folder F1 holds two open activities, alert should be set")
    }
    if len(g.History) != 3 {
      t.Fatalf("history has %d rows, want the full folder (3)", len(g.History))
    }
  }
}

func TestDistributionListInvertedRange(t *testing.T) {
  router := newDistributionRouter(&stubActivityService{})
  rr := performRequest(t, router, http.MethodGet, "/api/distribution?start=2026-08-25&end=2026-08-15")
  if rr.Code != http.StatusBadRequest {
    t.Fatalf("expected 400 for start after end, got %d", rr.Code)
  }
}
