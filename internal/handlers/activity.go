package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/grdops/verificar-backend/internal/logger"
  "github.com/grdops/verificar-backend/internal/services"
  "github.com/grdops/verificar-backend/internal/types"
)

type ActivityHandler struct {
  log             *logger.Logger
  activityService services.ActivityService
}

func NewActivityHandler(log *logger.Logger, activityService services.ActivityService) *ActivityHandler {
  return &ActivityHandler{
    log:             log.With("handler", "ActivityHandler"),
    activityService: activityService,
  }
}

// List serves the table view: the windowed batch, the client-side filters
// applied on top, and the two metric counts the dashboard shows.
func (h *ActivityHandler) List(c *gin.Context) {
  start, end, err := parseWindow(c)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_date", err)
    return
  }

  batch, err := h.activityService.LoadWindow(c.Request.Context(), nil, start, end)
  if err != nil {
    h.log.Error("List failed", "error", err)
    respondLoadError(c, err)
    return
  }

  filter := types.ActivityFilter{
    Assignees: c.QueryArray("assignee"),
    Statuses:  c.QueryArray("status"),
    Search:    c.Query("q"),
  }
  filtered := h.activityService.FilterActivities(batch, filter)

  RespondOK(c, gin.H{
    "start":      start.Format(dateLayout),
    "end":        end.Format(dateLayout),
    "total":      len(batch),
    "matching":   len(filtered),
    "activities": filtered,
  })
}

// Options serves the multi-select choices derived from the loaded window.
func (h *ActivityHandler) Options(c *gin.Context) {
  start, end, err := parseWindow(c)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_date", err)
    return
  }

  batch, err := h.activityService.LoadWindow(c.Request.Context(), nil, start, end)
  if err != nil {
    h.log.Error("Options failed", "error", err)
    respondLoadError(c, err)
    return
  }

  RespondOK(c, h.activityService.FilterOptions(batch))
}

// RefreshCache drops cached batches so the next load hits the database.
func (h *ActivityHandler) RefreshCache(c *gin.Context) {
  if err := h.activityService.RefreshCache(c.Request.Context()); err != nil {
    h.log.Error("RefreshCache failed", "error", err)
    RespondError(c, http.StatusInternalServerError, "cache_refresh_failed", err)
    return
  }
  RespondOK(c, gin.H{"refreshed": true})
}
