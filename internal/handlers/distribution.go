package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/grdops/verificar-backend/internal/logger"
  "github.com/grdops/verificar-backend/internal/services"
  "github.com/grdops/verificar-backend/internal/types"
)

type DistributionHandler struct {
  log                 *logger.Logger
  activityService     services.ActivityService
  distributionService services.DistributionService
}

func NewDistributionHandler(
  log *logger.Logger,
  activityService services.ActivityService,
  distributionService services.DistributionService,
) *DistributionHandler {
  return &DistributionHandler{
    log:                 log.With("handler", "DistributionHandler"),
    activityService:     activityService,
    distributionService: distributionService,
  }
}

// List serves the contextual distribution view: one group per open activity
// with its folder history and alert flag.
func (h *DistributionHandler) List(c *gin.Context) {
  start, end, err := parseWindow(c)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_date", err)
    return
  }

  batch, err := h.activityService.LoadContext(c.Request.Context(), nil, start, end)
  if err != nil {
    h.log.Error("List failed", "error", err)
    respondLoadError(c, err)
    return
  }

  filter := types.DistributionFilter{
    Assignees: c.QueryArray("assignee"),
    Folders:   c.QueryArray("folder"),
    Search:    c.Query("q"),
  }
  groups := h.distributionService.Build(batch, filter)

  RespondOK(c, gin.H{
    "start":  start.Format(dateLayout),
    "end":    end.Format(dateLayout),
    "count":  len(groups),
    "groups": groups,
  })
}
