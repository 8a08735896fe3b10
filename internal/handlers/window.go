package handlers

import (
  "errors"
  "fmt"
  "net/http"
  "time"

  "github.com/gin-gonic/gin"

  "github.com/grdops/verificar-backend/internal/services"
)

const dateLayout = "2006-01-02"

// defaultWindowDays mirrors the dashboard default of "the last 10 days".
const defaultWindowDays = 10

// parseWindow reads the start/end query params. Absent params fall back to
// the default window ending today.
func parseWindow(c *gin.Context) (time.Time, time.Time, error) {
  end := time.Now().Truncate(24 * time.Hour)
  start := end.AddDate(0, 0, -defaultWindowDays)

  if raw := c.Query("end"); raw != "" {
    parsed, err := time.Parse(dateLayout, raw)
    if err != nil {
      return time.Time{}, time.Time{}, fmt.Errorf("end date %q not in YYYY-MM-DD form", raw)
    }
    end = parsed
  }
  if raw := c.Query("start"); raw != "" {
    parsed, err := time.Parse(dateLayout, raw)
    if err != nil {
      return time.Time{}, time.Time{}, fmt.Errorf("start date %q not in YYYY-MM-DD form", raw)
    }
    start = parsed
  }
  return start, end, nil
}

// respondLoadError maps loader failures onto the operator-facing statuses:
// a bad range is the caller's mistake, an unavailable database is reported
// as such with no partial results.
func respondLoadError(c *gin.Context, err error) {
  switch {
  case errors.Is(err, services.ErrInvalidDateRange):
    RespondError(c, http.StatusBadRequest, "invalid_date_range", err)
  case errors.Is(err, services.ErrDataUnavailable):
    RespondError(c, http.StatusServiceUnavailable, "data_unavailable", err)
  default:
    RespondError(c, http.StatusInternalServerError, "internal_error", err)
  }
}
