package services

import (
  "testing"

  "go.uber.org/zap"

  "github.com/grdops/verificar-backend/internal/logger"
)

func newNopLogger(t *testing.T) *logger.Logger {
  t.Helper()
  return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}
