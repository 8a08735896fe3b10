package repos

import (
  "context"
  "time"

  "gorm.io/gorm"

  "github.com/grdops/verificar-backend/internal/logger"
  "github.com/grdops/verificar-backend/internal/types"
)

// ActivityRepo is the read side over the external activities view.
//
// LoadWindow returns the plain date-windowed slice for the table view.
// LoadContext widens the window so the distribution view always sees every
// open activity (whatever its date) plus the complete history of any folder
// that currently holds one.
type ActivityRepo interface {
  LoadWindow(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Activity, error)
  LoadContext(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Activity, error)
}

type activityRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
  repoLog := baseLog.With("repo", "ActivityRepo")
  return &activityRepo{db: db, log: repoLog}
}

const activityColumns = `
  activity_id,
  activity_folder,
  COALESCE(user_profile_name, '') AS user_profile_name,
  activity_date,
  activity_status,
  COALESCE(texto, '') AS texto`

func (ar *activityRepo) LoadWindow(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Activity, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }

  var results []*types.Activity
  query := `
    SELECT` + activityColumns + `
    FROM view_grd_atividades
    WHERE activity_type = ?
      AND DATE(activity_date) BETWEEN ? AND ?
    ORDER BY activity_date DESC, activity_id ASC`

  if err := transaction.WithContext(ctx).
    Raw(query, types.ActivityTypeVerificar, dateArg(start), dateArg(end)).
    Scan(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (ar *activityRepo) LoadContext(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Activity, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }

  // Three ways into the batch: inside the window, open regardless of date, or
  // sharing a folder with an open activity. Folder history is deliberately
  // unbounded so redistribution decisions see everything that happened in the
  // folder.
  var results []*types.Activity
  query := `
    SELECT` + activityColumns + `
    FROM view_grd_atividades
    WHERE activity_type = ?
      AND (
        DATE(activity_date) BETWEEN ? AND ?
        OR activity_status = ?
        OR activity_folder IN (
          SELECT DISTINCT activity_folder
          FROM view_grd_atividades
          WHERE activity_type = ?
            AND activity_status = ?
        )
      )
    ORDER BY activity_date DESC, activity_id ASC`

  if err := transaction.WithContext(ctx).
    Raw(query,
      types.ActivityTypeVerificar,
      dateArg(start), dateArg(end),
      types.StatusOpen,
      types.ActivityTypeVerificar,
      types.StatusOpen,
    ).
    Scan(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func dateArg(t time.Time) string {
  return t.Format("2006-01-02")
}
