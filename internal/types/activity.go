package types

import (
  "time"
)

// Distinguished labels on the source view. The view carries every activity
// type; this application only ever queries the "Verificar" slice, and "Aberta"
// marks activities still waiting for distribution.
const (
  ActivityTypeVerificar = "Verificar"
  StatusOpen            = "Aberta"
)

// Activity is one row of the activities view. The view is external and
// read-only; columns keep their upstream names.
type Activity struct {
  ID       string     `gorm:"column:activity_id;primaryKey" json:"activity_id"`
  Folder   string     `gorm:"column:activity_folder" json:"activity_folder"`
  Assignee string     `gorm:"column:user_profile_name" json:"user_profile_name"`
  Date     *time.Time `gorm:"column:activity_date" json:"activity_date"`
  Status   string     `gorm:"column:activity_status" json:"activity_status"`
  Text     string     `gorm:"column:texto" json:"texto"`
}

func (Activity) TableName() string {
  return "view_grd_atividades"
}

// When returns the activity timestamp, with a missing date collapsing to the
// zero time so it sorts as oldest.
func (a *Activity) When() time.Time {
  if a == nil || a.Date == nil {
    return time.Time{}
  }
  return *a.Date
}
