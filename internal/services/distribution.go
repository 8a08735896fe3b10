package services

import (
  "sort"
  "strings"

  "github.com/grdops/verificar-backend/internal/logger"
  "github.com/grdops/verificar-backend/internal/types"
)

// DistributionService builds the contextual view used for handing out open
// activities: one group per open activity, carrying the complete history of
// its folder and an alert flag when the folder holds more than one open
// activity.
//
// Build is pure over its inputs. It never mutates the batch, and the same
// batch with the same filter always yields the same output.
type DistributionService interface {
  Build(batch []*types.Activity, filter types.DistributionFilter) []*types.ActivityGroup
}

type distributionService struct {
  log *logger.Logger
}

func NewDistributionService(baseLog *logger.Logger) DistributionService {
  serviceLog := baseLog.With("service", "DistributionService")
  return &distributionService{log: serviceLog}
}

func (ds *distributionService) Build(batch []*types.Activity, filter types.DistributionFilter) []*types.ActivityGroup {
  // Open subset, filtered. The full batch stays untouched as the history
  // source: filters narrow what gets distributed, never the context shown
  // for it.
  open := make([]*types.Activity, 0, len(batch))
  assignees := toSet(filter.Assignees)
  folders := toSet(filter.Folders)
  search := strings.ToLower(strings.TrimSpace(filter.Search))
  for _, a := range batch {
    if a == nil || a.Status != types.StatusOpen {
      continue
    }
    if len(assignees) > 0 && !assignees[a.Assignee] {
      continue
    }
    if len(folders) > 0 && !folders[a.Folder] {
      continue
    }
    if search != "" && !strings.Contains(strings.ToLower(a.Text), search) {
      continue
    }
    open = append(open, a)
  }

  openCountByFolder := make(map[string]int, len(open))
  for _, a := range open {
    openCountByFolder[a.Folder]++
  }

  sort.SliceStable(open, func(i, j int) bool {
    if open[i].Assignee != open[j].Assignee {
      return open[i].Assignee < open[j].Assignee
    }
    if open[i].Folder != open[j].Folder {
      return open[i].Folder < open[j].Folder
    }
    ti, tj := open[i].When(), open[j].When()
    if !ti.Equal(tj) {
      return ti.After(tj)
    }
    return open[i].ID < open[j].ID
  })

  historyByFolder := make(map[string][]*types.Activity, len(openCountByFolder))
  for _, a := range batch {
    if a == nil {
      continue
    }
    if _, wanted := openCountByFolder[a.Folder]; !wanted {
      continue
    }
    historyByFolder[a.Folder] = append(historyByFolder[a.Folder], a)
  }
  for _, history := range historyByFolder {
    sortByRecency(history)
  }

  groups := make([]*types.ActivityGroup, 0, len(open))
  for _, a := range open {
    groups = append(groups, &types.ActivityGroup{
      Activity: a,
      Alert:    openCountByFolder[a.Folder] > 1,
      History:  historyByFolder[a.Folder],
    })
  }
  return groups
}

// sortByRecency orders newest first; activities without a usable date sink to
// the bottom, ids break remaining ties so output stays stable.
func sortByRecency(activities []*types.Activity) {
  sort.SliceStable(activities, func(i, j int) bool {
    ti, tj := activities[i].When(), activities[j].When()
    if !ti.Equal(tj) {
      return ti.After(tj)
    }
    return activities[i].ID < activities[j].ID
  })
}

func toSet(vals []string) map[string]bool {
  if len(vals) == 0 {
    return nil
  }
  set := make(map[string]bool, len(vals))
  for _, v := range vals {
    set[v] = true
  }
  return set
}
