package services

import (
  "reflect"
  "testing"
  "time"

  "github.com/grdops/verificar-backend/internal/types"
)

func ts(day int) *time.Time {
  t := time.Date(2026, time.August, day, 12, 0, 0, 0, time.UTC)
  return &t
}

func act(id, folder, assignee, status string, date *time.Time) *types.Activity {
  return &types.Activity{
    ID:       id,
    Folder:   folder,
    Assignee: assignee,
    Status:   status,
    Date:     date,
    Text:     "conferir documentos da pasta " + folder,
  }
}

func newTestDistributionService(t *testing.T) DistributionService {
  t.Helper()
  log := newNopLogger(t)
  return NewDistributionService(log)
}

func TestBuildEmptyBatch(t *testing.T) {
  ds := newTestDistributionService(t)
  groups := ds.Build(nil, types.DistributionFilter{})
  if len(groups) != 0 {
    t.Fatalf("expected empty output for empty batch, got %d groups", len(groups))
  }
}

func TestBuildOnlyOpenActivitiesEmitted(t *testing.T) {
  ds := newTestDistributionService(t)
  batch := []*types.Activity{
    act("1", "F1", "Alice", types.StatusOpen, ts(10)),
    act("2", "F1", "Bob", "Concluida", ts(9)),
    act("3", "F2", "Bob", "Cancelada", ts(8)),
  }
  groups := ds.Build(batch, types.DistributionFilter{})
  if len(groups) != 1 {
    t.Fatalf("expected 1 group, got %d", len(groups))
  }
  for _, g := range groups {
    if g.Activity.Status != types.StatusOpen {
      t.Fatalf("group activity has status %q, want %q", g.Activity.Status, types.StatusOpen)
    }
  }
}

func TestBuildHistoryContainsFolderMates(t *testing.T) {
  ds := newTestDistributionService(t)
  batch := []*types.Activity{
    act("1", "F1", "Alice", types.StatusOpen, ts(10)),
    act("2", "F1", "Bob", "Concluida", ts(9)),
    act("3", "F2", "Bob", "Concluida", ts(8)),
  }
  groups := ds.Build(batch, types.DistributionFilter{})
  if len(groups) != 1 {
    t.Fatalf("expected 1 group, got %d", len(groups))
  }
  g := groups[0]
  if len(g.History) != 2 {
    t.Fatalf("expected history of 2 rows, got %d", len(g.History))
  }
  foundSelf := false
  for _, h := range g.History {
    if h.Folder != g.Activity.Folder {
      t.Fatalf("history row %q has folder %q, want %q", h.ID, h.Folder, g.Activity.Folder)
    }
    if h.ID == g.Activity.ID {
      foundSelf = true
    }
  }
  if !foundSelf {
    t.Fatalf("history does not contain the open activity itself")
  }
}

func TestBuildAlertFlag(t *testing.T) {
  ds := newTestDistributionService(t)
  batch := []*types.Activity{
    act("1", "F1", "Alice", types.StatusOpen, ts(10)),
    act("2", "F1", "Bob", types.StatusOpen, ts(9)),
    act("3", "F2", "Carol", types.StatusOpen, ts(8)),
  }
  groups := ds.Build(batch, types.DistributionFilter{})
  if len(groups) != 3 {
    t.Fatalf("expected 3 groups, got %d", len(groups))
  }
  for _, g := range groups {
    wantAlert := g.Activity.Folder == "F1"
    if g.Alert != wantAlert {
      t.Fatalf("activity %q in folder %q: alert=%v, want %v", g.Activity.ID, g.Activity.Folder, g.Alert, wantAlert)
    }
  }
}

func TestBuildAlertCountsPostFilterOpenRows(t *testing.T) {
  // Filtering Bob out leaves one open row in F1, so the alert must clear.
  ds := newTestDistributionService(t)
  batch := []*types.Activity{
    act("1", "F1", "Alice", types.StatusOpen, ts(10)),
    act("2", "F1", "Bob", types.StatusOpen, ts(9)),
  }
  groups := ds.Build(batch, types.DistributionFilter{Assignees: []string{"Alice"}})
  if len(groups) != 1 {
    t.Fatalf("expected 1 group, got %d", len(groups))
  }
  if groups[0].Alert {
    t.Fatalf("alert should be false after the folder's other open row was filtered out")
  }
}

func TestBuildAssigneeFilterKeepsHistory(t *testing.T) {
  ds := newTestDistributionService(t)
  batch := []*types.Activity{
    act("1", "F1", "Alice", types.StatusOpen, ts(10)),
    act("2", "F2", "Bob", types.StatusOpen, ts(9)),
    act("3", "F1", "Bob", "Concluida", ts(8)),
  }
  groups := ds.Build(batch, types.DistributionFilter{Assignees: []string{"Alice"}})
  if len(groups) != 1 {
    t.Fatalf("expected only Alice's group, got %d groups", len(groups))
  }
  g := groups[0]
  if g.Activity.Assignee != "Alice" {
    t.Fatalf("got assignee %q, want Alice", g.Activity.Assignee)
  }
  // Bob's completed work in the same folder stays visible as context.
  foundBob := false
  for _, h := range g.History {
    if h.Assignee == "Bob" {
      foundBob = true
    }
  }
  if !foundBob {
    t.Fatalf("history lost Bob's folder-mate row")
  }
}

func TestBuildFolderFilterAppliesToOpenSet(t *testing.T) {
  ds := newTestDistributionService(t)
  batch := []*types.Activity{
    act("1", "F1", "Alice", types.StatusOpen, ts(10)),
    act("2", "F2", "Bob", types.StatusOpen, ts(9)),
  }
  groups := ds.Build(batch, types.DistributionFilter{Folders: []string{"F2"}})
  if len(groups) != 1 {
    t.Fatalf("expected 1 group, got %d", len(groups))
  }
  if groups[0].Activity.Folder != "F2" {
    t.Fatalf("got folder %q, want F2", groups[0].Activity.Folder)
  }
}

func TestBuildTextFilterCaseInsensitive(t *testing.T) {
  ds := newTestDistributionService(t)
  a := act("1", "F1", "Alice", types.StatusOpen, ts(10))
  a.Text = "Verificar CONTRATO pendente"
  b := act("2", "F2", "Bob", types.StatusOpen, ts(9))
  b.Text = "outra coisa"
  groups := ds.Build([]*types.Activity{a, b}, types.DistributionFilter{Search: "contrato"})
  if len(groups) != 1 {
    t.Fatalf("expected 1 group, got %d", len(groups))
  }
  if groups[0].Activity.ID != "1" {
    t.Fatalf("got activity %q, want 1", groups[0].Activity.ID)
  }
}

func TestBuildSortAssigneeFirst(t *testing.T) {
  // A's row sorts first even though B's is more recent.
  ds := newTestDistributionService(t)
  batch := []*types.Activity{
    act("1", "F2", "B", types.StatusOpen, ts(20)),
    act("2", "F1", "A", types.StatusOpen, ts(5)),
  }
  groups := ds.Build(batch, types.DistributionFilter{})
  if len(groups) != 2 {
    t.Fatalf("expected 2 groups, got %d", len(groups))
  }
  if groups[0].Activity.Assignee != "A" || groups[1].Activity.Assignee != "B" {
    t.Fatalf("got order [%s %s], want [A B]", groups[0].Activity.Assignee, groups[1].Activity.Assignee)
  }
}

func TestBuildSortWithinAssignee(t *testing.T) {
  ds := newTestDistributionService(t)
  batch := []*types.Activity{
    act("1", "F2", "A", types.StatusOpen, ts(10)),
    act("2", "F1", "A", types.StatusOpen, ts(5)),
    act("3", "F1", "A", types.StatusOpen, ts(15)),
  }
  groups := ds.Build(batch, types.DistributionFilter{})
  gotIDs := make([]string, 0, len(groups))
  for _, g := range groups {
    gotIDs = append(gotIDs, g.Activity.ID)
  }
  // Folder asc, then timestamp desc inside the folder.
  wantIDs := []string{"3", "2", "1"}
  if !reflect.DeepEqual(gotIDs, wantIDs) {
    t.Fatalf("got order %v, want %v", gotIDs, wantIDs)
  }
}

func TestBuildMissingTimestampSortsOldest(t *testing.T) {
  ds := newTestDistributionService(t)
  batch := []*types.Activity{
    act("1", "F1", "A", types.StatusOpen, nil),
    act("2", "F1", "A", types.StatusOpen, ts(1)),
  }
  groups := ds.Build(batch, types.DistributionFilter{})
  if len(groups) != 2 {
    t.Fatalf("expected 2 groups, got %d", len(groups))
  }
  if groups[0].Activity.ID != "2" {
    t.Fatalf("dated activity should sort before the dateless one, got %q first", groups[0].Activity.ID)
  }
  if groups[0].History[len(groups[0].History)-1].ID != "1" {
    t.Fatalf("dateless activity should sink to the bottom of history")
  }
}

func TestBuildHistoryOrderedByRecency(t *testing.T) {
  ds := newTestDistributionService(t)
  batch := []*types.Activity{
    act("1", "F1", "A", types.StatusOpen, ts(5)),
    act("2", "F1", "B", "Concluida", ts(20)),
    act("3", "F1", "C", "Cancelada", ts(10)),
  }
  groups := ds.Build(batch, types.DistributionFilter{})
  if len(groups) != 1 {
    t.Fatalf("expected 1 group, got %d", len(groups))
  }
  gotIDs := make([]string, 0, 3)
  for _, h := range groups[0].History {
    gotIDs = append(gotIDs, h.ID)
  }
  wantIDs := []string{"2", "3", "1"}
  if !reflect.DeepEqual(gotIDs, wantIDs) {
    t.Fatalf("history order %v, want %v", gotIDs, wantIDs)
  }
}

func TestBuildDeterministic(t *testing.T) {
  ds := newTestDistributionService(t)
  batch := []*types.Activity{
    act("1", "F1", "Alice", types.StatusOpen, ts(10)),
    act("2", "F1", "Bob", types.StatusOpen, ts(9)),
    act("3", "F2", "Bob", "Concluida", ts(8)),
    act("4", "F2", "Carol", types.StatusOpen, nil),
  }
  filter := types.DistributionFilter{Search: "pasta"}
  first := ds.Build(batch, filter)
  second := ds.Build(batch, filter)
  if !reflect.DeepEqual(first, second) {
    t.Fatalf("two runs over the same batch and filter disagreed")
  }
}

func TestBuildDoesNotMutateBatch(t *testing.T) {
  ds := newTestDistributionService(t)
  batch := []*types.Activity{
    act("2", "F1", "B", types.StatusOpen, ts(9)),
    act("1", "F1", "A", types.StatusOpen, ts(10)),
  }
  ds.Build(batch, types.DistributionFilter{})
  if batch[0].ID != "2" || batch[1].ID != "1" {
    t.Fatalf("batch order changed: [%s %s]", batch[0].ID, batch[1].ID)
  }
}
