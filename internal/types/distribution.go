package types

// ActivityFilter is the table view's client-side filter pass: every field is
// optional, an empty set or string means "no filtering on that dimension".
type ActivityFilter struct {
  Assignees []string
  Statuses  []string
  Search    string
}

// DistributionFilter narrows the open set of the contextual view. It never
// touches folder history.
type DistributionFilter struct {
  Assignees []string
  Folders   []string
  Search    string
}

// ActivityGroup is one open activity together with the full history of its
// folder. Alert marks folders holding more than one open activity after
// filtering.
type ActivityGroup struct {
  Activity *Activity   `json:"activity"`
  Alert    bool        `json:"alert"`
  History  []*Activity `json:"history"`
}

// FilterOptions feeds the dashboard multi-selects, derived from the loaded
// window rather than a separate query.
type FilterOptions struct {
  Assignees []string `json:"assignees"`
  Statuses  []string `json:"statuses"`
}
